// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package ast declares the narrow contract a source-language front-end
// must satisfy to drive the scope resolver (pkg/loam/scope) and the call
// protocol (pkg/loam/eval). It is deliberately not a parser: this module
// owns evaluation, not syntax. A front-end walks its own parse tree and
// calls into scope.Resolver/eval.Collector at the points this contract
// names; nothing here constructs or traverses a tree on its own.
package ast

// StmtKind distinguishes the statement shapes the scope resolver needs to
// tell apart while walking a module or function body. A front-end's own
// statement node should expose enough to classify itself as one of these.
type StmtKind uint8

const (
	// StmtDefine introduces a new name: `x = expr` at module or function
	// scope, binding via scope.Resolver.Define.
	StmtDefine StmtKind = iota
	// StmtAssign writes through an existing binding (`x = expr` where x
	// already resolves via scope.Resolver.GetName) or through a
	// Settable/Indexable lvalue (`xs[i] = expr`, `obj.attr = expr`).
	StmtAssign
	// StmtFunctionDef declares a nested function, bracketed by
	// scope.Resolver.EnterDef/ExitDef and eval.NewParameterSpec.
	StmtFunctionDef
	// StmtComprehension is a list/dict comprehension, bracketed by
	// scope.Resolver.EnterCompr/AddCompr/ExitCompr.
	StmtComprehension
	// StmtLoad is a load-statement binding names from another module's
	// frozen Globals into the current module scope.
	StmtLoad
)

// ExprKind distinguishes the expression shapes the scope resolver treats
// specially when resolving an lvalue target.
type ExprKind uint8

const (
	// ExprName is a bare identifier, resolved via scope.Resolver.GetName.
	ExprName ExprKind = iota
	// ExprIndex is a subscript lvalue (`xs[i]`), resolved through the
	// Indexable/Settable capability pair on the target's runtime value.
	ExprIndex
	// ExprAttr is an attribute lvalue (`obj.attr`), resolved through the
	// Attributable capability on the target's runtime value.
	ExprAttr
)

// Symbol is the minimal view a front-end's identifier node must expose:
// its source text and whatever the front-end's own `_`-prefix convention
// marks as private. A module-level StmtDefine reports its Symbol's
// Visibility to scope.Resolver.EnterModule via scope.NameVisibility.
type Symbol interface {
	// Name returns the identifier's source text.
	Name() string
	// Private reports whether this symbol's leading character marks it
	// module-private ("_"-prefixed) rather than public.
	Private() bool
}

// Param is the minimal view a front-end's parameter node must expose to
// build an eval.ParameterSpec: its name (handed to
// scope.Resolver.EnterDef for slot assignment) and whether it carries a
// default expression, is `*args`, or is `**kwargs`. The default
// expression itself, if any, is evaluated by the front-end and handed to
// eval.Param.Default directly; this package does not model expressions.
type Param interface {
	Symbol() Symbol
	IsArgs() bool
	IsKWArgs() bool
	HasDefault() bool
}
