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

// Package runtime is the host-facing facade named in the public API
// surface: build Globals, evaluate a source string against a
// MutableHeap, and freeze the resulting module into a self-contained
// value a host can hold onto after the MutableHeap is gone.
package runtime

import (
	"github.com/loam-lang/loam/pkg/loam/environment"
	"github.com/loam-lang/loam/pkg/loam/freeze"
	"github.com/loam-lang/loam/pkg/loam/heap"
)

// Module is one evaluated source file's module-level bindings, still
// living on the MutableHeap they were evaluated against.
type Module struct {
	Names []string
	Roots []heap.Value
}

// Interpreter is the tree-walking evaluator this package delegates to.
// It is an external collaborator: runtime owns the host-facing contract
// (build Globals, evaluate, freeze), not parsing or execution.
type Interpreter interface {
	Evaluate(source string, h *heap.MutableHeap, g *environment.Globals) (*Module, error)
}

// Globals pairs an environment.Globals with the Interpreter that
// evaluates source against it, so a host holds one handle through which
// to run any number of evaluations.
type Globals struct {
	env         *environment.Globals
	interpreter Interpreter
}

// NewGlobals wraps env for evaluation via interpreter.
func NewGlobals(env *environment.Globals, interpreter Interpreter) *Globals {
	return &Globals{env: env, interpreter: interpreter}
}

// Env returns the underlying environment.Globals, for hosts that need
// direct name lookups without going through Evaluate.
func (g *Globals) Env() *environment.Globals {
	return g.env
}

// Evaluate runs source against h and g's bound names, producing the
// module's bindings still resident on h.
func (g *Globals) Evaluate(source string, h *heap.MutableHeap) (*Module, error) {
	return g.interpreter.Evaluate(source, h, g.env)
}

// OwnedFrozenValue is a module's bindings after freezing: a FrozenHeap
// handle plus the frozen root values, kept alive together so the API
// cannot hand out a Value whose backing heap has already been dropped.
type OwnedFrozenValue struct {
	heap  *heap.FrozenHeap
	names []string
	roots []heap.Value
}

// Heap returns the FrozenHeap backing every value this OwnedFrozenValue
// holds. Cloning it is O(1) and keeps the arena alive for as long as the
// clone is held.
func (o *OwnedFrozenValue) Heap() *heap.FrozenHeap {
	return o.heap
}

// Get looks up one of the module's top-level bindings by name.
func (o *OwnedFrozenValue) Get(name string) (heap.Value, bool) {
	for i, n := range o.names {
		if n == name {
			return o.roots[i], true
		}
	}

	return heap.Value{}, false
}

// Names returns the module's top-level binding names, in declaration
// order.
func (o *OwnedFrozenValue) Names() []string {
	return o.names
}

// Freeze converts m's still-mutable root bindings into a self-contained
// OwnedFrozenValue on a fresh FrozenHeap, per the public API surface's
// "freeze a module" operation.
func Freeze(m *Module) (*OwnedFrozenValue, error) {
	target := heap.NewFrozenHeap()

	frozenRoots, err := freeze.FreezeModule(m.Roots, target)
	if err != nil {
		return nil, err
	}

	return &OwnedFrozenValue{heap: target, names: m.Names, roots: frozenRoots}, nil
}
