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

// Package scope implements the compile-time name resolver: it walks an
// AST (supplied by an external front-end, per the module's scope) before
// code emission, assigning every name a slot and threading upvalue chains
// from inner function scopes back to the outer scopes that define them.
package scope

import "github.com/loam-lang/loam/pkg/util/collection/stack"

// Visibility distinguishes module-level public names from `_`-prefixed
// private ones.
type Visibility uint8

const (
	Public Visibility = iota
	Private
)

// BindingKind discriminates where GetName found a name.
type BindingKind uint8

const (
	// ModuleBinding means the name lives in the module-level slot table.
	ModuleBinding BindingKind = iota
	// LocalBinding means the name lives in the innermost function scope's
	// slot table (possibly threaded down as an upvalue from an outer
	// scope -- see Upvalue).
	LocalBinding
)

// Binding is the result of resolving a name.
type Binding struct {
	Kind BindingKind
	Slot int
}

// Upvalue records that childSlot in some inner scope must, at call time,
// be populated by copying the Ref cell held at parentSlot in the
// immediately enclosing scope.
type Upvalue struct {
	ParentSlot int
	ChildSlot  int
}

// functionScope tracks one function (or module load-time) scope's
// allocation state.
type functionScope struct {
	used int
	// mp maps name to slot. A plain Go map is deliberate here, not an
	// oversight: §9's own design notes call out that the source
	// implementation resolves body-level defines via an unordered
	// intermediate, so iteration order over a function's locals is
	// documented non-determinism, not a property callers may depend on.
	mp     map[string]int
	parent []Upvalue
}

func newFunctionScope() *functionScope {
	return &functionScope{mp: make(map[string]int)}
}

func (s *functionScope) define(name string) int {
	if slot, ok := s.mp[name]; ok {
		return slot
	}

	slot := s.used
	s.used++
	s.mp[name] = slot

	return slot
}

// comprehensionFrame records the bindings a comprehension's loop variables
// shadow, so ExitCompr can restore them.
type comprehensionFrame struct {
	shadowed map[string]int
	added    []string
}

// Resolver is the scope resolver described in §4.J.
type Resolver struct {
	moduleUsed    int
	modulePublic  map[string]int
	modulePrivate map[string]int

	funcs  *stack.Stack[*functionScope]
	comprs *stack.Stack[*comprehensionFrame]
}

// NewResolver creates an empty Resolver, ready for EnterModule.
func NewResolver() *Resolver {
	return &Resolver{
		modulePublic:  make(map[string]int),
		modulePrivate: make(map[string]int),
		funcs:         stack.NewStack[*functionScope](),
		comprs:        stack.NewStack[*comprehensionFrame](),
	}
}

// NameVisibility is one top-level define discovered by the front-end
// during EnterModule.
type NameVisibility struct {
	Name       string
	Visibility Visibility
}

// EnterModule collects top-level defines, assigning module slots by
// visibility (a leading "_" implies Private), and pushes an initial
// function scope for module load-time locals such as top-level
// comprehensions.
func (r *Resolver) EnterModule(names []NameVisibility) {
	for _, n := range names {
		slot := r.moduleUsed
		r.moduleUsed++

		if n.Visibility == Private {
			r.modulePrivate[n.Name] = slot
		} else {
			r.modulePublic[n.Name] = slot
		}
	}

	r.funcs.Push(newFunctionScope())
}

// EnterDef allocates a new function scope with params taking the leading
// slots in declaration order -- an ordering invariant the call protocol's
// parameter collector relies on.
func (r *Resolver) EnterDef(params []string) {
	fs := newFunctionScope()

	for _, p := range params {
		fs.define(p)
	}

	r.funcs.Push(fs)
}

// Define records a body-level local inside the current innermost function
// scope (module load-time scope counts), returning its slot. Calling
// Define twice for the same name in the same scope returns the same slot.
func (r *Resolver) Define(name string) int {
	return r.current().define(name)
}

// ExitDef pops the innermost function scope, returning how many slots it
// used, its name->slot table, and the upvalue chain recorded while
// resolving names against outer scopes.
func (r *Resolver) ExitDef() (used int, mp map[string]int, parent []Upvalue) {
	fs := r.current()
	r.funcs.Pop()

	return fs.used, fs.mp, fs.parent
}

// EnterCompr opens a comprehension scope; bindings added via AddCompr
// shadow the enclosing scope only until ExitCompr.
func (r *Resolver) EnterCompr() {
	r.comprs.Push(&comprehensionFrame{shadowed: make(map[string]int)})
}

// AddCompr binds a comprehension loop variable in the current function
// scope, recording whatever it shadows so ExitCompr can restore it.
func (r *Resolver) AddCompr(name string) int {
	frame := r.comprs.Peek(0)
	fs := r.current()

	if prior, ok := fs.mp[name]; ok {
		if _, alreadyShadowed := frame.shadowed[name]; !alreadyShadowed {
			frame.shadowed[name] = prior
		}
	}

	frame.added = append(frame.added, name)
	delete(fs.mp, name)

	return fs.define(name)
}

// ExitCompr closes the innermost comprehension scope, restoring whatever
// bindings it shadowed.
func (r *Resolver) ExitCompr() {
	frame := r.comprs.Pop()

	fs := r.current()
	for _, name := range frame.added {
		delete(fs.mp, name)
	}

	for name, slot := range frame.shadowed {
		fs.mp[name] = slot
	}
}

// GetName resolves name, searching function scopes from innermost to
// outermost. If found in an outer function scope, it threads an upvalue
// entry (parentSlot, childSlot) into every intervening scope, so the
// runtime can materialize the Ref-cell chain at call time. If not found in
// any function scope, it falls back to the module table.
func (r *Resolver) GetName(name string) Binding {
	n := int(r.funcs.Len())

	for offset := uint(0); offset < r.funcs.Len(); offset++ {
		i := n - 1 - int(offset)

		if slot, ok := r.funcs.Peek(offset).mp[name]; ok {
			innermostSlot := r.threadUpvalue(i, slot)

			return Binding{Kind: LocalBinding, Slot: innermostSlot}
		}
	}

	if slot, ok := r.modulePublic[name]; ok {
		return Binding{Kind: ModuleBinding, Slot: slot}
	}

	slot := r.modulePrivate[name]

	return Binding{Kind: ModuleBinding, Slot: slot}
}

// threadUpvalue, having found name at slot in scope index ownerIdx,
// propagates an upvalue binding down through every scope between ownerIdx
// and the innermost scope so each intervening frame knows to copy the Ref
// cell forward at call time. It returns the slot the innermost scope ends
// up knowing the binding by -- the caller's own slot if ownerIdx is already
// the innermost scope, or the final threaded childSlot otherwise. This is
// never the same key as the source name itself, so callers must not
// relook it up via mp[name].
func (r *Resolver) threadUpvalue(ownerIdx, ownerSlot int) int {
	parentSlot := ownerSlot
	n := int(r.funcs.Len())

	for i := ownerIdx + 1; i < n; i++ {
		child := r.funcs.Peek(uint(n - 1 - i))

		childSlot, ok := child.mp[upvalueKey(ownerIdx, ownerSlot)]
		if !ok {
			childSlot = child.used
			child.used++
			child.mp[upvalueKey(ownerIdx, ownerSlot)] = childSlot
			child.parent = append(child.parent, Upvalue{ParentSlot: parentSlot, ChildSlot: childSlot})
		}

		parentSlot = childSlot
	}

	return parentSlot
}

// upvalueKey gives each captured outer binding a synthetic name distinct
// from any source-level identifier, so a captured variable and a
// same-named local declared later in an intervening scope can't collide.
func upvalueKey(ownerIdx, ownerSlot int) string {
	return "$upvalue$" + itoa(ownerIdx) + "$" + itoa(ownerSlot)
}

func (r *Resolver) current() *functionScope {
	return r.funcs.Peek(0)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}

	neg := n < 0
	if neg {
		n = -n
	}

	var buf [20]byte

	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}

	if neg {
		i--
		buf[i] = '-'
	}

	return string(buf[i:])
}
