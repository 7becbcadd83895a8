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

// Package environment builds the frozen, named top-level environment a
// source module evaluates against: the standard library plus whatever
// host extensions are layered on top.
package environment

import (
	"fmt"
	"sync"

	"github.com/loam-lang/loam/pkg/loam/heap"
	"github.com/loam-lang/loam/pkg/loam/values"
	"github.com/loam-lang/loam/pkg/util/collection/smallmap"
)

// attrName is the Key implementation used to index a builder's name table,
// shared between top-level Globals and struct_'s nested collector.
type attrName string

func (n attrName) Equals(other attrName) bool { return n == other }

func (n attrName) Hash() uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(n); i++ {
		h ^= uint32(n[i])
		h *= 16777619
	}

	return h
}

// Globals is a shared-owning handle onto a FrozenHeap and the name table
// built against it. Cloning the underlying FrozenHeap handle is O(1), so
// a Globals is cheap to pass by value to every evaluation it serves.
type Globals struct {
	heap  *heap.FrozenHeap
	names *smallmap.SmallMap[attrName, heap.Value]
}

// Get looks up a top-level name.
func (g *Globals) Get(name string) (heap.Value, bool) {
	return g.names.Get(attrName(name))
}

// Heap returns the FrozenHeap backing every value in this Globals.
func (g *Globals) Heap() *heap.FrozenHeap {
	return g.heap
}

// Names returns every bound top-level name, in the order it was first
// bound.
func (g *Globals) Names() []string {
	out := make([]string, 0, g.names.Len())
	for k := range g.names.Keys() {
		out = append(out, string(k))
	}

	return out
}

// ExtendedBy layers additional builder closures on top of g's existing
// bindings, returning a new Globals sharing the same FrozenHeap. Bindings
// from later closures shadow earlier ones of the same name.
func (g *Globals) ExtendedBy(exts ...func(*GlobalsBuilder)) *Globals {
	b := &GlobalsBuilder{heap: g.heap, named: smallmap.New[attrName, heap.Value]()}

	for k, v := range g.names.Iter() {
		b.named.Insert(k, v)
	}

	for _, ext := range exts {
		ext(b)
	}

	return b.Build()
}

// GlobalsBuilder accumulates top-level bindings onto a FrozenHeap. The
// zero value is not usable; construct one with NewGlobalsBuilder.
type GlobalsBuilder struct {
	heap     *heap.FrozenHeap
	named    *smallmap.SmallMap[attrName, heap.Value]
	inStruct bool
}

// NewGlobalsBuilder starts a fresh builder allocating onto h.
func NewGlobalsBuilder(h *heap.FrozenHeap) *GlobalsBuilder {
	return &GlobalsBuilder{heap: h, named: smallmap.New[attrName, heap.Value]()}
}

// Set binds name to v, overwriting any prior binding of the same name.
func (b *GlobalsBuilder) Set(name string, v heap.Value) {
	b.named.Insert(attrName(name), v)
}

// SetStr interns s onto the builder's heap and binds name to it.
func (b *GlobalsBuilder) SetStr(name, s string) {
	b.Set(name, b.heap.AllocStr(s))
}

// Struct_ opens a scoped collector whose entries become a single
// frozen-struct value bound under name. Nesting struct_ inside another
// struct_ closure is a programming error in the standard library layer,
// not a runtime condition, so it asserts rather than returning an error.
func (b *GlobalsBuilder) Struct_(name string, f func(*GlobalsBuilder)) {
	if b.inStruct {
		panic("loam/environment: struct_(\"" + name + "\") does not nest")
	}

	child := &GlobalsBuilder{heap: b.heap, named: smallmap.New[attrName, heap.Value](), inStruct: true}
	f(child)

	pairs := make([]values.StructField, 0, child.named.Len())
	for k, v := range child.named.Iter() {
		pairs = append(pairs, values.StructField{Name: string(k), Value: v})
	}

	b.Set(name, b.heap.AllocSimple(values.NewStruct(pairs)))
}

// With applies f to b and returns b, for chaining several layering steps
// (standard library, then optional extensions) in one expression.
func (b *GlobalsBuilder) With(f func(*GlobalsBuilder)) *GlobalsBuilder {
	f(b)
	return b
}

// Build finalizes the builder into an immutable Globals.
func (b *GlobalsBuilder) Build() *Globals {
	return &Globals{heap: b.heap, names: b.named}
}

// GlobalsStatic is a lazily-initialized, process-wide per-type member
// table: the set of methods and attributes attached to every value of one
// concrete type (e.g. every List). It is written exactly once, on first
// access, and never torn down -- the leaky-by-design global state the
// core's design notes call out explicitly.
type GlobalsStatic struct {
	heap    *heap.FrozenHeap
	build   func(*GlobalsBuilder)
	once    sync.Once
	members *smallmap.SmallMap[attrName, heap.Value]
}

// NewGlobalsStatic defers build until the first call to Members or
// Function.
func NewGlobalsStatic(h *heap.FrozenHeap, build func(*GlobalsBuilder)) *GlobalsStatic {
	return &GlobalsStatic{heap: h, build: build}
}

// Members returns the per-type member table, building it on first call
// and reusing the same table on every subsequent call.
func (s *GlobalsStatic) Members() *smallmap.SmallMap[attrName, heap.Value] {
	s.once.Do(func() {
		b := NewGlobalsBuilder(s.heap)
		s.build(b)
		s.members = b.named
	})

	return s.members
}

// Function extracts the single FrozenValue written by a builder closure
// that is expected to declare exactly one member, such as a standalone
// function binding. It panics if the closure declared zero or more than
// one member, since that indicates a standard-library authoring mistake
// rather than a runtime condition.
func (s *GlobalsStatic) Function(build func(*GlobalsBuilder)) heap.Value {
	b := NewGlobalsBuilder(s.heap)
	build(b)

	if b.named.Len() != 1 {
		panic(fmt.Sprintf("loam/environment: function(f) expects exactly one member, got %d", b.named.Len()))
	}

	for v := range b.named.Values() {
		return v
	}

	panic("unreachable")
}
