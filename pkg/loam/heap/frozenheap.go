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
package heap

// arenaChunk is one contiguous slab of a FrozenHeap's bump arena. Chunks
// are never resized in place; once full, a new (larger) chunk is appended,
// so pointers handed out into an earlier chunk stay valid forever.
type arenaChunk struct {
	cells []frozenCell
}

const initialChunkSize = 64

// frozenArena is the shared, bump-allocated storage backing every handle
// cloned from the same FrozenHeap. Heaps never shrink; the arena is freed
// only when the last handle referencing it is dropped (in Go, when it
// becomes unreachable).
type frozenArena struct {
	chunks []*arenaChunk
}

func (a *frozenArena) alloc() *frozenCell {
	if len(a.chunks) == 0 {
		a.chunks = append(a.chunks, &arenaChunk{cells: make([]frozenCell, 0, initialChunkSize)})
	}

	last := a.chunks[len(a.chunks)-1]
	if len(last.cells) == cap(last.cells) {
		next := &arenaChunk{cells: make([]frozenCell, 0, cap(last.cells)*2)}
		a.chunks = append(a.chunks, next)
		last = next
	}

	last.cells = append(last.cells, frozenCell{})

	return &last.cells[len(last.cells)-1]
}

// FrozenHeap is a reference-counted handle onto a bump-allocated arena of
// immutable values. Cloning a handle is O(1): it shares the same
// underlying arena, so values allocated through one clone remain valid
// through every other.
type FrozenHeap struct {
	arena *frozenArena
}

// NewFrozenHeap creates a fresh, empty FrozenHeap.
func NewFrozenHeap() *FrozenHeap {
	return &FrozenHeap{arena: &frozenArena{}}
}

// Clone returns a new handle sharing this heap's arena. O(1).
func (h *FrozenHeap) Clone() *FrozenHeap {
	return &FrozenHeap{arena: h.arena}
}

// AllocStr interns s as a Str cell and returns a Value pointing at it.
func (h *FrozenHeap) AllocStr(s string) Value {
	cell := h.arena.alloc()
	cell.kind = frozenStr
	cell.str = s

	return newFrozen(cell)
}

// AllocSimple stores obj as a Simple cell (no outgoing mutable references)
// and returns a Value pointing at it.
func (h *FrozenHeap) AllocSimple(obj StarlarkValue) Value {
	cell := h.arena.alloc()
	cell.kind = frozenSimple
	cell.obj = obj

	return newFrozen(cell)
}

// AllocFrozenValue is implemented by types that know how to allocate
// themselves onto a FrozenHeap without going through an intermediate
// mutable representation (e.g. module-level constants built directly by a
// GlobalsBuilder).
type AllocFrozenValue interface {
	AllocFrozenValue(h *FrozenHeap) Value
}

// Alloc allocates obj onto h via its own AllocFrozenValue implementation.
func (h *FrozenHeap) Alloc(obj AllocFrozenValue) Value {
	return obj.AllocFrozenValue(h)
}

// ReserveFrozen allocates an empty Simple cell that can be filled in later
// via the returned FrozenRef; the entry's identity is fixed before its
// contents are known.
func (h *FrozenHeap) ReserveFrozen() FrozenRef {
	cell := h.arena.alloc()
	cell.kind = frozenSimple

	return FrozenRef{cell: cell}
}
