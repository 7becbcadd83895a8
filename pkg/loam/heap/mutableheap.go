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

// MutableHeap is a per-evaluation arena. It exclusively owns every entry it
// hands out; a Value tagged mutable is only valid while this heap is
// alive. It also retains strong handles to every FrozenHeap passed to
// RetainFrozenHeap, so frozen pointers embedded in mutable data stay valid
// for the MutableHeap's lifetime.
type MutableHeap struct {
	cells    []*mutableCell
	retained []*FrozenHeap
}

// NewMutableHeap creates a fresh, empty MutableHeap.
func NewMutableHeap() *MutableHeap {
	return &MutableHeap{}
}

func (h *MutableHeap) alloc(kind mutableKind) *mutableCell {
	c := &mutableCell{kind: kind}
	h.cells = append(h.cells, c)

	return c
}

// AllocStr interns s as a Str cell on this heap.
func (h *MutableHeap) AllocStr(s string) Value {
	c := h.alloc(mutableStr)
	c.str = s

	return newMutable(c)
}

// AllocSimple stores obj as a Simple cell (no outgoing references).
func (h *MutableHeap) AllocSimple(obj StarlarkValue) Value {
	c := h.alloc(mutableSimple)
	c.obj = obj

	return newMutable(c)
}

// AllocComplex stores obj as Mutable or Immutable depending on its
// self-reported IsMutable().
func (h *MutableHeap) AllocComplex(obj StarlarkValue) Value {
	kind := mutableImmutable
	if obj.IsMutable() {
		kind = mutableMutable
	}

	c := h.alloc(kind)
	c.obj = obj

	return newMutable(c)
}

// AllocThawOnWrite wraps a frozen container so it behaves as mutable,
// cloning into a fresh Mutable cell only on first write (Scenario S2).
func (h *MutableHeap) AllocThawOnWrite(frozen Value) Value {
	c := h.alloc(mutableThawOnWrite)

	if frozen.tag == TagFrozen {
		c.thawSource = frozen.frozen
	}

	return newMutable(c)
}

// AllocRaw allocates a cell directly in the given variant kind, for the
// internal use of the freeze engine and copying collector (Forward,
// Copied, Blackhole, CallEnter/CallExit).
func (h *MutableHeap) AllocRaw(kind mutableKind) Value {
	c := h.alloc(kind)

	return newMutable(c)
}

// AllocRef allocates a one-slot indirection holding initial, for upvalue
// capture. Per invariant 3, initial must not itself be a Ref target.
func (h *MutableHeap) AllocRef(initial Value) Value {
	c := h.alloc(mutableRef)
	c.cell = initial

	v := newMutable(c)

	return v.asRefTarget()
}

// RetainFrozenHeap keeps fh alive for as long as this MutableHeap is alive,
// so frozen pointers allocated on it and embedded into mutable values
// remain valid.
func (h *MutableHeap) RetainFrozenHeap(fh *FrozenHeap) {
	h.retained = append(h.retained, fh)
}

// Cells returns every live cell on this heap, for use by the copying
// collector's root-sweep and by tests.
func (h *MutableHeap) Cells() []*mutableCell {
	return h.cells
}

// SetForward overwrites cell's storage with a Forward entry pointing at
// frozen, as the freeze engine does once an object's frozen equivalent is
// known.
func SetForward(v Value, frozen Value) {
	if v.tag != TagMutable {
		return
	}

	v.mutable.kind = mutableForward
	v.mutable.forward = frozen
}

// SetBlackhole overwrites cell's storage with Blackhole, so a concurrent
// visit during the same freeze/GC pass is detected as a cycle.
func SetBlackhole(v Value) {
	if v.tag == TagMutable {
		v.mutable.kind = mutableBlackhole
	}
}

// IsBlackhole reports whether v currently holds the Blackhole sentinel.
func IsBlackhole(v Value) bool {
	return v.tag == TagMutable && v.mutable.kind == mutableBlackhole
}

// ForwardTarget returns the frozen value a Forward cell points at, and
// whether v was in fact a Forward cell.
func ForwardTarget(v Value) (Value, bool) {
	if v.tag == TagMutable && v.mutable.kind == mutableForward {
		return v.mutable.forward, true
	}

	return Value{}, false
}

// IsImmediateOrFrozen reports whether v needs no freezing work at all: it
// is already an immediate or already lives on a FrozenHeap.
func IsImmediateOrFrozen(v Value) bool {
	return v.tag != TagMutable
}

// SetCopied overwrites a mutable cell with a Copied forwarding pointer
// during garbage collection.
func SetCopied(v Value, to *mutableCell) {
	if v.tag == TagMutable {
		v.mutable.kind = mutableCopied
		v.mutable.copied = to
	}
}

// CopiedTarget returns the to-space cell a Copied entry points at, and
// whether v was in fact a Copied cell.
func CopiedTarget(v Value) (*mutableCell, bool) {
	if v.tag == TagMutable && v.mutable.kind == mutableCopied {
		return v.mutable.copied, true
	}

	return nil, false
}

// MutableClass describes the storage shape of a Mutable-heap value, for
// the freeze engine's use. It is produced by Classify rather than exposing
// mutableCell directly, keeping package freeze decoupled from heap's
// internal cell layout.
type MutableClass struct {
	// IsStr is true if v is a Str cell; Str holds its contents.
	IsStr bool
	Str   string

	// IsThawSource is true if v is a ThawOnWrite cell that has never been
	// written to; ThawSource is the frozen value it still mirrors, which
	// needs no copying since it is already frozen.
	IsThawSource bool
	ThawSource   Value

	// IsForward is true if a previous freeze pass already processed v;
	// Forward is the resulting frozen value.
	IsForward bool
	Forward   Value

	// IsBlackhole is true if v is mid-freeze on the current call stack,
	// indicating an illegal cycle.
	IsBlackhole bool

	// Obj is the capability object for Simple, Immutable, Mutable (after
	// thaw) and thawed ThawOnWrite cells.
	Obj StarlarkValue
}

// Classify inspects v's mutable-heap storage for the freeze engine. It
// panics if v is not a TagMutable value; callers are expected to have
// already excluded immediates and already-frozen values via
// IsImmediateOrFrozen.
func (v Value) Classify() MutableClass {
	c := v.mutable

	switch c.kind {
	case mutableStr:
		return MutableClass{IsStr: true, Str: c.str}
	case mutableThawOnWrite:
		if c.thawSource != nil {
			return MutableClass{IsThawSource: true, ThawSource: newFrozen(c.thawSource)}
		}

		return MutableClass{Obj: c.obj}
	case mutableForward:
		return MutableClass{IsForward: true, Forward: c.forward}
	case mutableBlackhole:
		return MutableClass{IsBlackhole: true}
	default:
		return MutableClass{Obj: c.obj}
	}
}

// BeginRelocate moves v's cell bookkeeping onto to, the copying
// collector's to-space heap. If v was already relocated earlier in the
// same collection pass, it returns the cached result and alreadyCopied
// true. Otherwise it allocates a same-kind cell on to (sharing the
// original's payload, since Go objects are not literally moved in memory -
// only the heap's logical ownership of the slot is), marks the source cell
// Copied, and returns alreadyCopied false so the caller knows to walk the
// new cell's nested fields next.
func (v Value) BeginRelocate(to *MutableHeap) (relocated Value, alreadyCopied bool) {
	if v.tag != TagMutable {
		return v, true
	}

	c := v.mutable

	if c.kind == mutableCopied {
		return newMutable(c.copied), true
	}

	nc := &mutableCell{
		kind:       c.kind,
		str:        c.str,
		obj:        c.obj,
		cell:       c.cell,
		thawSource: c.thawSource,
		forward:    c.forward,
	}
	to.cells = append(to.cells, nc)

	c.kind = mutableCopied
	c.copied = nc

	return newMutable(nc), false
}

// IsCopiedCell reports whether a cell obtained from MutableHeap.Cells has
// already been relocated by a copying collection pass.
func IsCopiedCell(c *mutableCell) bool {
	return c.kind == mutableCopied
}

// Walk invokes w on every outgoing Value field of v's underlying object
// (via Walkable, for Simple, Immutable and Mutable cells), or on the
// single payload field of a Ref cell. Other cell kinds are not walked.
func Walk(v Value, w Walker) {
	if v.tag != TagMutable {
		return
	}

	c := v.mutable

	switch c.kind {
	case mutableRef:
		c.cell = w.Walk(c.cell)
	case mutableMutable, mutableImmutable, mutableSimple:
		if wk, ok := c.obj.(Walkable); ok {
			wk.Walk(w)
		}
	}
}
