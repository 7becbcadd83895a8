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

// Package heap implements the value representation shared by every
// evaluation: the tagged Value handle, the storage cells it points at, and
// the two heap arenas (frozen and mutable) those cells live in. See
// DESIGN.md for why this package represents a Value as a small tagged
// struct rather than a bit-stolen pointer.
package heap

import "github.com/loam-lang/loam/pkg/loam/loamerr"

// Tag discriminates the kind of payload a Value carries. It plays the role
// the low tag bits play in a bit-stolen pointer representation, without
// requiring pointers to be disguised as integers.
type Tag uint8

const (
	// TagNone is the singleton none value. Payload is unused.
	TagNone Tag = iota
	// TagBool carries a boolean in payload bit 0.
	TagBool
	// TagInt carries a 32-bit integer in payload.
	TagInt
	// TagFrozen points at a cell owned by a FrozenHeap.
	TagFrozen
	// TagMutable points at a cell owned by a MutableHeap.
	TagMutable
	// TagUnassigned marks a slot that was declared but never written. Reads
	// do not fail: GetARef yields a view whose Get returns nil, and
	// Bool/Int report ok=false.
	TagUnassigned
)

// Value is one machine-word-sized handle in the source representation; here
// it is a small tagged struct that plays the same role without disguising
// heap pointers as integers, so Go's garbage collector can still scan it
// precisely.
//
// refTarget marks, independent of tag, that this handle targets a Ref cell:
// the value is held indirectly so multiple upvalue captures share mutation.
// A Value whose refTarget bit is clear never targets a Ref cell.
type Value struct {
	tag       Tag
	payload   int64
	frozen    *frozenCell
	mutable   *mutableCell
	refTarget bool
}

// None is the singleton none value.
var None = Value{tag: TagNone}

// Unassigned is the distinguished value representing "slot defined but never
// assigned."
var Unassigned = Value{tag: TagUnassigned}

// NewBool wraps a boolean as an immediate Value.
func NewBool(b bool) Value {
	p := int64(0)
	if b {
		p = 1
	}

	return Value{tag: TagBool, payload: p}
}

// NewInt wraps a 32-bit integer as an immediate Value.
func NewInt(i int32) Value {
	return Value{tag: TagInt, payload: int64(i)}
}

// newFrozen wraps a pointer into a FrozenHeap.
func newFrozen(cell *frozenCell) Value {
	return Value{tag: TagFrozen, frozen: cell}
}

// newMutable wraps a pointer into a MutableHeap.
func newMutable(cell *mutableCell) Value {
	return Value{tag: TagMutable, mutable: cell}
}

// IsNone reports whether this value is the none singleton.
func (v Value) IsNone() bool {
	return v.tag == TagNone
}

// IsUnassigned reports whether this value is the reserved "never assigned"
// pattern.
func (v Value) IsUnassigned() bool {
	return v.tag == TagUnassigned
}

// Bool unpacks an immediate boolean. ok is false if v is not a bool.
func (v Value) Bool() (b, ok bool) {
	if v.tag != TagBool {
		return false, false
	}

	return v.payload != 0, true
}

// Int unpacks an immediate 32-bit integer. ok is false if v is not an int.
func (v Value) Int() (i int32, ok bool) {
	if v.tag != TagInt {
		return 0, false
	}

	return int32(v.payload), true
}

// IsRefTarget reports whether v targets a Ref cell indirection.
func (v Value) IsRefTarget() bool {
	return v.refTarget
}

// asRefTarget returns a copy of v marked as targeting a Ref cell.
func (v Value) asRefTarget() Value {
	v.refTarget = true

	return v
}

// PtrEq reports whether a and b are the identical pointer (or identical
// immediate), i.e. pointer-identity rather than structural equality.
func (v Value) PtrEq(other Value) bool {
	if v.tag != other.tag {
		return false
	}

	switch v.tag {
	case TagNone, TagUnassigned:
		return true
	case TagBool, TagInt:
		return v.payload == other.payload
	case TagFrozen:
		return v.frozen == other.frozen
	case TagMutable:
		return v.mutable == other.mutable
	default:
		return false
	}
}

// PtrValue returns an integer suitable for pointer-identity hashing. Two
// values that are PtrEq always return the same PtrValue.
func (v Value) PtrValue() uintptr {
	switch v.tag {
	case TagFrozen:
		return uintptr(frozenCellID(v.frozen))
	case TagMutable:
		return uintptr(mutableCellID(v.mutable))
	default:
		return uintptr(v.payload)
	}
}

// Tag returns the discriminant of this value, mostly useful for diagnostics
// and the GC/freeze walkers.
func (v Value) Tag() Tag {
	return v.tag
}

// GetARef always returns a borrow handle onto v's capability interface. It
// takes no borrow of its own (BeginSharedBorrow does) and never fails:
// immediates and frozen values are always readable, and a borrowed Mutable
// cell still exposes its last-written contents.
func (v Value) GetARef() ARef {
	switch v.tag {
	case TagNone, TagBool, TagInt, TagUnassigned:
		return ARef{value: immediateValue{v}}
	case TagFrozen:
		return v.frozen.aref()
	case TagMutable:
		return v.mutable.aref()
	default:
		return ARef{}
	}
}

// GetRef returns a borrow handle onto v's capability interface, or ok=false
// if the underlying entry is exclusively borrowed elsewhere (a Mutable cell
// with an outstanding mutable borrow).
func (v Value) GetRef() (ARef, bool) {
	if v.tag == TagMutable && v.mutable.borrowedMut {
		return ARef{}, false
	}

	return v.GetARef(), true
}

// GetRefMut acquires an exclusive borrow for mutation. It fails with
// CannotMutateImmutableValue if v is not on a MutableHeap (an immediate or
// a frozen value), or with MutationDuringIteration if a shared borrow
// (iteration) is outstanding. The cell's storage kind is not inspected, so
// a mutable-heap Str, Simple or Immutable cell is borrowed like a Mutable
// one.
func (v Value) GetRefMut() (*MutGuard, error) {
	if v.tag != TagMutable {
		return nil, loamerr.New(loamerr.CannotMutateImmutableValue, "value is not mutable")
	}

	c := v.mutable
	if c.borrowedShared > 0 {
		return nil, loamerr.New(loamerr.MutationDuringIteration, "value is borrowed by an in-progress iteration")
	}

	if c.borrowedMut {
		return nil, loamerr.New(loamerr.MutationDuringIteration, "value is already exclusively borrowed")
	}

	c.ensureThawed()
	c.borrowedMut = true

	return &MutGuard{cell: c}, nil
}
