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

// StarlarkValue is the capability set every heap-allocated object
// implements. Only the universally applicable operations live here;
// operations that only some types support (indexing, iteration, arithmetic,
// attributes, mutation) are split into the optional interfaces below and
// reached via a type assertion, so a new value type is added by adding a
// tag and an interface impl -- no existing call site needs to change.
type StarlarkValue interface {
	// TypeName returns the name used in error messages and type_name().
	TypeName() string
	// ToBool reports this value's truthiness.
	ToBool() bool
	// ToRepr renders this value the way it would appear in source.
	ToRepr() string
	// ToJSON renders this value as JSON text, or an error if it (or a
	// nested value) does not support JSON conversion.
	ToJSON() (string, error)
	// Equals reports structural equality with other.
	Equals(other StarlarkValue) bool
	// IsMutable declares mutability at allocation time, read by the
	// MutableHeap's AllocComplex to choose between the Mutable and
	// Immutable storage variants.
	IsMutable() bool
}

// Hashable is implemented by values usable as dict/set keys.
type Hashable interface {
	StarlarkValue
	GetHash() (uint32, error)
}

// Comparable is implemented by values supporting ordering, not just
// equality.
type Comparable interface {
	StarlarkValue
	Compare(other StarlarkValue) (int, error)
}

// Indexable is implemented by sequences supporting positional indexing and
// slicing. Slice takes the heap to allocate its result container on, since
// it produces a fresh value rather than an existing field.
type Indexable interface {
	StarlarkValue
	At(index int) (Value, error)
	Length() (int, error)
	Slice(h *MutableHeap, start, end, step int) (Value, error)
}

// Container is implemented by types supporting the `in` operator.
type Container interface {
	StarlarkValue
	IsIn(needle Value) (bool, error)
}

// Settable is implemented by mutable sequences supporting item assignment.
type Settable interface {
	StarlarkValue
	SetAt(index int, val Value) error
}

// Iterable is implemented by types supporting `for` iteration. Iterate
// returns a cursor; it takes no shared borrow on the container, so
// iterating alone does not make GetRefMut fail (Value.BeginSharedBorrow is
// the call that marks a Mutable cell as borrowed).
type Iterable interface {
	StarlarkValue
	Iterate() (Iterator, error)
}

// Iterator is a live cursor obtained from Iterable.Iterate.
type Iterator interface {
	// Next advances the cursor, returning ok=false once exhausted.
	Next() (Value, bool)
	// Done ends the iteration. Iterate takes no borrow, so there is none
	// for Done to release.
	Done()
}

// Arithmetic is implemented by types supporting `+` and `*`. Both take the
// heap to allocate their result container on.
type Arithmetic interface {
	StarlarkValue
	Add(h *MutableHeap, other Value) (Value, error)
	Mul(h *MutableHeap, other Value) (Value, error)
}

// Attributable is implemented by types exposing named attributes or
// methods.
type Attributable interface {
	StarlarkValue
	GetAttr(name string) (Value, error)
	HasAttr(name string) bool
	DirAttr() []string
}

// Thawable is implemented by frozen container types (FrozenList,
// FrozenDict) so a ThawOnWrite cell can clone them into a fresh mutable
// value on first mutation.
type Thawable interface {
	StarlarkValue
	Thaw() StarlarkValue
}

// Walkable is implemented by every type that can hold outgoing Value
// fields, so the freeze engine and the copying collector can traverse the
// object graph without either package needing to know the concrete type.
type Walkable interface {
	// Walk invokes w.Walk on every outgoing Value field, replacing the
	// field in place with whatever the walker returns.
	Walk(w Walker)
}

// Freezable is implemented by every mutable-heap object. Freeze must first
// reserve an empty frozen entry via f.ReserveFrozen and then fill it with
// the frozen equivalent of this object's contents, returning the
// reservation's Value. A cycle back to this object while its contents are
// being frozen fails with CyclicFreeze.
type Freezable interface {
	Freeze(f Freezer) (Value, error)
}

// Walker is implemented by the copying collector and injected into
// Walkable.Walk, so that package gc does not need to be imported by package
// heap (avoiding an import cycle between the heap representation and its
// collector).
type Walker interface {
	// Walk is called once per outgoing Value field; it returns the value
	// that field should now hold (itself, if nothing moved).
	Walk(v Value) Value
}

// Freezer is implemented by the freeze engine and injected into
// Freezable.Freeze and ParameterSpec default-value freezing, so package
// heap does not need to import package freeze.
type Freezer interface {
	// FreezeValue recursively freezes v, memoizing already-visited mutable
	// cells via Forward so cyclic-looking but legal sharing is only
	// visited once.
	FreezeValue(v Value) (Value, error)
	// ReserveFrozen allocates an empty frozen entry whose identity is fixed
	// before the object's contents are filled in. Illegal cycles are caught
	// separately, by FreezeValue's Blackhole check, as a CyclicFreeze error.
	ReserveFrozen() FrozenRef
}

// FrozenRef is a handle to a reserved-but-not-yet-filled frozen entry.
type FrozenRef struct {
	cell *frozenCell
}

// Fill completes a reserved frozen entry with its simple value.
func (r FrozenRef) Fill(obj StarlarkValue) {
	r.cell.kind = frozenSimple
	r.cell.obj = obj
}

// Value returns a Value pointing at this (possibly still-reserved) entry.
func (r FrozenRef) Value() Value {
	return newFrozen(r.cell)
}
