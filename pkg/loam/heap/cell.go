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

// frozenKind discriminates the storage shape of a frozenCell. A frozen-heap
// entry never contains a pointer into a mutable heap (invariant 1).
type frozenKind uint8

const (
	frozenStr frozenKind = iota
	frozenSimple
)

// frozenCell is one entry in a FrozenHeap's bump arena.
type frozenCell struct {
	kind frozenKind
	str  string
	obj  StarlarkValue
}

func (c *frozenCell) aref() ARef {
	return ARef{value: frozenValue{c}}
}

// frozenCellID returns a stable identity for pointer hashing.
func frozenCellID(c *frozenCell) uintptr {
	return cellAddr(c)
}

// mutableKind discriminates the storage shape of a mutableCell. Str and
// Simple mirror the frozen shapes; the remaining kinds only ever occur on a
// mutable heap.
type mutableKind uint8

const (
	mutableStr mutableKind = iota
	mutableSimple
	// mutableImmutable is shape-immutable but may transitively contain
	// mutable values (invariant 2).
	mutableImmutable
	// mutableMutable is interior-mutable and dynamically borrow-tracked.
	mutableMutable
	// mutableThawOnWrite starts as a pointer to a frozen list/dict; the
	// first mutating call clones it into a fresh mutableMutable cell.
	mutableThawOnWrite
	// mutableRef is a one-slot indirection used by upvalue capture. Ref
	// cells never nest (invariant 3).
	mutableRef
	// mutableForward records "this slot has been frozen; follow the
	// forward", written by the freeze engine over the source cell.
	mutableForward
	// mutableCopied is the GC's to-space forwarding pointer.
	mutableCopied
	// mutableBlackhole is written transiently during freeze/GC to detect
	// illegal cycles.
	mutableBlackhole
	// mutableCallEnter and mutableCallExit are profiling markers, ignored
	// by the value algebra.
	mutableCallEnter
	mutableCallExit
)

// mutableCell is one entry in a MutableHeap's arena.
type mutableCell struct {
	kind mutableKind
	str  string
	obj  StarlarkValue
	cell Value // payload for mutableRef

	// thawSource holds the frozen entry this cell still points at, until
	// the first mutation clones it into a fresh mutableMutable.
	thawSource *frozenCell

	// forward holds the frozen replacement once the freeze engine has
	// processed this cell.
	forward Value

	// copied holds the to-space replacement once the GC has relocated this
	// cell.
	copied *mutableCell

	borrowedShared int
	borrowedMut    bool
}

func (c *mutableCell) aref() ARef {
	if c.kind == mutableThawOnWrite && c.thawSource != nil {
		return c.thawSource.aref()
	}

	return ARef{value: mutableValue{c}}
}

// ensureThawed clones a frozen-backed ThawOnWrite cell into a fresh mutable
// cell on first mutation, per Scenario S2. It is a no-op for every other
// kind.
func (c *mutableCell) ensureThawed() {
	if c.kind != mutableThawOnWrite || c.thawSource == nil {
		return
	}

	if t, ok := c.thawSource.obj.(Thawable); ok {
		c.obj = t.Thaw()
	} else {
		c.obj = c.thawSource.obj
	}

	c.thawSource = nil
	c.kind = mutableMutable
}

// mutableCellID returns a stable identity for pointer hashing.
func mutableCellID(c *mutableCell) uintptr {
	return cellAddr(c)
}

// MutGuard is an exclusive borrow acquired via Value.GetRefMut. Release must
// be called exactly once to drop the borrow.
type MutGuard struct {
	cell *mutableCell
}

// Value returns the capability-interface view of the guarded cell.
func (g *MutGuard) Value() StarlarkValue {
	return g.cell.obj
}

// Release drops the exclusive borrow.
func (g *MutGuard) Release() {
	g.cell.borrowedMut = false
}
