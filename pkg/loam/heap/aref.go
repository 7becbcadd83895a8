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

import "github.com/loam-lang/loam/pkg/loam/loamerr"

// arefSource is the internal sum over the three shapes an ARef can wrap:
// an immediate, a frozen-heap pointer, or a mutable-heap pointer.
type arefSource interface {
	get() StarlarkValue
	// release drops the shared borrow this view holds, if any. Only the
	// view returned by Value.BeginSharedBorrow holds one; for every other
	// view it is a no-op.
	release()
}

// ARef is a borrowed handle onto a value's capability interface. For
// immediates and frozen values it is a raw, overhead-free wrapper. The ARef
// that Value.BeginSharedBorrow returns for a Mutable cell additionally holds
// a shared borrow until Release is called, so the dynamic borrow-checker can
// detect mutation during iteration; Value.GetARef takes no borrow.
type ARef struct {
	value arefSource
}

// Get returns the capability-interface view of the borrowed value.
func (a ARef) Get() StarlarkValue {
	if a.value == nil {
		return nil
	}

	return a.value.get()
}

// Release drops the borrow this ARef represents. Safe to call on a
// zero-value ARef or one wrapping an immediate/frozen value.
func (a ARef) Release() {
	if a.value != nil {
		a.value.release()
	}
}

type immediateValue struct {
	v Value
}

func (i immediateValue) get() StarlarkValue {
	switch i.v.tag {
	case TagNone:
		return noneValue{}
	case TagBool:
		b, _ := i.v.Bool()
		return boolValue{b}
	case TagInt:
		n, _ := i.v.Int()
		return intValue{n}
	default:
		return nil
	}
}

func (immediateValue) release() {}

type frozenValue struct {
	cell *frozenCell
}

func (f frozenValue) get() StarlarkValue {
	if f.cell.kind == frozenStr {
		return strValue(f.cell.str)
	}

	return f.cell.obj
}

func (frozenValue) release() {}

type mutableValue struct {
	cell *mutableCell
}

func (m mutableValue) get() StarlarkValue {
	switch m.cell.kind {
	case mutableStr:
		return strValue(m.cell.str)
	case mutableForward:
		return m.cell.forward.GetARef().Get()
	case mutableCopied:
		return mutableValue{m.cell.copied}.get()
	default:
		return m.cell.obj
	}
}

func (mutableValue) release() {}

// BeginSharedBorrow marks v's underlying Mutable cell as shared-borrowed,
// for the duration of an in-progress iteration. It is a no-op for every
// other value kind. The returned ARef's Release drops the borrow.
func (v Value) BeginSharedBorrow() ARef {
	if v.tag != TagMutable {
		return v.GetARef()
	}

	v.mutable.borrowedShared++

	return ARef{value: sharedBorrow{view: v.GetARef(), cell: v.mutable}}
}

// sharedBorrow is the view BeginSharedBorrow returns: it reads through the
// cell's ordinary view and drops the cell's shared borrow on release.
type sharedBorrow struct {
	view ARef
	cell *mutableCell
}

func (s sharedBorrow) get() StarlarkValue {
	return s.view.Get()
}

func (s sharedBorrow) release() {
	if s.cell.borrowedShared > 0 {
		s.cell.borrowedShared--
	}
}

// unboundError is the UnboundVariable error for a read of an unassigned
// slot. No accessor in this package returns it: GetARef on Unassigned
// yields a view whose Get returns nil, and Bool/Int report ok=false.
func unboundError() error {
	return loamerr.New(loamerr.UnboundVariable, "read of unassigned slot")
}
