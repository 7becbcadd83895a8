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

// Package values implements the concrete, heap-allocated value types this
// module needs to exercise its freeze/thaw/GC/call-protocol machinery
// against: List, Dict, Tuple and Struct (Function lives in package eval).
// A host embedding this
// runtime is free to add further types; nothing here is privileged over a
// user-defined StarlarkValue implementation.
package values

import (
	"strings"

	"github.com/loam-lang/loam/pkg/loam/heap"
	"github.com/loam-lang/loam/pkg/loam/loamerr"
)

// List is the mutable heap-only sequence type. A frozen list placed back
// into a mutable heap arrives as a ThawOnWrite cell (see heap.MutableHeap.
// AllocThawOnWrite) and only becomes a *List on its first mutation.
type List struct {
	elems []heap.Value
}

// NewList allocates elems as a fresh mutable List on h.
func NewList(h *heap.MutableHeap, elems []heap.Value) heap.Value {
	return h.AllocComplex(&List{elems: append([]heap.Value(nil), elems...)})
}

func (l *List) TypeName() string { return "list" }
func (l *List) ToBool() bool     { return len(l.elems) > 0 }

func (l *List) ToRepr() string {
	return "[" + joinRepr(l.elems) + "]"
}

func (l *List) ToJSON() (string, error) {
	return jsonArray(l.elems)
}

func (l *List) Equals(other heap.StarlarkValue) bool {
	o, ok := other.(*List)
	if !ok || len(o.elems) != len(l.elems) {
		return false
	}

	for i := range l.elems {
		if !valueEquals(l.elems[i], o.elems[i]) {
			return false
		}
	}

	return true
}

func (l *List) IsMutable() bool { return true }

func (l *List) At(index int) (heap.Value, error) {
	if index < 0 || index >= len(l.elems) {
		return heap.Value{}, loamerr.New(loamerr.IndexOutOfBounds, "list index %d out of range (len %d)", index, len(l.elems))
	}

	return l.elems[index], nil
}

func (l *List) Length() (int, error) {
	return len(l.elems), nil
}

func (l *List) IsIn(needle heap.Value) (bool, error) {
	for _, e := range l.elems {
		if valueEquals(e, needle) {
			return true, nil
		}
	}

	return false, nil
}

func (l *List) Slice(h *heap.MutableHeap, start, end, step int) (heap.Value, error) {
	sliced, err := sliceIndices(l.elems, start, end, step)
	if err != nil {
		return heap.Value{}, err
	}

	return NewList(h, sliced), nil
}

func (l *List) SetAt(index int, val heap.Value) error {
	if index < 0 || index >= len(l.elems) {
		return loamerr.New(loamerr.IndexOutOfBounds, "list index %d out of range (len %d)", index, len(l.elems))
	}

	l.elems[index] = val

	return nil
}

func (l *List) Iterate() (heap.Iterator, error) {
	return &sliceIterator{elems: l.elems}, nil
}

func (l *List) Add(h *heap.MutableHeap, other heap.Value) (heap.Value, error) {
	rhs, err := otherListElems(other)
	if err != nil {
		return heap.Value{}, err
	}

	return NewList(h, append(append([]heap.Value(nil), l.elems...), rhs...)), nil
}

func (l *List) Mul(_ *heap.MutableHeap, _ heap.Value) (heap.Value, error) {
	return heap.Value{}, loamerr.OperationNotSupportedError("*", l.TypeName())
}

func (l *List) Walk(w heap.Walker) {
	for i := range l.elems {
		l.elems[i] = w.Walk(l.elems[i])
	}
}

func (l *List) Freeze(f heap.Freezer) (heap.Value, error) {
	ref := f.ReserveFrozen()

	frozenElems := make([]heap.Value, len(l.elems))

	for i, e := range l.elems {
		fv, err := f.FreezeValue(e)
		if err != nil {
			return heap.Value{}, err
		}

		frozenElems[i] = fv
	}

	ref.Fill(&FrozenList{elems: frozenElems})

	return ref.Value(), nil
}

// FrozenList is the immutable counterpart produced by List.Freeze.
type FrozenList struct {
	elems []heap.Value
}

func (l *FrozenList) TypeName() string { return "list" }
func (l *FrozenList) ToBool() bool     { return len(l.elems) > 0 }
func (l *FrozenList) ToRepr() string   { return "[" + joinRepr(l.elems) + "]" }
func (l *FrozenList) ToJSON() (string, error) {
	return jsonArray(l.elems)
}

func (l *FrozenList) Equals(other heap.StarlarkValue) bool {
	o, ok := other.(*FrozenList)
	if !ok || len(o.elems) != len(l.elems) {
		return false
	}

	for i := range l.elems {
		if !valueEquals(l.elems[i], o.elems[i]) {
			return false
		}
	}

	return true
}

func (l *FrozenList) IsMutable() bool { return false }

func (l *FrozenList) At(index int) (heap.Value, error) {
	if index < 0 || index >= len(l.elems) {
		return heap.Value{}, loamerr.New(loamerr.IndexOutOfBounds, "list index %d out of range (len %d)", index, len(l.elems))
	}

	return l.elems[index], nil
}

func (l *FrozenList) Length() (int, error) {
	return len(l.elems), nil
}

func (l *FrozenList) IsIn(needle heap.Value) (bool, error) {
	for _, e := range l.elems {
		if valueEquals(e, needle) {
			return true, nil
		}
	}

	return false, nil
}

func (l *FrozenList) Slice(h *heap.MutableHeap, start, end, step int) (heap.Value, error) {
	sliced, err := sliceIndices(l.elems, start, end, step)
	if err != nil {
		return heap.Value{}, err
	}

	return NewList(h, sliced), nil
}

func (l *FrozenList) Iterate() (heap.Iterator, error) {
	return &sliceIterator{elems: l.elems}, nil
}

// Thaw clones this frozen list into a fresh mutable List, per the
// ThawOnWrite first-mutation contract.
func (l *FrozenList) Thaw() heap.StarlarkValue {
	return &List{elems: append([]heap.Value(nil), l.elems...)}
}

// sliceIterator walks a fixed slice snapshot. Mutation of the underlying
// container after iteration begins is not detected: neither this cursor
// nor Iterate takes a shared borrow on the container.
type sliceIterator struct {
	elems []heap.Value
	pos   int
}

func (it *sliceIterator) Next() (heap.Value, bool) {
	if it.pos >= len(it.elems) {
		return heap.Value{}, false
	}

	v := it.elems[it.pos]
	it.pos++

	return v, true
}

func (it *sliceIterator) Done() {}

func otherListElems(v heap.Value) ([]heap.Value, error) {
	ar := v.GetARef()
	defer ar.Release()

	switch o := ar.Get().(type) {
	case *List:
		return o.elems, nil
	case *FrozenList:
		return o.elems, nil
	default:
		return nil, loamerr.OperationNotSupportedError("+", typeNameOf(ar.Get()))
	}
}

func sliceIndices(elems []heap.Value, start, end, step int) ([]heap.Value, error) {
	if step == 0 {
		return nil, loamerr.New(loamerr.IndexOutOfBounds, "slice step cannot be zero")
	}

	var out []heap.Value

	if step > 0 {
		for i := start; i < end && i < len(elems); i += step {
			if i >= 0 {
				out = append(out, elems[i])
			}
		}
	} else {
		for i := start; i > end && i >= 0; i += step {
			if i < len(elems) {
				out = append(out, elems[i])
			}
		}
	}

	return out, nil
}

func typeNameOf(v heap.StarlarkValue) string {
	if v == nil {
		return "unknown"
	}

	return v.TypeName()
}

func joinRepr(elems []heap.Value) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = reprOf(e)
	}

	return strings.Join(parts, ", ")
}

func reprOf(v heap.Value) string {
	ar := v.GetARef()
	defer ar.Release()

	sv := ar.Get()
	if sv == nil {
		return "<unassigned>"
	}

	return sv.ToRepr()
}

func jsonArray(elems []heap.Value) (string, error) {
	parts := make([]string, len(elems))

	for i, e := range elems {
		ar := e.GetARef()
		sv := ar.Get()

		if sv == nil {
			ar.Release()
			return "", loamerr.OperationNotSupportedError("to_json", "unassigned")
		}

		j, err := sv.ToJSON()
		ar.Release()

		if err != nil {
			return "", err
		}

		parts[i] = j
	}

	return "[" + strings.Join(parts, ",") + "]", nil
}

// valueEquals compares two Values structurally via their capability
// interface, treating unassigned/immediate mismatches as unequal rather
// than panicking.
func valueEquals(a, b heap.Value) bool {
	ar, br := a.GetARef(), b.GetARef()
	defer ar.Release()
	defer br.Release()

	av, bv := ar.Get(), br.Get()
	if av == nil || bv == nil {
		return av == nil && bv == nil
	}

	return av.Equals(bv)
}

// valueHash hashes a Value via its Hashable capability.
func valueHash(v heap.Value) (uint32, error) {
	ar := v.GetARef()
	defer ar.Release()

	h, ok := ar.Get().(heap.Hashable)
	if !ok {
		return 0, loamerr.OperationNotSupportedError("hash", typeNameOf(ar.Get()))
	}

	return h.GetHash()
}
