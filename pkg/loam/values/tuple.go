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
package values

import (
	"github.com/loam-lang/loam/pkg/loam/heap"
	"github.com/loam-lang/loam/pkg/loam/loamerr"
)

// Tuple is an immutable fixed-length record. Per the Immutable(obj)
// definition, a tuple is shape-immutable but may still contain mutable
// sub-values, so it is only ever Simple when every element is itself
// already frozen or an immediate.
type Tuple struct {
	elems []heap.Value
}

// NewTuple allocates elems as a Tuple. If every element is already an
// immediate or frozen, it is allocated as a Simple frozen-free value (no
// outgoing mutable references); otherwise it is allocated Immutable on h.
func NewTuple(h *heap.MutableHeap, elems []heap.Value) heap.Value {
	t := &Tuple{elems: append([]heap.Value(nil), elems...)}

	for _, e := range t.elems {
		if !heap.IsImmediateOrFrozen(e) {
			return h.AllocComplex(t)
		}
	}

	return h.AllocSimple(t)
}

func (t *Tuple) TypeName() string { return "tuple" }
func (t *Tuple) ToBool() bool     { return len(t.elems) > 0 }
func (t *Tuple) ToRepr() string   { return "(" + joinRepr(t.elems) + ")" }

func (t *Tuple) ToJSON() (string, error) {
	return jsonArray(t.elems)
}

func (t *Tuple) Equals(other heap.StarlarkValue) bool {
	o, ok := other.(*Tuple)
	if !ok || len(o.elems) != len(t.elems) {
		return false
	}

	for i := range t.elems {
		if !valueEquals(t.elems[i], o.elems[i]) {
			return false
		}
	}

	return true
}

// IsMutable is always false: a tuple's shape never changes, even though
// invariant 2 permits it to contain mutable sub-values.
func (t *Tuple) IsMutable() bool { return false }

func (t *Tuple) At(index int) (heap.Value, error) {
	if index < 0 || index >= len(t.elems) {
		return heap.Value{}, loamerr.New(loamerr.IndexOutOfBounds, "tuple index %d out of range (len %d)", index, len(t.elems))
	}

	return t.elems[index], nil
}

func (t *Tuple) Length() (int, error) {
	return len(t.elems), nil
}

func (t *Tuple) IsIn(needle heap.Value) (bool, error) {
	for _, e := range t.elems {
		if valueEquals(e, needle) {
			return true, nil
		}
	}

	return false, nil
}

func (t *Tuple) Iterate() (heap.Iterator, error) {
	return &sliceIterator{elems: t.elems}, nil
}

func (t *Tuple) Walk(w heap.Walker) {
	for i := range t.elems {
		t.elems[i] = w.Walk(t.elems[i])
	}
}

func (t *Tuple) Freeze(f heap.Freezer) (heap.Value, error) {
	ref := f.ReserveFrozen()

	frozenElems := make([]heap.Value, len(t.elems))

	for i, e := range t.elems {
		fv, err := f.FreezeValue(e)
		if err != nil {
			return heap.Value{}, err
		}

		frozenElems[i] = fv
	}

	ref.Fill(&Tuple{elems: frozenElems})

	return ref.Value(), nil
}

// Elems returns the tuple's elements, e.g. for the call protocol's *args
// collector to materialize an args tuple.
func (t *Tuple) Elems() []heap.Value {
	return t.elems
}
