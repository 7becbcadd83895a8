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
	"strconv"
	"strings"

	"github.com/loam-lang/loam/pkg/loam/heap"
	"github.com/loam-lang/loam/pkg/loam/loamerr"
	"github.com/loam-lang/loam/pkg/util/collection/smallmap"
)

// dictKey adapts a heap.Value into smallmap's Key constraint, using the
// language's own hash/equality capabilities rather than Go identity.
type dictKey struct {
	hash uint32
	val  heap.Value
}

func newDictKey(v heap.Value) (dictKey, error) {
	h, err := valueHash(v)
	if err != nil {
		return dictKey{}, err
	}

	return dictKey{hash: h, val: v}, nil
}

func (k dictKey) Equals(other dictKey) bool {
	return valueEquals(k.val, other.val)
}

func (k dictKey) Hash() uint32 {
	return k.hash
}

// Dict is the mutable heap-only mapping type, order-preserving like every
// SmallMap.
type Dict struct {
	entries *smallmap.SmallMap[dictKey, heap.Value]
}

// NewDict allocates an empty mutable Dict on h.
func NewDict(h *heap.MutableHeap) heap.Value {
	return h.AllocComplex(&Dict{entries: smallmap.New[dictKey, heap.Value]()})
}

func (d *Dict) TypeName() string { return "dict" }
func (d *Dict) ToBool() bool     { return d.entries.Len() > 0 }

func (d *Dict) ToRepr() string {
	var b strings.Builder

	b.WriteString("{")

	first := true

	for k, v := range d.entries.Iter() {
		if !first {
			b.WriteString(", ")
		}

		first = false
		b.WriteString(reprOf(k.val))
		b.WriteString(": ")
		b.WriteString(reprOf(v))
	}

	b.WriteString("}")

	return b.String()
}

func (d *Dict) ToJSON() (string, error) {
	var b strings.Builder

	b.WriteString("{")

	first := true

	for k, v := range d.entries.Iter() {
		ks, ok := AsString(k.val)
		if !ok {
			return "", loamerr.New(loamerr.OperationNotSupported, "dict keys must be strings for JSON conversion")
		}

		if !first {
			b.WriteString(",")
		}

		first = false

		ar := v.GetARef()
		sv := ar.Get()

		if sv == nil {
			ar.Release()
			return "", loamerr.OperationNotSupportedError("to_json", "unassigned")
		}

		vj, err := sv.ToJSON()
		ar.Release()

		if err != nil {
			return "", err
		}

		b.WriteString(strconv.Quote(ks))
		b.WriteString(":")
		b.WriteString(vj)
	}

	b.WriteString("}")

	return b.String(), nil
}

func (d *Dict) Equals(other heap.StarlarkValue) bool {
	o, ok := other.(*Dict)
	if !ok {
		return false
	}

	return d.entries.Equals(o.entries, valueEquals)
}

func (d *Dict) IsMutable() bool { return true }

func (d *Dict) IsIn(needle heap.Value) (bool, error) {
	key, err := newDictKey(needle)
	if err != nil {
		return false, err
	}

	_, ok := d.entries.Get(key)

	return ok, nil
}

// Get returns the value bound to key, if present.
func (d *Dict) Get(key heap.Value) (heap.Value, bool, error) {
	k, err := newDictKey(key)
	if err != nil {
		return heap.Value{}, false, err
	}

	v, ok := d.entries.Get(k)

	return v, ok, nil
}

// Set inserts or overwrites key/val.
func (d *Dict) Set(key, val heap.Value) error {
	k, err := newDictKey(key)
	if err != nil {
		return err
	}

	d.entries.Insert(k, val)

	return nil
}

// ForEachPair visits every entry in insertion order, for the call
// protocol's **kwargs splat handling.
func (d *Dict) ForEachPair(fn func(key, val heap.Value) error) error {
	for k, v := range d.entries.Iter() {
		if err := fn(k.val, v); err != nil {
			return err
		}
	}

	return nil
}

func (d *Dict) Iterate() (heap.Iterator, error) {
	keys := make([]heap.Value, 0, d.entries.Len())
	for k := range d.entries.Keys() {
		keys = append(keys, k.val)
	}

	return &sliceIterator{elems: keys}, nil
}

func (d *Dict) Walk(w heap.Walker) {
	rebuilt := smallmap.New[dictKey, heap.Value]()

	for k, v := range d.entries.Iter() {
		nk := k
		nk.val = w.Walk(k.val)
		rebuilt.Insert(nk, w.Walk(v))
	}

	d.entries = rebuilt
}

func (d *Dict) Freeze(f heap.Freezer) (heap.Value, error) {
	ref := f.ReserveFrozen()

	frozen := smallmap.New[dictKey, heap.Value]()

	for k, v := range d.entries.Iter() {
		fk, err := f.FreezeValue(k.val)
		if err != nil {
			return heap.Value{}, err
		}

		fv, err := f.FreezeValue(v)
		if err != nil {
			return heap.Value{}, err
		}

		nk, err := newDictKey(fk)
		if err != nil {
			return heap.Value{}, err
		}

		frozen.Insert(nk, fv)
	}

	ref.Fill(&FrozenDict{entries: frozen})

	return ref.Value(), nil
}

// Thaw clones this frozen dict into a fresh mutable Dict, per the
// ThawOnWrite first-mutation contract.
func (d *FrozenDict) Thaw() heap.StarlarkValue {
	cloned := smallmap.New[dictKey, heap.Value]()

	for k, v := range d.entries.Iter() {
		cloned.Insert(k, v)
	}

	return &Dict{entries: cloned}
}

// FrozenDict is the immutable counterpart produced by Dict.Freeze.
type FrozenDict struct {
	entries *smallmap.SmallMap[dictKey, heap.Value]
}

func (d *FrozenDict) TypeName() string { return "dict" }
func (d *FrozenDict) ToBool() bool     { return d.entries.Len() > 0 }

func (d *FrozenDict) ToRepr() string {
	return (&Dict{entries: d.entries}).ToRepr()
}

func (d *FrozenDict) ToJSON() (string, error) {
	return (&Dict{entries: d.entries}).ToJSON()
}

func (d *FrozenDict) Equals(other heap.StarlarkValue) bool {
	o, ok := other.(*FrozenDict)
	if !ok {
		return false
	}

	return d.entries.Equals(o.entries, valueEquals)
}

func (d *FrozenDict) IsMutable() bool { return false }

func (d *FrozenDict) IsIn(needle heap.Value) (bool, error) {
	key, err := newDictKey(needle)
	if err != nil {
		return false, err
	}

	_, ok := d.entries.Get(key)

	return ok, nil
}

func (d *FrozenDict) Get(key heap.Value) (heap.Value, bool, error) {
	k, err := newDictKey(key)
	if err != nil {
		return heap.Value{}, false, err
	}

	v, ok := d.entries.Get(k)

	return v, ok, nil
}

func (d *FrozenDict) ForEachPair(fn func(key, val heap.Value) error) error {
	for k, v := range d.entries.Iter() {
		if err := fn(k.val, v); err != nil {
			return err
		}
	}

	return nil
}

func (d *FrozenDict) Iterate() (heap.Iterator, error) {
	keys := make([]heap.Value, 0, d.entries.Len())
	for k := range d.entries.Keys() {
		keys = append(keys, k.val)
	}

	return &sliceIterator{elems: keys}, nil
}
