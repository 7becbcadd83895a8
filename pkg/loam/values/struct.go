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

// fieldName is the Key implementation used to index a Struct's field
// table.
type fieldName string

func (n fieldName) Equals(other fieldName) bool { return n == other }

func (n fieldName) Hash() uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(n); i++ {
		h ^= uint32(n[i])
		h *= 16777619
	}

	return h
}

// Struct is a SmallMap-backed immutable record with named fields, built by
// a GlobalsBuilder.struct_ closure.
type Struct struct {
	fields *smallmap.SmallMap[fieldName, heap.Value]
}

// NewStruct builds a Struct from name/value pairs, preserving the order
// they are given in.
func NewStruct(pairs []StructField) *Struct {
	m := smallmap.New[fieldName, heap.Value]()

	for _, p := range pairs {
		m.Insert(fieldName(p.Name), p.Value)
	}

	return &Struct{fields: m}
}

// StructField is one name/value pair supplied to NewStruct.
type StructField struct {
	Name  string
	Value heap.Value
}

func (s *Struct) TypeName() string { return "struct" }
func (s *Struct) ToBool() bool     { return true }

func (s *Struct) ToRepr() string {
	var b strings.Builder

	b.WriteString("struct(")

	first := true

	for k, v := range s.fields.Iter() {
		if !first {
			b.WriteString(", ")
		}

		first = false
		b.WriteString(string(k))
		b.WriteString("=")
		b.WriteString(reprOf(v))
	}

	b.WriteString(")")

	return b.String()
}

func (s *Struct) ToJSON() (string, error) {
	var b strings.Builder

	b.WriteString("{")

	first := true

	for k, v := range s.fields.Iter() {
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

		b.WriteString(strconv.Quote(string(k)))
		b.WriteString(":")
		b.WriteString(vj)
	}

	b.WriteString("}")

	return b.String(), nil
}

func (s *Struct) Equals(other heap.StarlarkValue) bool {
	o, ok := other.(*Struct)
	if !ok {
		return false
	}

	return s.fields.Equals(o.fields, valueEquals)
}

func (s *Struct) IsMutable() bool { return false }

func (s *Struct) GetAttr(name string) (heap.Value, error) {
	v, ok := s.fields.Get(fieldName(name))
	if !ok {
		return heap.Value{}, loamerr.OperationNotSupportedError(name, s.TypeName())
	}

	return v, nil
}

func (s *Struct) HasAttr(name string) bool {
	return s.fields.ContainsKey(fieldName(name))
}

func (s *Struct) DirAttr() []string {
	names := make([]string, 0, s.fields.Len())
	for k := range s.fields.Keys() {
		names = append(names, string(k))
	}

	return names
}

func (s *Struct) Walk(w heap.Walker) {
	rebuilt := smallmap.New[fieldName, heap.Value]()

	for k, v := range s.fields.Iter() {
		rebuilt.Insert(k, w.Walk(v))
	}

	s.fields = rebuilt
}

func (s *Struct) Freeze(f heap.Freezer) (heap.Value, error) {
	ref := f.ReserveFrozen()

	frozen := smallmap.New[fieldName, heap.Value]()

	for k, v := range s.fields.Iter() {
		fv, err := f.FreezeValue(v)
		if err != nil {
			return heap.Value{}, err
		}

		frozen.Insert(k, fv)
	}

	ref.Fill(&Struct{fields: frozen})

	return ref.Value(), nil
}
