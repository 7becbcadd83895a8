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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loam-lang/loam/pkg/loam/heap"
)

func TestStructGetAttrAndHasAttr(t *testing.T) {
	s := NewStruct([]StructField{
		{Name: "x", Value: heap.NewInt(1)},
		{Name: "y", Value: heap.NewInt(2)},
	})

	assert.True(t, s.HasAttr("x"))
	assert.False(t, s.HasAttr("z"))

	v, err := s.GetAttr("y")
	require.NoError(t, err)
	n, _ := v.Int()
	assert.Equal(t, int32(2), n)

	_, err = s.GetAttr("z")
	assert.Error(t, err)
}

func TestStructDirAttrListsFieldNames(t *testing.T) {
	s := NewStruct([]StructField{
		{Name: "a", Value: heap.NewInt(1)},
		{Name: "b", Value: heap.NewInt(2)},
	})

	dir := s.DirAttr()
	assert.ElementsMatch(t, []string{"a", "b"}, dir)
}

func TestStructReprPreservesInsertionOrder(t *testing.T) {
	s := NewStruct([]StructField{
		{Name: "first", Value: heap.NewInt(1)},
		{Name: "second", Value: heap.NewInt(2)},
	})

	assert.Equal(t, "struct(first=1, second=2)", s.ToRepr())
}

func TestStructToJSON(t *testing.T) {
	s := NewStruct([]StructField{{Name: "a", Value: heap.NewInt(1)}})

	j, err := s.ToJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, j)
}

func TestStructEqualsIsStructural(t *testing.T) {
	a := NewStruct([]StructField{{Name: "x", Value: heap.NewInt(1)}})
	b := NewStruct([]StructField{{Name: "x", Value: heap.NewInt(1)}})
	c := NewStruct([]StructField{{Name: "x", Value: heap.NewInt(2)}})

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
}

func TestStructIsAlwaysImmutable(t *testing.T) {
	s := NewStruct(nil)
	assert.False(t, s.IsMutable())
	assert.True(t, s.ToBool(), "a struct is always truthy regardless of field count")
}
