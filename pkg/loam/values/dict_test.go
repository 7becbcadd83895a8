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

func TestDictSetGetIn(t *testing.T) {
	h := heap.NewMutableHeap()
	d := NewDict(h).GetARef().Get().(*Dict)

	key := h.AllocStr("k")
	require.NoError(t, d.Set(key, heap.NewInt(42)))

	v, ok, err := d.Get(key)
	require.NoError(t, err)
	require.True(t, ok)

	n, _ := v.Int()
	assert.Equal(t, int32(42), n)

	in, err := d.IsIn(key)
	require.NoError(t, err)
	assert.True(t, in)

	_, ok, err = d.Get(h.AllocStr("missing"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDictReprAndJSON(t *testing.T) {
	h := heap.NewMutableHeap()
	d := NewDict(h).GetARef().Get().(*Dict)

	require.NoError(t, d.Set(h.AllocStr("a"), heap.NewInt(1)))

	assert.Equal(t, `{"a": 1}`, d.ToRepr())

	j, err := d.ToJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, j)
}

func TestDictEqualsIsStructural(t *testing.T) {
	h := heap.NewMutableHeap()

	a := NewDict(h).GetARef().Get().(*Dict)
	require.NoError(t, a.Set(h.AllocStr("x"), heap.NewInt(1)))

	b := NewDict(h).GetARef().Get().(*Dict)
	require.NoError(t, b.Set(h.AllocStr("x"), heap.NewInt(1)))

	c := NewDict(h).GetARef().Get().(*Dict)
	require.NoError(t, c.Set(h.AllocStr("x"), heap.NewInt(2)))

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
}

func TestDictForEachPairVisitsInsertionOrder(t *testing.T) {
	h := heap.NewMutableHeap()
	d := NewDict(h).GetARef().Get().(*Dict)

	require.NoError(t, d.Set(h.AllocStr("first"), heap.NewInt(1)))
	require.NoError(t, d.Set(h.AllocStr("second"), heap.NewInt(2)))

	var keys []string

	err := d.ForEachPair(func(key, val heap.Value) error {
		k, _ := AsString(key)
		keys = append(keys, k)

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, keys)
}

func TestDictOverwriteExistingKey(t *testing.T) {
	h := heap.NewMutableHeap()
	d := NewDict(h).GetARef().Get().(*Dict)

	key := h.AllocStr("k")
	require.NoError(t, d.Set(key, heap.NewInt(1)))
	require.NoError(t, d.Set(key, heap.NewInt(2)))

	v, ok, err := d.Get(key)
	require.NoError(t, err)
	require.True(t, ok)

	n, _ := v.Int()
	assert.Equal(t, int32(2), n)
}
