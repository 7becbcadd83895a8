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
package freeze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loam-lang/loam/pkg/loam/heap"
	"github.com/loam-lang/loam/pkg/loam/values"
)

// TestFreezeListProducesReadableFrozenValue covers Scenario S1: a mutable
// list is frozen and the result reads back with the same structure.
func TestFreezeListProducesReadableFrozenValue(t *testing.T) {
	mh := heap.NewMutableHeap()
	list := values.NewList(mh, []heap.Value{heap.NewInt(1), heap.NewInt(2)})

	fh := heap.NewFrozenHeap()
	frozen, err := FreezeModule([]heap.Value{list}, fh)
	require.NoError(t, err)
	require.Len(t, frozen, 1)

	assert.Equal(t, heap.TagFrozen, frozen[0].Tag())

	ar := frozen[0].GetARef()
	defer ar.Release()
	assert.Equal(t, "[1, 2]", ar.Get().ToRepr())
}

// TestFreezeIsIdempotentOnAnAlreadyFrozenRoot covers Testable Property 4:
// freezing a value that is already frozen (or immediate) is a no-op that
// returns the same value unchanged.
func TestFreezeIsIdempotentOnAnAlreadyFrozenRoot(t *testing.T) {
	fh := heap.NewFrozenHeap()
	engine := New(fh)

	s := fh.AllocStr("already frozen")

	once, err := engine.FreezeValue(s)
	require.NoError(t, err)

	twice, err := engine.FreezeValue(once)
	require.NoError(t, err)

	assert.True(t, once.PtrEq(twice))
	assert.True(t, once.PtrEq(s))

	n := heap.NewInt(7)
	frozenN, err := engine.FreezeValue(n)
	require.NoError(t, err)
	assert.True(t, frozenN.PtrEq(n), "immediates freeze to themselves")
}

// TestFreezeRevisitingTheSameMutableValueReturnsSameForward covers the
// Forward half of Testable Property 4: freezing the same mutable value
// twice within one engine pass yields pointer-identical results, since the
// second call short-circuits through the recorded Forward rather than
// re-allocating.
func TestFreezeRevisitingTheSameMutableValueReturnsSameForward(t *testing.T) {
	mh := heap.NewMutableHeap()
	list := values.NewList(mh, []heap.Value{heap.NewInt(1)})

	fh := heap.NewFrozenHeap()
	engine := New(fh)

	first, err := engine.FreezeValue(list)
	require.NoError(t, err)

	second, err := engine.FreezeValue(list)
	require.NoError(t, err)

	assert.True(t, first.PtrEq(second))
}

// TestFreezeThenReadIsStructurallyEqualToOriginal covers Testable Property
// 5: a frozen value, read back through its capability interface, compares
// structurally equal to the pre-freeze mutable value.
func TestFreezeThenReadIsStructurallyEqualToOriginal(t *testing.T) {
	mh := heap.NewMutableHeap()

	dict := values.NewDict(mh)
	dv := dict.GetARef().Get().(*values.Dict)
	require.NoError(t, dv.Set(mh.AllocStr("k"), heap.NewInt(5)))

	fh := heap.NewFrozenHeap()
	frozen, err := FreezeModule([]heap.Value{dict}, fh)
	require.NoError(t, err)

	originalAr := dict.GetARef()
	defer originalAr.Release()

	frozenAr := frozen[0].GetARef()
	defer frozenAr.Release()

	assert.True(t, originalAr.Get().Equals(frozenAr.Get()))
	assert.True(t, frozenAr.Get().Equals(originalAr.Get()))
}

// TestFreezeNestedStructurePreservesOrder freezes a list-of-lists and
// confirms the nested frozen structure reads back with the same repr,
// exercising the Freezer recursion through List.Freeze.
func TestFreezeNestedStructurePreservesOrder(t *testing.T) {
	mh := heap.NewMutableHeap()
	inner := values.NewList(mh, []heap.Value{heap.NewInt(1), heap.NewInt(2)})
	outer := values.NewList(mh, []heap.Value{inner, heap.NewInt(3)})

	fh := heap.NewFrozenHeap()
	frozen, err := FreezeModule([]heap.Value{outer}, fh)
	require.NoError(t, err)

	ar := frozen[0].GetARef()
	defer ar.Release()
	assert.Equal(t, "[[1, 2], 3]", ar.Get().ToRepr())
}

// TestThawOnWriteMirrorsFrozenUntilFirstMutation covers Scenario S2: a
// frozen list placed back into a mutable heap reads through to the frozen
// contents until its first write, at which point it thaws into an
// independent mutable copy.
func TestThawOnWriteMirrorsFrozenUntilFirstMutation(t *testing.T) {
	mh := heap.NewMutableHeap()
	list := values.NewList(mh, []heap.Value{heap.NewInt(1), heap.NewInt(2)})

	fh := heap.NewFrozenHeap()
	frozen, err := FreezeModule([]heap.Value{list}, fh)
	require.NoError(t, err)

	wrapped := mh.AllocThawOnWrite(frozen[0])

	roAr := wrapped.GetARef()
	assert.Equal(t, "[1, 2]", roAr.Get().ToRepr())
	roAr.Release()

	guard, err := wrapped.GetRefMut()
	require.NoError(t, err)
	defer guard.Release()

	lv, ok := guard.Value().(*values.List)
	require.True(t, ok, "first mutation thaws into an independent *List")
	require.NoError(t, lv.SetAt(0, heap.NewInt(99)))

	frozenAr := frozen[0].GetARef()
	defer frozenAr.Release()
	assert.Equal(t, "[1, 2]", frozenAr.Get().ToRepr(), "the frozen original is untouched by thawing")
}
