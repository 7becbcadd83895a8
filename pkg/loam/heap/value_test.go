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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loam-lang/loam/pkg/loam/loamerr"
)

func TestImmediateValuesRoundtrip(t *testing.T) {
	b, ok := NewBool(true).Bool()
	assert.True(t, ok)
	assert.True(t, b)

	n, ok := NewInt(42).Int()
	assert.True(t, ok)
	assert.Equal(t, int32(42), n)

	_, ok = NewInt(1).Bool()
	assert.False(t, ok)

	assert.True(t, None.IsNone())
	assert.True(t, Unassigned.IsUnassigned())
}

func TestPtrEqDistinguishesIdentityNotJustValue(t *testing.T) {
	h := NewMutableHeap()

	a := h.AllocStr("hello")
	b := h.AllocStr("hello")

	assert.False(t, a.PtrEq(b), "two separately-allocated cells are not the same pointer")
	assert.True(t, a.PtrEq(a))

	assert.True(t, NewInt(1).PtrEq(NewInt(1)), "immediates compare by payload")
	assert.False(t, NewInt(1).PtrEq(NewInt(2)))
	assert.False(t, NewInt(1).PtrEq(NewBool(true)), "different tags never compare equal")
}

func TestGetRefMutFailsOnImmutableOrDoubleBorrow(t *testing.T) {
	_, err := NewInt(1).GetRefMut()
	require.Error(t, err)
	assert.ErrorIs(t, err, loamerr.New(loamerr.CannotMutateImmutableValue, ""))

	h := NewMutableHeap()
	v := h.AllocStr("x")

	guard, err := v.GetRefMut()
	require.NoError(t, err)

	_, err = v.GetRefMut()
	require.Error(t, err)
	assert.ErrorIs(t, err, loamerr.New(loamerr.MutationDuringIteration, ""))

	guard.Release()

	guard2, err := v.GetRefMut()
	require.NoError(t, err)
	guard2.Release()
}

func TestGetRefFailsWhileExclusivelyBorrowed(t *testing.T) {
	h := NewMutableHeap()
	v := h.AllocStr("x")

	guard, err := v.GetRefMut()
	require.NoError(t, err)

	_, ok := v.GetRef()
	assert.False(t, ok, "a shared borrow must be refused while an exclusive borrow is outstanding")

	guard.Release()

	_, ok = v.GetRef()
	assert.True(t, ok)
}

func TestBeginSharedBorrowBlocksMutation(t *testing.T) {
	h := NewMutableHeap()
	v := h.AllocStr("x")

	ar := v.BeginSharedBorrow()

	_, err := v.GetRefMut()
	require.Error(t, err)
	assert.ErrorIs(t, err, loamerr.New(loamerr.MutationDuringIteration, ""))

	ar.Release()

	_, err = v.GetRefMut()
	assert.NoError(t, err)
}

func TestAllocThawOnWriteMirrorsFrozenUntilWritten(t *testing.T) {
	fh := NewFrozenHeap()
	frozenStr := fh.AllocStr("abc")

	h := NewMutableHeap()
	v := h.AllocThawOnWrite(frozenStr)

	cls := v.Classify()
	assert.True(t, cls.IsThawSource)
	assert.True(t, cls.ThawSource.PtrEq(frozenStr))
}
