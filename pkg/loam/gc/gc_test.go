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
package gc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loam-lang/loam/pkg/loam/heap"
	"github.com/loam-lang/loam/pkg/loam/values"
)

func TestCollectReclaimsUnreachableCellsAndKeepsRootsReadable(t *testing.T) {
	from := heap.NewMutableHeap()

	root := values.NewList(from, []heap.Value{heap.NewInt(1), heap.NewInt(2)})

	// Garbage: reachable from nothing the roots point at.
	values.NewList(from, []heap.Value{heap.NewInt(99)})
	values.NewList(from, []heap.Value{heap.NewInt(100)})

	to, newRoots, stats := Collect(from, []heap.Value{root})

	require.Len(t, newRoots, 1)
	assert.Equal(t, uint(1), stats.Copied, "only the live root's own cell should have been copied")
	assert.Equal(t, uint(2), stats.Garbage)

	ar := newRoots[0].GetARef()
	defer ar.Release()

	assert.Equal(t, "[1, 2]", ar.Get().ToRepr())
	assert.Len(t, to.Cells(), 1)
}

func TestCollectFollowsNestedReferences(t *testing.T) {
	from := heap.NewMutableHeap()

	inner := values.NewList(from, []heap.Value{heap.NewInt(7)})
	outer := values.NewList(from, []heap.Value{inner})

	to, newRoots, stats := Collect(from, []heap.Value{outer})

	assert.Equal(t, uint(2), stats.Copied, "both outer and the nested list it references must survive")
	assert.Equal(t, uint(0), stats.Garbage)
	assert.Len(t, to.Cells(), 2)

	ar := newRoots[0].GetARef()
	defer ar.Release()
	assert.Equal(t, "[[7]]", ar.Get().ToRepr())
}

func TestCollectOnEmptyRootsCollectsEverything(t *testing.T) {
	from := heap.NewMutableHeap()

	values.NewList(from, []heap.Value{heap.NewInt(1)})
	values.NewList(from, []heap.Value{heap.NewInt(2)})

	to, newRoots, stats := Collect(from, nil)

	assert.Empty(t, newRoots)
	assert.Equal(t, uint(0), stats.Copied)
	assert.Equal(t, uint(2), stats.Garbage)
	assert.Empty(t, to.Cells())
}
