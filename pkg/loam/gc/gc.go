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

// Package gc implements the copying garbage collector: semispace
// compaction over a MutableHeap, run when the host signals a checkpoint
// between evaluation phases. It must never run while any StarlarkValue
// borrow is live.
package gc

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/loam-lang/loam/pkg/loam/heap"
)

// Stats summarises one collection pass: how many of the from-space heap's
// cells survived (were reachable from the root set) versus were garbage.
type Stats struct {
	Copied  uint
	Garbage uint
}

// walker implements heap.Walker, relocating every Value it is handed onto
// the to-space heap and recursing into the relocated cell's own outgoing
// fields exactly once.
type walker struct {
	to *heap.MutableHeap
}

func (w *walker) Walk(v heap.Value) heap.Value {
	relocated, already := v.BeginRelocate(w.to)
	if !already {
		heap.Walk(relocated, w)
	}

	return relocated
}

// Collect compacts from into a fresh MutableHeap reachable from roots,
// returning, in the same order as roots, each root's new location (roots
// itself is not modified). The from heap
// should be discarded by the caller afterwards; nothing reachable from
// roots is invalidated by doing so.
func Collect(from *heap.MutableHeap, roots []heap.Value) (*heap.MutableHeap, []heap.Value, Stats) {
	to := heap.NewMutableHeap()
	w := &walker{to: to}

	newRoots := make([]heap.Value, len(roots))
	for i, r := range roots {
		newRoots[i] = w.Walk(r)
	}

	cells := from.Cells()
	mark := bitset.New(uint(len(cells)))

	var copied uint

	for i, c := range cells {
		if heap.IsCopiedCell(c) {
			mark.Set(uint(i))
			copied++
		}
	}

	return to, newRoots, Stats{Copied: copied, Garbage: uint(len(cells)) - copied}
}
