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

// Package freeze implements the depth-first, cycle-safe conversion of a
// mutable value graph into an immutable snapshot on a fresh FrozenHeap.
package freeze

import (
	"github.com/loam-lang/loam/pkg/loam/heap"
	"github.com/loam-lang/loam/pkg/loam/loamerr"
)

// Engine drives one freeze pass over a root value set. It implements
// heap.Freezer so concrete value types can call back into it while
// freezing their own contained fields, without package heap needing to
// import package freeze.
type Engine struct {
	target *heap.FrozenHeap
}

// New creates a freeze Engine that allocates every newly frozen value onto
// target.
func New(target *heap.FrozenHeap) *Engine {
	return &Engine{target: target}
}

// ReserveFrozen allocates an empty frozen entry, implementing
// heap.Freezer.
func (e *Engine) ReserveFrozen() heap.FrozenRef {
	return e.target.ReserveFrozen()
}

// FreezeValue recursively freezes v. Already-immediate or already-frozen
// values are returned unchanged; a value already visited by this engine is
// returned via its recorded Forward; a value currently mid-freeze on this
// call stack (a Blackhole) yields CyclicFreeze, since the language forbids
// cycles through mutable containers.
func (e *Engine) FreezeValue(v heap.Value) (heap.Value, error) {
	if heap.IsImmediateOrFrozen(v) {
		return v, nil
	}

	cls := v.Classify()

	switch {
	case cls.IsForward:
		return cls.Forward, nil
	case cls.IsBlackhole:
		return heap.Value{}, loamerr.New(loamerr.CyclicFreeze, "cycle detected while freezing value graph")
	case cls.IsStr:
		frozen := e.target.AllocStr(cls.Str)
		heap.SetForward(v, frozen)

		return frozen, nil
	case cls.IsThawSource:
		// Never mutated: already points at a frozen value, so freezing it
		// is just adopting that existing pointer.
		heap.SetForward(v, cls.ThawSource)

		return cls.ThawSource, nil
	}

	freezable, ok := cls.Obj.(heap.Freezable)
	if !ok {
		frozen := e.target.AllocSimple(cls.Obj)
		heap.SetForward(v, frozen)

		return frozen, nil
	}

	heap.SetBlackhole(v)

	frozen, err := freezable.Freeze(e)
	if err != nil {
		return heap.Value{}, err
	}

	heap.SetForward(v, frozen)

	return frozen, nil
}

// FreezeModule freezes every root (typically a module's exported names) in
// turn, returning the corresponding frozen values in the same order. Once
// it returns successfully, every still-live Value reachable from roots is
// either an immediate, a pointer into target, or resolves to one through a
// Forward -- the mutable heap they came from is then safely discardable.
func FreezeModule(roots []heap.Value, target *heap.FrozenHeap) ([]heap.Value, error) {
	engine := New(target)
	frozen := make([]heap.Value, len(roots))

	for i, root := range roots {
		fv, err := engine.FreezeValue(root)
		if err != nil {
			return nil, err
		}

		frozen[i] = fv
	}

	return frozen, nil
}
