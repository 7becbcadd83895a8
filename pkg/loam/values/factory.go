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
	"github.com/loam-lang/loam/pkg/loam/eval"
	"github.com/loam-lang/loam/pkg/loam/heap"
)

// Factory implements eval.ArgsFactory using this package's concrete Tuple
// and Dict types, so the call protocol's *args/**kwargs collection can
// build real containers without package eval needing to import package
// values back.
type Factory struct{}

// NewTuple builds a Tuple from elems.
func (Factory) NewTuple(h *heap.MutableHeap, elems []heap.Value) heap.Value {
	return NewTuple(h, elems)
}

// NewDict builds a Dict from pairs, where each key is interned as a Str
// value on h.
func (Factory) NewDict(h *heap.MutableHeap, pairs []eval.KWArg) heap.Value {
	dv := NewDict(h)

	ar := dv.GetARef()
	defer ar.Release()

	d := ar.Get().(*Dict)

	for _, kw := range pairs {
		_ = d.Set(h.AllocStr(kw.Name), kw.Val)
	}

	return dv
}
