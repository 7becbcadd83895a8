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
package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loam-lang/loam/pkg/loam/heap"
	"github.com/loam-lang/loam/pkg/loam/loamerr"
)

// TestFunctionCallCollectsThenInvokesBody covers Scenario S3: a call binds
// its actual arguments into a slot array via the Collector, then hands that
// array to the callee body through a ParametersParser.
func TestFunctionCallCollectsThenInvokesBody(t *testing.T) {
	spec := NewParameterSpec("add", []Param{{Name: "a", Kind: Required}, {Name: "b", Kind: Required}})

	fn := NewFunction(spec, func(h *heap.MutableHeap, p *ParametersParser) (heap.Value, error) {
		a, err := p.NextInt("a")
		if err != nil {
			return heap.Value{}, err
		}

		b, err := p.NextInt("b")
		if err != nil {
			return heap.Value{}, err
		}

		return heap.NewInt(a + b), nil
	})

	h := heap.NewMutableHeap()

	result, err := fn.Call(h, fakeFactory{}, []heap.Value{heap.NewInt(2), heap.NewInt(3)}, nil, nil, nil)
	require.NoError(t, err)

	n, ok := result.Int()
	require.True(t, ok)
	assert.Equal(t, int32(5), n)
}

func TestFunctionCallPropagatesCollectorErrors(t *testing.T) {
	spec := NewParameterSpec("f", []Param{{Name: "a", Kind: Required}})

	fn := NewFunction(spec, func(h *heap.MutableHeap, p *ParametersParser) (heap.Value, error) {
		t.Fatal("body must not run when argument collection fails")
		return heap.Value{}, nil
	})

	h := heap.NewMutableHeap()

	_, err := fn.Call(h, fakeFactory{}, nil, nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, loamerr.MissingParameter, kindOf(t, err))
}

func TestFunctionReprAndEquality(t *testing.T) {
	spec := NewParameterSpec("greet", nil)
	fn := NewFunction(spec, func(h *heap.MutableHeap, p *ParametersParser) (heap.Value, error) {
		return heap.None, nil
	})

	assert.Equal(t, "<function greet>", fn.ToRepr())
	assert.True(t, fn.Equals(fn))
	assert.False(t, fn.Equals(NewFunction(spec, nil)))
}

func TestBoundFunctionPrependsReceiver(t *testing.T) {
	spec := NewParameterSpec("get_x", []Param{{Name: "self", Kind: Required}})

	fn := NewFunction(spec, func(h *heap.MutableHeap, p *ParametersParser) (heap.Value, error) {
		return p.Next("self"), nil
	})

	receiver := heap.NewInt(42)
	bound := NewBoundFunction(fn, receiver)

	h := heap.NewMutableHeap()

	result, err := bound.Call(h, fakeFactory{}, nil, nil, nil, nil)
	require.NoError(t, err)

	n, _ := result.Int()
	assert.Equal(t, int32(42), n)
	assert.Equal(t, "<bound method get_x>", bound.ToRepr())
}
