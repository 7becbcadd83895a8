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
)

func TestParametersParserReadsInDeclaredOrder(t *testing.T) {
	spec := NewParameterSpec("f", []Param{
		{Name: "a", Kind: Required},
		{Name: "b", Kind: Optional},
		{Name: "c", Kind: Required},
	})

	h := heap.NewMutableHeap()
	slots := []heap.Value{heap.NewInt(1), heap.Unassigned, h.AllocStr("three")}

	p := NewParametersParser(spec, slots)

	n, err := p.NextInt("a")
	require.NoError(t, err)
	assert.Equal(t, int32(1), n)

	v, ok := p.NextOpt("b")
	assert.False(t, ok)
	assert.Equal(t, heap.Value{}, v)

	s, err := p.NextString("c")
	require.NoError(t, err)
	assert.Equal(t, "three", s)
}

func TestParametersParserNextIntTypeMismatchErrors(t *testing.T) {
	spec := NewParameterSpec("f", []Param{{Name: "a", Kind: Required}})
	h := heap.NewMutableHeap()

	p := NewParametersParser(spec, []heap.Value{h.AllocStr("not an int")})

	_, err := p.NextInt("a")
	require.Error(t, err)
	assert.Equal(t, "IncorrectParameterType", loamErrKindString(t, err))
}

func TestParametersParserNextOptIntDistinguishesUnassignedFromZero(t *testing.T) {
	spec := NewParameterSpec("f", []Param{{Name: "a", Kind: Optional}})

	p := NewParametersParser(spec, []heap.Value{heap.Unassigned})

	n, ok, err := p.NextOptInt("a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int32(0), n)

	p2 := NewParametersParser(spec, []heap.Value{heap.NewInt(0)})

	n2, ok2, err2 := p2.NextOptInt("a")
	require.NoError(t, err2)
	assert.True(t, ok2)
	assert.Equal(t, int32(0), n2)
}

func TestParametersParserOverrunPanics(t *testing.T) {
	spec := NewParameterSpec("f", []Param{{Name: "a", Kind: Required}})
	p := NewParametersParser(spec, []heap.Value{heap.NewInt(1)})

	p.Next("a")

	assert.Panics(t, func() {
		p.Next("b")
	})
}

func loamErrKindString(t *testing.T, err error) string {
	t.Helper()

	return kindOf(t, err).String()
}
