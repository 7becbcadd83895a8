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
package environment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loam-lang/loam/pkg/loam/heap"
	"github.com/loam-lang/loam/pkg/loam/values"
)

func TestGlobalsBuilderSetAndGet(t *testing.T) {
	h := heap.NewFrozenHeap()
	b := NewGlobalsBuilder(h)
	b.Set("answer", heap.NewInt(42))

	g := b.Build()

	v, ok := g.Get("answer")
	require.True(t, ok)
	n, ok := v.Int()
	require.True(t, ok)
	assert.Equal(t, int32(42), n)

	_, ok = g.Get("missing")
	assert.False(t, ok)
}

// TestStructBuildScenario covers scenario S6: ip = struct(host="lh",
// port=80); frozen; ip.port -> 80.
func TestStructBuildScenario(t *testing.T) {
	h := heap.NewFrozenHeap()
	b := NewGlobalsBuilder(h)

	b.Struct_("ip", func(sb *GlobalsBuilder) {
		sb.SetStr("host", "lh")
		sb.Set("port", heap.NewInt(80))
	})

	g := b.Build()

	ipVal, ok := g.Get("ip")
	require.True(t, ok)

	ar := ipVal.GetARef()
	defer ar.Release()

	s, ok := ar.Get().(*values.Struct)
	require.True(t, ok)

	port, err := s.GetAttr("port")
	require.NoError(t, err)

	n, ok := port.Int()
	require.True(t, ok)
	assert.Equal(t, int32(80), n)

	_, err = s.GetAttr("missing")
	assert.Error(t, err)
}

func TestStructDoesNotNest(t *testing.T) {
	h := heap.NewFrozenHeap()
	b := NewGlobalsBuilder(h)

	assert.Panics(t, func() {
		b.Struct_("outer", func(sb *GlobalsBuilder) {
			sb.Struct_("inner", func(*GlobalsBuilder) {})
		})
	})
}

func TestGlobalsExtendedByLayersAndShadows(t *testing.T) {
	h := heap.NewFrozenHeap()
	base := NewGlobalsBuilder(h)
	base.Set("a", heap.NewInt(1))
	g := base.Build()

	extended := g.ExtendedBy(func(b *GlobalsBuilder) {
		b.Set("b", heap.NewInt(2))
		b.Set("a", heap.NewInt(99))
	})

	a, ok := extended.Get("a")
	require.True(t, ok)
	n, _ := a.Int()
	assert.Equal(t, int32(99), n)

	bVal, ok := extended.Get("b")
	require.True(t, ok)
	n, _ = bVal.Int()
	assert.Equal(t, int32(2), n)

	// original Globals is untouched
	_, ok = g.Get("b")
	assert.False(t, ok)
}

func TestGlobalsStaticMembersBuildsOnce(t *testing.T) {
	h := heap.NewFrozenHeap()
	calls := 0

	gs := NewGlobalsStatic(h, func(b *GlobalsBuilder) {
		calls++
		b.Set("x", heap.NewInt(1))
	})

	first := gs.Members()
	second := gs.Members()

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestGlobalsStaticFunctionExtractsSingleMember(t *testing.T) {
	h := heap.NewFrozenHeap()
	gs := NewGlobalsStatic(h, nil)

	v := gs.Function(func(b *GlobalsBuilder) {
		b.Set("f", heap.NewInt(7))
	})

	n, ok := v.Int()
	require.True(t, ok)
	assert.Equal(t, int32(7), n)
}

func TestGlobalsStaticFunctionPanicsWithoutExactlyOneMember(t *testing.T) {
	h := heap.NewFrozenHeap()
	gs := NewGlobalsStatic(h, nil)

	assert.Panics(t, func() {
		gs.Function(func(b *GlobalsBuilder) {
			b.Set("f", heap.NewInt(1))
			b.Set("g", heap.NewInt(2))
		})
	})

	assert.Panics(t, func() {
		gs.Function(func(*GlobalsBuilder) {})
	})
}
