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
package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetNameAfterEnterDefResolvesLocalByPosition covers Testable Property
// 7: get_name(x) after enter_def(params=[...x...]) returns Local(i) with i
// matching x's declared position.
func TestGetNameAfterEnterDefResolvesLocalByPosition(t *testing.T) {
	r := NewResolver()
	r.EnterModule(nil)
	r.EnterDef([]string{"a", "b", "x", "c"})

	got := r.GetName("x")

	assert.Equal(t, Binding{Kind: LocalBinding, Slot: 2}, got)

	used, mp, parent := r.ExitDef()
	assert.Equal(t, 4, used)
	assert.Empty(t, parent)
	assert.Equal(t, 2, mp["x"])
}

// TestUpvalueScenario is scenario S5: x defined in f's body, captured by
// nested g, must resolve to a local slot in f and thread a parent entry
// into g's scope.
func TestUpvalueScenario(t *testing.T) {
	r := NewResolver()
	r.EnterModule([]NameVisibility{{Name: "f", Visibility: Public}})

	r.EnterDef(nil) // def f():
	xSlot := r.Define("x")
	require.Equal(t, 0, xSlot)

	r.EnterDef(nil) // def g():
	binding := r.GetName("x")
	assert.Equal(t, LocalBinding, binding.Kind)

	gUsed, gMp, gParent := r.ExitDef()
	require.Len(t, gParent, 1)
	assert.Equal(t, xSlot, gParent[0].ParentSlot)
	assert.Equal(t, binding.Slot, gParent[0].ChildSlot)
	assert.Equal(t, gUsed, gParent[0].ChildSlot+1)
	assert.Contains(t, gMp, upvalueKey(1, xSlot))

	_, fMp, fParent := r.ExitDef()
	assert.Empty(t, fParent)
	assert.Equal(t, xSlot, fMp["x"])
}

func TestGetNameFallsBackToModuleWhenNoFunctionScopeBinds(t *testing.T) {
	r := NewResolver()
	r.EnterModule([]NameVisibility{
		{Name: "pub", Visibility: Public},
		{Name: "_priv", Visibility: Private},
	})
	r.EnterDef(nil)

	pub := r.GetName("pub")
	assert.Equal(t, Binding{Kind: ModuleBinding, Slot: 0}, pub)

	priv := r.GetName("_priv")
	assert.Equal(t, Binding{Kind: ModuleBinding, Slot: 1}, priv)
}

func TestDefineIsIdempotentWithinAScope(t *testing.T) {
	r := NewResolver()
	r.EnterModule(nil)
	r.EnterDef(nil)

	first := r.Define("y")
	second := r.Define("y")

	assert.Equal(t, first, second)
}

func TestComprehensionShadowsAndRestoresOuterBinding(t *testing.T) {
	r := NewResolver()
	r.EnterModule(nil)
	r.EnterDef(nil)

	outer := r.Define("v")

	r.EnterCompr()
	inner := r.AddCompr("v")
	assert.NotEqual(t, outer, inner)
	assert.Equal(t, Binding{Kind: LocalBinding, Slot: inner}, r.GetName("v"))

	r.ExitCompr()
	assert.Equal(t, Binding{Kind: LocalBinding, Slot: outer}, r.GetName("v"))
}

// TestGetNameReturnsThreadedSlotNotSourceNameRelookup guards against a
// regression where GetName re-read the innermost scope's mp under the
// captured variable's own source name -- a key never written for a
// threaded upvalue, since threadUpvalue only ever writes the synthetic
// upvalueKey. Defining "y" in g before capturing "x" from f forces x's
// true threaded slot in g to be nonzero, so the bug (silently returning
// slot 0) cannot hide behind a coincidental match.
func TestGetNameReturnsThreadedSlotNotSourceNameRelookup(t *testing.T) {
	r := NewResolver()
	r.EnterModule(nil)

	r.EnterDef(nil) // f
	xSlot := r.Define("x")
	require.Equal(t, 0, xSlot)

	r.EnterDef(nil) // g
	ySlot := r.Define("y")
	require.Equal(t, 0, ySlot)

	binding := r.GetName("x")
	assert.Equal(t, LocalBinding, binding.Kind)
	assert.NotEqual(t, ySlot, binding.Slot, "x's threaded slot must not collide with y's")

	_, gMp, gParent := r.ExitDef()
	require.Len(t, gParent, 1)
	assert.Equal(t, gParent[0].ChildSlot, binding.Slot)
	assert.Equal(t, ySlot, gMp["y"], "y's own binding must be untouched by threading x in")

	r.ExitDef()
}

func TestDeepNestingThreadsUpvalueThroughEveryIntermediateScope(t *testing.T) {
	r := NewResolver()
	r.EnterModule(nil)

	r.EnterDef(nil) // f
	xSlot := r.Define("x")

	r.EnterDef(nil) // g (intermediate, does not itself reference x)
	r.EnterDef(nil) // h (references x)

	binding := r.GetName("x")
	assert.Equal(t, LocalBinding, binding.Kind)

	_, _, hParent := r.ExitDef()
	require.Len(t, hParent, 1)
	assert.Equal(t, hParent[0].ChildSlot, binding.Slot, "GetName must return the slot actually threaded into h, not a stale relookup")

	_, _, gParent := r.ExitDef()
	require.Len(t, gParent, 1, "g must also carry a threaded upvalue even though it never references x directly")
	assert.Equal(t, xSlot, gParent[0].ParentSlot)
	assert.Equal(t, gParent[0].ChildSlot, hParent[0].ParentSlot)

	_, _, fParent := r.ExitDef()
	assert.Empty(t, fParent)
}
