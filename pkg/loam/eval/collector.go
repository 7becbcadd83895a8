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
	"sort"
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/loam-lang/loam/pkg/loam/heap"
	"github.com/loam-lang/loam/pkg/loam/loamerr"
)

// KWArg is one name/value pair collected into the **kwargs splat buffer.
type KWArg struct {
	Name string
	Val  heap.Value
}

// ArgsFactory builds the tuple/dict values a Collector fills *args/**kwargs
// slots with. It is injected rather than imported directly so this
// package, which implements the call protocol, does not need to depend on
// concrete value types -- the host wires a real implementation (backed by
// pkg/loam/values) together at startup.
type ArgsFactory interface {
	NewTuple(h *heap.MutableHeap, elems []heap.Value) heap.Value
	NewDict(h *heap.MutableHeap, pairs []KWArg) heap.Value
}

// DictLike is implemented by dict-shaped values so Collector.Kwargs can
// walk a **kwargs splat without depending on a concrete Dict type.
type DictLike interface {
	heap.StarlarkValue
	ForEachPair(fn func(key, val heap.Value) error) error
}

// Collector binds one call's actual arguments into a slot array shaped by
// a ParameterSpec. It accumulates at most one error; subsequent input is
// still consumed (per §7) so callers don't need to special-case
// short-circuiting.
type Collector struct {
	spec    *ParameterSpec
	heap    *heap.MutableHeap
	factory ArgsFactory

	slots []heap.Value
	bound *bitset.BitSet

	argsBuf   []heap.Value
	kwargsBuf []KWArg

	onlyPositional bool
	nextPosition   int

	err *loamerr.Error
}

// NewCollector creates a Collector for one call against spec. h is the
// heap new *args/**kwargs container values are allocated on.
func NewCollector(spec *ParameterSpec, h *heap.MutableHeap, factory ArgsFactory) *Collector {
	n := spec.Len()
	slots := make([]heap.Value, n)

	for i := range slots {
		slots[i] = heap.Unassigned
	}

	return &Collector{
		spec:           spec,
		heap:           h,
		factory:        factory,
		slots:          slots,
		bound:          bitset.New(uint(n)),
		onlyPositional: true,
	}
}

// Positional binds the next positional argument, per §4.I's positional
// rule: fill the next slot within positionalCount unless already bound,
// else append to the *args buffer.
func (c *Collector) Positional(v heap.Value) {
	if c.err != nil {
		return
	}

	if c.nextPosition >= c.spec.positionalCount {
		c.argsBuf = append(c.argsBuf, v)
		return
	}

	idx := c.nextPosition
	c.nextPosition++

	// Fast path: while every argument so far has been positional and in
	// order, slots fill strictly left to right and can never already be
	// bound, so the bitset check is skippable.
	if !c.onlyPositional && c.bound.Test(uint(idx)) {
		c.err = loamerr.WithSignature(
			loamerr.New(loamerr.RepeatedParameter, "parameter %q bound twice", c.spec.params[idx].displayName()),
			c.spec.Signature(),
		)

		return
	}

	c.slots[idx] = v
	c.bound.Set(uint(idx))
}

// Named binds a keyword argument. A name matching a declared parameter
// fills that slot (error if already bound); otherwise it is buffered for
// **kwargs, or rejected at Done if the spec declares no KWargs parameter.
func (c *Collector) Named(name string, v heap.Value) {
	if c.err != nil {
		return
	}

	c.onlyPositional = false

	idx, ok := c.spec.slotOf(name)
	if !ok {
		c.kwargsBuf = append(c.kwargsBuf, KWArg{Name: name, Val: v})
		return
	}

	if c.bound.Test(uint(idx)) {
		c.err = loamerr.WithSignature(
			loamerr.New(loamerr.RepeatedParameter, "parameter %q bound twice", name),
			c.spec.Signature(),
		)

		return
	}

	c.slots[idx] = v
	c.bound.Set(uint(idx))
}

// Args unpacks a *args splat value, routing each element through
// Positional. v must support iteration.
func (c *Collector) Args(v heap.Value) {
	if c.err != nil {
		return
	}

	elems, err := iterateValue(v)
	if err != nil {
		c.err = loamerr.WithSignature(
			loamerr.New(loamerr.ArgsNotIterable, "*args value is not iterable"),
			c.spec.Signature(),
		)

		return
	}

	for _, e := range elems {
		c.Positional(e)
	}
}

// Kwargs unpacks a **kwargs splat value, routing each pair through Named.
// v must be dict-shaped with string keys.
func (c *Collector) Kwargs(v heap.Value) {
	if c.err != nil {
		return
	}

	ar := v.GetARef()
	defer ar.Release()

	dl, ok := ar.Get().(DictLike)
	if !ok {
		c.err = loamerr.WithSignature(
			loamerr.New(loamerr.KwargsNotDict, "**kwargs value is not a dict"),
			c.spec.Signature(),
		)

		return
	}

	_ = dl.ForEachPair(func(key, val heap.Value) error {
		name, isStr := stringOf(key)
		if !isStr {
			if c.err == nil {
				c.err = loamerr.WithSignature(
					loamerr.New(loamerr.ArgsKeyNotString, "**kwargs key is not a string"),
					c.spec.Signature(),
				)
			}

			return nil
		}

		c.Named(name, val)

		return nil
	})
}

// Done finalizes the collection, filling defaults and *args/**kwargs slots
// and surfacing the first recorded error, if any.
func (c *Collector) Done() ([]heap.Value, error) {
	if c.err != nil {
		return nil, c.err
	}

	for i, p := range c.spec.params {
		switch p.Kind {
		case Args:
			c.slots[i] = c.factory.NewTuple(c.heap, c.argsBuf)
		case KWargs:
			c.slots[i] = c.factory.NewDict(c.heap, c.kwargsBuf)
		case Required:
			if !c.bound.Test(uint(i)) {
				return nil, missingParameterError(c.spec, p.displayName())
			}
		case Defaulted:
			if !c.bound.Test(uint(i)) {
				c.slots[i] = p.Default
			}
		case Optional:
			// Left Unassigned if the caller did not supply it.
		}
	}

	if len(c.argsBuf) > 0 && !c.spec.hasArgsSlot() {
		return nil, loamerr.WithSignature(
			loamerr.New(loamerr.ExtraPositional, "too many positional arguments"),
			c.spec.Signature(),
		)
	}

	if len(c.kwargsBuf) > 0 && !c.spec.hasKwargsSlot() {
		names := make([]string, len(c.kwargsBuf))
		for i, kw := range c.kwargsBuf {
			names[i] = kw.Name
		}

		sort.Strings(names)

		return nil, loamerr.WithSignature(
			loamerr.New(loamerr.ExtraNamed, "unexpected named argument(s): %s", strings.Join(names, ", ")),
			c.spec.Signature(),
		)
	}

	return c.slots, nil
}

func stringOf(v heap.Value) (string, bool) {
	ar := v.GetARef()
	defer ar.Release()

	s, ok := ar.Get().(heap.StringLike)
	if !ok {
		return "", false
	}

	return s.StringValue(), true
}

// iterateValue drains v's Iterable capability into a slice.
func iterateValue(v heap.Value) ([]heap.Value, error) {
	ar := v.GetARef()
	defer ar.Release()

	it, ok := ar.Get().(heap.Iterable)
	if !ok {
		return nil, loamerr.New(loamerr.ArgsNotIterable, "value is not iterable")
	}

	cursor, err := it.Iterate()
	if err != nil {
		return nil, err
	}

	defer cursor.Done()

	var out []heap.Value

	for {
		v, ok := cursor.Next()
		if !ok {
			break
		}

		out = append(out, v)
	}

	return out, nil
}
