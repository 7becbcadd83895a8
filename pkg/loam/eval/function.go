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

import "github.com/loam-lang/loam/pkg/loam/heap"

// Body is the callee-supplied evaluation hook a Function invokes once its
// arguments have been collected into a slot array. The tree-walking
// interpreter that produces these is an external collaborator -- this
// package only owns the parameter spec and the slot array it is called
// with.
type Body func(h *heap.MutableHeap, parser *ParametersParser) (heap.Value, error)

// Function is a compiled function template: a ParameterSpec plus an
// opaque body reference. It has no outgoing value references of its own
// beyond the spec's defaults, so it freezes to a Simple value (a "compiled
// function template" is immutable once built).
type Function struct {
	spec *ParameterSpec
	body Body
}

// NewFunction builds a Function from a compiled spec and its body.
func NewFunction(spec *ParameterSpec, body Body) *Function {
	return &Function{spec: spec, body: body}
}

func (f *Function) TypeName() string { return "function" }
func (f *Function) ToBool() bool     { return true }
func (f *Function) ToRepr() string   { return "<function " + f.spec.FuncName() + ">" }

func (f *Function) ToJSON() (string, error) {
	return "", notJSONable(f.TypeName())
}

func (f *Function) Equals(other heap.StarlarkValue) bool {
	o, ok := other.(*Function)
	return ok && o == f
}

func (f *Function) IsMutable() bool { return false }

// Spec returns the function's compiled parameter spec.
func (f *Function) Spec() *ParameterSpec {
	return f.spec
}

// Call collects args/kwargs against f's spec and invokes its body.
func (f *Function) Call(h *heap.MutableHeap, factory ArgsFactory, positional, argsSplat []heap.Value, named []KWArg, kwargsSplat *heap.Value) (heap.Value, error) {
	c := NewCollector(f.spec, h, factory)

	for _, v := range positional {
		c.Positional(v)
	}

	for _, kw := range named {
		c.Named(kw.Name, kw.Val)
	}

	for _, v := range argsSplat {
		c.Args(v)
	}

	if kwargsSplat != nil {
		c.Kwargs(*kwargsSplat)
	}

	slots, err := c.Done()
	if err != nil {
		return heap.Value{}, err
	}

	return f.body(h, NewParametersParser(f.spec, slots))
}

// Freeze freezes the spec's defaults and returns a Simple frozen value
// wrapping the same Function (its body closure is opaque to this package
// and carries no mutable Values of its own).
func (f *Function) Freeze(fz heap.Freezer) (heap.Value, error) {
	if err := f.spec.FreezeDefaults(fz); err != nil {
		return heap.Value{}, err
	}

	ref := fz.ReserveFrozen()
	ref.Fill(f)

	return ref.Value(), nil
}

// BoundFunction pairs a Function with a receiver value, for method-style
// calls (`obj.method(...)`). Calling it prepends the receiver to the
// positional arguments.
type BoundFunction struct {
	fn       *Function
	receiver heap.Value
}

// NewBoundFunction binds fn to receiver.
func NewBoundFunction(fn *Function, receiver heap.Value) *BoundFunction {
	return &BoundFunction{fn: fn, receiver: receiver}
}

func (b *BoundFunction) TypeName() string { return "bound_function" }
func (b *BoundFunction) ToBool() bool     { return true }
func (b *BoundFunction) ToRepr() string   { return "<bound method " + b.fn.spec.FuncName() + ">" }

func (b *BoundFunction) ToJSON() (string, error) {
	return "", notJSONable(b.TypeName())
}

func (b *BoundFunction) Equals(other heap.StarlarkValue) bool {
	o, ok := other.(*BoundFunction)
	return ok && o.fn == b.fn && o.receiver.PtrEq(b.receiver)
}

func (b *BoundFunction) IsMutable() bool { return false }

// Call prepends the bound receiver to positional and delegates to the
// underlying Function.
func (b *BoundFunction) Call(h *heap.MutableHeap, factory ArgsFactory, positional, argsSplat []heap.Value, named []KWArg, kwargsSplat *heap.Value) (heap.Value, error) {
	withReceiver := append([]heap.Value{b.receiver}, positional...)

	return b.fn.Call(h, factory, withReceiver, argsSplat, named, kwargsSplat)
}

func notJSONable(typeName string) error {
	return &jsonError{typeName: typeName}
}

type jsonError struct {
	typeName string
}

func (e *jsonError) Error() string {
	return "value of type " + e.typeName + " is not JSON-convertible"
}
