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
	"github.com/loam-lang/loam/pkg/loam/heap"
	"github.com/loam-lang/loam/pkg/loam/loamerr"
)

// ParametersParser is the callee-side view of a Collector's finished slot
// array. A function body and its ParameterSpec are compiled together, so
// reading past the end of the slot array indicates a compiler bug rather
// than a normal runtime condition, and panics instead of returning an
// error.
type ParametersParser struct {
	spec  *ParameterSpec
	slots []heap.Value
	pos   int
}

// NewParametersParser wraps a Collector's finished slot array for
// sequential reading in declared parameter order.
func NewParametersParser(spec *ParameterSpec, slots []heap.Value) *ParametersParser {
	return &ParametersParser{spec: spec, slots: slots}
}

func (p *ParametersParser) advance(name string) heap.Value {
	if p.pos >= len(p.slots) {
		panic("parameter parser overrun: callee body and ParameterSpec are out of sync for " + name)
	}

	v := p.slots[p.pos]
	p.pos++

	return v
}

// Next reads the next slot. Use for Required and Defaulted parameters,
// which Collector.Done guarantees are always assigned by the time a
// ParametersParser is handed the slot array.
func (p *ParametersParser) Next(name string) heap.Value {
	return p.advance(name)
}

// NextOpt reads the next slot, returning ok=false if it is an unassigned
// Optional parameter.
func (p *ParametersParser) NextOpt(name string) (heap.Value, bool) {
	v := p.advance(name)
	if v.IsUnassigned() {
		return heap.Value{}, false
	}

	return v, true
}

// NextInt reads and unpacks the next slot as an int32.
func (p *ParametersParser) NextInt(name string) (int32, error) {
	v := p.advance(name)

	n, ok := v.Int()
	if !ok {
		return 0, p.typeError(name, "int")
	}

	return n, nil
}

// NextOptInt reads the next slot as an optional int32.
func (p *ParametersParser) NextOptInt(name string) (int32, bool, error) {
	v := p.advance(name)
	if v.IsUnassigned() {
		return 0, false, nil
	}

	n, ok := v.Int()
	if !ok {
		return 0, false, p.typeError(name, "int")
	}

	return n, true, nil
}

// NextBool reads and unpacks the next slot as a bool.
func (p *ParametersParser) NextBool(name string) (bool, error) {
	v := p.advance(name)

	b, ok := v.Bool()
	if !ok {
		return false, p.typeError(name, "bool")
	}

	return b, nil
}

// NextString reads and unpacks the next slot as a string.
func (p *ParametersParser) NextString(name string) (string, error) {
	v := p.advance(name)

	s, ok := stringOf(v)
	if !ok {
		return "", p.typeError(name, "string")
	}

	return s, nil
}

func (p *ParametersParser) typeError(name, want string) *loamerr.Error {
	return loamerr.WithSignature(
		loamerr.New(loamerr.IncorrectParameterType, "parameter %q: expected %s", name, want),
		p.spec.Signature(),
	)
}
