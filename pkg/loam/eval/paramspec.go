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

// Package eval implements the call protocol: a ParameterSpec compiled once
// per function, the argument Collector that binds a call's actual
// arguments into a slot array, and the callee-side ParametersParser that
// reads that slot array back out.
package eval

import (
	"strings"

	"github.com/loam-lang/loam/pkg/loam/heap"
	"github.com/loam-lang/loam/pkg/loam/loamerr"
	"github.com/loam-lang/loam/pkg/util/collection/smallmap"
)

// ParamKind classifies how a single declared parameter is filled.
type ParamKind uint8

const (
	// Required must be bound by the caller, positionally or by name.
	Required ParamKind = iota
	// Optional may be left Unassigned.
	Optional
	// Defaulted is filled with Default if the caller does not bind it.
	Defaulted
	// Args collects excess positional arguments into a tuple (*args).
	Args
	// KWargs collects excess named arguments into a dict (**kwargs).
	KWargs
)

// Param is one declared parameter.
type Param struct {
	// Name is the declared name, including a leading "$" for
	// position-only parameters; Signature strips it for display.
	Name    string
	Kind    ParamKind
	Default heap.Value
}

func (p Param) displayName() string {
	return strings.TrimPrefix(p.Name, "$")
}

func (p Param) positionOnly() bool {
	return strings.HasPrefix(p.Name, "$")
}

// paramName is the Key implementation used to index ParameterSpec's
// name->position SmallMap.
type paramName string

func (n paramName) Equals(other paramName) bool { return n == other }

func (n paramName) Hash() uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(n); i++ {
		h ^= uint32(n[i])
		h *= 16777619
	}

	return h
}

// ParameterSpec is a function's parameter declaration, compiled once and
// shared by every call.
type ParameterSpec struct {
	funcName string
	params   []Param
	byName   *smallmap.SmallMap[paramName, int]

	// positionalCount is how many leading names may be filled
	// positionally: the index of the first Args or KWargs parameter, or
	// every parameter if there is neither.
	positionalCount int

	argsSlot   int // -1 if the spec declares no *args
	kwargsSlot int // -1 if the spec declares no **kwargs
}

// NewParameterSpec compiles params into a ParameterSpec for a function
// named funcName (used in error messages and signature rendering).
func NewParameterSpec(funcName string, params []Param) *ParameterSpec {
	spec := &ParameterSpec{
		funcName:        funcName,
		params:          params,
		byName:          smallmap.New[paramName, int](),
		argsSlot:        -1,
		kwargsSlot:      -1,
		positionalCount: len(params),
	}

	for i, p := range params {
		spec.byName.Insert(paramName(p.displayName()), i)

		switch p.Kind {
		case Args:
			spec.argsSlot = i
		case KWargs:
			spec.kwargsSlot = i
		default:
			continue
		}

		// The first *args or **kwargs closes positional filling: every
		// name from here on is keyword-only.
		if spec.positionalCount == len(params) {
			spec.positionalCount = i
		}
	}

	return spec
}

// Len returns the number of declared parameters (the slot array's minimum
// length).
func (s *ParameterSpec) Len() int {
	return len(s.params)
}

// FuncName returns the function's name, used in error messages.
func (s *ParameterSpec) FuncName() string {
	return s.funcName
}

// Signature renders "name(a, b = ..., *args, **kwargs)" with "$" prefixes
// stripped from position-only parameter names.
func (s *ParameterSpec) Signature() string {
	var b strings.Builder

	b.WriteString(s.funcName)
	b.WriteString("(")

	for i, p := range s.params {
		if i > 0 {
			b.WriteString(", ")
		}

		switch p.Kind {
		case Args:
			b.WriteString("*" + p.displayName())
		case KWargs:
			b.WriteString("**" + p.displayName())
		case Defaulted:
			b.WriteString(p.displayName() + " = ...")
		default:
			b.WriteString(p.displayName())
		}
	}

	b.WriteString(")")

	return b.String()
}

// FreezeDefaults freezes every Defaulted parameter's default value through
// f, in place. Default values are themselves values and so must be frozen
// alongside the rest of a module when it is frozen.
func (s *ParameterSpec) FreezeDefaults(f heap.Freezer) error {
	for i := range s.params {
		if s.params[i].Kind != Defaulted {
			continue
		}

		frozen, err := f.FreezeValue(s.params[i].Default)
		if err != nil {
			return err
		}

		s.params[i].Default = frozen
	}

	return nil
}

// slotOf returns the declared slot for name, if any.
func (s *ParameterSpec) slotOf(name string) (int, bool) {
	return s.byName.Get(paramName(name))
}

func (s *ParameterSpec) hasArgsSlot() bool {
	return s.argsSlot >= 0
}

func (s *ParameterSpec) hasKwargsSlot() bool {
	return s.kwargsSlot >= 0
}

func missingParameterError(spec *ParameterSpec, name string) *loamerr.Error {
	return loamerr.WithSignature(
		loamerr.New(loamerr.MissingParameter, "missing required parameter %q", name),
		spec.Signature(),
	)
}
