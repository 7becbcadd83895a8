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
package heap

import (
	"fmt"
	"strconv"
)

// noneValue, boolValue, intValue and strValue are the StarlarkValue views
// over immediates and Str cells. Per invariant 5 these never require
// allocation; wrapping them only happens transiently when a capability
// method is needed.

type noneValue struct{}

func (noneValue) TypeName() string { return "NoneType" }
func (noneValue) ToBool() bool     { return false }
func (noneValue) ToRepr() string   { return "None" }
func (noneValue) ToJSON() (string, error) {
	return "null", nil
}
func (noneValue) Equals(other StarlarkValue) bool {
	_, ok := other.(noneValue)
	return ok
}
func (noneValue) IsMutable() bool { return false }

type boolValue struct {
	b bool
}

func (v boolValue) TypeName() string { return "bool" }
func (v boolValue) ToBool() bool     { return v.b }
func (v boolValue) ToRepr() string {
	if v.b {
		return "True"
	}

	return "False"
}
func (v boolValue) ToJSON() (string, error) {
	return strconv.FormatBool(v.b), nil
}
func (v boolValue) Equals(other StarlarkValue) bool {
	o, ok := other.(boolValue)
	return ok && o.b == v.b
}
func (boolValue) IsMutable() bool { return false }
func (v boolValue) GetHash() (uint32, error) {
	if v.b {
		return 1, nil
	}

	return 0, nil
}
func (v boolValue) Compare(other StarlarkValue) (int, error) {
	o, ok := other.(boolValue)
	if !ok {
		return 0, typeMismatch("bool", other)
	}

	return boolCmp(v.b, o.b), nil
}

func boolCmp(a, b bool) int {
	if a == b {
		return 0
	}

	if !a {
		return -1
	}

	return 1
}

type intValue struct {
	n int32
}

func (v intValue) TypeName() string { return "int" }
func (v intValue) ToBool() bool     { return v.n != 0 }
func (v intValue) ToRepr() string   { return strconv.FormatInt(int64(v.n), 10) }
func (v intValue) ToJSON() (string, error) {
	return strconv.FormatInt(int64(v.n), 10), nil
}
func (v intValue) Equals(other StarlarkValue) bool {
	o, ok := other.(intValue)
	return ok && o.n == v.n
}
func (intValue) IsMutable() bool { return false }
func (v intValue) GetHash() (uint32, error) {
	return uint32(v.n), nil
}
func (v intValue) Compare(other StarlarkValue) (int, error) {
	o, ok := other.(intValue)
	if !ok {
		return 0, typeMismatch("int", other)
	}

	switch {
	case v.n < o.n:
		return -1, nil
	case v.n > o.n:
		return 1, nil
	default:
		return 0, nil
	}
}

// strValue is the StarlarkValue view over a Str cell, shareable between
// heaps.
type strValue string

func (strValue) TypeName() string    { return "string" }
func (v strValue) ToBool() bool      { return len(v) > 0 }
func (v strValue) ToRepr() string    { return strconv.Quote(string(v)) }
func (v strValue) ToJSON() (string, error) {
	return strconv.Quote(string(v)), nil
}
func (v strValue) Equals(other StarlarkValue) bool {
	o, ok := other.(strValue)
	return ok && o == v
}
func (strValue) IsMutable() bool { return false }
func (v strValue) GetHash() (uint32, error) {
	var h uint32 = 2166136261
	for i := 0; i < len(v); i++ {
		h ^= uint32(v[i])
		h *= 16777619
	}

	return h, nil
}
func (v strValue) Compare(other StarlarkValue) (int, error) {
	o, ok := other.(strValue)
	if !ok {
		return 0, typeMismatch("string", other)
	}

	switch {
	case v < o:
		return -1, nil
	case v > o:
		return 1, nil
	default:
		return 0, nil
	}
}
func (v strValue) Length() (int, error) {
	return len(v), nil
}

// StringValue implements StringLike, letting callers recover the raw Go
// string from a Value without caring whether it lives on a frozen or
// mutable heap.
func (v strValue) StringValue() string {
	return string(v)
}

// StringLike is implemented by the Str storage variant's capability view.
type StringLike interface {
	StarlarkValue
	StringValue() string
}

func typeMismatch(want string, got StarlarkValue) error {
	return fmt.Errorf("cannot compare %s with %s", want, got.TypeName())
}
