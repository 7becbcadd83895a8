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

import "github.com/loam-lang/loam/pkg/loam/heap"

// AsString recovers the raw Go string from a Value holding a Str cell,
// regardless of which heap allocated it.
func AsString(v heap.Value) (string, bool) {
	ar := v.GetARef()
	defer ar.Release()

	s, ok := ar.Get().(heap.StringLike)
	if !ok {
		return "", false
	}

	return s.StringValue(), true
}
