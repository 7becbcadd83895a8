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
package cmd

import (
	"runtime"

	"github.com/loam-lang/loam/pkg/loam/environment"
	"github.com/loam-lang/loam/pkg/loam/heap"
)

// standardGlobals builds the small, fixed standard library this CLI
// demonstrates: a "host" struct grouping build/platform facts, available
// to any evaluation a demo host layers its own extensions on top of via
// Globals.ExtendedBy.
func standardGlobals() *environment.Globals {
	h := heap.NewFrozenHeap()
	b := environment.NewGlobalsBuilder(h)

	b.Struct_("host", func(sb *environment.GlobalsBuilder) {
		sb.SetStr("os", runtime.GOOS)
		sb.SetStr("arch", runtime.GOARCH)
		sb.Set("num_cpu", heap.NewInt(int32(runtime.NumCPU())))
	})

	b.Set("none", heap.None)
	b.Set("True", heap.NewBool(true))
	b.Set("False", heap.NewBool(false))

	return b.Build()
}
