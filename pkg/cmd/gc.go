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
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/loam-lang/loam/pkg/loam/gc"
	"github.com/loam-lang/loam/pkg/loam/heap"
	"github.com/loam-lang/loam/pkg/loam/values"
	"github.com/loam-lang/loam/pkg/util"
)

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Run the copying collector over a synthetic heap and report survivor/garbage counts.",
	Run: func(cmd *cobra.Command, args []string) {
		garbage := GetUint(cmd, "garbage")

		h := heap.NewMutableHeap()

		root := values.NewList(h, []heap.Value{heap.NewInt(1), heap.NewInt(2), heap.NewInt(3)})

		// Vary each throwaway list's length so the synthetic heap doesn't
		// collect into a suspiciously uniform shape.
		sizes := util.GenerateRandomUints(garbage, 8)
		for _, size := range sizes {
			cells := make([]heap.Value, size)
			for j := range cells {
				cells[j] = heap.NewInt(int32(j))
			}

			values.NewList(h, cells)
		}

		log.Debugf("collecting a heap of %d cells with 1 live root", len(h.Cells()))

		stats := util.NewPerfStats()

		to, newRoots, gcStats := gc.Collect(h, []heap.Value{root})

		stats.Log("gc.Collect")
		fmt.Printf("copied=%d garbage=%d\n", gcStats.Copied, gcStats.Garbage)

		ar := newRoots[0].GetARef()
		fmt.Printf("surviving root: %s\n", ar.Get().ToRepr())
		ar.Release()

		log.Debugf("to-space now holds %d cells", len(to.Cells()))
	},
}

func init() {
	gcCmd.Flags().Uint("garbage", 100, "number of throwaway list values to allocate before collecting")
	rootCmd.AddCommand(gcCmd)
}
