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
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/loam-lang/loam/pkg/util/termio"
)

var globalsCmd = &cobra.Command{
	Use:   "globals",
	Short: "List the names bound in the standard library Globals.",
	Run: func(cmd *cobra.Command, args []string) {
		g := standardGlobals()

		log.Debugf("standard globals built on heap %p", g.Heap())

		names := g.Names()
		table := termio.NewFormattedTable(2, uint(len(names)))

		for row, name := range names {
			v, _ := g.Get(name)

			ar := v.GetARef()
			table.SetRow(uint(row), termio.NewText(name), termio.NewText(ar.Get().ToRepr()))
			ar.Release()
		}

		table.Sort(0, termio.NewTableSorter().SortColumn(0))
		table.Print(false)
	},
}

func init() {
	rootCmd.AddCommand(globalsCmd)
}
