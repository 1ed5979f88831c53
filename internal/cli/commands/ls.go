// Copyright 2024 LatentFS Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"fmt"
	"path"
	"sort"

	"github.com/spf13/cobra"

	"govfs/internal/vfs"
)

var lsLong bool

var lsCmd = &cobra.Command{
	Use:   "ls [virtual-path]",
	Short: "List the immediate children of a virtual directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := ""
		if len(args) == 1 {
			dir = args[0]
		}
		entries, err := vfs.EnumerateFiles(instanceDrive, dir)
		if err != nil {
			return err
		}
		sort.Strings(entries)
		for _, e := range entries {
			if !lsLong {
				fmt.Println(e)
				continue
			}
			st, serr := cachedStat(instanceDrive, path.Join(dir, e))
			if serr != nil {
				fmt.Printf("?\t%s\n", e)
				continue
			}
			fmt.Printf("%s\t%d\t%s\n", fileTypeName(st.Type), st.Size, e)
		}
		return nil
	},
}

func init() {
	lsCmd.Flags().BoolVarP(&lsLong, "long", "l", false, "show type and size for each entry")
	rootCmd.AddCommand(lsCmd)
}
