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

	"github.com/spf13/cobra"

	"govfs/internal/vfs"
)

func fileTypeName(t vfs.FileType) string {
	switch t {
	case vfs.FileDirectory:
		return "directory"
	case vfs.FileSymlink:
		return "symlink"
	default:
		return "file"
	}
}

var statCmd = &cobra.Command{
	Use:   "stat <virtual-path>",
	Short: "Print a virtual path's attributes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := cachedStat(instanceDrive, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("type:      %s\n", fileTypeName(st.Type))
		fmt.Printf("size:      %d\n", st.Size)
		if st.HasModTime() {
			fmt.Printf("modified:  %s\n", st.ModTime)
		}
		fmt.Printf("read-only: %v\n", st.ReadOnly)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statCmd)
}
