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
	"github.com/spf13/cobra"

	"govfs/internal/vfs"
)

var mkdirWriteDir string

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <virtual-path>",
	Short: "Create a directory in the write directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if mkdirWriteDir != "" {
			if err := vfs.SetWriteDir(instanceDrive, mkdirWriteDir); err != nil {
				return err
			}
		}
		if err := vfs.Mkdir(instanceDrive, args[0]); err != nil {
			return err
		}
		invalidateNamespace()
		return nil
	},
}

func init() {
	mkdirCmd.Flags().StringVar(&mkdirWriteDir, "write-dir", "", "real directory to use as the write target")
	rootCmd.AddCommand(mkdirCmd)
}
