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
	"io"
	"os"

	"github.com/spf13/cobra"

	"govfs/internal/vfs"
)

var catCmd = &cobra.Command{
	Use:   "cat <virtual-path>",
	Short: "Stream a virtual file's contents to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := vfs.OpenRead(instanceDrive, args[0])
		if err != nil {
			return err
		}
		defer vfs.Close(instanceDrive, id)

		buf := make([]byte, 32*1024)
		for {
			n, rerr := vfs.Read(instanceDrive, id, buf)
			if n > 0 {
				if _, werr := os.Stdout.Write(buf[:n]); werr != nil {
					return werr
				}
			}
			if rerr == io.EOF {
				return nil
			}
			if rerr != nil {
				return rerr
			}
			if n == 0 {
				return nil
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
}
