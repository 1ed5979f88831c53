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

//go:build linux

package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"govfs/internal/fuseproj"
)

var fuseAllowOther bool

var fuseCmd = &cobra.Command{
	Use:   "fuse <mountpoint>",
	Short: "Project the mounted namespace onto a real directory via FUSE (Linux only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := fuseproj.Mount(fuseproj.Options{
			Mountpoint: args[0],
			Drive:      instanceDrive,
			AllowOther: fuseAllowOther,
		})
		if err != nil {
			return err
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		return server.Unmount()
	},
}

func init() {
	fuseCmd.Flags().BoolVar(&fuseAllowOther, "allow-other", false, "permit other users to access the mount (requires user_allow_other in /etc/fuse.conf)")
	rootCmd.AddCommand(fuseCmd)
}
