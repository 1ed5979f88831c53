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

var saneConfigOpts vfs.SaneConfigOptions

var saneConfigCmd = &cobra.Command{
	Use:   "sane-config",
	Short: "Establish a conventional default search path",
	RunE: func(cmd *cobra.Command, args []string) error {
		return vfs.SetSaneConfig(instanceDrive, saneConfigOpts)
	},
}

func init() {
	saneConfigCmd.Flags().StringVar(&saneConfigOpts.Org, "org", "", "organization name, used for the preference directory")
	saneConfigCmd.Flags().StringVar(&saneConfigOpts.App, "app", "", "application name, used for the preference directory")
	saneConfigCmd.Flags().StringVar(&saneConfigOpts.ArchiveExt, "archive-ext", "", "extension of archives to auto-mount from the base directory, e.g. zip")
	saneConfigCmd.Flags().BoolVar(&saneConfigOpts.ArchivesFirst, "archives-first", false, "search discovered archives before the base directory")
	saneConfigCmd.Flags().BoolVar(&saneConfigOpts.IncludeCdRoms, "include-cdroms", false, "retained for parity; no-op on this platform")
	rootCmd.AddCommand(saneConfigCmd)
}
