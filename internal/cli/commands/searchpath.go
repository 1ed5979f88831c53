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
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"govfs/internal/vfs"
)

// persistedMount is one entry in the search-path YAML file. Mounts are
// written and re-read in the same order so re-mounting with Append
// reproduces the original search order.
type persistedMount struct {
	Dir        string `yaml:"dir"`
	MountPoint string `yaml:"mountPoint"`
}

type persistedSearchPath struct {
	Mounts []persistedMount `yaml:"mounts"`
}

func defaultSearchPathFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".govfs-search-path.yaml"
	}
	return filepath.Join(dir, "govfs", "search-path.yaml")
}

// loadSearchPath re-establishes the mounts recorded in file, since each
// CLI invocation is a fresh process with no daemon keeping the Instance
// alive between commands.
func loadSearchPath(file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	var persisted persistedSearchPath
	if err := yaml.Unmarshal(data, &persisted); err != nil {
		return err
	}
	for _, m := range persisted.Mounts {
		if err := vfs.Mount(instanceDrive, m.Dir, m.MountPoint, true); err != nil {
			// A mount that no longer resolves (removable media unplugged,
			// a stale archive moved) shouldn't block every other command.
			continue
		}
	}
	return nil
}

// saveSearchPath writes the Instance's current search path back to
// file, creating its parent directory if necessary.
func saveSearchPath(file string) error {
	dirs, err := vfs.GetSearchPath(instanceDrive)
	if err != nil {
		return err
	}

	var persisted persistedSearchPath
	for _, d := range dirs {
		mp, err := vfs.GetMountPoint(instanceDrive, d)
		if err != nil {
			mp = "/"
		}
		persisted.Mounts = append(persisted.Mounts, persistedMount{Dir: d, MountPoint: mp})
	}

	out, err := yaml.Marshal(persisted)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	return os.WriteFile(file, out, 0o644)
}

var searchPathCmd = &cobra.Command{
	Use:   "search-path",
	Short: "Print the current mount search path, in search order",
	RunE: func(cmd *cobra.Command, args []string) error {
		dirs, err := vfs.GetSearchPath(instanceDrive)
		if err != nil {
			return err
		}
		for _, d := range dirs {
			mp, _ := vfs.GetMountPoint(instanceDrive, d)
			fmt.Printf("%s\t%s\n", mp, d)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchPathCmd)
}
