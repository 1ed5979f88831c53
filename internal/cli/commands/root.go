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
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"govfs/internal/vfs"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// instanceDrive is the fixed instance index every CLI invocation
	// uses; the CLI only ever needs one of NumDrives universes.
	instanceDrive = 0
)

// SetVersion sets the version info for --version flag
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func getVersionString() string {
	buildDate := formatBuildDate(date)
	if strings.HasSuffix(version, "-dev") {
		return fmt.Sprintf("%s (%s, epoch: %s, commit: %s)", version, buildDate, date, commit)
	}
	return fmt.Sprintf("%s (%s)", version, buildDate)
}

func formatBuildDate(epoch string) string {
	ts, err := strconv.ParseInt(epoch, 10, 64)
	if err != nil {
		return epoch
	}
	return time.Unix(ts, 0).Format("2006-01-02")
}

var rootCmd = &cobra.Command{
	Use:   "govfs",
	Short: "Mount-ordered virtual file system over native directories and archives",
	Long:  `govfs unifies one or more real directories and archive files into a single virtual namespace, searched in mount order, the way PhysicsFS does for game asset packs.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		if err := vfs.Init(instanceDrive); err != nil && vfs.Code(err) != vfs.ErrIsInitialized {
			return fmt.Errorf("failed to initialize instance: %w", err)
		}
		if err := loadSearchPath(searchPathFile); err != nil {
			logrus.WithError(err).Debug("no persisted search path to restore")
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		if err := saveSearchPath(searchPathFile); err != nil {
			logrus.WithError(err).Warn("could not persist search path")
		}
		return vfs.Deinit(instanceDrive)
	},
}

var searchPathFile string

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetVersionTemplate("govfs version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&searchPathFile, "search-path", defaultSearchPathFile(), "YAML file recording the mounted search path across invocations")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
