package main

import (
	"fmt"
	"os"

	"govfs/internal/cli/commands"

	_ "govfs/archivers/tgz"
	_ "govfs/archivers/zip"
)

// Set by goreleaser ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersion(version, commit, date)
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
