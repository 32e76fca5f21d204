package main

import (
	"errors"
	"os"

	"github.com/fatih/color"

	"github.com/yildizm/rentcheck/internal/cli"
)

// Build variables set by ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd := cli.NewRootCommand(version, commit, date)
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, cli.ErrReported) {
			_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
