package cmd

import (
	"fmt"
	"os"

	"stash-pricer/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd is the stash-pricer command; subcommands register in their init.
var RootCmd = &cobra.Command{
	Use:   "stash-pricer",
	Short: "Price builds against the public stash feed",
	Long: `stash-pricer ingests the public stash feed, normalizes listed items
and finds the first listing that satisfies each slot of a queued build.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs RootCmd and exits non-zero on failure.
func Execute() {
	err := RootCmd.Execute()
	if err == nil {
		return
	}
	if l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"}); logErr == nil {
		l.Error("command failed", zap.Error(err))
		_ = l.Sync()
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}
