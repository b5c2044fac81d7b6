// Package main is the entry point for the mdhl CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/oligo/mdhl/internal/cli"
	"github.com/oligo/mdhl/internal/logging"
)

// Build-time variables set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	info := cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	rootCmd := cli.NewRootCommand(info)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Default().Error("command failed", logging.FieldError, err)
		return 1
	}

	return 0
}
