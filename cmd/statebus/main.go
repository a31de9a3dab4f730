// Package main is the entry point for the statebus command.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/statebus/internal/cli"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Handle signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	info := cli.BuildInfo{Version: version, Commit: commit, Date: date}
	return cli.Execute(ctx, info, os.Args[1:])
}
