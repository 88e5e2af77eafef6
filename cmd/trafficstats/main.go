// Package main is the entry point for the trafficstats CLI
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/davidvella/traffic/internal/cli"
)

// Set at build time via ldflags
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.Execute(ctx, cli.BuildInfo{Version: version, Commit: commit, BuildTime: buildTime})
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}
