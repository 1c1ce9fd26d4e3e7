package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/molnotation/internal/interfaces/cli"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	// Inject build-time variables into the cli package.
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	status := cli.Execute(ctx, os.Args[1:])
	stop()
	os.Exit(status)
}
