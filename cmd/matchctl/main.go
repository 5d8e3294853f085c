package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/tutormatch/internal/matchctl"
)

// Set by -ldflags at build time.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	matchctl.SetVersionInfo(version, commit, buildTime)
	if err := matchctl.Execute(ctx); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}
