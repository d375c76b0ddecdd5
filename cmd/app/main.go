// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cmd := &cli.Command{
		Name:    "app",
		Usage:   "Encrypted client-side key/value storage with tiered fallback",
		Version: version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "print-metrics",
				Value: false,
				Usage: "Write the metrics gathered by the command to stderr (requires METRICS_ENABLED=true)",
			},
		},
		Commands: getCommands(version),
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
