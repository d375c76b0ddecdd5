package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/securestorage/cmd/app/commands"
	"github.com/allisson/securestorage/internal/app"
	"github.com/allisson/securestorage/internal/config"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getStorageCommands()...)
	cmds = append(cmds, getHelperCommands()...)
	return cmds
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func keyFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "key",
		Aliases:  []string{"k"},
		Required: true,
		Usage:    "Logical key, without the storage namespace",
	}
}

func valueFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "value",
		Aliases:  []string{"v"},
		Required: true,
		Usage:    "JSON document to store (e.g., '{\"theme\":\"dark\"}' or '\"text\"')",
	}
}

// withContainer builds the container for a single command and tears it down afterwards.
func withContainer(ctx context.Context, cmd *cli.Command, fn func(container *app.Container) error) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	defer func() { _ = container.Shutdown(ctx) }()

	if err := fn(container); err != nil {
		return err
	}

	provider, err := container.MetricsProvider()
	if err != nil {
		return err
	}
	commands.LogMetricsSnapshot(provider, container.Logger())
	if cmd.Bool("print-metrics") {
		return commands.WriteMetrics(provider, os.Stderr)
	}
	return nil
}
