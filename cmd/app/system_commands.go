package main

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/allisson/securestorage/cmd/app/commands"
	"github.com/allisson/securestorage/internal/app"
	"github.com/allisson/securestorage/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "migrate",
			Usage: "Run persistent tier database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.PersistentDriver, cfg.PersistentDSN)
			},
		},
		{
			Name:  "capabilities",
			Usage: "Report crypto and storage tier availability",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, cmd, func(container *app.Container) error {
					detector, err := container.CapabilityDetector()
					if err != nil {
						return err
					}
					container.Logger().Debug("probing capabilities", slog.String("version", version))
					return commands.RunCapabilities(ctx, detector, commands.DefaultIO().Writer, cmd.String("format"))
				})
			},
		},
		{
			Name:  "migrate-legacy",
			Usage: "Re-encrypt records written by the legacy obfuscation scheme",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, cmd, func(container *app.Container) error {
					secureStorage, err := container.SecureStorage(ctx)
					if err != nil {
						return err
					}
					return commands.RunMigrateLegacy(
						ctx,
						secureStorage,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "seed-legacy",
			Usage: "Write a record using the legacy obfuscation scheme",
			Flags: []cli.Flag{
				keyFlag(),
				valueFlag(),
				&cli.BoolFlag{
					Name:    "persistent",
					Aliases: []string{"p"},
					Value:   false,
					Usage:   "Write to the persistent tier instead of the session tier",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, cmd, func(container *app.Container) error {
					selector, err := container.Selector()
					if err != nil {
						return err
					}
					return commands.RunSeedLegacy(
						ctx,
						selector,
						container.LegacyObfuscator(),
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("key"),
						cmd.String("value"),
						cmd.Bool("persistent"),
					)
				})
			},
		},
	}
}
