package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/securestorage/cmd/app/commands"
	"github.com/allisson/securestorage/internal/app"
)

func getStorageCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "set",
			Usage: "Store a JSON value",
			Flags: []cli.Flag{
				keyFlag(),
				valueFlag(),
				&cli.BoolFlag{
					Name:    "persistent",
					Aliases: []string{"p"},
					Value:   false,
					Usage:   "Store in the persistent tier instead of the session tier",
				},
				&cli.BoolFlag{
					Name:  "plain",
					Value: false,
					Usage: "Store the value unencrypted",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, cmd, func(container *app.Container) error {
					secureStorage, err := container.SecureStorage(ctx)
					if err != nil {
						return err
					}
					return commands.RunSetItem(
						ctx,
						secureStorage,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("key"),
						cmd.String("value"),
						cmd.Bool("persistent"),
						cmd.Bool("plain"),
					)
				})
			},
		},
		{
			Name:  "get",
			Usage: "Print a stored JSON value",
			Flags: []cli.Flag{
				keyFlag(),
				&cli.BoolFlag{
					Name:  "plain",
					Value: false,
					Usage: "Read only unencrypted records",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, cmd, func(container *app.Container) error {
					secureStorage, err := container.SecureStorage(ctx)
					if err != nil {
						return err
					}
					return commands.RunGetItem(
						ctx,
						secureStorage,
						commands.DefaultIO().Writer,
						cmd.String("key"),
						cmd.Bool("plain"),
					)
				})
			},
		},
		{
			Name:  "has",
			Usage: "Report whether a key holds a readable value",
			Flags: []cli.Flag{keyFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, cmd, func(container *app.Container) error {
					secureStorage, err := container.SecureStorage(ctx)
					if err != nil {
						return err
					}
					return commands.RunHasItem(ctx, secureStorage, commands.DefaultIO().Writer, cmd.String("key"))
				})
			},
		},
		{
			Name:  "remove",
			Usage: "Remove a key from every tier",
			Flags: []cli.Flag{keyFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, cmd, func(container *app.Container) error {
					secureStorage, err := container.SecureStorage(ctx)
					if err != nil {
						return err
					}
					return commands.RunRemoveItem(
						ctx,
						secureStorage,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("key"),
					)
				})
			},
		},
		{
			Name:  "clear",
			Usage: "Remove every namespaced key from every tier",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, cmd, func(container *app.Container) error {
					secureStorage, err := container.SecureStorage(ctx)
					if err != nil {
						return err
					}
					return commands.RunClear(ctx, secureStorage, container.Logger(), commands.DefaultIO().Writer)
				})
			},
		},
	}
}
