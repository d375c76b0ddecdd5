package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/securestorage/cmd/app/commands"
	"github.com/allisson/securestorage/internal/app"
)

type prefixedStoreFactory func(ctx context.Context, container *app.Container) (commands.PrefixedStore, error)

func authStore(ctx context.Context, container *app.Container) (commands.PrefixedStore, error) {
	return container.AuthStorage(ctx)
}

func configStore(ctx context.Context, container *app.Container) (commands.PrefixedStore, error) {
	return container.ConfigStorage(ctx)
}

func getHelperCommands() []*cli.Command {
	return []*cli.Command{
		prefixedSetCommand("auth-set", "Store an encrypted session value under the auth_ prefix", authStore),
		prefixedGetCommand("auth-get", "Print a value stored under the auth_ prefix", authStore),
		prefixedSetCommand("config-set", "Store a plain persistent value under the config_ prefix", configStore),
		prefixedGetCommand("config-get", "Print a value stored under the config_ prefix", configStore),
	}
}

func prefixedSetCommand(name, usage string, factory prefixedStoreFactory) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: []cli.Flag{keyFlag(), valueFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withContainer(ctx, cmd, func(container *app.Container) error {
				store, err := factory(ctx, container)
				if err != nil {
					return err
				}
				return commands.RunPrefixedSet(
					ctx,
					store,
					commands.DefaultIO().Writer,
					cmd.String("key"),
					cmd.String("value"),
				)
			})
		},
	}
}

func prefixedGetCommand(name, usage string, factory prefixedStoreFactory) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: []cli.Flag{keyFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withContainer(ctx, cmd, func(container *app.Container) error {
				store, err := factory(ctx, container)
				if err != nil {
					return err
				}
				return commands.RunPrefixedGet(ctx, store, commands.DefaultIO().Writer, cmd.String("key"))
			})
		},
	}
}
