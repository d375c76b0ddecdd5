package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	storageDomain "github.com/allisson/securestorage/internal/storage/domain"
)

// RunSetItem stores a JSON value under key. Values are encrypted unless plain is set.
func RunSetItem(
	ctx context.Context,
	store ItemStore,
	logger *slog.Logger,
	writer io.Writer,
	key, value string,
	persistent, plain bool,
) error {
	document, err := parseJSONValue(value)
	if err != nil {
		return err
	}

	opts := storageDomain.SetOptions{Persistent: persistent, Encrypted: !plain}
	if !store.SetItem(ctx, key, document, opts) {
		return fmt.Errorf("failed to store item %q", key)
	}

	logger.Info("item stored",
		slog.String("key", key),
		slog.String("tier", opts.Tier().String()),
		slog.Bool("encrypted", opts.Encrypted),
	)
	_, err = fmt.Fprintf(writer, "Stored %s\n", key)
	return err
}

// RunGetItem writes the JSON value stored under key. Encrypted records are
// skipped when plain is set.
func RunGetItem(ctx context.Context, store ItemStore, writer io.Writer, key string, plain bool) error {
	value, ok := store.GetItem(ctx, key, storageDomain.GetOptions{Encrypted: !plain})
	if !ok {
		return fmt.Errorf("%w: %s", storageDomain.ErrItemNotFound, key)
	}
	_, err := fmt.Fprintln(writer, string(value))
	return err
}

// RunHasItem writes true or false.
func RunHasItem(ctx context.Context, store ItemStore, writer io.Writer, key string) error {
	_, err := fmt.Fprintln(writer, store.HasItem(ctx, key))
	return err
}

// RunRemoveItem deletes key from every tier.
func RunRemoveItem(ctx context.Context, store ItemStore, logger *slog.Logger, writer io.Writer, key string) error {
	store.RemoveItem(ctx, key)

	logger.Info("item removed", slog.String("key", key))
	_, err := fmt.Fprintf(writer, "Removed %s\n", key)
	return err
}

// RunClear removes every namespaced item.
func RunClear(ctx context.Context, store ItemStore, logger *slog.Logger, writer io.Writer) error {
	store.Clear(ctx)

	logger.Info("storage cleared")
	_, err := fmt.Fprintln(writer, "Storage cleared")
	return err
}

// RunPrefixedSet stores a JSON value through the auth or config helper.
func RunPrefixedSet(ctx context.Context, store PrefixedStore, writer io.Writer, key, value string) error {
	document, err := parseJSONValue(value)
	if err != nil {
		return err
	}
	if !store.Set(ctx, key, document) {
		return fmt.Errorf("failed to store item %q", key)
	}
	_, err = fmt.Fprintf(writer, "Stored %s\n", key)
	return err
}

// RunPrefixedGet writes a value read through the auth or config helper.
func RunPrefixedGet(ctx context.Context, store PrefixedStore, writer io.Writer, key string) error {
	value, ok := store.Get(ctx, key)
	if !ok {
		return fmt.Errorf("%w: %s", storageDomain.ErrItemNotFound, key)
	}
	_, err := fmt.Fprintln(writer, string(value))
	return err
}
