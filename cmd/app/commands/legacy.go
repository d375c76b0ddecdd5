package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	storageDomain "github.com/allisson/securestorage/internal/storage/domain"
	"github.com/allisson/securestorage/internal/validation"
)

// RunMigrateLegacy re-encrypts every legacy record and prints the sweep report.
func RunMigrateLegacy(
	ctx context.Context,
	migrator LegacyMigrator,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	logger.Info("migrating legacy records")

	report := migrator.MigrateLegacy(ctx)

	if format == "json" {
		return writeJSON(writer, map[string]any{
			"crypto_unavailable": report.CryptoUnavailable,
			"scanned":            report.Scanned,
			"migrated":           report.Migrated,
			"skipped":            report.Skipped,
			"failed":             report.Failed,
		})
	}

	if report.CryptoUnavailable {
		_, err := fmt.Fprintln(writer, "Crypto unavailable, legacy migration skipped")
		return err
	}
	_, err := fmt.Fprintf(writer, "Scanned %d record(s): %d migrated, %d skipped, %d failed\n",
		report.Scanned, report.Migrated, report.Skipped, report.Failed)
	return err
}

// RunSeedLegacy writes a record in the retired obfuscation scheme, bypassing the
// cipher. It exists to exercise migrate-legacy against real backends.
func RunSeedLegacy(
	ctx context.Context,
	recordWriter RecordWriter,
	encoder LegacyEncoder,
	logger *slog.Logger,
	writer io.Writer,
	key, value string,
	persistent bool,
) error {
	if err := validation.StorageKey(key); err != nil {
		return err
	}
	document, err := parseJSONValue(value)
	if err != nil {
		return err
	}

	tier := storageDomain.SetOptions{Persistent: persistent}.Tier()
	result := recordWriter.Write(ctx, tier, key, encoder.Encode(document))
	if result.Degraded {
		return fmt.Errorf("failed to seed legacy record in %s tier: %w", tier, result.Err)
	}

	logger.Info("legacy record seeded", slog.String("key", key), slog.String("tier", tier.String()))
	_, err = fmt.Fprintf(writer, "Seeded legacy record %s in %s tier\n", key, tier)
	return err
}
