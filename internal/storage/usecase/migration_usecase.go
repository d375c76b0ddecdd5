package usecase

import (
	"context"
	"errors"
	"log/slog"

	cryptoDomain "github.com/allisson/securestorage/internal/crypto/domain"
	storageDomain "github.com/allisson/securestorage/internal/storage/domain"
)

// MigrationReport summarizes one legacy sweep.
type MigrationReport struct {
	// CryptoUnavailable is true when the sweep did not run.
	CryptoUnavailable bool
	Scanned           int
	Migrated          int
	Skipped           int
	Failed            int
}

// migrationUseCase implements MigrationUseCase.
type migrationUseCase struct {
	selector Selector
	detector CapabilityDetector
	cipher   Cipher
	legacy   LegacyObfuscator
	logger   *slog.Logger
}

// NewMigrationUseCase creates a MigrationUseCase.
func NewMigrationUseCase(
	selector Selector,
	detector CapabilityDetector,
	cipher Cipher,
	legacy LegacyObfuscator,
	logger *slog.Logger,
) MigrationUseCase {
	return &migrationUseCase{
		selector: selector,
		detector: detector,
		cipher:   cipher,
		legacy:   legacy,
		logger:   logger,
	}
}

// Migrate re-encrypts every legacy record in the session and persistent tiers in
// place. Tagged and plain records are skipped, so running it again is a no-op.
// A record that fails is logged and counted; the sweep goes on.
func (m *migrationUseCase) Migrate(ctx context.Context) MigrationReport {
	var report MigrationReport

	if m.cipher == nil || !m.detector.IsCryptoAvailable() {
		m.logger.Info("crypto unavailable, skipping legacy migration")
		report.CryptoUnavailable = true
		return report
	}

	for _, tier := range []storageDomain.Tier{storageDomain.TierSession, storageDomain.TierPersistent} {
		keys, err := m.selector.Enumerate(ctx, tier)
		if err != nil {
			level := slog.LevelWarn
			if errors.Is(err, storageDomain.ErrTierNotConfigured) {
				level = slog.LevelDebug
			}
			m.logger.Log(ctx, level, "skipping tier in legacy migration",
				slog.String("tier", tier.String()),
				slog.Any("error", err),
			)
			continue
		}

		for _, key := range keys {
			report.Scanned++
			switch m.migrateKey(ctx, tier, key) {
			case migrated:
				report.Migrated++
			case skipped:
				report.Skipped++
			default:
				report.Failed++
			}
		}
	}

	m.logger.Info("legacy migration finished",
		slog.Int("scanned", report.Scanned),
		slog.Int("migrated", report.Migrated),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed),
	)
	return report
}

type migrationOutcome int

const (
	skipped migrationOutcome = iota
	migrated
	failed
)

func (m *migrationUseCase) migrateKey(ctx context.Context, tier storageDomain.Tier, key string) migrationOutcome {
	raw, result, ok := m.selector.Read(ctx, key, tier)
	if !ok || result.Tier != tier {
		return skipped
	}
	if storageDomain.DetectEncoding(raw) != storageDomain.EncodingLegacy {
		return skipped
	}

	plaintext, err := m.legacy.Decode(raw)
	if err != nil {
		m.logger.Debug("record is not legacy encoded",
			slog.String("key", key),
			slog.String("tier", tier.String()),
		)
		return skipped
	}
	defer cryptoDomain.Zero(plaintext)

	sealed, err := m.cipher.EncryptJSON(ctx, plaintext)
	if err != nil {
		m.logger.Warn("failed to re-encrypt legacy record",
			slog.String("key", key),
			slog.String("tier", tier.String()),
			slog.Any("error", err),
		)
		return failed
	}

	written := m.selector.Write(ctx, tier, key, sealed)
	if written.Degraded {
		m.logger.Warn("migrated record demoted to memory",
			slog.String("key", key),
			slog.String("tier", tier.String()),
			slog.Any("error", written.Err),
		)
		return failed
	}

	m.logger.Debug("legacy record migrated",
		slog.String("key", key),
		slog.String("tier", tier.String()),
	)
	return migrated
}
