package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	storageDomain "github.com/allisson/securestorage/internal/storage/domain"
)

// SecureStorage is the public facade. No error crosses it: writes report success as
// a bool, reads report a miss as false, and every failure is logged.
//
// The legacy sweep runs once, before the first operation. MigrateLegacy runs it again
// on demand.
type SecureStorage struct {
	storage   StorageUseCase
	migration MigrationUseCase
	logger    *slog.Logger

	migrateOnce sync.Once
}

// NewSecureStorage creates the facade. migration may be nil to disable the sweep.
func NewSecureStorage(storage StorageUseCase, migration MigrationUseCase, logger *slog.Logger) *SecureStorage {
	return &SecureStorage{
		storage:   storage,
		migration: migration,
		logger:    logger,
	}
}

func (s *SecureStorage) ensureMigrated(ctx context.Context) {
	s.migrateOnce.Do(func() {
		if s.migration != nil {
			s.migration.Migrate(ctx)
		}
	})
}

// MigrateLegacy runs the legacy sweep now.
func (s *SecureStorage) MigrateLegacy(ctx context.Context) MigrationReport {
	s.migrateOnce.Do(func() {})
	if s.migration == nil {
		return MigrationReport{}
	}
	return s.migration.Migrate(ctx)
}

// SetItem stores value under key. It returns true when the value was stored anywhere,
// including the memory fallback.
func (s *SecureStorage) SetItem(ctx context.Context, key string, value any, opts storageDomain.SetOptions) bool {
	s.ensureMigrated(ctx)

	if _, err := s.storage.Set(ctx, key, value, opts); err != nil {
		s.logger.Warn("failed to store item", slog.String("key", key), slog.Any("error", err))
		return false
	}
	return true
}

// GetItem returns the JSON document stored under key.
func (s *SecureStorage) GetItem(ctx context.Context, key string, opts storageDomain.GetOptions) (json.RawMessage, bool) {
	s.ensureMigrated(ctx)

	value, _, err := s.storage.Get(ctx, key, opts)
	if err != nil {
		s.logger.Debug("item not retrievable", slog.String("key", key), slog.Any("error", err))
		return nil, false
	}
	return value, true
}

// GetItemAs reads key and decodes it into T.
func GetItemAs[T any](ctx context.Context, s *SecureStorage, key string, opts storageDomain.GetOptions) (T, bool) {
	var out T

	raw, ok := s.GetItem(ctx, key, opts)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		s.logger.Warn("failed to decode item", slog.String("key", key), slog.Any("error", err))
		var zero T
		return zero, false
	}
	return out, true
}

// RemoveItem deletes key from every tier.
func (s *SecureStorage) RemoveItem(ctx context.Context, key string) {
	s.ensureMigrated(ctx)

	if err := s.storage.Remove(ctx, key); err != nil {
		s.logger.Warn("failed to remove item", slog.String("key", key), slog.Any("error", err))
	}
}

// HasItem reports whether GetItem with default options would succeed.
func (s *SecureStorage) HasItem(ctx context.Context, key string) bool {
	s.ensureMigrated(ctx)
	return s.storage.Has(ctx, key)
}

// Clear removes every namespaced item from every tier.
func (s *SecureStorage) Clear(ctx context.Context) {
	s.ensureMigrated(ctx)

	removed, err := s.storage.Clear(ctx)
	if err != nil {
		s.logger.Warn("failed to clear storage", slog.Int64("removed", removed), slog.Any("error", err))
		return
	}
	s.logger.Debug("storage cleared", slog.Int64("removed", removed))
}
