// Package usecase implements the secure storage facade. Use cases combine the tier
// selector, the capability detector and the record cipher: values are sealed before
// they reach a tier, stored formats are dispatched on read, and records left by the
// retired obfuscation scheme are re-encrypted in place.
package usecase

import (
	"context"
	"encoding/json"

	storageDomain "github.com/allisson/securestorage/internal/storage/domain"
)

// Selector routes records between tiers.
type Selector interface {
	Write(ctx context.Context, tier storageDomain.Tier, key, raw string) storageDomain.WriteResult
	Read(ctx context.Context, key string, tiers ...storageDomain.Tier) (string, storageDomain.ReadResult, bool)
	Remove(ctx context.Context, key string) error
	Enumerate(ctx context.Context, tier storageDomain.Tier) ([]string, error)
	Clear(ctx context.Context) (int64, error)
}

// CapabilityDetector reports crypto and tier availability.
type CapabilityDetector interface {
	IsCryptoAvailable() bool
	IsStorageAvailable(ctx context.Context, tier storageDomain.Tier) bool
}

// Cipher seals and opens tagged records.
type Cipher interface {
	EncryptJSON(ctx context.Context, plaintext []byte) (string, error)
	Decrypt(ctx context.Context, raw string) (json.RawMessage, error)
}

// LegacyObfuscator decodes records of the retired obfuscation scheme.
type LegacyObfuscator interface {
	Decode(raw string) ([]byte, error)
}

// StorageUseCase defines the storage operations behind the facade. Unlike the
// facade it reports where writes landed and why reads missed.
type StorageUseCase interface {
	// Set stores value under key. A write that lands in the memory fallback is not
	// an error; the WriteResult reports it as Degraded.
	Set(ctx context.Context, key string, value any, opts storageDomain.SetOptions) (storageDomain.WriteResult, error)
	// Get returns the JSON document stored under key. Every miss, including an
	// undecryptable or not yet migrated record, wraps storageDomain.ErrItemNotFound.
	Get(ctx context.Context, key string, opts storageDomain.GetOptions) (json.RawMessage, storageDomain.ReadResult, error)
	Remove(ctx context.Context, key string) error
	Has(ctx context.Context, key string) bool
	Clear(ctx context.Context) (int64, error)
}

// MigrationUseCase re-encrypts legacy records.
type MigrationUseCase interface {
	Migrate(ctx context.Context) MigrationReport
}
