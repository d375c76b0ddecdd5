// Package service provides the tier-level services of the secure storage: the
// storage capability detector and the backend selector with its memory fallback.
package service

import (
	"context"

	storageDomain "github.com/allisson/securestorage/internal/storage/domain"
)

// Backend is one storage tier. Keys are fully namespaced.
type Backend interface {
	// Get returns storageDomain.ErrItemNotFound when key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete succeeds when key is absent.
	Delete(ctx context.Context, key string) error
	// Keys returns every key that starts with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
	// DeletePrefix removes every key that starts with prefix and reports how many were removed.
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
}

// CryptoProbe reports whether encryption is possible.
type CryptoProbe interface {
	IsCryptoAvailable() bool
}

// CapabilityDetector reports which capabilities the platform offers.
type CapabilityDetector interface {
	IsCryptoAvailable() bool
	IsStorageAvailable(ctx context.Context, tier storageDomain.Tier) bool
}

// Selector routes records to tiers and falls back to memory.
type Selector interface {
	Write(ctx context.Context, tier storageDomain.Tier, key, raw string) storageDomain.WriteResult
	Read(ctx context.Context, key string, tiers ...storageDomain.Tier) (string, storageDomain.ReadResult, bool)
	Remove(ctx context.Context, key string) error
	Enumerate(ctx context.Context, tier storageDomain.Tier) ([]string, error)
	Clear(ctx context.Context) (int64, error)
}
