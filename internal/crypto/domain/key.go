// Package domain defines the cryptographic domain model of the secure storage.
//
// A single symmetric EncryptionKey seals every stored record. The key is created
// lazily, exported as raw bytes and kept in a private key store so it survives a
// restart. When that store is unavailable the key lives only in memory.
package domain

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
)

// KeyUsage names an operation an EncryptionKey may be used for.
type KeyUsage string

const (
	UsageEncrypt KeyUsage = "encrypt"
	UsageDecrypt KeyUsage = "decrypt"
)

// EncryptionKey is the process-wide symmetric key handle.
//
// Material must never be logged. Extractable is always true because the key has to
// be exported before it can be persisted.
type EncryptionKey struct {
	ID          uuid.UUID
	Algorithm   Algorithm
	Material    []byte
	Extractable bool
	Usages      []KeyUsage
	Persisted   bool // false when the key store could not record it
	CreatedAt   time.Time
}

// Can reports whether the key may be used for usage.
func (k *EncryptionKey) Can(usage KeyUsage) bool {
	return slices.Contains(k.Usages, usage)
}

// Export returns a copy of the raw key material.
func (k *EncryptionKey) Export() []byte {
	b := make([]byte, len(k.Material))
	copy(b, k.Material)
	return b
}

// StoredKey is the single record held by the private key store.
type StoredKey struct {
	ID        uuid.UUID
	Algorithm Algorithm
	Material  []byte // exported key bytes, KMS-wrapped when Wrapped is true
	Wrapped   bool
	CreatedAt time.Time
}

// KMSKeeper wraps and unwraps exported key material. *secrets.Keeper implements it.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
