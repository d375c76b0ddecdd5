// Package service provides the cryptographic services behind the secure storage:
// AEAD cipher suites, the crypto capability probe, the singleton key manager, the
// record cipher and the legacy obfuscation codec.
package service

import (
	"context"
	"encoding/json"

	cryptoDomain "github.com/allisson/securestorage/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)

	// NonceSize returns the nonce length the suite requires.
	NonceSize() int
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// CryptoProbe reports whether the platform can encrypt at all.
type CryptoProbe interface {
	IsCryptoAvailable() bool
}

// KeyRepository persists the single exported storage key in the private key store.
type KeyRepository interface {
	// Get returns cryptoDomain.ErrKeyNotFound when no key is stored under name.
	Get(ctx context.Context, name string) (*cryptoDomain.StoredKey, error)
	Put(ctx context.Context, name string, key *cryptoDomain.StoredKey) error
}

// KeyManager owns the lifecycle of the storage key.
type KeyManager interface {
	// GetOrCreateKey returns the process-wide key, creating and persisting it on first use.
	// It returns cryptoDomain.ErrCryptoUnavailable when no key can exist.
	GetOrCreateKey(ctx context.Context) (*cryptoDomain.EncryptionKey, error)
}

// Cipher seals JSON values into tagged strings and opens them again.
type Cipher interface {
	Encrypt(ctx context.Context, value any) (string, error)
	EncryptJSON(ctx context.Context, plaintext []byte) (string, error)
	Decrypt(ctx context.Context, raw string) (json.RawMessage, error)
}

// LegacyObfuscator encodes and decodes records of the retired XOR+base64 scheme.
type LegacyObfuscator interface {
	Encode(plaintext []byte) string
	Decode(raw string) ([]byte, error)
}
