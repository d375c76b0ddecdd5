package domain

import (
	"github.com/allisson/securestorage/internal/errors"
)

// Cryptographic error definitions.
//
// None of these errors ever cross the storage facade. They exist so the facade and
// the migrator can tell a missing capability apart from a corrupt record and pick
// the right fallback.
var (
	// ErrCryptoUnavailable indicates the cipher suite or the secure random source is
	// missing. It doubles as the "no key" sentinel returned by the key manager.
	ErrCryptoUnavailable = errors.Wrap(errors.ErrUnavailable, "crypto unavailable")

	// ErrUnsupportedAlgorithm indicates the requested cipher suite is unknown.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates key material is not exactly KeySize bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptionFailed indicates a record could not be opened.
	//
	// Bad base64, a short payload, an authentication tag mismatch, a wrong key and
	// malformed JSON all collapse into this one error on purpose, so a reader cannot
	// learn which step failed.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrKeyNotFound indicates the private key store holds no key under the fixed name.
	ErrKeyNotFound = errors.Wrap(errors.ErrNotFound, "key not found")

	// ErrKeyStoreUnavailable indicates the private key store could not be opened or upgraded.
	ErrKeyStoreUnavailable = errors.Wrap(errors.ErrUnavailable, "key store unavailable")

	// ErrUnsupportedKMSProvider indicates KMS_KEY_URI names a keeper scheme no driver is registered for.
	ErrUnsupportedKMSProvider = errors.Wrap(errors.ErrInvalidInput, "unsupported KMS provider")

	// ErrNotLegacy indicates a value is not a decodable legacy-obfuscated record.
	ErrNotLegacy = errors.Wrap(errors.ErrInvalidInput, "not a legacy record")
)
