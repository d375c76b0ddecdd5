package domain

import (
	"fmt"
	"strings"
)

// Algorithm represents the authenticated cipher used to seal stored records.
//
// Both suites provide Authenticated Encryption with Associated Data (AEAD) with a
// 256-bit key. The algorithm is never written as a separate field; it is implied by
// the literal tag that prefixes every encrypted record, so the tag acts as the
// format version of the wire encoding.
type Algorithm string

const (
	// AESGCM represents AES-256-GCM with a 12-byte random nonce and a 16-byte tag.
	// Records sealed with it are written as "AES:" + base64(nonce ‖ ciphertext).
	AESGCM Algorithm = "aes-gcm"

	// XChaCha20 represents XChaCha20-Poly1305 with a 24-byte random nonce.
	// Records sealed with it are written as "XC20:" + base64(nonce ‖ ciphertext).
	XChaCha20 Algorithm = "xchacha20-poly1305"
)

const (
	// KeySize is the length in bytes of every symmetric storage key.
	KeySize = 32

	// TagAESGCM prefixes records sealed with AESGCM.
	TagAESGCM = "AES:"

	// TagXChaCha20 prefixes records sealed with XChaCha20.
	TagXChaCha20 = "XC20:"

	aesGCMNonceSize    = 12
	xChaCha20NonceSize = 24
)

// Tag returns the literal prefix written in front of records sealed with a.
func (a Algorithm) Tag() string {
	switch a {
	case AESGCM:
		return TagAESGCM
	case XChaCha20:
		return TagXChaCha20
	default:
		return ""
	}
}

// NonceSize returns the fixed nonce length shared by encrypt and decrypt.
func (a Algorithm) NonceSize() int {
	switch a {
	case AESGCM:
		return aesGCMNonceSize
	case XChaCha20:
		return xChaCha20NonceSize
	default:
		return 0
	}
}

// ParseAlgorithm converts a configuration string into an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case AESGCM:
		return AESGCM, nil
	case XChaCha20:
		return XChaCha20, nil
	default:
		return "", fmt.Errorf(
			"%w: %q (valid options: aes-gcm, xchacha20-poly1305)",
			ErrUnsupportedAlgorithm,
			s,
		)
	}
}

// AlgorithmForRecord reports which suite sealed raw, judging only by its tag.
func AlgorithmForRecord(raw string) (Algorithm, bool) {
	switch {
	case strings.HasPrefix(raw, TagAESGCM):
		return AESGCM, true
	case strings.HasPrefix(raw, TagXChaCha20):
		return XChaCha20, true
	default:
		return "", false
	}
}

// IsTagged reports whether raw carries the tag of any current cipher suite.
func IsTagged(raw string) bool {
	_, ok := AlgorithmForRecord(raw)
	return ok
}
