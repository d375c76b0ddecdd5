package service

import (
	"crypto/rand"
	"io"

	cryptoDomain "github.com/allisson/securestorage/internal/crypto/domain"
)

// AEADManagerService builds AEAD suites that draw nonces from one random source.
type AEADManagerService struct {
	random io.Reader
}

// NewAEADManager creates a manager that reads nonces from crypto/rand.
func NewAEADManager() *AEADManagerService {
	return NewAEADManagerWithRandom(rand.Reader)
}

// NewAEADManagerWithRandom creates a manager that reads nonces from random.
func NewAEADManagerWithRandom(random io.Reader) *AEADManagerService {
	return &AEADManagerService{random: random}
}

// CreateCipher returns the suite for alg keyed with key.
func (am *AEADManagerService) CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	switch alg {
	case cryptoDomain.AESGCM:
		return newAESGCM(key, am.random)
	case cryptoDomain.XChaCha20:
		return newXChaCha20Poly1305(key, am.random)
	default:
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
}
