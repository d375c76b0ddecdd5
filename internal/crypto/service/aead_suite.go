package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	cryptoDomain "github.com/allisson/securestorage/internal/crypto/domain"
)

// AEADSuite seals records with one AEAD construction and a random nonce per call.
// It is stateless apart from the nonce source and safe for concurrent use.
type AEADSuite struct {
	alg    cryptoDomain.Algorithm
	aead   cipher.AEAD
	random io.Reader
}

// NewAESGCM creates the AES-256-GCM suite behind the "AES:" tag.
func NewAESGCM(key []byte) (*AEADSuite, error) {
	return newAESGCM(key, rand.Reader)
}

// NewXChaCha20Poly1305 creates the XChaCha20-Poly1305 suite behind the "XC20:" tag.
func NewXChaCha20Poly1305(key []byte) (*AEADSuite, error) {
	return newXChaCha20Poly1305(key, rand.Reader)
}

func newAESGCM(key []byte, random io.Reader) (*AEADSuite, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, fmt.Errorf("%w: AES-256 needs %d bytes, got %d",
			cryptoDomain.ErrInvalidKeySize, cryptoDomain.KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AEADSuite{alg: cryptoDomain.AESGCM, aead: aead, random: random}, nil
}

func newXChaCha20Poly1305(key []byte, random io.Reader) (*AEADSuite, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cryptoDomain.ErrInvalidKeySize, err)
	}
	return &AEADSuite{alg: cryptoDomain.XChaCha20, aead: aead, random: random}, nil
}

// Algorithm returns the suite identifier.
func (s *AEADSuite) Algorithm() cryptoDomain.Algorithm {
	return s.alg
}

// Encrypt seals plaintext under a fresh nonce. The returned ciphertext carries
// the 16-byte authentication tag at its end.
func (s *AEADSuite) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(s.random, nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return s.aead.Seal(nil, nonce, plaintext, aad), nonce, nil
}

// Decrypt verifies the tag and returns the plaintext.
func (s *AEADSuite) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	if len(nonce) != s.aead.NonceSize() {
		return nil, fmt.Errorf("failed to decrypt: nonce must be %d bytes", s.aead.NonceSize())
	}

	plaintext, err := s.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}

// NonceSize is 12 for AES-GCM and 24 for XChaCha20-Poly1305.
func (s *AEADSuite) NonceSize() int {
	return s.aead.NonceSize()
}

// Overhead is the length of the authentication tag.
func (s *AEADSuite) Overhead() int {
	return s.aead.Overhead()
}
