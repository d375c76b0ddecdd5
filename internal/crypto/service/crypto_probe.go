package service

import (
	"crypto/rand"
	"io"
	"sync"

	cryptoDomain "github.com/allisson/securestorage/internal/crypto/domain"
)

// CryptoProbeService decides once whether encryption is possible.
//
// Crypto is available only when it is enabled in configuration, the random source
// yields key-sized output and the configured suite can seal and open a probe value.
// The answer is cached; Recheck forces a new evaluation.
type CryptoProbeService struct {
	enabled     bool
	algorithm   cryptoDomain.Algorithm
	aeadManager AEADManager
	random      io.Reader

	mu        sync.Mutex
	checked   bool
	available bool
}

// NewCryptoProbe creates a probe for alg. A nil random falls back to crypto/rand.
func NewCryptoProbe(
	enabled bool,
	alg cryptoDomain.Algorithm,
	aeadManager AEADManager,
	random io.Reader,
) *CryptoProbeService {
	if random == nil {
		random = rand.Reader
	}
	return &CryptoProbeService{
		enabled:     enabled,
		algorithm:   alg,
		aeadManager: aeadManager,
		random:      random,
	}
}

// IsCryptoAvailable returns the cached probe result, probing on first call.
func (p *CryptoProbeService) IsCryptoAvailable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.checked {
		p.available = p.probe()
		p.checked = true
	}
	return p.available
}

// Recheck discards the cached result and probes again.
func (p *CryptoProbeService) Recheck() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.available = p.probe()
	p.checked = true
	return p.available
}

func (p *CryptoProbeService) probe() bool {
	if !p.enabled || p.aeadManager == nil {
		return false
	}

	key := make([]byte, cryptoDomain.KeySize)
	defer cryptoDomain.Zero(key)
	if _, err := io.ReadFull(p.random, key); err != nil {
		return false
	}

	aead, err := p.aeadManager.CreateCipher(key, p.algorithm)
	if err != nil {
		return false
	}

	probe := []byte("{}")
	ciphertext, nonce, err := aead.Encrypt(probe, nil)
	if err != nil {
		return false
	}
	plaintext, err := aead.Decrypt(ciphertext, nonce, nil)
	if err != nil {
		return false
	}
	return string(plaintext) == string(probe)
}
