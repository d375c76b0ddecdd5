package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	cryptoDomain "github.com/allisson/securestorage/internal/crypto/domain"
)

// CipherService seals JSON values into tagged record strings.
//
// Wire format: tag + base64(nonce ‖ ciphertext+authTag), where the tag is "AES:" for
// AES-256-GCM and "XC20:" for XChaCha20-Poly1305. New records always use the
// configured algorithm; Decrypt accepts every known tag.
type CipherService struct {
	keyManager  KeyManager
	aeadManager AEADManager
	algorithm   cryptoDomain.Algorithm
}

// NewCipher creates a CipherService that seals new records with alg.
func NewCipher(keyManager KeyManager, aeadManager AEADManager, alg cryptoDomain.Algorithm) *CipherService {
	return &CipherService{
		keyManager:  keyManager,
		aeadManager: aeadManager,
		algorithm:   alg,
	}
}

// Encrypt JSON-encodes value and seals it.
func (c *CipherService) Encrypt(ctx context.Context, value any) (string, error) {
	plaintext, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to encode value: %w", err)
	}
	return c.EncryptJSON(ctx, plaintext)
}

// EncryptJSON seals an already encoded JSON document.
func (c *CipherService) EncryptJSON(ctx context.Context, plaintext []byte) (string, error) {
	if !json.Valid(plaintext) {
		return "", fmt.Errorf("failed to encrypt: plaintext is not valid JSON")
	}

	key, err := c.keyManager.GetOrCreateKey(ctx)
	if err != nil {
		return "", err
	}
	if !key.Can(cryptoDomain.UsageEncrypt) {
		return "", fmt.Errorf("failed to encrypt: key %s cannot encrypt", key.ID)
	}

	aead, err := c.aeadManager.CreateCipher(key.Material, c.algorithm)
	if err != nil {
		return "", err
	}

	ciphertext, nonce, err := aead.Encrypt(plaintext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt: %w", err)
	}

	payload := make([]byte, 0, len(nonce)+len(ciphertext))
	payload = append(payload, nonce...)
	payload = append(payload, ciphertext...)

	return c.algorithm.Tag() + base64.StdEncoding.EncodeToString(payload), nil
}

// Decrypt opens a tagged record and returns the JSON document it holds.
//
// Every decoding failure returns cryptoDomain.ErrDecryptionFailed. A missing key
// returns the key manager's error unchanged.
func (c *CipherService) Decrypt(ctx context.Context, raw string) (json.RawMessage, error) {
	alg, ok := cryptoDomain.AlgorithmForRecord(raw)
	if !ok {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	payload, err := base64.StdEncoding.DecodeString(raw[len(alg.Tag()):])
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	nonceSize := alg.NonceSize()
	if len(payload) <= nonceSize {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	key, err := c.keyManager.GetOrCreateKey(ctx)
	if err != nil {
		return nil, err
	}
	if !key.Can(cryptoDomain.UsageDecrypt) {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	aead, err := c.aeadManager.CreateCipher(key.Material, alg)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	plaintext, err := aead.Decrypt(payload[nonceSize:], payload[:nonceSize], nil)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	if !json.Valid(plaintext) {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	return json.RawMessage(plaintext), nil
}
