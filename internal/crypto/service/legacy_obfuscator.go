package service

import (
	"encoding/base64"
	"encoding/json"

	cryptoDomain "github.com/allisson/securestorage/internal/crypto/domain"
)

// DefaultLegacyObfuscationKey is the repeating XOR key of the retired scheme.
const DefaultLegacyObfuscationKey = "securestorage-v0"

// LegacyObfuscatorService implements the retired reversible scheme:
// base64(plaintext XOR repeat(key)). It is not encryption; it only exists so old
// records can be recognized and re-sealed.
type LegacyObfuscatorService struct {
	key []byte
}

// NewLegacyObfuscator creates the codec. An empty key selects DefaultLegacyObfuscationKey.
func NewLegacyObfuscator(key string) *LegacyObfuscatorService {
	if key == "" {
		key = DefaultLegacyObfuscationKey
	}
	return &LegacyObfuscatorService{key: []byte(key)}
}

// Encode obfuscates plaintext the way legacy records were written.
func (l *LegacyObfuscatorService) Encode(plaintext []byte) string {
	return base64.StdEncoding.EncodeToString(l.xor(plaintext))
}

// Decode reverses Encode. It returns cryptoDomain.ErrNotLegacy when raw carries a
// current tag, is not standard base64 or does not decode to a JSON document.
func (l *LegacyObfuscatorService) Decode(raw string) ([]byte, error) {
	if raw == "" || cryptoDomain.IsTagged(raw) {
		return nil, cryptoDomain.ErrNotLegacy
	}

	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, cryptoDomain.ErrNotLegacy
	}

	plaintext := l.xor(decoded)
	if !json.Valid(plaintext) {
		return nil, cryptoDomain.ErrNotLegacy
	}
	return plaintext, nil
}

func (l *LegacyObfuscatorService) xor(in []byte) []byte {
	out := make([]byte, len(in))
	for i, b := range in {
		out[i] = b ^ l.key[i%len(l.key)]
	}
	return out
}
