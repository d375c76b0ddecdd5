package domain

import (
	"encoding/base64"
	"encoding/json"

	cryptoDomain "github.com/allisson/securestorage/internal/crypto/domain"
)

// Encoding is the on-disk shape of a stored record.
type Encoding int

const (
	// EncodingUnknown is neither tagged, JSON nor base64.
	EncodingUnknown Encoding = iota
	// EncodingEncrypted carries a cipher suite tag.
	EncodingEncrypted
	// EncodingPlain is a JSON document written without encryption.
	EncodingPlain
	// EncodingLegacy is base64 text written by the retired obfuscation scheme.
	EncodingLegacy
)

func (e Encoding) String() string {
	switch e {
	case EncodingEncrypted:
		return "encrypted"
	case EncodingPlain:
		return "plain"
	case EncodingLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// DetectEncoding classifies raw. Checks run in a fixed order: tag, then JSON, then
// base64. A value that is both valid JSON and valid base64, such as a bare number,
// is treated as plain JSON.
func DetectEncoding(raw string) Encoding {
	switch {
	case raw == "":
		return EncodingUnknown
	case cryptoDomain.IsTagged(raw):
		return EncodingEncrypted
	case json.Valid([]byte(raw)):
		return EncodingPlain
	default:
		if _, err := base64.StdEncoding.DecodeString(raw); err == nil {
			return EncodingLegacy
		}
		return EncodingUnknown
	}
}
