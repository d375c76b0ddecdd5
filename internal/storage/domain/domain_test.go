package domain

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/securestorage/internal/errors"
)

func TestTier_String(t *testing.T) {
	assert.Equal(t, "session", TierSession.String())
	assert.Equal(t, "persistent", TierPersistent.String())
	assert.Equal(t, "memory", TierMemory.String())
	assert.Equal(t, "tier(9)", Tier(9).String())
}

func TestParseTier(t *testing.T) {
	for _, tier := range Tiers() {
		got, err := ParseTier(tier.String())
		require.NoError(t, err)
		assert.Equal(t, tier, got)
	}

	_, err := ParseTier("cookie")
	assert.ErrorIs(t, err, ErrInvalidTier)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestDetectEncoding(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Encoding
	}{
		{"empty", "", EncodingUnknown},
		{"aes tagged", "AES:AAAA", EncodingEncrypted},
		{"xchacha tagged", "XC20:AAAA", EncodingEncrypted},
		{"json object", `{"a":1}`, EncodingPlain},
		{"json string", `"hello"`, EncodingPlain},
		{"json number", "1234", EncodingPlain},
		{"json null", "null", EncodingPlain},
		{"legacy base64", base64.StdEncoding.EncodeToString([]byte{0x10, 0x16, 0x42}), EncodingLegacy},
		{"garbage", "not json, not base64!", EncodingUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectEncoding(tt.raw))
		})
	}
}

func TestEncoding_String(t *testing.T) {
	assert.Equal(t, "encrypted", EncodingEncrypted.String())
	assert.Equal(t, "plain", EncodingPlain.String())
	assert.Equal(t, "legacy", EncodingLegacy.String())
	assert.Equal(t, "unknown", EncodingUnknown.String())
}

func TestOptions(t *testing.T) {
	assert.Equal(t, SetOptions{Encrypted: true}, DefaultSetOptions())
	assert.Equal(t, TierSession, DefaultSetOptions().Tier())
	assert.Equal(t, TierPersistent, SetOptions{Persistent: true}.Tier())
	assert.True(t, DefaultGetOptions().Encrypted)
}

func TestErrors(t *testing.T) {
	assert.ErrorIs(t, ErrBackendUnavailable, errors.ErrUnavailable)
	assert.ErrorIs(t, ErrTierNotConfigured, errors.ErrUnavailable)
	assert.ErrorIs(t, ErrItemNotFound, errors.ErrNotFound)
	assert.ErrorIs(t, ErrWriteFailed, errors.ErrPersistence)
	assert.ErrorIs(t, ErrInvalidKey, errors.ErrInvalidInput)
}
