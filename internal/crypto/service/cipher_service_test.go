package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/securestorage/internal/crypto/domain"
)

func newTestCipher(alg cryptoDomain.Algorithm) (*CipherService, *KeyManagerService) {
	km := NewKeyManager(stubProbe(true), nil, nil, alg, newTestLogger())
	return NewCipher(km, NewAEADManager(), alg), km
}

func TestCipherService_EncryptDecrypt(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		alg  cryptoDomain.Algorithm
		tag  string
	}{
		{name: "AES-GCM", alg: cryptoDomain.AESGCM, tag: "AES:"},
		{name: "XChaCha20-Poly1305", alg: cryptoDomain.XChaCha20, tag: "XC20:"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cipher, _ := newTestCipher(tc.alg)
			value := map[string]any{"token": "abc", "exp": float64(123)}

			record, err := cipher.Encrypt(ctx, value)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(record, tc.tag))

			payload, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(record, tc.tag))
			require.NoError(t, err)
			plaintext, _ := json.Marshal(value)
			assert.Len(t, payload, tc.alg.NonceSize()+len(plaintext)+16)

			raw, err := cipher.Decrypt(ctx, record)
			require.NoError(t, err)

			var got map[string]any
			require.NoError(t, json.Unmarshal(raw, &got))
			assert.Equal(t, value, got)
		})
	}
}

func TestCipherService_FreshNonce(t *testing.T) {
	ctx := context.Background()
	cipher, _ := newTestCipher(cryptoDomain.AESGCM)

	first, err := cipher.Encrypt(ctx, "same")
	require.NoError(t, err)
	second, err := cipher.Encrypt(ctx, "same")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestCipherService_DecryptsEveryKnownTag(t *testing.T) {
	ctx := context.Background()
	km := NewKeyManager(stubProbe(true), nil, nil, cryptoDomain.AESGCM, newTestLogger())
	aes := NewCipher(km, NewAEADManager(), cryptoDomain.AESGCM)
	xchacha := NewCipher(km, NewAEADManager(), cryptoDomain.XChaCha20)

	record, err := aes.Encrypt(ctx, []int{1, 2, 3})
	require.NoError(t, err)

	raw, err := xchacha.Decrypt(ctx, record)
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2,3]`, string(raw))
}

func TestCipherService_DecryptFailures(t *testing.T) {
	ctx := context.Background()
	cipher, km := newTestCipher(cryptoDomain.AESGCM)

	valid, err := cipher.Encrypt(ctx, map[string]string{"a": "b"})
	require.NoError(t, err)

	tampered := func() string {
		payload, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(valid, "AES:"))
		require.NoError(t, err)
		payload[len(payload)-1] ^= 0x01
		return "AES:" + base64.StdEncoding.EncodeToString(payload)
	}

	notJSON := func() string {
		key, err := km.GetOrCreateKey(ctx)
		require.NoError(t, err)
		aead, err := NewAESGCM(key.Material)
		require.NoError(t, err)
		ciphertext, nonce, err := aead.Encrypt([]byte("not json"), nil)
		require.NoError(t, err)
		return "AES:" + base64.StdEncoding.EncodeToString(append(nonce, ciphertext...))
	}

	cases := []struct {
		name   string
		record string
	}{
		{name: "untagged", record: `{"a":"b"}`},
		{name: "invalid base64", record: "AES:!!!not-base64!!!"},
		{name: "empty payload", record: "AES:"},
		{name: "payload shorter than nonce", record: "AES:" + base64.StdEncoding.EncodeToString([]byte("short"))},
		{name: "tampered ciphertext", record: tampered()},
		{name: "plaintext is not JSON", record: notJSON()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := cipher.Decrypt(ctx, tc.record)
			assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
			assert.Nil(t, raw)
		})
	}

	t.Run("different key", func(t *testing.T) {
		other, _ := newTestCipher(cryptoDomain.AESGCM)
		raw, err := other.Decrypt(ctx, valid)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
		assert.Nil(t, raw)
	})
}

func TestCipherService_CryptoUnavailable(t *testing.T) {
	ctx := context.Background()
	km := NewKeyManager(stubProbe(false), nil, nil, cryptoDomain.AESGCM, newTestLogger())
	cipher := NewCipher(km, NewAEADManager(), cryptoDomain.AESGCM)

	_, err := cipher.Encrypt(ctx, "value")
	assert.ErrorIs(t, err, cryptoDomain.ErrCryptoUnavailable)

	_, err = cipher.Decrypt(ctx, "AES:"+base64.StdEncoding.EncodeToString(make([]byte, 40)))
	assert.ErrorIs(t, err, cryptoDomain.ErrCryptoUnavailable)
}

func TestCipherService_InvalidInput(t *testing.T) {
	ctx := context.Background()
	cipher, _ := newTestCipher(cryptoDomain.AESGCM)

	t.Run("value cannot be encoded", func(t *testing.T) {
		_, err := cipher.Encrypt(ctx, make(chan int))
		assert.Error(t, err)
	})

	t.Run("plaintext is not JSON", func(t *testing.T) {
		_, err := cipher.EncryptJSON(ctx, []byte("{broken"))
		assert.Error(t, err)
	})
}
