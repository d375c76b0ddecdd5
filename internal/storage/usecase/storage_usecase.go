package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	cryptoDomain "github.com/allisson/securestorage/internal/crypto/domain"
	apperrors "github.com/allisson/securestorage/internal/errors"
	storageDomain "github.com/allisson/securestorage/internal/storage/domain"
	"github.com/allisson/securestorage/internal/validation"
)

// storageUseCase implements StorageUseCase.
type storageUseCase struct {
	selector Selector
	detector CapabilityDetector
	cipher   Cipher
	logger   *slog.Logger
}

// NewStorageUseCase creates a StorageUseCase. cipher may be nil, in which case every
// value is stored as plain JSON and tagged records are unreadable.
func NewStorageUseCase(
	selector Selector,
	detector CapabilityDetector,
	cipher Cipher,
	logger *slog.Logger,
) StorageUseCase {
	return &storageUseCase{
		selector: selector,
		detector: detector,
		cipher:   cipher,
		logger:   logger,
	}
}

// Set JSON-encodes value, seals it when opts.Encrypted and crypto is available, and
// writes it to the tier opts selects.
func (s *storageUseCase) Set(
	ctx context.Context,
	key string,
	value any,
	opts storageDomain.SetOptions,
) (storageDomain.WriteResult, error) {
	if err := validation.StorageKey(key); err != nil {
		return storageDomain.WriteResult{}, fmt.Errorf("%w: %w", storageDomain.ErrInvalidKey, err)
	}

	plaintext, err := json.Marshal(value)
	if err != nil {
		return storageDomain.WriteResult{}, apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}

	raw := string(plaintext)
	if opts.Encrypted {
		sealed, err := s.seal(ctx, plaintext)
		switch {
		case err == nil:
			raw = sealed
		case errors.Is(err, cryptoDomain.ErrCryptoUnavailable):
			s.logger.Warn("crypto unavailable, storing value unencrypted", slog.String("key", key))
		default:
			return storageDomain.WriteResult{}, err
		}
	}

	return s.selector.Write(ctx, opts.Tier(), key, raw), nil
}

func (s *storageUseCase) seal(ctx context.Context, plaintext []byte) (string, error) {
	if s.cipher == nil || !s.detector.IsCryptoAvailable() {
		return "", cryptoDomain.ErrCryptoUnavailable
	}
	return s.cipher.EncryptJSON(ctx, plaintext)
}

// Get reads key from the session tier, the persistent tier and memory in that order
// and decodes the stored record according to its format.
func (s *storageUseCase) Get(
	ctx context.Context,
	key string,
	opts storageDomain.GetOptions,
) (json.RawMessage, storageDomain.ReadResult, error) {
	if err := validation.StorageKey(key); err != nil {
		return nil, storageDomain.ReadResult{}, fmt.Errorf(
			"%w: %w: %w", storageDomain.ErrItemNotFound, storageDomain.ErrInvalidKey, err,
		)
	}

	raw, result, ok := s.selector.Read(ctx, key)
	if !ok {
		return nil, storageDomain.ReadResult{}, storageDomain.ErrItemNotFound
	}

	switch encoding := storageDomain.DetectEncoding(raw); encoding {
	case storageDomain.EncodingPlain:
		return json.RawMessage(raw), result, nil

	case storageDomain.EncodingEncrypted:
		if !opts.Encrypted {
			s.logger.Warn("encrypted record read without decryption",
				slog.String("key", key),
				slog.String("tier", result.Tier.String()),
			)
			return nil, result, apperrors.Wrap(storageDomain.ErrItemNotFound, "record is encrypted")
		}
		if s.cipher == nil {
			return nil, result, fmt.Errorf("%w: %w", storageDomain.ErrItemNotFound, cryptoDomain.ErrCryptoUnavailable)
		}

		value, err := s.cipher.Decrypt(ctx, raw)
		if err != nil {
			s.logger.Warn("failed to decrypt record",
				slog.String("key", key),
				slog.String("tier", result.Tier.String()),
				slog.Any("error", err),
			)
			return nil, result, fmt.Errorf("%w: %w", storageDomain.ErrItemNotFound, err)
		}
		return value, result, nil

	default:
		s.logger.Warn("unreadable record format",
			slog.String("key", key),
			slog.String("tier", result.Tier.String()),
			slog.String("encoding", encoding.String()),
		)
		return nil, result, apperrors.Wrapf(storageDomain.ErrItemNotFound, "%s record", encoding)
	}
}

// Remove deletes key from every tier.
func (s *storageUseCase) Remove(ctx context.Context, key string) error {
	if err := validation.StorageKey(key); err != nil {
		return fmt.Errorf("%w: %w", storageDomain.ErrInvalidKey, err)
	}
	return s.selector.Remove(ctx, key)
}

// Has reports whether Get with default options would return a value.
func (s *storageUseCase) Has(ctx context.Context, key string) bool {
	_, _, err := s.Get(ctx, key, storageDomain.DefaultGetOptions())
	return err == nil
}

// Clear removes every namespaced record from every tier.
func (s *storageUseCase) Clear(ctx context.Context) (int64, error) {
	return s.selector.Clear(ctx)
}
