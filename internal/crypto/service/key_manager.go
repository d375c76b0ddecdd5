package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	cryptoDomain "github.com/allisson/securestorage/internal/crypto/domain"
)

// DefaultKeyName is the fixed record name of the storage key in the private key store.
const DefaultKeyName = "storage-key"

// KeyManagerService implements the KeyManager interface.
//
// It memoizes one EncryptionKey for the lifetime of the process. The first caller
// loads the exported key from the private key store or generates a new one; every
// concurrent first-use caller waits on that same in-flight call, so two callers can
// never create two different keys and orphan records sealed under the loser.
//
// The key store is optional. With a nil repository, or when a store operation
// fails, the key is kept in memory only: encryption keeps working but the key,
// and with it every encrypted record, is lost on restart.
type KeyManagerService struct {
	probe     CryptoProbe
	repo      KeyRepository
	keeper    cryptoDomain.KMSKeeper
	algorithm cryptoDomain.Algorithm
	logger    *slog.Logger

	group singleflight.Group
	mu    sync.RWMutex
	key   *cryptoDomain.EncryptionKey
}

// NewKeyManager creates a key manager. repo and keeper may be nil.
func NewKeyManager(
	probe CryptoProbe,
	repo KeyRepository,
	keeper cryptoDomain.KMSKeeper,
	alg cryptoDomain.Algorithm,
	logger *slog.Logger,
) *KeyManagerService {
	return &KeyManagerService{
		probe:     probe,
		repo:      repo,
		keeper:    keeper,
		algorithm: alg,
		logger:    logger,
	}
}

// GetOrCreateKey returns the memoized key, loading or creating it on first use.
func (km *KeyManagerService) GetOrCreateKey(ctx context.Context) (*cryptoDomain.EncryptionKey, error) {
	if !km.probe.IsCryptoAvailable() {
		return nil, cryptoDomain.ErrCryptoUnavailable
	}

	if key := km.cached(); key != nil {
		return key, nil
	}

	v, err, _ := km.group.Do(DefaultKeyName, func() (any, error) {
		if key := km.cached(); key != nil {
			return key, nil
		}

		key, err := km.loadOrCreate(ctx)
		if err != nil {
			return nil, err
		}

		km.mu.Lock()
		km.key = key
		km.mu.Unlock()
		return key, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*cryptoDomain.EncryptionKey), nil
}

// Reset zeroes and forgets the memoized key. The stored copy is left untouched.
func (km *KeyManagerService) Reset() {
	km.mu.Lock()
	defer km.mu.Unlock()

	if km.key != nil {
		cryptoDomain.Zero(km.key.Material)
		km.key = nil
	}
}

func (km *KeyManagerService) cached() *cryptoDomain.EncryptionKey {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return km.key
}

func (km *KeyManagerService) loadOrCreate(ctx context.Context) (*cryptoDomain.EncryptionKey, error) {
	if km.repo == nil {
		km.logger.Warn("key store unavailable, using in-memory key")
		return km.generate()
	}

	stored, err := km.repo.Get(ctx, DefaultKeyName)
	switch {
	case err == nil:
		key, importErr := km.importKey(ctx, stored)
		if importErr == nil {
			return key, nil
		}
		// The stored key is kept as is; overwriting it would orphan existing records.
		km.logger.Warn("stored key unusable, using in-memory key", slog.Any("error", importErr))
		return km.generate()

	case errors.Is(err, cryptoDomain.ErrKeyNotFound):
		key, genErr := km.generate()
		if genErr != nil {
			return nil, genErr
		}
		km.persist(ctx, key)
		return key, nil

	default:
		km.logger.Warn("failed to load key, using in-memory key", slog.Any("error", err))
		return km.generate()
	}
}

func (km *KeyManagerService) generate() (*cryptoDomain.EncryptionKey, error) {
	material := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(material); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	return &cryptoDomain.EncryptionKey{
		ID:          uuid.Must(uuid.NewV7()),
		Algorithm:   km.algorithm,
		Material:    material,
		Extractable: true,
		Usages:      []cryptoDomain.KeyUsage{cryptoDomain.UsageEncrypt, cryptoDomain.UsageDecrypt},
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func (km *KeyManagerService) persist(ctx context.Context, key *cryptoDomain.EncryptionKey) {
	material := key.Export()
	defer cryptoDomain.Zero(material)

	stored := &cryptoDomain.StoredKey{
		ID:        key.ID,
		Algorithm: key.Algorithm,
		Material:  material,
		CreatedAt: key.CreatedAt,
	}

	if km.keeper != nil {
		wrapped, err := km.keeper.Encrypt(ctx, material)
		if err != nil {
			km.logger.Warn("failed to wrap key, using in-memory key", slog.Any("error", err))
			return
		}
		stored.Material = wrapped
		stored.Wrapped = true
	}

	if err := km.repo.Put(ctx, DefaultKeyName, stored); err != nil {
		km.logger.Warn("failed to persist key, using in-memory key", slog.Any("error", err))
		return
	}

	key.Persisted = true
	km.logger.Debug("storage key created",
		slog.String("key_id", key.ID.String()),
		slog.Bool("wrapped", stored.Wrapped),
	)
}

func (km *KeyManagerService) importKey(
	ctx context.Context,
	stored *cryptoDomain.StoredKey,
) (*cryptoDomain.EncryptionKey, error) {
	material := stored.Material
	if stored.Wrapped {
		if km.keeper == nil {
			return nil, fmt.Errorf("%w: key is wrapped but no KMS keeper is configured",
				cryptoDomain.ErrKeyStoreUnavailable)
		}
		unwrapped, err := km.keeper.Decrypt(ctx, stored.Material)
		if err != nil {
			return nil, fmt.Errorf("failed to unwrap key: %w", err)
		}
		material = unwrapped
	}

	if len(material) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	alg := stored.Algorithm
	if alg == "" {
		alg = km.algorithm
	}

	return &cryptoDomain.EncryptionKey{
		ID:          stored.ID,
		Algorithm:   alg,
		Material:    material,
		Extractable: true,
		Usages:      []cryptoDomain.KeyUsage{cryptoDomain.UsageEncrypt, cryptoDomain.UsageDecrypt},
		Persisted:   true,
		CreatedAt:   stored.CreatedAt,
	}, nil
}
