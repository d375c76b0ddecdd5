package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/securestorage/internal/crypto/domain"
	cryptoService "github.com/allisson/securestorage/internal/crypto/service"
	storageDomain "github.com/allisson/securestorage/internal/storage/domain"
	"github.com/allisson/securestorage/internal/storage/repository"
	storageService "github.com/allisson/securestorage/internal/storage/service"
)

const testNamespace = "securestorage_"

var errInjected = errors.New("quota exceeded")

// writeFailingBackend is a MemoryBackend whose writes can be switched off.
type writeFailingBackend struct {
	*repository.MemoryBackend

	mu         sync.Mutex
	failWrites bool
}

func newWriteFailingBackend() *writeFailingBackend {
	return &writeFailingBackend{MemoryBackend: repository.NewMemoryBackend()}
}

func (b *writeFailingBackend) setFailWrites(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failWrites = fail
}

func (b *writeFailingBackend) Set(ctx context.Context, key, value string) error {
	b.mu.Lock()
	fail := b.failWrites
	b.mu.Unlock()

	if fail {
		return errInjected
	}
	return b.MemoryBackend.Set(ctx, key, value)
}

// raw returns the stored record for a logical key.
func (b *writeFailingBackend) raw(t *testing.T, key string) string {
	t.Helper()
	value, err := b.Get(context.Background(), testNamespace+key)
	require.NoError(t, err)
	return value
}

type fixture struct {
	session    *writeFailingBackend
	persistent *writeFailingBackend
	memory     *repository.MemoryBackend
	detector   *storageService.CapabilityDetectorService
	selector   *storageService.SelectorService
	cipher     *cryptoService.CipherService
	legacy     *cryptoService.LegacyObfuscatorService
	useCase    StorageUseCase
	migration  MigrationUseCase
	storage    *SecureStorage
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// newFixture wires the real tier and crypto services over in-memory backends.
func newFixture(t *testing.T, cryptoEnabled bool) *fixture {
	t.Helper()
	logger := newTestLogger()

	aeadManager := cryptoService.NewAEADManager()
	probe := cryptoService.NewCryptoProbe(cryptoEnabled, cryptoDomain.AESGCM, aeadManager, nil)
	keyManager := cryptoService.NewKeyManager(probe, nil, nil, cryptoDomain.AESGCM, logger)

	f := &fixture{
		session:    newWriteFailingBackend(),
		persistent: newWriteFailingBackend(),
		memory:     repository.NewMemoryBackend(),
		cipher:     cryptoService.NewCipher(keyManager, aeadManager, cryptoDomain.AESGCM),
		legacy:     cryptoService.NewLegacyObfuscator(""),
	}

	backends := map[storageDomain.Tier]storageService.Backend{
		storageDomain.TierSession:    f.session,
		storageDomain.TierPersistent: f.persistent,
	}
	f.detector = storageService.NewCapabilityDetector(testNamespace, backends, probe, logger)
	f.selector = storageService.NewSelector(testNamespace, f.detector, backends, f.memory, logger)
	f.useCase = NewStorageUseCase(f.selector, f.detector, f.cipher, logger)
	f.migration = NewMigrationUseCase(f.selector, f.detector, f.cipher, f.legacy, logger)
	f.storage = NewSecureStorage(f.useCase, f.migration, logger)
	return f
}

// seed writes a raw record straight into a backend, bypassing the facade.
func seed(t *testing.T, backend storageService.Backend, key, raw string) {
	t.Helper()
	require.NoError(t, backend.Set(context.Background(), testNamespace+key, raw))
}
