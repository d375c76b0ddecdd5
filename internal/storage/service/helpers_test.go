package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/allisson/securestorage/internal/storage/repository"
)

var errInjected = errors.New("quota exceeded")

// faultyBackend wraps a MemoryBackend and fails the operations switched on.
type faultyBackend struct {
	*repository.MemoryBackend

	mu         sync.Mutex
	failSet    bool
	failGet    bool
	failDelete bool
	failKeys   bool
	setCalls   int
}

func newFaultyBackend() *faultyBackend {
	return &faultyBackend{MemoryBackend: repository.NewMemoryBackend()}
}

func (f *faultyBackend) fail(set, get, del, keys bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSet, f.failGet, f.failDelete, f.failKeys = set, get, del, keys
}

func (f *faultyBackend) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	f.setCalls++
	fail := f.failSet
	f.mu.Unlock()

	if fail {
		return errInjected
	}
	return f.MemoryBackend.Set(ctx, key, value)
}

func (f *faultyBackend) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	fail := f.failGet
	f.mu.Unlock()

	if fail {
		return "", errInjected
	}
	return f.MemoryBackend.Get(ctx, key)
}

func (f *faultyBackend) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	fail := f.failDelete
	f.mu.Unlock()

	if fail {
		return errInjected
	}
	return f.MemoryBackend.Delete(ctx, key)
}

func (f *faultyBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	f.mu.Lock()
	fail := f.failKeys
	f.mu.Unlock()

	if fail {
		return nil, errInjected
	}
	return f.MemoryBackend.Keys(ctx, prefix)
}

func (f *faultyBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setCalls
}

type stubProbe bool

func (s stubProbe) IsCryptoAvailable() bool { return bool(s) }

func newTestLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
