package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storageDomain "github.com/allisson/securestorage/internal/storage/domain"
	"github.com/allisson/securestorage/internal/storage/repository"
)

type selectorFixture struct {
	selector   *SelectorService
	detector   *CapabilityDetectorService
	session    *faultyBackend
	persistent *faultyBackend
	memory     *repository.MemoryBackend
}

func newSelectorFixture(withPersistent bool) *selectorFixture {
	f := &selectorFixture{
		session: newFaultyBackend(),
		memory:  repository.NewMemoryBackend(),
	}

	backends := map[storageDomain.Tier]Backend{storageDomain.TierSession: f.session}
	if withPersistent {
		f.persistent = newFaultyBackend()
		backends[storageDomain.TierPersistent] = f.persistent
	}

	f.detector = NewCapabilityDetector(testNamespace, backends, nil, newTestLogger())
	f.selector = NewSelector(testNamespace, f.detector, backends, f.memory, newTestLogger())
	return f
}

func TestSelectorService_Write(t *testing.T) {
	ctx := context.Background()

	t.Run("session by default", func(t *testing.T) {
		f := newSelectorFixture(true)

		result := f.selector.Write(ctx, storageDomain.TierSession, "token", "AES:x")
		assert.Equal(t, storageDomain.WriteResult{
			Requested: storageDomain.TierSession,
			Tier:      storageDomain.TierSession,
		}, result)

		raw, err := f.session.Get(ctx, testNamespace+"token")
		require.NoError(t, err)
		assert.Equal(t, "AES:x", raw)
		assert.Equal(t, 0, f.persistent.Len())
		assert.Equal(t, 0, f.memory.Len())
	})

	t.Run("persistent when requested", func(t *testing.T) {
		f := newSelectorFixture(true)

		result := f.selector.Write(ctx, storageDomain.TierPersistent, "theme", `"dark"`)
		assert.Equal(t, storageDomain.TierPersistent, result.Tier)
		assert.False(t, result.Degraded)

		raw, err := f.persistent.Get(ctx, testNamespace+"theme")
		require.NoError(t, err)
		assert.Equal(t, `"dark"`, raw)
	})

	t.Run("memory directly", func(t *testing.T) {
		f := newSelectorFixture(false)

		result := f.selector.Write(ctx, storageDomain.TierMemory, "k", "1")
		assert.Equal(t, storageDomain.TierMemory, result.Tier)
		assert.False(t, result.Degraded)
		assert.Equal(t, 1, f.memory.Len())
	})

	t.Run("write error demotes to memory", func(t *testing.T) {
		f := newSelectorFixture(true)
		require.True(t, f.detector.IsStorageAvailable(ctx, storageDomain.TierSession))
		require.NoError(t, f.session.MemoryBackend.Set(ctx, testNamespace+"token", "AES:old"))
		f.session.fail(true, false, false, false)

		result := f.selector.Write(ctx, storageDomain.TierSession, "token", "AES:new")
		assert.True(t, result.Degraded)
		assert.Equal(t, storageDomain.TierMemory, result.Tier)
		assert.Equal(t, storageDomain.TierSession, result.Requested)
		assert.ErrorIs(t, result.Err, storageDomain.ErrWriteFailed)
		assert.ErrorIs(t, result.Err, errInjected)

		_, err := f.session.Get(ctx, testNamespace+"token")
		assert.ErrorIs(t, err, storageDomain.ErrItemNotFound, "stale copy should be removed")

		raw, read, ok := f.selector.Read(ctx, "token")
		require.True(t, ok)
		assert.Equal(t, "AES:new", raw)
		assert.Equal(t, storageDomain.TierMemory, read.Tier)
	})

	t.Run("unavailable tier demotes to memory", func(t *testing.T) {
		f := newSelectorFixture(true)
		f.session.fail(true, false, false, false)

		result := f.selector.Write(ctx, storageDomain.TierSession, "token", "AES:x")
		assert.True(t, result.Degraded)
		assert.ErrorIs(t, result.Err, storageDomain.ErrBackendUnavailable)
	})

	t.Run("unconfigured tier demotes to memory", func(t *testing.T) {
		f := newSelectorFixture(false)

		result := f.selector.Write(ctx, storageDomain.TierPersistent, "theme", `"dark"`)
		assert.True(t, result.Degraded)
		assert.ErrorIs(t, result.Err, storageDomain.ErrTierNotConfigured)

		raw, _, ok := f.selector.Read(ctx, "theme")
		require.True(t, ok)
		assert.Equal(t, `"dark"`, raw)
	})

	t.Run("recovered write drops the memory copy", func(t *testing.T) {
		f := newSelectorFixture(true)
		require.True(t, f.detector.IsStorageAvailable(ctx, storageDomain.TierSession))

		f.session.fail(true, false, false, false)
		require.True(t, f.selector.Write(ctx, storageDomain.TierSession, "token", "v1").Degraded)
		require.Equal(t, 1, f.memory.Len())

		f.session.fail(false, false, false, false)
		result := f.selector.Write(ctx, storageDomain.TierSession, "token", "v2")
		assert.False(t, result.Degraded)
		assert.Equal(t, 0, f.memory.Len())

		raw, read, ok := f.selector.Read(ctx, "token")
		require.True(t, ok)
		assert.Equal(t, "v2", raw)
		assert.Equal(t, storageDomain.TierSession, read.Tier)
	})
}

func TestSelectorService_Read(t *testing.T) {
	ctx := context.Background()

	t.Run("session before persistent", func(t *testing.T) {
		f := newSelectorFixture(true)
		f.selector.Write(ctx, storageDomain.TierPersistent, "k", "persistent")
		f.selector.Write(ctx, storageDomain.TierSession, "k", "session")

		raw, read, ok := f.selector.Read(ctx, "k")
		require.True(t, ok)
		assert.Equal(t, "session", raw)
		assert.Equal(t, storageDomain.TierSession, read.Tier)

		raw, read, ok = f.selector.Read(ctx, "k", storageDomain.TierPersistent)
		require.True(t, ok)
		assert.Equal(t, "persistent", raw)
		assert.Equal(t, storageDomain.TierPersistent, read.Tier)
	})

	t.Run("not found", func(t *testing.T) {
		f := newSelectorFixture(true)

		raw, _, ok := f.selector.Read(ctx, "missing")
		assert.False(t, ok)
		assert.Empty(t, raw)
	})

	t.Run("read error falls through to memory", func(t *testing.T) {
		f := newSelectorFixture(true)
		f.selector.Write(ctx, storageDomain.TierMemory, "k", "memory")
		require.True(t, f.detector.IsStorageAvailable(ctx, storageDomain.TierSession))
		f.session.fail(false, true, false, false)

		raw, read, ok := f.selector.Read(ctx, "k")
		require.True(t, ok)
		assert.Equal(t, "memory", raw)
		assert.Equal(t, storageDomain.TierMemory, read.Tier)
	})
}

func TestSelectorService_Remove(t *testing.T) {
	ctx := context.Background()
	f := newSelectorFixture(true)

	require.NoError(t, f.session.MemoryBackend.Set(ctx, testNamespace+"k", "s"))
	require.NoError(t, f.persistent.MemoryBackend.Set(ctx, testNamespace+"k", "p"))
	require.NoError(t, f.memory.Set(ctx, testNamespace+"k", "m"))

	// A failed probe must not stop the removal.
	f.session.fail(true, false, false, false)
	require.False(t, f.detector.IsStorageAvailable(ctx, storageDomain.TierSession))

	require.NoError(t, f.selector.Remove(ctx, "k"))
	assert.Equal(t, 0, f.session.Len())
	assert.Equal(t, 0, f.persistent.Len())
	assert.Equal(t, 0, f.memory.Len())

	_, _, ok := f.selector.Read(ctx, "k")
	assert.False(t, ok)

	t.Run("reports tier errors", func(t *testing.T) {
		f.persistent.fail(false, false, true, false)
		err := f.selector.Remove(ctx, "k")
		assert.ErrorIs(t, err, errInjected)
	})
}

func TestSelectorService_Enumerate(t *testing.T) {
	ctx := context.Background()
	f := newSelectorFixture(true)

	require.NoError(t, f.session.MemoryBackend.Set(ctx, testNamespace+"a", "1"))
	require.NoError(t, f.session.MemoryBackend.Set(ctx, testNamespace+"b", "2"))
	require.NoError(t, f.session.MemoryBackend.Set(ctx, testNamespace+storageDomain.ProbeKeySuffix, "1"))
	require.NoError(t, f.session.MemoryBackend.Set(ctx, "unrelated", "3"))

	keys, err := f.selector.Enumerate(ctx, storageDomain.TierSession)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	keys, err = f.selector.Enumerate(ctx, storageDomain.TierMemory)
	require.NoError(t, err)
	assert.Empty(t, keys)

	t.Run("unconfigured tier", func(t *testing.T) {
		_, err := newSelectorFixture(false).selector.Enumerate(ctx, storageDomain.TierPersistent)
		assert.ErrorIs(t, err, storageDomain.ErrTierNotConfigured)
	})

	t.Run("backend error", func(t *testing.T) {
		f.session.fail(false, false, false, true)
		_, err := f.selector.Enumerate(ctx, storageDomain.TierSession)
		assert.ErrorIs(t, err, errInjected)
	})
}

func TestSelectorService_Clear(t *testing.T) {
	ctx := context.Background()
	f := newSelectorFixture(true)

	f.selector.Write(ctx, storageDomain.TierSession, "a", "1")
	f.selector.Write(ctx, storageDomain.TierPersistent, "b", "2")
	f.selector.Write(ctx, storageDomain.TierMemory, "c", "3")
	require.NoError(t, f.session.MemoryBackend.Set(ctx, "unrelated", "keep"))
	require.NoError(t, f.persistent.MemoryBackend.Set(ctx, "other_app", "keep"))

	n, err := f.selector.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	raw, err := f.session.Get(ctx, "unrelated")
	require.NoError(t, err)
	assert.Equal(t, "keep", raw)
	assert.Equal(t, 1, f.persistent.Len())
	assert.Equal(t, 0, f.memory.Len())
}
