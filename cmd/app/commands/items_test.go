package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	storageDomain "github.com/allisson/securestorage/internal/storage/domain"
)

func TestRunSetItem(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	t.Run("encrypted session write", func(t *testing.T) {
		store := &mockItemStore{}
		store.On("SetItem", ctx, "profile", json.RawMessage(`{"name":"a"}`),
			storageDomain.SetOptions{Encrypted: true}).Return(true)

		var out bytes.Buffer
		err := RunSetItem(ctx, store, logger, &out, "profile", `{"name":"a"}`, false, false)

		require.NoError(t, err)
		assert.Equal(t, "Stored profile\n", out.String())
		store.AssertExpectations(t)
	})

	t.Run("plain persistent write", func(t *testing.T) {
		store := &mockItemStore{}
		store.On("SetItem", ctx, "theme", json.RawMessage(`"dark"`),
			storageDomain.SetOptions{Persistent: true}).Return(true)

		var out bytes.Buffer
		err := RunSetItem(ctx, store, logger, &out, "theme", `"dark"`, true, true)

		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("value is not json", func(t *testing.T) {
		store := &mockItemStore{}

		var out bytes.Buffer
		err := RunSetItem(ctx, store, logger, &out, "theme", `dark`, false, false)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "valid JSON document")
		assert.Empty(t, out.String())
		store.AssertNotCalled(t, "SetItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store rejects the write", func(t *testing.T) {
		store := &mockItemStore{}
		store.On("SetItem", ctx, "", json.RawMessage(`1`), mock.Anything).Return(false)

		var out bytes.Buffer
		err := RunSetItem(ctx, store, logger, &out, "", `1`, false, false)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to store item")
	})
}

func TestRunGetItem(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		store := &mockItemStore{}
		store.On("GetItem", ctx, "profile", storageDomain.GetOptions{Encrypted: true}).
			Return(json.RawMessage(`{"name":"a"}`), true)

		var out bytes.Buffer
		require.NoError(t, RunGetItem(ctx, store, &out, "profile", false))
		assert.Equal(t, "{\"name\":\"a\"}\n", out.String())
	})

	t.Run("plain read", func(t *testing.T) {
		store := &mockItemStore{}
		store.On("GetItem", ctx, "theme", storageDomain.GetOptions{}).
			Return(json.RawMessage(`"dark"`), true)

		var out bytes.Buffer
		require.NoError(t, RunGetItem(ctx, store, &out, "theme", true))
		assert.Equal(t, "\"dark\"\n", out.String())
	})

	t.Run("not found", func(t *testing.T) {
		store := &mockItemStore{}
		store.On("GetItem", ctx, "missing", mock.Anything).Return(nil, false)

		var out bytes.Buffer
		err := RunGetItem(ctx, store, &out, "missing", false)

		require.Error(t, err)
		assert.True(t, errors.Is(err, storageDomain.ErrItemNotFound))
		assert.Empty(t, out.String())
	})
}

func TestRunHasRemoveClear(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	store := &mockItemStore{}
	store.On("HasItem", ctx, "profile").Return(true).Once()
	store.On("RemoveItem", ctx, "profile").Once()
	store.On("HasItem", ctx, "profile").Return(false).Once()
	store.On("Clear", ctx).Once()

	var out bytes.Buffer
	require.NoError(t, RunHasItem(ctx, store, &out, "profile"))
	require.NoError(t, RunRemoveItem(ctx, store, logger, &out, "profile"))
	require.NoError(t, RunHasItem(ctx, store, &out, "profile"))
	require.NoError(t, RunClear(ctx, store, logger, &out))

	assert.Equal(t, "true\nRemoved profile\nfalse\nStorage cleared\n", out.String())
	store.AssertExpectations(t)
}

func TestRunPrefixedSetGet(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		store := &mockPrefixedStore{}
		store.On("Set", ctx, "token", json.RawMessage(`"abc"`)).Return(true)
		store.On("Get", ctx, "token").Return(json.RawMessage(`"abc"`), true)

		var out bytes.Buffer
		require.NoError(t, RunPrefixedSet(ctx, store, &out, "token", `"abc"`))
		require.NoError(t, RunPrefixedGet(ctx, store, &out, "token"))

		assert.Equal(t, "Stored token\n\"abc\"\n", out.String())
		store.AssertExpectations(t)
	})

	t.Run("set failure", func(t *testing.T) {
		store := &mockPrefixedStore{}
		store.On("Set", ctx, "token", json.RawMessage(`"abc"`)).Return(false)

		var out bytes.Buffer
		err := RunPrefixedSet(ctx, store, &out, "token", `"abc"`)
		require.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		store := &mockPrefixedStore{}

		var out bytes.Buffer
		err := RunPrefixedSet(ctx, store, &out, "token", `{`)
		require.Error(t, err)
		store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("get miss", func(t *testing.T) {
		store := &mockPrefixedStore{}
		store.On("Get", ctx, "token").Return(nil, false)

		var out bytes.Buffer
		err := RunPrefixedGet(ctx, store, &out, "token")
		require.ErrorIs(t, err, storageDomain.ErrItemNotFound)
	})
}
