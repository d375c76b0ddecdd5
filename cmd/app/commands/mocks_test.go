package commands

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	storageDomain "github.com/allisson/securestorage/internal/storage/domain"
	storageUseCase "github.com/allisson/securestorage/internal/storage/usecase"
)

type mockItemStore struct {
	mock.Mock
}

func (m *mockItemStore) SetItem(ctx context.Context, key string, value any, opts storageDomain.SetOptions) bool {
	args := m.Called(ctx, key, value, opts)
	return args.Bool(0)
}

func (m *mockItemStore) GetItem(
	ctx context.Context,
	key string,
	opts storageDomain.GetOptions,
) (json.RawMessage, bool) {
	args := m.Called(ctx, key, opts)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(json.RawMessage), args.Bool(1)
}

func (m *mockItemStore) HasItem(ctx context.Context, key string) bool {
	args := m.Called(ctx, key)
	return args.Bool(0)
}

func (m *mockItemStore) RemoveItem(ctx context.Context, key string) {
	m.Called(ctx, key)
}

func (m *mockItemStore) Clear(ctx context.Context) {
	m.Called(ctx)
}

type mockLegacyMigrator struct {
	mock.Mock
}

func (m *mockLegacyMigrator) MigrateLegacy(ctx context.Context) storageUseCase.MigrationReport {
	args := m.Called(ctx)
	return args.Get(0).(storageUseCase.MigrationReport)
}

type mockPrefixedStore struct {
	mock.Mock
}

func (m *mockPrefixedStore) Set(ctx context.Context, key string, value any) bool {
	args := m.Called(ctx, key, value)
	return args.Bool(0)
}

func (m *mockPrefixedStore) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(json.RawMessage), args.Bool(1)
}

type mockRecordWriter struct {
	mock.Mock
}

func (m *mockRecordWriter) Write(
	ctx context.Context,
	tier storageDomain.Tier,
	key, raw string,
) storageDomain.WriteResult {
	args := m.Called(ctx, tier, key, raw)
	return args.Get(0).(storageDomain.WriteResult)
}

type mockCapabilityDetector struct {
	mock.Mock
}

func (m *mockCapabilityDetector) IsCryptoAvailable() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *mockCapabilityDetector) IsStorageAvailable(ctx context.Context, tier storageDomain.Tier) bool {
	args := m.Called(ctx, tier)
	return args.Bool(0)
}
