package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/securestorage/internal/metrics"
	storageDomain "github.com/allisson/securestorage/internal/storage/domain"
)

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func (m *mockBusinessMetrics) RecordFallback(ctx context.Context, requested, actual string) {
	m.Called(ctx, requested, actual)
}

func (m *mockBusinessMetrics) RecordRecords(ctx context.Context, domain, outcome string, count int) {
	m.Called(ctx, domain, outcome, count)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

// mockStorageUseCase is a mock implementation of StorageUseCase for testing.
type mockStorageUseCase struct {
	mock.Mock
}

func (m *mockStorageUseCase) Set(
	ctx context.Context,
	key string,
	value any,
	opts storageDomain.SetOptions,
) (storageDomain.WriteResult, error) {
	args := m.Called(ctx, key, value, opts)
	return args.Get(0).(storageDomain.WriteResult), args.Error(1)
}

func (m *mockStorageUseCase) Get(
	ctx context.Context,
	key string,
	opts storageDomain.GetOptions,
) (json.RawMessage, storageDomain.ReadResult, error) {
	args := m.Called(ctx, key, opts)
	var value json.RawMessage
	if v := args.Get(0); v != nil {
		value = v.(json.RawMessage)
	}
	return value, args.Get(1).(storageDomain.ReadResult), args.Error(2)
}

func (m *mockStorageUseCase) Remove(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockStorageUseCase) Has(ctx context.Context, key string) bool {
	return m.Called(ctx, key).Bool(0)
}

func (m *mockStorageUseCase) Clear(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// mockMigrationUseCase is a mock implementation of MigrationUseCase for testing.
type mockMigrationUseCase struct {
	mock.Mock
}

func (m *mockMigrationUseCase) Migrate(ctx context.Context) MigrationReport {
	return m.Called(ctx).Get(0).(MigrationReport)
}

func expectRecorded(ctx context.Context, m *mockBusinessMetrics, domain, operation, status string) {
	m.On("RecordOperation", ctx, domain, operation, status).Return().Once()
	m.On("RecordDuration", ctx, domain, operation, mock.AnythingOfType("time.Duration"), status).
		Return().
		Once()
}

func TestNewStorageUseCaseWithMetrics(t *testing.T) {
	decorator := NewStorageUseCaseWithMetrics(&mockStorageUseCase{}, &mockBusinessMetrics{})

	assert.NotNil(t, decorator)
	assert.Implements(t, (*StorageUseCase)(nil), decorator)
}

func TestMetricsDecorator_Set(t *testing.T) {
	ctx := context.Background()
	opts := storageDomain.DefaultSetOptions()

	t.Run("Success_RecordsSuccessMetrics", func(t *testing.T) {
		mockUseCase := &mockStorageUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		result := storageDomain.WriteResult{Requested: storageDomain.TierSession, Tier: storageDomain.TierSession}

		mockUseCase.On("Set", ctx, "k", "v", opts).Return(result, nil).Once()
		expectRecorded(ctx, mockMetrics, "storage", "set_item", "success")

		got, err := NewStorageUseCaseWithMetrics(mockUseCase, mockMetrics).Set(ctx, "k", "v", opts)

		assert.NoError(t, err)
		assert.Equal(t, result, got)
		mockUseCase.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
		mockMetrics.AssertNotCalled(t, "RecordFallback", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Success_RecordsFallback", func(t *testing.T) {
		mockUseCase := &mockStorageUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		result := storageDomain.WriteResult{
			Requested: storageDomain.TierSession,
			Tier:      storageDomain.TierMemory,
			Degraded:  true,
			Err:       storageDomain.ErrBackendUnavailable,
		}

		mockUseCase.On("Set", ctx, "k", "v", opts).Return(result, nil).Once()
		mockMetrics.On("RecordFallback", ctx, "session", "memory").Return().Once()
		expectRecorded(ctx, mockMetrics, "storage", "set_item", "degraded")

		_, err := NewStorageUseCaseWithMetrics(mockUseCase, mockMetrics).Set(ctx, "k", "v", opts)

		assert.NoError(t, err)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Error_RecordsErrorMetrics", func(t *testing.T) {
		mockUseCase := &mockStorageUseCase{}
		mockMetrics := &mockBusinessMetrics{}

		mockUseCase.On("Set", ctx, "", "v", opts).
			Return(storageDomain.WriteResult{}, storageDomain.ErrInvalidKey).
			Once()
		expectRecorded(ctx, mockMetrics, "storage", "set_item", "invalid_input")

		_, err := NewStorageUseCaseWithMetrics(mockUseCase, mockMetrics).Set(ctx, "", "v", opts)

		assert.ErrorIs(t, err, storageDomain.ErrInvalidKey)
		mockMetrics.AssertExpectations(t)
	})
}

func TestMetricsDecorator_Get(t *testing.T) {
	ctx := context.Background()
	opts := storageDomain.DefaultGetOptions()

	tests := []struct {
		name   string
		value  json.RawMessage
		err    error
		status string
	}{
		{"Success", json.RawMessage(`1`), nil, "success"},
		{"NotFound", nil, storageDomain.ErrItemNotFound, "not_found"},
		{"Unavailable", nil, storageDomain.ErrBackendUnavailable, "unavailable"},
		{"Error", nil, errors.New("boom"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUseCase := &mockStorageUseCase{}
			mockMetrics := &mockBusinessMetrics{}
			mockUseCase.On("Get", ctx, "k", opts).Return(tt.value, storageDomain.ReadResult{}, tt.err).Once()
			expectRecorded(ctx, mockMetrics, "storage", "get_item", tt.status)

			value, _, err := NewStorageUseCaseWithMetrics(mockUseCase, mockMetrics).Get(ctx, "k", opts)

			assert.Equal(t, tt.value, value)
			assert.Equal(t, tt.err, err)
			mockMetrics.AssertExpectations(t)
		})
	}
}

func TestMetricsDecorator_RemoveHasClear(t *testing.T) {
	ctx := context.Background()

	t.Run("Remove", func(t *testing.T) {
		mockUseCase := &mockStorageUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		mockUseCase.On("Remove", ctx, "k").Return(errInjected).Once()
		expectRecorded(ctx, mockMetrics, "storage", "remove_item", "error")

		err := NewStorageUseCaseWithMetrics(mockUseCase, mockMetrics).Remove(ctx, "k")

		assert.ErrorIs(t, err, errInjected)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Has", func(t *testing.T) {
		mockUseCase := &mockStorageUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		mockUseCase.On("Has", ctx, "k").Return(false).Once()
		expectRecorded(ctx, mockMetrics, "storage", "has_item", "not_found")

		assert.False(t, NewStorageUseCaseWithMetrics(mockUseCase, mockMetrics).Has(ctx, "k"))
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Clear", func(t *testing.T) {
		mockUseCase := &mockStorageUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		mockUseCase.On("Clear", ctx).Return(int64(3), nil).Once()
		expectRecorded(ctx, mockMetrics, "storage", "clear", "success")

		removed, err := NewStorageUseCaseWithMetrics(mockUseCase, mockMetrics).Clear(ctx)

		assert.NoError(t, err)
		assert.Equal(t, int64(3), removed)
		mockMetrics.AssertExpectations(t)
	})
}

func TestMetricsDecorator_Migrate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		report  MigrationReport
		status  string
		records map[string]int
	}{
		{"Success", MigrationReport{Scanned: 2, Migrated: 2}, "success", map[string]int{"migrated": 2}},
		{
			"Partial",
			MigrationReport{Scanned: 4, Migrated: 1, Skipped: 2, Failed: 1},
			"partial",
			map[string]int{"migrated": 1, "skipped": 2, "failed": 1},
		},
		{"Skipped", MigrationReport{CryptoUnavailable: true}, "skipped", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUseCase := &mockMigrationUseCase{}
			mockMetrics := &mockBusinessMetrics{}
			mockUseCase.On("Migrate", ctx).Return(tt.report).Once()
			expectRecorded(ctx, mockMetrics, "migration", "migrate", tt.status)
			for outcome, count := range tt.records {
				mockMetrics.On("RecordRecords", ctx, "migration", outcome, count).Return().Once()
			}

			report := NewMigrationUseCaseWithMetrics(mockUseCase, mockMetrics).Migrate(ctx)

			assert.Equal(t, tt.report, report)
			mockMetrics.AssertExpectations(t)
		})
	}
}
