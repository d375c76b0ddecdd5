package usecase

import (
	"context"
	"encoding/json"
	"time"

	apperrors "github.com/allisson/securestorage/internal/errors"
	"github.com/allisson/securestorage/internal/metrics"
	storageDomain "github.com/allisson/securestorage/internal/storage/domain"
)

const (
	storageMetricsDomain   = "storage"
	migrationMetricsDomain = "migration"
)

// storageUseCaseWithMetrics decorates StorageUseCase with metrics instrumentation.
type storageUseCaseWithMetrics struct {
	next    StorageUseCase
	metrics metrics.BusinessMetrics
}

// NewStorageUseCaseWithMetrics wraps a StorageUseCase with metrics recording.
func NewStorageUseCaseWithMetrics(useCase StorageUseCase, m metrics.BusinessMetrics) StorageUseCase {
	return &storageUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (s *storageUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, status string) {
	s.metrics.RecordOperation(ctx, storageMetricsDomain, operation, status)
	s.metrics.RecordDuration(ctx, storageMetricsDomain, operation, time.Since(start), status)
}

// Set records metrics for writes and counts every write demoted to memory.
func (s *storageUseCaseWithMetrics) Set(
	ctx context.Context,
	key string,
	value any,
	opts storageDomain.SetOptions,
) (storageDomain.WriteResult, error) {
	start := time.Now()
	result, err := s.next.Set(ctx, key, value, opts)

	status := "success"
	switch {
	case err != nil:
		status = apperrors.Kind(err)
	case result.Degraded:
		status = "degraded"
		s.metrics.RecordFallback(ctx, result.Requested.String(), result.Tier.String())
	}

	s.record(ctx, "set_item", start, status)

	return result, err
}

// Get records metrics for reads, telling misses apart from other failures.
func (s *storageUseCaseWithMetrics) Get(
	ctx context.Context,
	key string,
	opts storageDomain.GetOptions,
) (json.RawMessage, storageDomain.ReadResult, error) {
	start := time.Now()
	value, result, err := s.next.Get(ctx, key, opts)

	status := "success"
	if err != nil {
		status = apperrors.Kind(err)
	}

	s.record(ctx, "get_item", start, status)

	return value, result, err
}

// Remove records metrics for deletions.
func (s *storageUseCaseWithMetrics) Remove(ctx context.Context, key string) error {
	start := time.Now()
	err := s.next.Remove(ctx, key)

	status := "success"
	if err != nil {
		status = apperrors.Kind(err)
	}

	s.record(ctx, "remove_item", start, status)

	return err
}

// Has records metrics for existence checks.
func (s *storageUseCaseWithMetrics) Has(ctx context.Context, key string) bool {
	start := time.Now()
	found := s.next.Has(ctx, key)

	status := "success"
	if !found {
		status = "not_found"
	}

	s.record(ctx, "has_item", start, status)

	return found
}

// Clear records metrics for namespace clears.
func (s *storageUseCaseWithMetrics) Clear(ctx context.Context) (int64, error) {
	start := time.Now()
	removed, err := s.next.Clear(ctx)

	status := "success"
	if err != nil {
		status = apperrors.Kind(err)
	}

	s.record(ctx, "clear", start, status)

	return removed, err
}

// migrationUseCaseWithMetrics decorates MigrationUseCase with metrics instrumentation.
type migrationUseCaseWithMetrics struct {
	next    MigrationUseCase
	metrics metrics.BusinessMetrics
}

// NewMigrationUseCaseWithMetrics wraps a MigrationUseCase with metrics recording.
func NewMigrationUseCaseWithMetrics(useCase MigrationUseCase, m metrics.BusinessMetrics) MigrationUseCase {
	return &migrationUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Migrate records one sweep. A sweep with failed records reports "partial".
func (m *migrationUseCaseWithMetrics) Migrate(ctx context.Context) MigrationReport {
	start := time.Now()
	report := m.next.Migrate(ctx)

	status := "success"
	switch {
	case report.CryptoUnavailable:
		status = "skipped"
	case report.Failed > 0:
		status = "partial"
	}

	m.metrics.RecordOperation(ctx, migrationMetricsDomain, "migrate", status)
	m.metrics.RecordDuration(ctx, migrationMetricsDomain, "migrate", time.Since(start), status)
	if !report.CryptoUnavailable {
		m.recordOutcome(ctx, "migrated", report.Migrated)
		m.recordOutcome(ctx, "skipped", report.Skipped)
		m.recordOutcome(ctx, "failed", report.Failed)
	}

	return report
}

func (m *migrationUseCaseWithMetrics) recordOutcome(ctx context.Context, outcome string, count int) {
	if count > 0 {
		m.metrics.RecordRecords(ctx, migrationMetricsDomain, outcome, count)
	}
}
