package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// durationBuckets covers in-process tiers (tens of microseconds) up to remote
// Redis and SQL round trips.
var durationBuckets = []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

// BusinessMetrics records what the storage facade and the legacy migrator do.
type BusinessMetrics interface {
	// RecordOperation counts one operation. Domain is "storage" or "migration";
	// status is "success", "degraded", "not_found", "skipped", "partial" or an
	// error kind such as "invalid_input".
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration observes the operation latency in seconds.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordFallback counts a write that could not use the requested tier and
	// landed in the actual one instead.
	RecordFallback(ctx context.Context, requested, actual string)

	// RecordRecords counts records by outcome, e.g. "migrated" or "failed".
	RecordRecords(ctx context.Context, domain, outcome string, count int)
}

type businessMetrics struct {
	operationCounter metric.Int64Counter
	durationHisto    metric.Float64Histogram
	fallbackCounter  metric.Int64Counter
	recordCounter    metric.Int64Counter
}

// NewBusinessMetrics creates the OpenTelemetry instruments under namespace
// (e.g. "securestorage_operations_total").
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operationCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of storage operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of storage operations in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	fallbackCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_fallbacks_total", namespace),
		metric.WithDescription("Total number of writes demoted to a fallback tier"),
		metric.WithUnit("{write}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fallback counter: %w", err)
	}

	recordCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_records_total", namespace),
		metric.WithDescription("Total number of records processed by outcome"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create record counter: %w", err)
	}

	return &businessMetrics{
		operationCounter: operationCounter,
		durationHisto:    durationHisto,
		fallbackCounter:  fallbackCounter,
		recordCounter:    recordCounter,
	}, nil
}

func operationAttributes(domain, operation, status string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operationCounter.Add(ctx, 1, operationAttributes(domain, operation, status))
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durationHisto.Record(ctx, duration.Seconds(), operationAttributes(domain, operation, status))
}

func (b *businessMetrics) RecordFallback(ctx context.Context, requested, actual string) {
	b.fallbackCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("requested_tier", requested),
			attribute.String("tier", actual),
		),
	)
}

// RecordRecords ignores non-positive counts.
func (b *businessMetrics) RecordRecords(ctx context.Context, domain, outcome string, count int) {
	if count <= 0 {
		return
	}
	b.recordCounter.Add(ctx, int64(count),
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("outcome", outcome),
		),
	)
}

// NoOpBusinessMetrics is used when metrics are disabled.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

func (n *NoOpBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {}

func (n *NoOpBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
}

func (n *NoOpBusinessMetrics) RecordFallback(ctx context.Context, requested, actual string) {}

func (n *NoOpBusinessMetrics) RecordRecords(ctx context.Context, domain, outcome string, count int) {}
