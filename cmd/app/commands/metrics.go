package commands

import (
	"io"
	"log/slog"

	"github.com/allisson/securestorage/internal/metrics"
)

// WriteMetrics dumps the metrics gathered by the command in Prometheus text format.
func WriteMetrics(provider *metrics.Provider, writer io.Writer) error {
	if provider == nil {
		return nil
	}
	return provider.WriteText(writer)
}

// LogMetricsSnapshot logs the metric families gathered by the command at debug level.
func LogMetricsSnapshot(provider *metrics.Provider, logger *slog.Logger) {
	if provider == nil {
		return
	}
	snapshot, err := provider.Snapshot()
	if err != nil {
		logger.Warn("failed to gather metrics", slog.Any("error", err))
		return
	}
	for _, name := range metrics.SnapshotNames(snapshot) {
		logger.Debug("metric family", slog.String("name", name), slog.Int("samples", snapshot[name]))
	}
}
