package commands

import (
	"context"
	"fmt"
	"io"

	storageDomain "github.com/allisson/securestorage/internal/storage/domain"
)

// RunCapabilities probes crypto and every tier and prints the result.
func RunCapabilities(ctx context.Context, detector CapabilityDetector, writer io.Writer, format string) error {
	crypto := detector.IsCryptoAvailable()
	tiers := make(map[string]bool, len(storageDomain.Tiers()))
	for _, tier := range storageDomain.Tiers() {
		tiers[tier.String()] = detector.IsStorageAvailable(ctx, tier)
	}

	if format == "json" {
		return writeJSON(writer, map[string]any{
			"crypto": crypto,
			"tiers":  tiers,
		})
	}

	if _, err := fmt.Fprintf(writer, "crypto: %s\n", availability(crypto)); err != nil {
		return err
	}
	for _, tier := range storageDomain.Tiers() {
		if _, err := fmt.Fprintf(writer, "%s: %s\n", tier, availability(tiers[tier.String()])); err != nil {
			return err
		}
	}
	return nil
}

func availability(ok bool) string {
	if ok {
		return "available"
	}
	return "unavailable"
}
