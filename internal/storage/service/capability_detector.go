package service

import (
	"context"
	"log/slog"
	"sync"

	storageDomain "github.com/allisson/securestorage/internal/storage/domain"
)

// CapabilityDetectorService answers availability questions for crypto and for each tier.
//
// A tier is probed empirically by writing and removing <namespace>__probe__. The
// first answer per tier is cached for the lifetime of the detector; Recheck forces a
// new probe. The memory tier is always available and never probed.
type CapabilityDetectorService struct {
	namespace string
	backends  map[storageDomain.Tier]Backend
	crypto    CryptoProbe
	logger    *slog.Logger

	mu    sync.Mutex
	cache map[storageDomain.Tier]bool
}

// NewCapabilityDetector creates a detector. backends holds the configured session and
// persistent backends; a tier without an entry is reported unavailable.
func NewCapabilityDetector(
	namespace string,
	backends map[storageDomain.Tier]Backend,
	crypto CryptoProbe,
	logger *slog.Logger,
) *CapabilityDetectorService {
	return &CapabilityDetectorService{
		namespace: namespace,
		backends:  backends,
		crypto:    crypto,
		logger:    logger,
		cache:     make(map[storageDomain.Tier]bool),
	}
}

// IsCryptoAvailable delegates to the crypto probe.
func (d *CapabilityDetectorService) IsCryptoAvailable() bool {
	if d.crypto == nil {
		return false
	}
	return d.crypto.IsCryptoAvailable()
}

// IsStorageAvailable returns the cached availability of tier, probing on first use.
func (d *CapabilityDetectorService) IsStorageAvailable(ctx context.Context, tier storageDomain.Tier) bool {
	if tier == storageDomain.TierMemory {
		return true
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if available, ok := d.cache[tier]; ok {
		return available
	}

	available := d.probe(ctx, tier)
	d.cache[tier] = available
	return available
}

// Recheck discards the cached answer for tier and probes again.
func (d *CapabilityDetectorService) Recheck(ctx context.Context, tier storageDomain.Tier) bool {
	if tier == storageDomain.TierMemory {
		return true
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	available := d.probe(ctx, tier)
	d.cache[tier] = available
	return available
}

// ProbeKey returns the key written by the storage probe.
func (d *CapabilityDetectorService) ProbeKey() string {
	return d.namespace + storageDomain.ProbeKeySuffix
}

func (d *CapabilityDetectorService) probe(ctx context.Context, tier storageDomain.Tier) bool {
	backend, ok := d.backends[tier]
	if !ok || backend == nil {
		d.logger.Debug("storage tier not configured", slog.String("tier", tier.String()))
		return false
	}

	key := d.ProbeKey()
	if err := backend.Set(ctx, key, "1"); err != nil {
		d.logger.Warn("storage tier unavailable",
			slog.String("tier", tier.String()),
			slog.Any("error", err),
		)
		return false
	}

	if err := backend.Delete(ctx, key); err != nil {
		d.logger.Warn("storage tier unavailable",
			slog.String("tier", tier.String()),
			slog.Any("error", err),
		)
		return false
	}

	return true
}
