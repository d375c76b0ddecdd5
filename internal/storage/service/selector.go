package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/allisson/securestorage/internal/errors"
	storageDomain "github.com/allisson/securestorage/internal/storage/domain"
)

// SelectorService routes records between the session, persistent and memory tiers.
//
// Callers pass logical keys; the selector adds the namespace before touching a
// backend and strips it again in Enumerate. Writes never fail: a write the
// requested tier cannot take lands in the memory map and the WriteResult says so.
type SelectorService struct {
	namespace string
	detector  CapabilityDetector
	backends  map[storageDomain.Tier]Backend
	memory    Backend
	logger    *slog.Logger
}

// NewSelector creates a selector. backends holds the configured session and
// persistent backends; memory is the fallback map.
func NewSelector(
	namespace string,
	detector CapabilityDetector,
	backends map[storageDomain.Tier]Backend,
	memory Backend,
	logger *slog.Logger,
) *SelectorService {
	return &SelectorService{
		namespace: namespace,
		detector:  detector,
		backends:  backends,
		memory:    memory,
		logger:    logger,
	}
}

// Namespace returns the prefix added to every logical key.
func (s *SelectorService) Namespace() string {
	return s.namespace
}

// Write stores raw under key in tier, demoting to memory when tier cannot take it.
func (s *SelectorService) Write(
	ctx context.Context,
	tier storageDomain.Tier,
	key, raw string,
) storageDomain.WriteResult {
	fullKey := s.namespace + key
	result := storageDomain.WriteResult{Requested: tier, Tier: tier}

	if tier == storageDomain.TierMemory {
		// The memory map cannot fail.
		_ = s.memory.Set(ctx, fullKey, raw)
		return result
	}

	backend, err := s.backend(ctx, tier)
	if err == nil {
		if err = backend.Set(ctx, fullKey, raw); err == nil {
			_ = s.memory.Delete(ctx, fullKey)
			return result
		}
		err = fmt.Errorf("tier %s: %w: %w", tier, storageDomain.ErrWriteFailed, err)

		// A failed overwrite must not leave an older value that would shadow the memory copy.
		if delErr := backend.Delete(ctx, fullKey); delErr != nil {
			s.logger.Debug("failed to remove stale record",
				slog.String("key", key),
				slog.String("tier", tier.String()),
				slog.Any("error", delErr),
			)
		}
	}

	s.logger.Warn("storage write demoted to memory",
		slog.String("key", key),
		slog.String("tier", tier.String()),
		slog.Any("error", err),
	)
	_ = s.memory.Set(ctx, fullKey, raw)

	result.Tier = storageDomain.TierMemory
	result.Degraded = true
	result.Err = err
	return result
}

// Read returns the first value found for key in tiers, then in memory. With no
// tiers given, the session tier is tried before the persistent tier.
func (s *SelectorService) Read(
	ctx context.Context,
	key string,
	tiers ...storageDomain.Tier,
) (string, storageDomain.ReadResult, bool) {
	if len(tiers) == 0 {
		tiers = []storageDomain.Tier{storageDomain.TierSession, storageDomain.TierPersistent}
	}
	fullKey := s.namespace + key

	for _, tier := range tiers {
		if tier == storageDomain.TierMemory {
			continue
		}

		backend, err := s.backend(ctx, tier)
		if err != nil {
			continue
		}

		raw, err := backend.Get(ctx, fullKey)
		if err == nil {
			return raw, storageDomain.ReadResult{Tier: tier}, true
		}
		if !errors.Is(err, storageDomain.ErrItemNotFound) {
			s.logger.Warn("storage read failed",
				slog.String("key", key),
				slog.String("tier", tier.String()),
				slog.Any("error", err),
			)
		}
	}

	raw, err := s.memory.Get(ctx, fullKey)
	if err != nil {
		return "", storageDomain.ReadResult{}, false
	}
	return raw, storageDomain.ReadResult{Tier: storageDomain.TierMemory}, true
}

// Remove deletes key from every configured tier, continuing past failures. Tiers
// that failed their probe are still tried.
func (s *SelectorService) Remove(ctx context.Context, key string) error {
	fullKey := s.namespace + key

	var errs []error
	for _, tier := range []storageDomain.Tier{storageDomain.TierSession, storageDomain.TierPersistent} {
		backend, ok := s.configured(tier)
		if !ok {
			continue
		}
		if err := backend.Delete(ctx, fullKey); err != nil {
			s.logger.Warn("storage remove failed",
				slog.String("key", key),
				slog.String("tier", tier.String()),
				slog.Any("error", err),
			)
			errs = append(errs, apperrors.Wrapf(err, "tier %s", tier))
		}
	}

	if err := s.memory.Delete(ctx, fullKey); err != nil {
		errs = append(errs, apperrors.Wrapf(err, "tier %s", storageDomain.TierMemory))
	}
	return errors.Join(errs...)
}

// Enumerate returns the logical keys stored in tier under the namespace.
func (s *SelectorService) Enumerate(ctx context.Context, tier storageDomain.Tier) ([]string, error) {
	var backend Backend
	if tier == storageDomain.TierMemory {
		backend = s.memory
	} else {
		var err error
		if backend, err = s.backend(ctx, tier); err != nil {
			return nil, err
		}
	}

	fullKeys, err := backend.Keys(ctx, s.namespace)
	if err != nil {
		return nil, apperrors.Wrapf(err, "tier %s", tier)
	}

	probeKey := s.namespace + storageDomain.ProbeKeySuffix
	keys := make([]string, 0, len(fullKeys))
	for _, fullKey := range fullKeys {
		if fullKey == probeKey || !strings.HasPrefix(fullKey, s.namespace) {
			continue
		}
		keys = append(keys, strings.TrimPrefix(fullKey, s.namespace))
	}
	return keys, nil
}

// Clear removes every namespaced key from every configured tier and reports how
// many were removed. Keys outside the namespace are left alone.
func (s *SelectorService) Clear(ctx context.Context) (int64, error) {
	var (
		total int64
		errs  []error
	)

	for _, tier := range []storageDomain.Tier{storageDomain.TierSession, storageDomain.TierPersistent} {
		backend, ok := s.configured(tier)
		if !ok {
			continue
		}
		n, err := backend.DeletePrefix(ctx, s.namespace)
		total += n
		if err != nil {
			s.logger.Warn("storage clear failed",
				slog.String("tier", tier.String()),
				slog.Any("error", err),
			)
			errs = append(errs, apperrors.Wrapf(err, "tier %s", tier))
		}
	}

	n, err := s.memory.DeletePrefix(ctx, s.namespace)
	total += n
	if err != nil {
		errs = append(errs, apperrors.Wrapf(err, "tier %s", storageDomain.TierMemory))
	}
	return total, errors.Join(errs...)
}

func (s *SelectorService) configured(tier storageDomain.Tier) (Backend, bool) {
	backend, ok := s.backends[tier]
	return backend, ok && backend != nil
}

// backend returns the backend for tier when it is configured and available.
func (s *SelectorService) backend(ctx context.Context, tier storageDomain.Tier) (Backend, error) {
	backend, ok := s.configured(tier)
	if !ok {
		return nil, apperrors.Wrapf(storageDomain.ErrTierNotConfigured, "tier %s", tier)
	}
	if !s.detector.IsStorageAvailable(ctx, tier) {
		return nil, apperrors.Wrapf(storageDomain.ErrBackendUnavailable, "tier %s", tier)
	}
	return backend, nil
}
