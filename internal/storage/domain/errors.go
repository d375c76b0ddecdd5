package domain

import (
	"github.com/allisson/securestorage/internal/errors"
)

// Storage error definitions.
var (
	// ErrBackendUnavailable indicates a tier failed its capability probe or a call to it failed.
	ErrBackendUnavailable = errors.Wrap(errors.ErrUnavailable, "storage backend unavailable")

	// ErrTierNotConfigured indicates no backend is wired for the tier.
	ErrTierNotConfigured = errors.Wrap(errors.ErrUnavailable, "storage tier not configured")

	// ErrInvalidTier indicates an unknown tier name.
	ErrInvalidTier = errors.Wrap(errors.ErrInvalidInput, "invalid tier")

	// ErrInvalidKey indicates a storage key failed validation.
	ErrInvalidKey = errors.Wrap(errors.ErrInvalidInput, "invalid storage key")

	// ErrItemNotFound indicates no tier holds the key.
	ErrItemNotFound = errors.Wrap(errors.ErrNotFound, "item not found")

	// ErrWriteFailed indicates a backend rejected a write.
	ErrWriteFailed = errors.Wrap(errors.ErrPersistence, "write failed")
)
