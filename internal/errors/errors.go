// Package errors provides standardized domain errors that express storage intent
// rather than backend details. Domain packages wrap these sentinels so callers can
// classify failures with errors.Is without knowing which tier or cipher produced them.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested record or key does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable indicates a capability (crypto API, storage tier, key store) is missing.
	ErrUnavailable = errors.New("unavailable")

	// ErrPersistence indicates a write against a durable store failed.
	ErrPersistence = errors.New("persistence failure")
)

// Wrap wraps an error with additional context while preserving the error chain.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is like Wrap but formats the message with the given arguments.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Kind names the sentinel class of err for logs and metric labels. It returns
// "" for nil and "error" when err wraps none of the sentinels. A miss wins over
// the other classes so an invalid key read through the facade reports not_found.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	default:
		return "error"
	}
}
