// Package validation provides custom validation rules for the application.
package validation

import (
	"strings"
	"unicode"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/securestorage/internal/errors"
)

const (
	// MaxStorageKeyLength bounds a logical key, in runes, before any prefix is added.
	MaxStorageKeyLength = 256
	// MaxNamespaceLength bounds the namespace prefix, in runes.
	MaxNamespaceLength = 64
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// NoControlChars validates that a string holds no control characters such as
// NUL, newlines or tabs.
var NoControlChars = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.IndexFunc(s, unicode.IsControl) < 0
	},
	validation.NewError("validation_no_control_chars", "must not contain control characters"),
)

// StorageKey validates a logical storage key.
func StorageKey(key string) error {
	return WrapValidationError(validation.Validate(key,
		validation.Required.Error("key is required"),
		NotBlank,
		NoControlChars,
		validation.RuneLength(1, MaxStorageKeyLength).Error("key must be between 1 and 256 characters"),
	))
}

// Namespace validates the prefix put in front of every key.
func Namespace(namespace string) error {
	return WrapValidationError(validation.Validate(namespace,
		validation.Required.Error("namespace is required"),
		NoControlChars,
		validation.RuneLength(1, MaxNamespaceLength).Error("namespace must be between 1 and 64 characters"),
	))
}
