// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	storageDomain "github.com/allisson/securestorage/internal/storage/domain"
	storageUseCase "github.com/allisson/securestorage/internal/storage/usecase"
)

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// ItemStore is the facade surface the item commands drive.
type ItemStore interface {
	SetItem(ctx context.Context, key string, value any, opts storageDomain.SetOptions) bool
	GetItem(ctx context.Context, key string, opts storageDomain.GetOptions) (json.RawMessage, bool)
	HasItem(ctx context.Context, key string) bool
	RemoveItem(ctx context.Context, key string)
	Clear(ctx context.Context)
}

// LegacyMigrator runs the legacy sweep.
type LegacyMigrator interface {
	MigrateLegacy(ctx context.Context) storageUseCase.MigrationReport
}

// PrefixedStore is the surface shared by the auth and config helpers.
type PrefixedStore interface {
	Set(ctx context.Context, key string, value any) bool
	Get(ctx context.Context, key string) (json.RawMessage, bool)
}

// RecordWriter writes raw records to a tier.
type RecordWriter interface {
	Write(ctx context.Context, tier storageDomain.Tier, key, raw string) storageDomain.WriteResult
}

// LegacyEncoder produces records in the retired obfuscation scheme.
type LegacyEncoder interface {
	Encode(plaintext []byte) string
}

// CapabilityDetector reports crypto and tier availability.
type CapabilityDetector interface {
	IsCryptoAvailable() bool
	IsStorageAvailable(ctx context.Context, tier storageDomain.Tier) bool
}

// parseJSONValue checks that value is a JSON document.
func parseJSONValue(value string) (json.RawMessage, error) {
	if !json.Valid([]byte(value)) {
		return nil, fmt.Errorf("value must be a valid JSON document, got: %q", value)
	}
	return json.RawMessage(value), nil
}

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonBytes))
	return err
}
