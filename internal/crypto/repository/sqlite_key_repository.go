// Package repository implements the private key store of the secure storage.
//
// The store is a single SQLite file, <dir>/<name>.db, holding one key_store table
// keyed by record name. Its schema is versioned with golang-migrate from the
// migrations embedded in this package, so opening the store also upgrades it.
package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/securestorage/internal/crypto/domain"
	"github.com/allisson/securestorage/internal/database"
)

//go:embed migrations/*.sql
var migrations embed.FS

// KeyStoreConfig locates the key store file.
type KeyStoreConfig struct {
	Dir  string
	Name string
}

// Path returns the location of the SQLite file.
func (c KeyStoreConfig) Path() string {
	return filepath.Join(c.Dir, c.Name+".db")
}

// OpenKeyStore creates the store directory if needed, upgrades the schema and
// connects. Every error wraps cryptoDomain.ErrKeyStoreUnavailable.
func OpenKeyStore(logger *slog.Logger, cfg KeyStoreConfig) (*sql.DB, error) {
	if cfg.Dir == "" || cfg.Name == "" {
		return nil, fmt.Errorf("%w: directory and name are required", cryptoDomain.ErrKeyStoreUnavailable)
	}

	if err := os.MkdirAll(cfg.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: %w", cryptoDomain.ErrKeyStoreUnavailable, err)
	}

	path := cfg.Path()
	url, err := database.MigrationURL(database.DriverSQLite, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cryptoDomain.ErrKeyStoreUnavailable, err)
	}
	if err := database.RunMigrations(logger, migrations, "migrations", url); err != nil {
		return nil, fmt.Errorf("%w: %w", cryptoDomain.ErrKeyStoreUnavailable, err)
	}

	db, err := database.Connect(database.SQLiteConfig(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cryptoDomain.ErrKeyStoreUnavailable, err)
	}
	return db, nil
}

// SQLiteKeyRepository persists exported keys in the key_store table.
//
// Material is written exactly as handed over: raw bytes, or KMS ciphertext when
// the record is marked wrapped. Calls are transaction-aware via database.GetTx.
type SQLiteKeyRepository struct {
	db *sql.DB
}

// NewSQLiteKeyRepository creates a repository on an open key store.
func NewSQLiteKeyRepository(db *sql.DB) *SQLiteKeyRepository {
	return &SQLiteKeyRepository{db: db}
}

// Get returns the key stored under name or cryptoDomain.ErrKeyNotFound.
func (r *SQLiteKeyRepository) Get(ctx context.Context, name string) (*cryptoDomain.StoredKey, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, algorithm, material, wrapped, created_at FROM key_store WHERE name = ?`

	var (
		key       cryptoDomain.StoredKey
		id        string
		algorithm string
		createdAt int64
	)
	err := querier.QueryRowContext(ctx, query, name).
		Scan(&id, &algorithm, &key.Material, &key.Wrapped, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cryptoDomain.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	key.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("failed to parse key id: %w", err)
	}
	key.Algorithm = cryptoDomain.Algorithm(algorithm)
	key.CreatedAt = time.Unix(0, createdAt).UTC()

	return &key, nil
}

// Put inserts or replaces the key stored under name.
func (r *SQLiteKeyRepository) Put(ctx context.Context, name string, key *cryptoDomain.StoredKey) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO key_store (name, id, algorithm, material, wrapped, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)
			  ON CONFLICT(name) DO UPDATE SET
			  id = excluded.id,
			  algorithm = excluded.algorithm,
			  material = excluded.material,
			  wrapped = excluded.wrapped,
			  created_at = excluded.created_at`

	_, err := querier.ExecContext(
		ctx,
		query,
		name,
		key.ID.String(),
		string(key.Algorithm),
		key.Material,
		key.Wrapped,
		key.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to put key: %w", err)
	}
	return nil
}

// Delete removes the key stored under name. Deleting a missing key is not an error.
func (r *SQLiteKeyRepository) Delete(ctx context.Context, name string) error {
	querier := database.GetTx(ctx, r.db)

	if _, err := querier.ExecContext(ctx, `DELETE FROM key_store WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}
