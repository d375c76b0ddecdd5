package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/allisson/securestorage/internal/database"
	storageDomain "github.com/allisson/securestorage/internal/storage/domain"
)

// sqlDialect holds the statements that differ between SQL engines. Every statement
// takes its arguments in the same order whatever the placeholder style.
type sqlDialect struct {
	name   string
	get    string // key
	upsert string // key, value, updated_at
	delete string // key
	keys   string // prefix pattern
	clear  string // prefix pattern
	// pattern converts a key prefix into the argument of keys and clear.
	pattern func(prefix string) string
	// timestamp converts the write time into the column type of updated_at.
	timestamp func() any
}

// sqlBackend is the persistent tier on a SQL table named storage_items.
//
// Prefix scans match literally and case-sensitively, so namespaces containing '%'
// or '_' do not match neighbouring keys.
type sqlBackend struct {
	db        *sql.DB
	txManager database.TxManager
	dialect   sqlDialect
}

func (b *sqlBackend) Get(ctx context.Context, key string) (string, error) {
	querier := database.GetTx(ctx, b.db)

	var value string
	if err := querier.QueryRowContext(ctx, b.dialect.get, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", storageDomain.ErrItemNotFound
		}
		return "", fmt.Errorf("%s get: %w", b.dialect.name, err)
	}
	return value, nil
}

func (b *sqlBackend) Set(ctx context.Context, key, value string) error {
	querier := database.GetTx(ctx, b.db)

	if _, err := querier.ExecContext(ctx, b.dialect.upsert, key, value, b.dialect.timestamp()); err != nil {
		return fmt.Errorf("%s set: %w", b.dialect.name, err)
	}
	return nil
}

func (b *sqlBackend) Delete(ctx context.Context, key string) error {
	querier := database.GetTx(ctx, b.db)

	if _, err := querier.ExecContext(ctx, b.dialect.delete, key); err != nil {
		return fmt.Errorf("%s delete: %w", b.dialect.name, err)
	}
	return nil
}

func (b *sqlBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	return b.keys(ctx, prefix)
}

func (b *sqlBackend) keys(ctx context.Context, prefix string) (keys []string, err error) {
	querier := database.GetTx(ctx, b.db)

	rows, err := querier.QueryContext(ctx, b.dialect.keys, b.dialect.pattern(prefix))
	if err != nil {
		return nil, fmt.Errorf("%s keys: %w", b.dialect.name, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("%s keys: %w", b.dialect.name, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s keys: %w", b.dialect.name, err)
	}

	return keys, nil
}

// DeletePrefix removes every key that starts with prefix in one transaction.
func (b *sqlBackend) DeletePrefix(ctx context.Context, prefix string) (int64, error) {
	var deleted int64

	err := b.txManager.WithTx(ctx, func(txCtx context.Context) error {
		querier := database.GetTx(txCtx, b.db)

		result, err := querier.ExecContext(txCtx, b.dialect.clear, b.dialect.pattern(prefix))
		if err != nil {
			return fmt.Errorf("%s clear: %w", b.dialect.name, err)
		}
		deleted, err = result.RowsAffected()
		return err
	})

	return deleted, err
}

// Close closes the database handle.
func (b *sqlBackend) Close() error {
	return b.db.Close()
}

// likePrefix builds a LIKE pattern that matches keys starting with prefix.
func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
