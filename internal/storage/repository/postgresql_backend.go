package repository

import (
	"database/sql"
	"time"

	"github.com/allisson/securestorage/internal/database"
)

// PostgreSQLBackend is the persistent tier on PostgreSQL.
//
// Database schema requirements:
//   - item_key: TEXT PRIMARY KEY
//   - item_value: TEXT NOT NULL
//   - updated_at: TIMESTAMPTZ NOT NULL
type PostgreSQLBackend struct {
	sqlBackend
}

// NewPostgreSQLBackend creates a PostgreSQL backend.
func NewPostgreSQLBackend(db *sql.DB, txManager database.TxManager) *PostgreSQLBackend {
	return &PostgreSQLBackend{sqlBackend{
		db:        db,
		txManager: txManager,
		dialect: sqlDialect{
			name: "postgresql",
			get:  `SELECT item_value FROM storage_items WHERE item_key = $1`,
			upsert: `INSERT INTO storage_items (item_key, item_value, updated_at)
					 VALUES ($1, $2, $3)
					 ON CONFLICT (item_key) DO UPDATE SET
					 item_value = EXCLUDED.item_value,
					 updated_at = EXCLUDED.updated_at`,
			delete: `DELETE FROM storage_items WHERE item_key = $1`,
			keys:   `SELECT item_key FROM storage_items WHERE item_key LIKE $1 ORDER BY item_key`,
			clear:  `DELETE FROM storage_items WHERE item_key LIKE $1`,
			pattern: likePrefix,
			timestamp: func() any {
				return time.Now().UTC()
			},
		},
	}}
}
