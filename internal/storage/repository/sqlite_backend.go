package repository

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/allisson/securestorage/internal/database"
)

// SQLiteBackend is the persistent tier on a local SQLite file.
//
// Database schema requirements:
//   - item_key: TEXT PRIMARY KEY
//   - item_value: TEXT NOT NULL
//   - updated_at: INTEGER NOT NULL (unix nanoseconds)
type SQLiteBackend struct {
	sqlBackend
}

// NewSQLiteBackend creates a SQLite backend on an open database.
func NewSQLiteBackend(db *sql.DB, txManager database.TxManager) *SQLiteBackend {
	return &SQLiteBackend{sqlBackend{
		db:        db,
		txManager: txManager,
		dialect: sqlDialect{
			name: "sqlite",
			get:  `SELECT item_value FROM storage_items WHERE item_key = ?`,
			upsert: `INSERT INTO storage_items (item_key, item_value, updated_at)
					 VALUES (?, ?, ?)
					 ON CONFLICT(item_key) DO UPDATE SET
					 item_value = excluded.item_value,
					 updated_at = excluded.updated_at`,
			delete: `DELETE FROM storage_items WHERE item_key = ?`,
			// instr is case-sensitive and takes the prefix verbatim, unlike LIKE.
			keys:    `SELECT item_key FROM storage_items WHERE instr(item_key, ?) = 1 ORDER BY item_key`,
			clear:   `DELETE FROM storage_items WHERE instr(item_key, ?) = 1`,
			pattern: func(prefix string) string { return prefix },
			timestamp: func() any {
				return time.Now().UnixNano()
			},
		},
	}}
}

// OpenSQLite upgrades the schema of the SQLite file at path and connects to it.
func OpenSQLite(logger *slog.Logger, path string) (*sql.DB, error) {
	if err := Migrate(logger, database.DriverSQLite, path); err != nil {
		return nil, err
	}

	return database.Connect(database.SQLiteConfig(path))
}
