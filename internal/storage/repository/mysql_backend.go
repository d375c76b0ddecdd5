package repository

import (
	"database/sql"
	"time"

	"github.com/allisson/securestorage/internal/database"
)

// MySQLBackend is the persistent tier on MySQL.
//
// Database schema requirements:
//   - item_key: VARCHAR(512) PRIMARY KEY with a binary collation
//   - item_value: LONGTEXT NOT NULL
//   - updated_at: DATETIME(6) NOT NULL
type MySQLBackend struct {
	sqlBackend
}

// NewMySQLBackend creates a MySQL backend.
func NewMySQLBackend(db *sql.DB, txManager database.TxManager) *MySQLBackend {
	return &MySQLBackend{sqlBackend{
		db:        db,
		txManager: txManager,
		dialect: sqlDialect{
			name: "mysql",
			get:  `SELECT item_value FROM storage_items WHERE item_key = ?`,
			upsert: `INSERT INTO storage_items (item_key, item_value, updated_at)
					 VALUES (?, ?, ?)
					 ON DUPLICATE KEY UPDATE
					 item_value = VALUES(item_value),
					 updated_at = VALUES(updated_at)`,
			delete: `DELETE FROM storage_items WHERE item_key = ?`,
			keys:   `SELECT item_key FROM storage_items WHERE item_key LIKE ? ORDER BY item_key`,
			clear:  `DELETE FROM storage_items WHERE item_key LIKE ?`,
			pattern: likePrefix,
			timestamp: func() any {
				return time.Now().UTC()
			},
		},
	}}
}
