// Package database provides database connection management and utilities.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported driver names as registered with database/sql.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// DefaultPingTimeout bounds the reachability check in Connect.
const DefaultPingTimeout = 5 * time.Second

// sqliteBusyTimeout is how long a writer waits on a locked SQLite file, in milliseconds.
const sqliteBusyTimeout = 5000

// Config holds database configuration settings.
type Config struct {
	Driver             string
	ConnectionString   string
	MaxOpenConnections int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
	PingTimeout        time.Duration // DefaultPingTimeout when zero
}

// SQLiteConfig returns the configuration used for every SQLite file: one
// connection, since SQLite serializes writers anyway, and a busy timeout so a
// second process waits instead of failing with SQLITE_BUSY.
func SQLiteConfig(path string) Config {
	return Config{
		Driver:             DriverSQLite,
		ConnectionString:   fmt.Sprintf("%s?_pragma=busy_timeout(%d)", path, sqliteBusyTimeout),
		MaxOpenConnections: 1,
		MaxIdleConnections: 1,
		ConnMaxLifetime:    time.Hour,
	}
}

// Connect opens the database and checks it is reachable. A database that cannot
// be pinged is closed again, so a persistent tier that is down fails here and
// not on the first write.
func Connect(cfg Config) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = DefaultPingTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", cfg.Driver, err)
	}

	return db, nil
}

// MigrationURL converts a driver connection string into the URL form golang-migrate expects.
func MigrationURL(driver, dsn string) (string, error) {
	switch driver {
	case DriverPostgres:
		return dsn, nil
	case DriverMySQL:
		return "mysql://" + dsn, nil
	case DriverSQLite:
		return "sqlite://" + dsn, nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s (valid options: postgres, mysql, sqlite)", driver)
	}
}
