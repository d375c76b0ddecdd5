package repository

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/allisson/securestorage/internal/database"
)

//go:embed migrations
var migrations embed.FS

// Migrations returns the embedded schema migrations for driver and the directory
// they live in.
func Migrations(driver string) (fs.FS, string, error) {
	switch driver {
	case database.DriverPostgres:
		return migrations, "migrations/postgresql", nil
	case database.DriverMySQL:
		return migrations, "migrations/mysql", nil
	case database.DriverSQLite:
		return migrations, "migrations/sqlite", nil
	default:
		return nil, "", fmt.Errorf("unsupported persistent driver: %s (valid options: postgres, mysql, sqlite)", driver)
	}
}

// Migrate applies the persistent tier schema for driver against dsn.
func Migrate(logger *slog.Logger, driver, dsn string) error {
	fsys, dir, err := Migrations(driver)
	if err != nil {
		return err
	}

	url, err := database.MigrationURL(driver, dsn)
	if err != nil {
		return err
	}

	logger.Info("running storage migrations", slog.String("driver", driver))
	return database.RunMigrations(logger, fsys, dir, url)
}
