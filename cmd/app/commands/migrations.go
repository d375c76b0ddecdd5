package commands

import (
	"fmt"
	"log/slog"

	"github.com/allisson/securestorage/internal/config"
	"github.com/allisson/securestorage/internal/storage/repository"
)

// RunMigrations applies the persistent tier schema for the configured driver.
// SQLite files are also upgraded whenever they are opened.
func RunMigrations(logger *slog.Logger, driver, dsn string) error {
	if driver == config.PersistentDriverNone {
		logger.Info("persistent tier disabled, nothing to migrate")
		return nil
	}

	logger.Info("running database migrations", slog.String("driver", driver))

	if err := repository.Migrate(logger, driver, dsn); err != nil {
		return fmt.Errorf("failed to migrate persistent storage: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}
