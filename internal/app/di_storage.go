package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/allisson/securestorage/internal/config"
	"github.com/allisson/securestorage/internal/database"
	storageDomain "github.com/allisson/securestorage/internal/storage/domain"
	"github.com/allisson/securestorage/internal/storage/repository"
	storageService "github.com/allisson/securestorage/internal/storage/service"
	storageUseCase "github.com/allisson/securestorage/internal/storage/usecase"
	"github.com/allisson/securestorage/internal/validation"
)

// MemoryBackend returns the process-local fallback map.
func (c *Container) MemoryBackend() *repository.MemoryBackend {
	c.memoryBackendInit.Do(func() {
		c.memoryBackend = repository.NewMemoryBackend()
	})
	return c.memoryBackend
}

// SessionBackend returns the backend of the session tier.
func (c *Container) SessionBackend() (storageService.Backend, error) {
	var err error
	c.sessionBackendInit.Do(func() {
		c.sessionBackend, err = c.initSessionBackend()
		if err != nil {
			c.initErrors["sessionBackend"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionBackend"]; exists {
		return nil, storedErr
	}
	return c.sessionBackend, nil
}

// PersistentDB returns the connection behind the persistent tier.
func (c *Container) PersistentDB() (*sql.DB, error) {
	var err error
	c.persistentDBInit.Do(func() {
		c.persistentDB, err = c.initPersistentDB()
		if err != nil {
			c.initErrors["persistentDB"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["persistentDB"]; exists {
		return nil, storedErr
	}
	return c.persistentDB, nil
}

// PersistentBackend returns the backend of the persistent tier, or nil when the
// persistent driver is "none".
func (c *Container) PersistentBackend() (storageService.Backend, error) {
	var err error
	c.persistentBackendInit.Do(func() {
		c.persistentBackend, err = c.initPersistentBackend()
		if err != nil {
			c.initErrors["persistentBackend"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["persistentBackend"]; exists {
		return nil, storedErr
	}
	return c.persistentBackend, nil
}

// Backends returns the configured session and persistent backends. A tier whose
// backend cannot be created is left out and behaves as unavailable.
func (c *Container) Backends() map[storageDomain.Tier]storageService.Backend {
	c.backendsInit.Do(func() {
		c.backends = c.initBackends()
	})
	return c.backends
}

// CapabilityDetector returns the crypto and tier capability detector.
func (c *Container) CapabilityDetector() (*storageService.CapabilityDetectorService, error) {
	var err error
	c.capabilityDetectorInit.Do(func() {
		c.capabilityDetector, err = c.initCapabilityDetector()
		if err != nil {
			c.initErrors["capabilityDetector"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["capabilityDetector"]; exists {
		return nil, storedErr
	}
	return c.capabilityDetector, nil
}

// Selector returns the tier selector.
func (c *Container) Selector() (*storageService.SelectorService, error) {
	var err error
	c.selectorInit.Do(func() {
		c.selector, err = c.initSelector()
		if err != nil {
			c.initErrors["selector"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["selector"]; exists {
		return nil, storedErr
	}
	return c.selector, nil
}

// StorageUseCase returns the storage use case, instrumented when metrics are enabled.
func (c *Container) StorageUseCase(ctx context.Context) (storageUseCase.StorageUseCase, error) {
	var err error
	c.storageUseCaseInit.Do(func() {
		c.storageUseCase, err = c.initStorageUseCase(ctx)
		if err != nil {
			c.initErrors["storageUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["storageUseCase"]; exists {
		return nil, storedErr
	}
	return c.storageUseCase, nil
}

// MigrationUseCase returns the legacy migration use case, instrumented when metrics are enabled.
func (c *Container) MigrationUseCase(ctx context.Context) (storageUseCase.MigrationUseCase, error) {
	var err error
	c.migrationUseCaseInit.Do(func() {
		c.migrationUseCase, err = c.initMigrationUseCase(ctx)
		if err != nil {
			c.initErrors["migrationUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["migrationUseCase"]; exists {
		return nil, storedErr
	}
	return c.migrationUseCase, nil
}

// SecureStorage returns the storage facade.
func (c *Container) SecureStorage(ctx context.Context) (*storageUseCase.SecureStorage, error) {
	var err error
	c.secureStorageInit.Do(func() {
		c.secureStorage, err = c.initSecureStorage(ctx)
		if err != nil {
			c.initErrors["secureStorage"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secureStorage"]; exists {
		return nil, storedErr
	}
	return c.secureStorage, nil
}

// AuthStorage returns the facade for authorization data.
func (c *Container) AuthStorage(ctx context.Context) (*storageUseCase.AuthStorage, error) {
	secureStorage, err := c.SecureStorage(ctx)
	if err != nil {
		return nil, err
	}
	return storageUseCase.NewAuthStorage(secureStorage), nil
}

// ConfigStorage returns the facade for UI configuration.
func (c *Container) ConfigStorage(ctx context.Context) (*storageUseCase.ConfigStorage, error) {
	secureStorage, err := c.SecureStorage(ctx)
	if err != nil {
		return nil, err
	}
	return storageUseCase.NewConfigStorage(secureStorage), nil
}

// initSessionBackend creates the session backend for the configured driver.
func (c *Container) initSessionBackend() (storageService.Backend, error) {
	switch c.config.SessionDriver {
	case config.SessionDriverMemory:
		return repository.NewMemoryBackend(), nil
	case config.SessionDriverRedis:
		client := repository.NewRedisClient(repository.RedisConfig{
			Addr:     c.config.RedisAddr,
			Password: c.config.RedisPassword,
			DB:       c.config.RedisDB,
		})
		c.redisBackend = repository.NewRedisBackend(client, c.config.SessionTTL)
		return c.redisBackend, nil
	default:
		return nil, fmt.Errorf("unsupported session driver: %s", c.config.SessionDriver)
	}
}

// initPersistentDB opens the persistent database. SQLite files are upgraded on open;
// PostgreSQL and MySQL schemas are upgraded by the migrate command.
func (c *Container) initPersistentDB() (*sql.DB, error) {
	switch c.config.PersistentDriver {
	case config.PersistentDriverSQLite:
		db, err := repository.OpenSQLite(c.Logger(), c.config.PersistentDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		return db, nil
	case config.PersistentDriverPostgres, config.PersistentDriverMySQL:
		db, err := database.Connect(database.Config{
			Driver:             c.config.PersistentDriver,
			ConnectionString:   c.config.PersistentDSN,
			MaxOpenConnections: c.config.DBMaxOpenConnections,
			MaxIdleConnections: c.config.DBMaxIdleConnections,
			ConnMaxLifetime:    c.config.DBConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported persistent driver: %s", c.config.PersistentDriver)
	}
}

// initPersistentBackend creates the persistent backend for the configured driver.
func (c *Container) initPersistentBackend() (storageService.Backend, error) {
	if c.config.PersistentDriver == config.PersistentDriverNone {
		return nil, nil
	}

	db, err := c.PersistentDB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for persistent backend: %w", err)
	}
	txManager := database.NewTxManager(db)

	// Select the appropriate backend based on the database driver
	switch c.config.PersistentDriver {
	case config.PersistentDriverSQLite:
		return repository.NewSQLiteBackend(db, txManager), nil
	case config.PersistentDriverPostgres:
		return repository.NewPostgreSQLBackend(db, txManager), nil
	case config.PersistentDriverMySQL:
		return repository.NewMySQLBackend(db, txManager), nil
	default:
		return nil, fmt.Errorf("unsupported persistent driver: %s", c.config.PersistentDriver)
	}
}

// initBackends collects the tiers that could be created.
func (c *Container) initBackends() map[storageDomain.Tier]storageService.Backend {
	logger := c.Logger()
	backends := make(map[storageDomain.Tier]storageService.Backend, 2)

	if session, err := c.SessionBackend(); err != nil {
		logger.Warn("session tier disabled", slog.Any("error", err))
	} else {
		backends[storageDomain.TierSession] = session
	}

	if persistent, err := c.PersistentBackend(); err != nil {
		logger.Warn("persistent tier disabled", slog.Any("error", err))
	} else if persistent != nil {
		backends[storageDomain.TierPersistent] = persistent
	}

	return backends
}

// initCapabilityDetector creates the detector over the configured tiers.
func (c *Container) initCapabilityDetector() (*storageService.CapabilityDetectorService, error) {
	if err := validation.Namespace(c.config.StorageNamespace); err != nil {
		return nil, fmt.Errorf("invalid storage namespace: %w", err)
	}

	probe, err := c.CryptoProbe()
	if err != nil {
		return nil, fmt.Errorf("failed to get crypto probe for capability detector: %w", err)
	}

	return storageService.NewCapabilityDetector(c.config.StorageNamespace, c.Backends(), probe, c.Logger()), nil
}

// initSelector creates the selector with the memory fallback.
func (c *Container) initSelector() (*storageService.SelectorService, error) {
	detector, err := c.CapabilityDetector()
	if err != nil {
		return nil, fmt.Errorf("failed to get capability detector for selector: %w", err)
	}

	return storageService.NewSelector(
		c.config.StorageNamespace,
		detector,
		c.Backends(),
		c.MemoryBackend(),
		c.Logger(),
	), nil
}

// initStorageUseCase creates the storage use case with all its dependencies.
func (c *Container) initStorageUseCase(ctx context.Context) (storageUseCase.StorageUseCase, error) {
	selector, err := c.Selector()
	if err != nil {
		return nil, fmt.Errorf("failed to get selector for storage use case: %w", err)
	}
	detector, err := c.CapabilityDetector()
	if err != nil {
		return nil, fmt.Errorf("failed to get capability detector for storage use case: %w", err)
	}
	cipher, err := c.Cipher(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get cipher for storage use case: %w", err)
	}

	useCase := storageUseCase.NewStorageUseCase(selector, detector, cipher, c.Logger())
	if c.config.MetricsEnabled {
		useCase = storageUseCase.NewStorageUseCaseWithMetrics(useCase, c.BusinessMetrics())
	}
	return useCase, nil
}

// initMigrationUseCase creates the legacy migration use case with all its dependencies.
func (c *Container) initMigrationUseCase(ctx context.Context) (storageUseCase.MigrationUseCase, error) {
	selector, err := c.Selector()
	if err != nil {
		return nil, fmt.Errorf("failed to get selector for migration use case: %w", err)
	}
	detector, err := c.CapabilityDetector()
	if err != nil {
		return nil, fmt.Errorf("failed to get capability detector for migration use case: %w", err)
	}
	cipher, err := c.Cipher(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get cipher for migration use case: %w", err)
	}

	useCase := storageUseCase.NewMigrationUseCase(selector, detector, cipher, c.LegacyObfuscator(), c.Logger())
	if c.config.MetricsEnabled {
		useCase = storageUseCase.NewMigrationUseCaseWithMetrics(useCase, c.BusinessMetrics())
	}
	return useCase, nil
}

// initSecureStorage creates the facade.
func (c *Container) initSecureStorage(ctx context.Context) (*storageUseCase.SecureStorage, error) {
	useCase, err := c.StorageUseCase(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get storage use case for secure storage: %w", err)
	}
	migration, err := c.MigrationUseCase(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get migration use case for secure storage: %w", err)
	}
	return storageUseCase.NewSecureStorage(useCase, migration, c.Logger()), nil
}
