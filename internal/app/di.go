// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/allisson/securestorage/internal/config"
	cryptoDomain "github.com/allisson/securestorage/internal/crypto/domain"
	cryptoService "github.com/allisson/securestorage/internal/crypto/service"
	"github.com/allisson/securestorage/internal/metrics"
	storageDomain "github.com/allisson/securestorage/internal/storage/domain"
	"github.com/allisson/securestorage/internal/storage/repository"
	storageService "github.com/allisson/securestorage/internal/storage/service"
	storageUseCase "github.com/allisson/securestorage/internal/storage/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	keyStoreDB      *sql.DB
	persistentDB    *sql.DB
	redisBackend    *repository.RedisBackend

	// Crypto
	aeadManager      cryptoService.AEADManager
	cryptoProbe      *cryptoService.CryptoProbeService
	kmsKeeper        cryptoDomain.KMSKeeper
	keyManager       *cryptoService.KeyManagerService
	cipher           *cryptoService.CipherService
	legacyObfuscator *cryptoService.LegacyObfuscatorService

	// Storage tiers
	sessionBackend    storageService.Backend
	persistentBackend storageService.Backend
	memoryBackend     *repository.MemoryBackend
	backends          map[storageDomain.Tier]storageService.Backend

	// Services
	capabilityDetector *storageService.CapabilityDetectorService
	selector           *storageService.SelectorService

	// Use Cases
	storageUseCase   storageUseCase.StorageUseCase
	migrationUseCase storageUseCase.MigrationUseCase
	secureStorage    *storageUseCase.SecureStorage

	// Initialization flags and mutex for thread-safety
	mu                     sync.Mutex
	loggerInit             sync.Once
	metricsProviderInit    sync.Once
	businessMetricsInit    sync.Once
	keyStoreDBInit         sync.Once
	persistentDBInit       sync.Once
	aeadManagerInit        sync.Once
	cryptoProbeInit        sync.Once
	kmsKeeperInit          sync.Once
	keyManagerInit         sync.Once
	cipherInit             sync.Once
	legacyObfuscatorInit   sync.Once
	sessionBackendInit     sync.Once
	persistentBackendInit  sync.Once
	memoryBackendInit      sync.Once
	backendsInit           sync.Once
	capabilityDetectorInit sync.Once
	selectorInit           sync.Once
	storageUseCaseInit     sync.Once
	migrationUseCaseInit   sync.Once
	secureStorageInit      sync.Once
	initErrors             map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = c.initMetricsProvider()
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. It is a no-op when metrics
// are disabled or the provider failed to start.
func (c *Container) BusinessMetrics() metrics.BusinessMetrics {
	c.businessMetricsInit.Do(func() {
		c.businessMetrics = c.initBusinessMetrics()
	})
	return c.businessMetrics
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.keyManager != nil {
		c.keyManager.Reset()
	}

	if c.kmsKeeper != nil {
		if err := c.kmsKeeper.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("kms keeper close: %w", err))
		}
	}

	if c.redisBackend != nil {
		if err := c.redisBackend.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("redis close: %w", err))
		}
	}

	if c.persistentDB != nil {
		if err := c.persistentDB.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("persistent database close: %w", err))
		}
	}

	if c.keyStoreDB != nil {
		if err := c.keyStoreDB.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("key store close: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	// Return combined errors if any occurred
	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initMetricsProvider creates the Prometheus-backed provider when metrics are enabled.
func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}
	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

// initBusinessMetrics creates the recorder on the metrics provider.
func (c *Container) initBusinessMetrics() metrics.BusinessMetrics {
	logger := c.Logger()

	provider, err := c.MetricsProvider()
	if err != nil {
		logger.Warn("metrics disabled", slog.Any("error", err))
		return metrics.NewNoOpBusinessMetrics()
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics()
	}

	businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		logger.Warn("metrics disabled", slog.Any("error", err))
		return metrics.NewNoOpBusinessMetrics()
	}
	return businessMetrics
}
