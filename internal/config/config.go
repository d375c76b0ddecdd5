// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
	"github.com/joho/godotenv"

	apperrors "github.com/allisson/securestorage/internal/errors"
)

// Session and persistent drivers.
const (
	SessionDriverMemory = "memory"
	SessionDriverRedis  = "redis"

	PersistentDriverSQLite   = "sqlite"
	PersistentDriverPostgres = "postgres"
	PersistentDriverMySQL    = "mysql"
	PersistentDriverNone     = "none"
)

// Config holds all application configuration.
type Config struct {
	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// StorageNamespace prefixes every key the storage writes.
	StorageNamespace string

	// CryptoEnabled turns encryption off entirely when false, as if the platform had no cipher.
	CryptoEnabled bool
	// CipherAlgorithm selects the suite new records are sealed with ("aes-gcm" or "xchacha20-poly1305").
	CipherAlgorithm string
	// LegacyObfuscationKey is the repeating key of the retired obfuscation scheme.
	LegacyObfuscationKey string

	// SessionDriver backs the session tier ("memory" or "redis").
	SessionDriver string
	// RedisAddr is the Redis address used by the redis session driver.
	RedisAddr string
	// RedisPassword is the Redis password.
	RedisPassword string
	// RedisDB is the Redis logical database.
	RedisDB int
	// SessionTTL is how long a session record lives in Redis. Zero keeps records forever.
	SessionTTL time.Duration

	// PersistentDriver backs the persistent tier ("sqlite", "postgres", "mysql" or "none").
	PersistentDriver string
	// PersistentDSN is the connection string or, for sqlite, the database file path.
	PersistentDSN string
	// DBMaxOpenConnections is the maximum number of open connections to the database.
	DBMaxOpenConnections int
	// DBMaxIdleConnections is the maximum number of idle connections in the database pool.
	DBMaxIdleConnections int
	// DBConnMaxLifetime is the maximum amount of time a connection may be reused.
	DBConnMaxLifetime time.Duration

	// KeyStoreDir is the directory of the private key store.
	KeyStoreDir string
	// KeyStoreName names the key store database file inside KeyStoreDir.
	KeyStoreName string
	// KMSKeyURI wraps the stored key with a KMS keeper when set (e.g., "base64key://...").
	KMSKeyURI string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	dataDir := defaultDataDir()

	return &Config{
		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Storage
		StorageNamespace: env.GetString("STORAGE_NAMESPACE", "securestorage_"),

		// Crypto
		CryptoEnabled:        env.GetBool("CRYPTO_ENABLED", true),
		CipherAlgorithm:      env.GetString("CIPHER_ALGORITHM", "aes-gcm"),
		LegacyObfuscationKey: env.GetString("LEGACY_OBFUSCATION_KEY", ""),

		// Session tier
		SessionDriver: env.GetString("SESSION_DRIVER", SessionDriverMemory),
		RedisAddr:     env.GetString("REDIS_ADDR", "localhost:6379"),
		RedisPassword: env.GetString("REDIS_PASSWORD", ""),
		RedisDB:       env.GetInt("REDIS_DB", 0),
		SessionTTL:    env.GetDuration("SESSION_TTL_SECONDS", 3600, time.Second),

		// Persistent tier
		PersistentDriver:     env.GetString("PERSISTENT_DRIVER", PersistentDriverSQLite),
		PersistentDSN:        env.GetString("PERSISTENT_DSN", filepath.Join(dataDir, "storage.db")),
		DBMaxOpenConnections: env.GetInt("DB_MAX_OPEN_CONNECTIONS", 25),
		DBMaxIdleConnections: env.GetInt("DB_MAX_IDLE_CONNECTIONS", 5),
		DBConnMaxLifetime:    env.GetDuration("DB_CONN_MAX_LIFETIME", 5, time.Minute),

		// Key store
		KeyStoreDir:  env.GetString("KEY_STORE_DIR", dataDir),
		KeyStoreName: env.GetString("KEY_STORE_NAME", "keys"),
		KMSKeyURI:    env.GetString("KMS_KEY_URI", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", false),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "securestorage"),
	}
}

// Validate checks driver names and the settings each driver requires.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.StorageNamespace, validation.Required),
		validation.Field(&c.CipherAlgorithm, validation.In("aes-gcm", "xchacha20-poly1305")),
		validation.Field(&c.SessionDriver,
			validation.Required,
			validation.In(SessionDriverMemory, SessionDriverRedis),
		),
		validation.Field(&c.RedisAddr, validation.When(c.SessionDriver == SessionDriverRedis, validation.Required)),
		validation.Field(&c.SessionTTL, validation.Min(time.Duration(0))),
		validation.Field(&c.PersistentDriver,
			validation.Required,
			validation.In(
				PersistentDriverSQLite,
				PersistentDriverPostgres,
				PersistentDriverMySQL,
				PersistentDriverNone,
			),
		),
		validation.Field(&c.PersistentDSN,
			validation.When(c.PersistentDriver != PersistentDriverNone, validation.Required),
		),
		validation.Field(&c.KeyStoreName, validation.Required),
	)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}
	return nil
}

// defaultDataDir returns the per-user directory for the key store and the sqlite tier.
func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".securestorage"
	}
	return filepath.Join(dir, "securestorage")
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
