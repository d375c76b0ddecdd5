package usecase

import (
	"context"
	"encoding/json"

	storageDomain "github.com/allisson/securestorage/internal/storage/domain"
)

// Key prefixes of the preconfigured facades.
const (
	AuthKeyPrefix   = "auth_"
	ConfigKeyPrefix = "config_"
)

// AuthStorage holds authorization data: always encrypted, session tier only.
type AuthStorage struct {
	storage *SecureStorage
}

// NewAuthStorage creates an AuthStorage over storage.
func NewAuthStorage(storage *SecureStorage) *AuthStorage {
	return &AuthStorage{storage: storage}
}

var (
	authSetOptions = storageDomain.SetOptions{Encrypted: true}
	authGetOptions = storageDomain.GetOptions{Encrypted: true}
)

// Set stores value under auth_<key>.
func (a *AuthStorage) Set(ctx context.Context, key string, value any) bool {
	return a.storage.SetItem(ctx, AuthKeyPrefix+key, value, authSetOptions)
}

// Get returns the value stored under auth_<key>.
func (a *AuthStorage) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	return a.storage.GetItem(ctx, AuthKeyPrefix+key, authGetOptions)
}

// Remove deletes auth_<key>.
func (a *AuthStorage) Remove(ctx context.Context, key string) {
	a.storage.RemoveItem(ctx, AuthKeyPrefix+key)
}

// Has reports whether auth_<key> is readable.
func (a *AuthStorage) Has(ctx context.Context, key string) bool {
	return a.storage.HasItem(ctx, AuthKeyPrefix+key)
}

// ConfigStorage holds UI configuration: never encrypted, persistent tier.
type ConfigStorage struct {
	storage *SecureStorage
}

// NewConfigStorage creates a ConfigStorage over storage.
func NewConfigStorage(storage *SecureStorage) *ConfigStorage {
	return &ConfigStorage{storage: storage}
}

var (
	configSetOptions = storageDomain.SetOptions{Persistent: true}
	configGetOptions = storageDomain.GetOptions{}
)

// Set stores value under config_<key>.
func (c *ConfigStorage) Set(ctx context.Context, key string, value any) bool {
	return c.storage.SetItem(ctx, ConfigKeyPrefix+key, value, configSetOptions)
}

// Get returns the value stored under config_<key>.
func (c *ConfigStorage) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	return c.storage.GetItem(ctx, ConfigKeyPrefix+key, configGetOptions)
}

// Remove deletes config_<key>.
func (c *ConfigStorage) Remove(ctx context.Context, key string) {
	c.storage.RemoveItem(ctx, ConfigKeyPrefix+key)
}

// Has reports whether config_<key> is readable.
func (c *ConfigStorage) Has(ctx context.Context, key string) bool {
	return c.storage.HasItem(ctx, ConfigKeyPrefix+key)
}
