package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	cryptoDomain "github.com/allisson/securestorage/internal/crypto/domain"
	cryptoRepository "github.com/allisson/securestorage/internal/crypto/repository"
	cryptoService "github.com/allisson/securestorage/internal/crypto/service"
)

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// CryptoAlgorithm returns the suite new records are sealed with.
func (c *Container) CryptoAlgorithm() (cryptoDomain.Algorithm, error) {
	return cryptoDomain.ParseAlgorithm(c.config.CipherAlgorithm)
}

// CryptoProbe returns the crypto capability probe.
func (c *Container) CryptoProbe() (*cryptoService.CryptoProbeService, error) {
	var err error
	c.cryptoProbeInit.Do(func() {
		c.cryptoProbe, err = c.initCryptoProbe()
		if err != nil {
			c.initErrors["cryptoProbe"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["cryptoProbe"]; exists {
		return nil, storedErr
	}
	return c.cryptoProbe, nil
}

// KeyStoreDB returns the connection to the private key store.
func (c *Container) KeyStoreDB() (*sql.DB, error) {
	var err error
	c.keyStoreDBInit.Do(func() {
		c.keyStoreDB, err = cryptoRepository.OpenKeyStore(c.Logger(), cryptoRepository.KeyStoreConfig{
			Dir:  c.config.KeyStoreDir,
			Name: c.config.KeyStoreName,
		})
		if err != nil {
			c.initErrors["keyStoreDB"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyStoreDB"]; exists {
		return nil, storedErr
	}
	return c.keyStoreDB, nil
}

// KMSKeeper returns the keeper that wraps the stored key, or nil when KMS_KEY_URI is empty.
func (c *Container) KMSKeeper(ctx context.Context) (cryptoDomain.KMSKeeper, error) {
	var err error
	c.kmsKeeperInit.Do(func() {
		if c.config.KMSKeyURI == "" {
			return
		}
		c.kmsKeeper, err = cryptoService.NewKMSService().OpenKeeper(ctx, c.config.KMSKeyURI)
		if err != nil {
			c.initErrors["kmsKeeper"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["kmsKeeper"]; exists {
		return nil, storedErr
	}
	return c.kmsKeeper, nil
}

// KeyManager returns the storage key manager.
func (c *Container) KeyManager(ctx context.Context) (*cryptoService.KeyManagerService, error) {
	var err error
	c.keyManagerInit.Do(func() {
		c.keyManager, err = c.initKeyManager(ctx)
		if err != nil {
			c.initErrors["keyManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyManager"]; exists {
		return nil, storedErr
	}
	return c.keyManager, nil
}

// Cipher returns the record cipher.
func (c *Container) Cipher(ctx context.Context) (*cryptoService.CipherService, error) {
	var err error
	c.cipherInit.Do(func() {
		c.cipher, err = c.initCipher(ctx)
		if err != nil {
			c.initErrors["cipher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["cipher"]; exists {
		return nil, storedErr
	}
	return c.cipher, nil
}

// LegacyObfuscator returns the codec of the retired obfuscation scheme.
func (c *Container) LegacyObfuscator() *cryptoService.LegacyObfuscatorService {
	c.legacyObfuscatorInit.Do(func() {
		c.legacyObfuscator = cryptoService.NewLegacyObfuscator(c.config.LegacyObfuscationKey)
	})
	return c.legacyObfuscator
}

// initCryptoProbe creates the probe for the configured suite.
func (c *Container) initCryptoProbe() (*cryptoService.CryptoProbeService, error) {
	alg, err := c.CryptoAlgorithm()
	if err != nil {
		return nil, fmt.Errorf("failed to parse cipher algorithm: %w", err)
	}
	return cryptoService.NewCryptoProbe(c.config.CryptoEnabled, alg, c.AEADManager(), nil), nil
}

// initKeyManager creates the key manager. A key store or keeper that fails to open
// leaves the key in memory only.
func (c *Container) initKeyManager(ctx context.Context) (*cryptoService.KeyManagerService, error) {
	logger := c.Logger()

	probe, err := c.CryptoProbe()
	if err != nil {
		return nil, fmt.Errorf("failed to get crypto probe for key manager: %w", err)
	}
	alg, err := c.CryptoAlgorithm()
	if err != nil {
		return nil, fmt.Errorf("failed to parse cipher algorithm: %w", err)
	}

	var repo cryptoService.KeyRepository
	if !probe.IsCryptoAvailable() {
		// No key can exist, so there is nothing to open.
		return cryptoService.NewKeyManager(probe, nil, nil, alg, logger), nil
	}

	if db, err := c.KeyStoreDB(); err != nil {
		logger.Warn("key store unavailable, storage key will not survive restart", slog.Any("error", err))
	} else {
		repo = cryptoRepository.NewSQLiteKeyRepository(db)
	}

	keeper, err := c.KMSKeeper(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper for key manager: %w", err)
	}

	return cryptoService.NewKeyManager(probe, repo, keeper, alg, logger), nil
}

// initCipher creates the cipher on the key manager.
func (c *Container) initCipher(ctx context.Context) (*cryptoService.CipherService, error) {
	keyManager, err := c.KeyManager(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get key manager for cipher: %w", err)
	}
	alg, err := c.CryptoAlgorithm()
	if err != nil {
		return nil, fmt.Errorf("failed to parse cipher algorithm: %w", err)
	}
	return cryptoService.NewCipher(keyManager, c.AEADManager(), alg), nil
}
