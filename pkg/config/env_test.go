package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"bpdash/pkg/secrets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvRemoteURL, "http://remote:9000")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvRefreshInterval, "15s")
	t.Setenv(EnvServerPort, "9100")

	cfg := Default()
	ApplyEnv(&cfg)

	assert.Equal(t, "http://remote:9000", cfg.RemoteURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 15*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 9100, cfg.ServerPort)
}

func TestApplyEnvInvalidKeepsCurrent(t *testing.T) {
	t.Setenv(EnvRefreshInterval, "soon")
	t.Setenv(EnvServerPort, "eighty")

	cfg := Default()
	ApplyEnv(&cfg)

	assert.Equal(t, DefaultRefreshInterval, cfg.RefreshInterval)
	assert.Equal(t, DefaultServerPort, cfg.ServerPort)
}

func TestApplyEnvRejectsNegativeInterval(t *testing.T) {
	t.Setenv(EnvRefreshInterval, "-5s")
	cfg := Default()
	ApplyEnv(&cfg)
	assert.Equal(t, DefaultRefreshInterval, cfg.RefreshInterval)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BPDASH_TEST_DOTENV=from-file\n"), 0600))
	t.Cleanup(func() { _ = os.Unsetenv("BPDASH_TEST_DOTENV") })

	LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env"))
	assert.Equal(t, "from-file", os.Getenv("BPDASH_TEST_DOTENV"))
}

func TestResolveAPIKey(t *testing.T) {
	encKey, err := secrets.GenerateKey()
	require.NoError(t, err)
	token, err := secrets.Encrypt(encKey, "stored-api-key-1")
	require.NoError(t, err)

	t.Run("env wins", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "env-api-key-123")
		cfg := Default()
		cfg.EncryptedAPIKey = token
		key, src, err := ResolveAPIKey(cfg)
		require.NoError(t, err)
		assert.Equal(t, "env-api-key-123", key)
		assert.Equal(t, KeyFromEnv, src)
	})

	t.Run("decrypted from config", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "")
		t.Setenv(EnvEncryptionKey, encKey)
		cfg := Default()
		cfg.EncryptedAPIKey = token
		key, src, err := ResolveAPIKey(cfg)
		require.NoError(t, err)
		assert.Equal(t, "stored-api-key-1", key)
		assert.Equal(t, KeyFromConfig, src)
	})

	t.Run("missing encryption key", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "")
		t.Setenv(EnvEncryptionKey, "")
		cfg := Default()
		cfg.EncryptedAPIKey = token
		_, src, err := ResolveAPIKey(cfg)
		assert.ErrorIs(t, err, ErrMissingEncryptionKey)
		assert.Equal(t, KeyNone, src)
	})

	t.Run("wrong encryption key", func(t *testing.T) {
		other, err := secrets.GenerateKey()
		require.NoError(t, err)
		t.Setenv(EnvAPIKey, "")
		t.Setenv(EnvEncryptionKey, other)
		cfg := Default()
		cfg.EncryptedAPIKey = token
		_, _, err = ResolveAPIKey(cfg)
		assert.ErrorIs(t, err, secrets.ErrInvalidToken)
	})

	t.Run("demo", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "")
		key, src, err := ResolveAPIKey(Default())
		require.NoError(t, err)
		assert.Empty(t, key)
		assert.Equal(t, KeyNone, src)
	})
}
