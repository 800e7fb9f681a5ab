package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"bpdash/pkg/secrets"

	"github.com/joho/godotenv"
)

const (
	EnvAPIKey          = "BITPANDA_API_KEY"
	EnvEncryptionKey   = "BPDASH_ENCRYPTION_KEY"
	EnvRemoteURL       = "BPDASH_REMOTE_URL"
	EnvLogLevel        = "BPDASH_LOG_LEVEL"
	EnvRefreshInterval = "BPDASH_REFRESH_INTERVAL"
	EnvServerPort      = "BPDASH_SERVER_PORT"
)

// KeySource tells where the API key came from.
type KeySource string

const (
	KeyFromEnv    KeySource = "env"
	KeyFromConfig KeySource = "config"
	KeyNone       KeySource = "none"
)

// ErrMissingEncryptionKey is returned when the config holds an encrypted API
// key but BPDASH_ENCRYPTION_KEY is not set.
var ErrMissingEncryptionKey = errors.New(EnvEncryptionKey + " is not set")

// LoadDotEnv loads .env files into the process environment. Missing files
// are not an error.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		_ = godotenv.Load()
		return
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !os.IsNotExist(err) {
			slog.Warn("could not load env file", "path", p, "error", err)
		}
	}
}

// ApplyEnv overrides cfg with environment variables. Invalid values keep the
// current setting.
func ApplyEnv(cfg *Config) {
	cfg.RemoteURL = envOrDefault(EnvRemoteURL, cfg.RemoteURL)
	cfg.LogLevel = envOrDefault(EnvLogLevel, cfg.LogLevel)
	cfg.RefreshInterval = envOrDefaultDuration(EnvRefreshInterval, cfg.RefreshInterval)
	cfg.ServerPort = envOrDefaultInt(EnvServerPort, cfg.ServerPort)
}

// ResolveAPIKey returns the Bitpanda API key: BITPANDA_API_KEY first, then
// the encrypted key from the config file. KeyNone means demo mode.
func ResolveAPIKey(cfg Config) (string, KeySource, error) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		return v, KeyFromEnv, nil
	}
	if cfg.EncryptedAPIKey == "" {
		return "", KeyNone, nil
	}
	encKey := os.Getenv(EnvEncryptionKey)
	if encKey == "" {
		return "", KeyNone, ErrMissingEncryptionKey
	}
	key, err := secrets.Decrypt(encKey, cfg.EncryptedAPIKey)
	if err != nil {
		return "", KeyNone, fmt.Errorf("decrypting api key: %w", err)
	}
	return key, KeyFromConfig, nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}
