package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"bpdash/pkg/chart"
)

const ConfigFileName = ".bpdash.json"

const (
	DefaultReferenceCurrency = "EUR"
	DefaultRefreshInterval   = 60 * time.Second
	DefaultServerPort        = 8080
	DefaultBaseURL           = "https://api.bitpanda.com/v1"
)

// Config holds application-wide settings.
type Config struct {
	ReferenceCurrency     string
	RefreshInterval       time.Duration
	FiatDecimals          int
	CryptoDecimals        int
	PrivacyTimeoutSeconds int
	RemoteURL             string
	EncryptedAPIKey       string
	BaseURL               string
	ServerPort            int
	AllowedOrigins        []string
	LogFile               string
	LogLevel              string
	DefaultViewMode       string
}

// fileConfig is the on-disk layout. Pointer fields fall back to defaults.
type fileConfig struct {
	ReferenceCurrency      *string  `json:"reference_currency,omitempty"`
	RefreshIntervalSeconds *int     `json:"refresh_interval_seconds,omitempty"`
	FiatDecimals           *int     `json:"fiat_decimals,omitempty"`
	CryptoDecimals         *int     `json:"crypto_decimals,omitempty"`
	PrivacyTimeoutSeconds  *int     `json:"privacy_timeout_seconds,omitempty"`
	RemoteURL              string   `json:"remote_url,omitempty"`
	EncryptedAPIKey        string   `json:"encrypted_api_key,omitempty"`
	BaseURL                string   `json:"base_url,omitempty"`
	ServerPort             *int     `json:"server_port,omitempty"`
	AllowedOrigins         []string `json:"allowed_origins,omitempty"`
	LogFile                string   `json:"log_file,omitempty"`
	LogLevel               string   `json:"log_level,omitempty"`
	DefaultViewMode        string   `json:"default_view_mode,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		ReferenceCurrency:     DefaultReferenceCurrency,
		RefreshInterval:       DefaultRefreshInterval,
		FiatDecimals:          2,
		CryptoDecimals:        8,
		PrivacyTimeoutSeconds: 60,
		BaseURL:               DefaultBaseURL,
		ServerPort:            DefaultServerPort,
		AllowedOrigins:        []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		LogLevel:              "info",
		DefaultViewMode:       "total",
	}
}

func GetConfigPath(customPath string) (string, error) {
	if customPath != "" {
		return customPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigFileName), nil
}

func LoadConfigFromFile(path string) (Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, err
	}
	defer func() { _ = f.Close() }()
	return LoadConfig(f)
}

func LoadConfig(r io.Reader) (Config, error) {
	var fc fileConfig
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if fc.ReferenceCurrency != nil {
		cfg.ReferenceCurrency = strings.ToUpper(strings.TrimSpace(*fc.ReferenceCurrency))
	}
	if fc.RefreshIntervalSeconds != nil {
		cfg.RefreshInterval = time.Duration(*fc.RefreshIntervalSeconds) * time.Second
	}
	if fc.FiatDecimals != nil {
		cfg.FiatDecimals = *fc.FiatDecimals
	}
	if fc.CryptoDecimals != nil {
		cfg.CryptoDecimals = *fc.CryptoDecimals
	}
	if fc.PrivacyTimeoutSeconds != nil {
		cfg.PrivacyTimeoutSeconds = *fc.PrivacyTimeoutSeconds
	}
	if fc.ServerPort != nil {
		cfg.ServerPort = *fc.ServerPort
	}
	if fc.BaseURL != "" {
		cfg.BaseURL = fc.BaseURL
	}
	if len(fc.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = fc.AllowedOrigins
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.DefaultViewMode != "" {
		cfg.DefaultViewMode = fc.DefaultViewMode
	}
	cfg.RemoteURL = fc.RemoteURL
	cfg.EncryptedAPIKey = fc.EncryptedAPIKey
	cfg.LogFile = fc.LogFile

	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if len(c.ReferenceCurrency) != 3 {
		return fmt.Errorf("validation failed: reference currency %q must be a 3 letter code", c.ReferenceCurrency)
	}
	for _, r := range c.ReferenceCurrency {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("validation failed: reference currency %q must be upper case letters", c.ReferenceCurrency)
		}
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("validation failed: refresh interval must be positive, got %s", c.RefreshInterval)
	}
	if c.FiatDecimals < 0 || c.FiatDecimals > 18 {
		return fmt.Errorf("validation failed: fiat_decimals %d out of range 0-18", c.FiatDecimals)
	}
	if c.CryptoDecimals < 0 || c.CryptoDecimals > 18 {
		return fmt.Errorf("validation failed: crypto_decimals %d out of range 0-18", c.CryptoDecimals)
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("validation failed: server port %d out of range", c.ServerPort)
	}
	if _, err := chart.ParseViewMode(c.DefaultViewMode); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// ViewMode returns the configured initial chart mode.
func (c Config) ViewMode() chart.ViewMode {
	m, err := chart.ParseViewMode(c.DefaultViewMode)
	if err != nil {
		return chart.ModeTotal
	}
	return m
}

func SaveConfig(cfg Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	seconds := int(cfg.RefreshInterval / time.Second)
	fc := fileConfig{
		ReferenceCurrency:      &cfg.ReferenceCurrency,
		RefreshIntervalSeconds: &seconds,
		FiatDecimals:           &cfg.FiatDecimals,
		CryptoDecimals:         &cfg.CryptoDecimals,
		PrivacyTimeoutSeconds:  &cfg.PrivacyTimeoutSeconds,
		RemoteURL:              cfg.RemoteURL,
		EncryptedAPIKey:        cfg.EncryptedAPIKey,
		BaseURL:                cfg.BaseURL,
		ServerPort:             &cfg.ServerPort,
		AllowedOrigins:         cfg.AllowedOrigins,
		LogFile:                cfg.LogFile,
		LogLevel:               cfg.LogLevel,
		DefaultViewMode:        cfg.DefaultViewMode,
	}
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return err
	}

	if len(data) == 0 {
		return fmt.Errorf("validation failed: encoded configuration is empty")
	}

	// Create a backup of the existing file
	if _, err := os.Stat(path); err == nil {
		backupPath := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102-150405"))
		input, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read existing config for backup: %w", err)
		}
		if err := os.WriteFile(backupPath, input, 0600); err != nil {
			return fmt.Errorf("failed to write backup config: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func RestoreLastBackup(configPath string) error {
	matches, err := filepath.Glob(configPath + ".*.bak")
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("no backup files found")
	}
	sort.Strings(matches)
	lastBackup := matches[len(matches)-1]

	data, err := os.ReadFile(lastBackup)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0600)
}
