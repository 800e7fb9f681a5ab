package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bpdash/pkg/config"
	"bpdash/pkg/models"
	"bpdash/pkg/secrets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"github.com/xuri/excelize/v2"
)

// demoEnv clears credentials so every command runs against demo data.
func demoEnv(t *testing.T) string {
	t.Helper()
	t.Setenv(config.EnvAPIKey, "")
	t.Setenv(config.EnvRemoteURL, "")
	t.Setenv(config.EnvEncryptionKey, "")
	return filepath.Join(t.TempDir(), config.ConfigFileName)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp(&out)
	app.ErrWriter = &bytes.Buffer{}
	err := app.Run(append([]string{"bpdash"}, args...))
	return out.String(), err
}

func TestCheckDemoJSON(t *testing.T) {
	cfgPath := demoEnv(t)

	out, err := run(t, "--config", cfgPath, "--env-file", "", "check", "--json")
	require.NoError(t, err)

	var rep models.CheckReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, cfgPath, rep.ConfigPath)
	assert.True(t, rep.ValidStructure)
	assert.Equal(t, "demo", rep.ProviderKind)
	assert.Equal(t, 6, rep.AssetCount)
	require.Len(t, rep.Providers, 1)
	assert.Equal(t, "ok", rep.Providers[0].Status)
}

func TestCheckText(t *testing.T) {
	cfgPath := demoEnv(t)

	out, err := run(t, "--config", cfgPath, "--env-file", "", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "Testing configuration at: "+cfgPath)
	assert.Contains(t, out, "Data source: demo")
	assert.Contains(t, out, "Found 6 assets.")
}

func TestCheckInvalidConfig(t *testing.T) {
	cfgPath := demoEnv(t)
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"reference_currency": "euro"}`), 0600))

	out, err := run(t, "--config", cfgPath, "--env-file", "", "check", "--json")
	require.Error(t, err)
	var exitErr cli.ExitCoder
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.ExitCode())

	var rep models.CheckReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.False(t, rep.ValidStructure)
	assert.NotEmpty(t, rep.StructureErrors)
}

func TestReportRaw(t *testing.T) {
	cfgPath := demoEnv(t)

	out, err := run(t, "--config", cfgPath, "--env-file", "", "report", "--raw", "--mode", "crypto")
	require.NoError(t, err)
	assert.Contains(t, out, "# Portfolio report")
	assert.Contains(t, out, "## Allocation (Crypto)")
	assert.Contains(t, out, "BTC")

	_, err = run(t, "--config", cfgPath, "--env-file", "", "report", "--mode", "bogus")
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	cfgPath := demoEnv(t)
	dest := filepath.Join(t.TempDir(), "portfolio.xlsx")

	out, err := run(t, "--config", cfgPath, "--env-file", "", "export", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+dest)

	f, err := excelize.OpenFile(dest)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, []string{"Holdings", "Allocation"}, f.GetSheetList())

	_, err = run(t, "--config", cfgPath, "--env-file", "", "export")
	assert.Error(t, err)
}

func TestEncryptKeySave(t *testing.T) {
	cfgPath := demoEnv(t)
	encKey, err := secrets.GenerateKey()
	require.NoError(t, err)
	t.Setenv(config.EnvEncryptionKey, encKey)

	out, err := run(t, "--config", cfgPath, "--env-file", "", "encrypt-key", "--key", "abcd-1234-efgh-5678", "--save")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved encrypted key for abcd***********5678")
	assert.NotContains(t, out, "abcd-1234-efgh-5678")

	cfg, err := config.LoadConfigFromFile(cfgPath)
	require.NoError(t, err)
	plain, err := secrets.Decrypt(encKey, cfg.EncryptedAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "abcd-1234-efgh-5678", plain)

	// the stored key is picked up again
	key, src, err := config.ResolveAPIKey(cfg)
	require.NoError(t, err)
	assert.Equal(t, config.KeyFromConfig, src)
	assert.Equal(t, "abcd-1234-efgh-5678", key)
}

func TestEncryptKeyGeneratesEncryptionKey(t *testing.T) {
	cfgPath := demoEnv(t)

	out, err := run(t, "--config", cfgPath, "--env-file", "", "encrypt-key", "--key", "abcd-1234-efgh-5678")
	require.NoError(t, err)
	assert.Contains(t, out, config.EnvEncryptionKey+"=")
	assert.Contains(t, out, "encrypted_api_key: ")
	_, statErr := os.Stat(cfgPath)
	assert.True(t, os.IsNotExist(statErr), "config is only written with --save")
}

func TestEncryptKeyRejectsInvalid(t *testing.T) {
	cfgPath := demoEnv(t)

	_, err := run(t, "--config", cfgPath, "--env-file", "", "encrypt-key", "--key", "short")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "too short"))

	_, err = run(t, "--config", cfgPath, "--env-file", "", "encrypt-key")
	assert.Error(t, err)
}

func TestRestoreConfig(t *testing.T) {
	cfgPath := demoEnv(t)
	cfg := config.Default()
	require.NoError(t, config.SaveConfig(cfg, cfgPath))
	cfg.ReferenceCurrency = "USD"
	require.NoError(t, config.SaveConfig(cfg, cfgPath))

	out, err := run(t, "--config", cfgPath, "restore-config")
	require.NoError(t, err)
	assert.Contains(t, out, "Restored last backup")

	restored, err := config.LoadConfigFromFile(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "EUR", restored.ReferenceCurrency)
}

func TestVersionFlag(t *testing.T) {
	out, err := run(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}
