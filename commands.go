package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"bpdash/pkg/bitpanda"
	"bpdash/pkg/chart"
	"bpdash/pkg/config"
	"bpdash/pkg/logging"
	"bpdash/pkg/models"
	"bpdash/pkg/prefs"
	"bpdash/pkg/provider"
	"bpdash/pkg/report"
	"bpdash/pkg/secrets"
	"bpdash/pkg/server"
	"bpdash/pkg/tui"
	"bpdash/pkg/utils"

	"github.com/urfave/cli/v2"
)

const checkTimeout = 30 * time.Second

func openPrefs(logger *slog.Logger) prefs.Store {
	path, err := prefs.DefaultPath()
	if err != nil {
		logger.Warn("no home directory for preferences", "error", err)
		return prefs.NewMemoryStore()
	}
	store, err := prefs.Open(path)
	if err != nil {
		logger.Warn("could not read preferences, using defaults", "path", path, "error", err)
		return prefs.NewMemoryStore()
	}
	return store
}

func runDashboard(c *cli.Context) error {
	env, err := loadEnv(c)
	if err != nil {
		return err
	}

	logger, closer, err := logging.Setup(env.cfg.LogFile, env.cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer func() { _ = closer.Close() }()

	src, err := newSource(env.cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("starting dashboard", "version", Version, "source", src.Name(), "config", env.configPath)

	return tui.Start(c.Context, tui.Options{
		Controller: newController(src, env.cfg, logger),
		Source:     src,
		Config:     env.cfg,
		Prefs:      openPrefs(logger),
		Logger:     logger,
		Version:    Version,
	})
}

func runServe(c *cli.Context) error {
	env, err := loadEnv(c)
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(env.cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.New(c.App.ErrWriter, level)
	slog.SetDefault(logger)

	src, err := newSource(env.cfg, logger)
	if err != nil {
		return err
	}

	port := env.cfg.ServerPort
	if c.IsSet("port") {
		port = c.Int("port")
	}

	ctrl := newController(src, env.cfg, logger)
	ctrl.Start(c.Context)
	defer ctrl.Stop()

	srv := server.NewServer(src, ctrl, server.Options{
		AllowedOrigins: env.cfg.AllowedOrigins,
		Logger:         logger,
		LoadOnStart:    true,
	})
	return srv.Start(c.Context, port)
}

func runCheck(c *cli.Context) error {
	jsonOut := c.Bool("json")
	out := c.App.Writer
	printf := func(format string, args ...any) {
		if !jsonOut {
			fmt.Fprintf(out, format, args...)
		}
	}

	env, err := loadEnv(c)
	if err != nil {
		return err
	}

	rep := models.CheckReport{
		ConfigPath:        env.configPath,
		ValidStructure:    true,
		ReferenceCurrency: env.cfg.ReferenceCurrency,
	}
	printf("Testing configuration at: %s\n", env.configPath)

	if err := env.cfg.Validate(); err != nil {
		rep.ValidStructure = false
		rep.StructureErrors = append(rep.StructureErrors, err.Error())
		printf("Error: %v\n", err)
	}

	logger := logging.New(c.App.ErrWriter, slog.LevelWarn)
	src, err := newSource(env.cfg, logger)
	if err != nil {
		rep.ValidStructure = false
		rep.StructureErrors = append(rep.StructureErrors, err.Error())
		printf("Error: %v\n", err)
		return finishCheck(c, rep, jsonOut)
	}
	rep.ProviderKind = src.Name()
	printf("Data source: %s\n", src.Name())

	ctx, cancel := context.WithTimeout(c.Context, checkTimeout)
	defer cancel()

	switch s := src.(type) {
	case *provider.Direct:
		res := models.ProviderResult{Name: "bitpanda auth", Status: "ok"}
		if err := s.TestAuth(ctx); err != nil {
			res.Status = "error"
			res.Error = err.Error()
		}
		rep.Providers = append(rep.Providers, res)
	case *provider.Remote:
		res := models.ProviderResult{Name: "service health", Status: "ok"}
		if h, err := s.Health(ctx); err != nil {
			res.Status = "error"
			res.Error = err.Error()
		} else if h.Status != "healthy" {
			res.Status = "error"
			res.Error = fmt.Sprintf("service reports %q", h.Status)
		}
		rep.Providers = append(rep.Providers, res)
	}

	res, snap := provider.Probe(ctx, src)
	rep.Providers = append(rep.Providers, res)
	if snap != nil {
		rep.AssetCount = snap.AssetCount()
	}

	for _, r := range rep.Providers {
		if r.Status == "ok" {
			printf("  %s ... OK %s\n", r.Name, r.Latency)
		} else {
			printf("  %s ... Failed: %s\n", r.Name, r.Error)
		}
	}
	if snap != nil {
		printf("Found %s.\n", utils.Pluralize(snap.AssetCount(), "asset"))
	}
	return finishCheck(c, rep, jsonOut)
}

func finishCheck(c *cli.Context, rep models.CheckReport, jsonOut bool) error {
	if jsonOut {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return err
		}
	}
	if !checkPassed(rep) {
		return cli.Exit("", 1)
	}
	return nil
}

func checkPassed(rep models.CheckReport) bool {
	if !rep.ValidStructure {
		return false
	}
	for _, r := range rep.Providers {
		if r.Status != "ok" {
			return false
		}
	}
	return true
}

// fetchSnapshot runs one manual refresh and returns the loaded snapshot.
func fetchSnapshot(c *cli.Context, cfg config.Config) (*models.PortfolioSnapshot, error) {
	logger := logging.New(c.App.ErrWriter, slog.LevelWarn)
	src, err := newSource(cfg, logger)
	if err != nil {
		return nil, err
	}
	ctrl := newController(src, cfg, logger)
	defer ctrl.Stop()
	if err := ctrl.RefreshManual(c.Context); err != nil {
		return nil, errors.New(ctrl.State().Message)
	}
	return ctrl.State().Snapshot, nil
}

func runReport(c *cli.Context) error {
	env, err := loadEnv(c)
	if err != nil {
		return err
	}
	mode, err := chart.ParseViewMode(c.String("mode"))
	if err != nil {
		return err
	}

	snap, err := fetchSnapshot(c, env.cfg)
	if err != nil {
		return err
	}

	projector := chart.NewProjector(env.cfg.ReferenceCurrency)
	md := report.Markdown(snap, projector.Project(snap, mode), report.Options{
		FiatDecimals:   env.cfg.FiatDecimals,
		CryptoDecimals: env.cfg.CryptoDecimals,
	})
	if c.Bool("raw") {
		_, err := fmt.Fprint(c.App.Writer, md)
		return err
	}

	theme := prefs.Theme(openPrefs(slog.Default()))
	rendered, err := report.Render(md, theme, c.Int("width"))
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(c.App.Writer, rendered)
	return err
}

func runExport(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit("export: missing output file", 2)
	}
	env, err := loadEnv(c)
	if err != nil {
		return err
	}

	snap, err := fetchSnapshot(c, env.cfg)
	if err != nil {
		return err
	}
	if err := report.WriteXLSX(path, snap, chart.NewProjector(env.cfg.ReferenceCurrency)); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Wrote %s (%d assets)\n", path, snap.AssetCount())
	return nil
}

func runEncryptKey(c *cli.Context) error {
	if f := c.String("env-file"); f != "" {
		config.LoadDotEnv(f)
	}

	apiKey := strings.TrimSpace(c.String("key"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv(config.EnvAPIKey))
	}
	if apiKey == "" {
		return cli.Exit("encrypt-key: no API key given; use --key or "+config.EnvAPIKey, 2)
	}
	if err := bitpanda.ValidateAPIKey(apiKey); err != nil {
		return fmt.Errorf("invalid api key %s: %w", bitpanda.MaskAPIKey(apiKey), err)
	}

	encKey := os.Getenv(config.EnvEncryptionKey)
	generated := false
	if encKey == "" {
		k, err := secrets.GenerateKey()
		if err != nil {
			return err
		}
		encKey, generated = k, true
	}
	token, err := secrets.Encrypt(encKey, apiKey)
	if err != nil {
		return err
	}

	out := c.App.Writer
	if generated {
		fmt.Fprintf(out, "Generated encryption key. Keep it outside the config file:\n%s=%s\n\n", config.EnvEncryptionKey, encKey)
	}

	if !c.Bool("save") {
		fmt.Fprintf(out, "encrypted_api_key: %s\n", token)
		return nil
	}

	// env overrides are not written back
	path, err := config.GetConfigPath(c.String("config"))
	if err != nil {
		return err
	}
	cfg, err := config.LoadConfigFromFile(path)
	if err != nil {
		return err
	}
	cfg.EncryptedAPIKey = token
	if err := config.SaveConfig(cfg, path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintf(out, "Saved encrypted key for %s to %s\n", bitpanda.MaskAPIKey(apiKey), path)
	return nil
}

func runRestoreConfig(c *cli.Context) error {
	path, err := config.GetConfigPath(c.String("config"))
	if err != nil {
		return err
	}
	if err := config.RestoreLastBackup(path); err != nil {
		return fmt.Errorf("restoring %s: %w", path, err)
	}
	fmt.Fprintf(c.App.Writer, "Restored last backup of %s\n", path)
	return nil
}
