package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"bpdash/pkg/config"
	"bpdash/pkg/provider"
	"bpdash/pkg/refresh"

	"github.com/urfave/cli/v2"
)

// Version should be set during build
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newApp(os.Stdout).RunContext(ctx, os.Args)
	if err == nil {
		return
	}
	code := 1
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(code)
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:    "bpdash",
		Usage:   "Bitpanda portfolio dashboard",
		Version: Version,
		Writer:  out,
		// exit codes are handled in main so commands stay testable
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to configuration file"},
			&cli.StringFlag{Name: "env-file", Usage: "load environment variables from `FILE`", Value: ".env"},
		},
		Action: runDashboard,
		Commands: []*cli.Command{
			{
				Name:   "dashboard",
				Usage:  "open the terminal dashboard (default)",
				Action: runDashboard,
			},
			{
				Name:   "serve",
				Usage:  "run the portfolio service",
				Flags:  []cli.Flag{&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "listen port (default from config)"}},
				Action: runServe,
			},
			{
				Name:  "check",
				Usage: "validate configuration and test the data source",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "output results as JSON"},
				},
				Action: runCheck,
			},
			{
				Name:  "report",
				Usage: "print a portfolio report",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "mode", Usage: "allocation view: total, crypto or fiat", Value: "total"},
					&cli.BoolFlag{Name: "raw", Usage: "print markdown without terminal styling"},
					&cli.IntFlag{Name: "width", Usage: "word wrap width", Value: 100},
				},
				Action: runReport,
			},
			{
				Name:      "export",
				Usage:     "write the portfolio to an Excel workbook",
				ArgsUsage: "FILE.xlsx",
				Action:    runExport,
			},
			{
				Name:  "encrypt-key",
				Usage: "encrypt a Bitpanda API key for the configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "key", Usage: "API key to encrypt (default: " + config.EnvAPIKey + ")"},
					&cli.BoolFlag{Name: "save", Usage: "store the encrypted key in the configuration file"},
				},
				Action: runEncryptKey,
			},
			{
				Name:   "restore-config",
				Usage:  "restore the most recent configuration backup",
				Action: runRestoreConfig,
			},
		},
	}
}

// runtimeEnv is the configuration shared by every command.
type runtimeEnv struct {
	configPath string
	cfg        config.Config
}

func loadEnv(c *cli.Context) (runtimeEnv, error) {
	if f := c.String("env-file"); f != "" {
		config.LoadDotEnv(f)
	}

	path, err := config.GetConfigPath(c.String("config"))
	if err != nil {
		return runtimeEnv{}, fmt.Errorf("determining config path: %w", err)
	}
	cfg, err := config.LoadConfigFromFile(path)
	if err != nil {
		return runtimeEnv{}, fmt.Errorf("loading config from %s: %w", path, err)
	}
	config.ApplyEnv(&cfg)
	return runtimeEnv{configPath: path, cfg: cfg}, nil
}

// newSource resolves the API key and builds the data source for cfg.
func newSource(cfg config.Config, logger *slog.Logger) (provider.Source, error) {
	apiKey, keySource, err := config.ResolveAPIKey(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolving api key: %w", err)
	}
	logger.Debug("api key resolved", "source", keySource)
	return provider.New(cfg, apiKey, Version, logger)
}

func newController(src provider.Source, cfg config.Config, logger *slog.Logger) *refresh.Controller {
	return refresh.NewController(src,
		refresh.WithInterval(cfg.RefreshInterval),
		refresh.WithLogger(logger),
	)
}
