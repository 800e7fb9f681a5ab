// Package provider supplies portfolio snapshots to the dashboard: sample
// data, the Bitpanda API in-process, or a remote portfolio service.
package provider

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bpdash/pkg/bitpanda"
	"bpdash/pkg/config"
	"bpdash/pkg/models"
)

// Source is everything the dashboard consumes from its data side.
type Source interface {
	Name() string
	FetchSnapshot(ctx context.Context) (*models.PortfolioSnapshot, error)
	FetchUserInfo(ctx context.Context) (models.UserInfo, error)
	Logout(ctx context.Context) error
}

// New picks a source: a remote service when RemoteURL is set, Bitpanda when
// an API key is available, and demo data otherwise.
func New(cfg config.Config, apiKey, version string, logger *slog.Logger) (Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RemoteURL != "" {
		return NewRemote(cfg.RemoteURL, WithRemoteLogger(logger)), nil
	}
	if apiKey == "" {
		logger.Info("no api key configured, using demo data")
		return NewDemo(cfg.ReferenceCurrency), nil
	}
	client, err := bitpanda.NewClient(apiKey,
		bitpanda.WithBaseURL(cfg.BaseURL),
		bitpanda.WithUserAgent("bpdash/"+version),
		bitpanda.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("creating bitpanda client: %w", err)
	}
	return NewDirect(client, cfg.ReferenceCurrency), nil
}

// Probe fetches one snapshot and reports the outcome for the check command.
func Probe(ctx context.Context, src Source) (models.ProviderResult, *models.PortfolioSnapshot) {
	start := time.Now()
	snap, err := src.FetchSnapshot(ctx)
	res := models.ProviderResult{Name: src.Name(), Latency: time.Since(start).Round(time.Millisecond).String()}
	if err != nil {
		res.Status = "error"
		res.Error = err.Error()
		return res, nil
	}
	res.Status = "ok"
	return res, snap
}
