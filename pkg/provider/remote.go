package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"bpdash/pkg/models"
)

// Remote reads from a bpdash portfolio service over HTTP.
type Remote struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type RemoteOption func(*Remote)

func WithRemoteHTTPClient(hc *http.Client) RemoteOption {
	return func(r *Remote) { r.httpClient = hc }
}

func WithRemoteLogger(l *slog.Logger) RemoteOption {
	return func(r *Remote) {
		if l != nil {
			r.logger = l
		}
	}
}

func NewRemote(baseURL string, opts ...RemoteOption) *Remote {
	r := &Remote{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Remote) Name() string { return "remote " + r.baseURL }

func (r *Remote) FetchSnapshot(ctx context.Context) (*models.PortfolioSnapshot, error) {
	var snap models.PortfolioSnapshot
	if err := r.do(ctx, http.MethodGet, "/api/portfolio", &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (r *Remote) FetchUserInfo(ctx context.Context) (models.UserInfo, error) {
	var info models.UserInfo
	if err := r.do(ctx, http.MethodGet, "/api/user-info", &info); err != nil {
		return models.UserInfo{}, err
	}
	return info, nil
}

func (r *Remote) Logout(ctx context.Context) error {
	return r.do(ctx, http.MethodPost, "/api/logout", nil)
}

// Health calls the service health endpoint.
func (r *Remote) Health(ctx context.Context) (models.HealthStatus, error) {
	var h models.HealthStatus
	err := r.do(ctx, http.MethodGet, "/api/health", &h)
	return h, err
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func (r *Remote) do(ctx context.Context, method, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
			if eb.Details != "" {
				return fmt.Errorf("%s %s: HTTP %d: %s: %s", method, path, resp.StatusCode, eb.Error, eb.Details)
			}
			return fmt.Errorf("%s %s: HTTP %d: %s", method, path, resp.StatusCode, eb.Error)
		}
		return fmt.Errorf("%s %s: HTTP %d", method, path, resp.StatusCode)
	}

	if dest == nil {
		return nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("decoding response from %s: empty body", path)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		r.logger.Debug("undecodable response", "path", path, "bytes", len(body))
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return nil
}
