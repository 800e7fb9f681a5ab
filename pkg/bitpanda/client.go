package bitpanda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public Bitpanda REST API.
const DefaultBaseURL = "https://api.bitpanda.com/v1"

var (
	// ErrUnauthorized is returned when the API rejects the key.
	ErrUnauthorized = errors.New("invalid api key")
	// ErrRateLimited is returned when every attempt was answered with 429.
	ErrRateLimited = errors.New("rate limited by api")
	// ErrMissingAPIKey is returned by NewClient for an empty key.
	ErrMissingAPIKey = errors.New("api key is required")
)

// Client talks to the Bitpanda API with retry on 429 and network errors.
type Client struct {
	baseURL      string
	apiKey       string
	userAgent    string
	httpClient   *http.Client
	limiter      *rate.Limiter
	maxAttempts  int
	baseDelay    time.Duration
	networkDelay time.Duration
	logger       *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithRetry sets the number of attempts per request and the base delay of
// the exponential 429 backoff.
func WithRetry(attempts int, baseDelay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.maxAttempts = attempts
		}
		c.baseDelay = baseDelay
	}
}

// WithNetworkDelay sets the pause after a transport error.
func WithNetworkDelay(d time.Duration) Option {
	return func(c *Client) { c.networkDelay = d }
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for apiKey.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	c := &Client{
		baseURL:      DefaultBaseURL,
		apiKey:       apiKey,
		userAgent:    "bpdash",
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		limiter:      rate.NewLimiter(rate.Limit(5), 5),
		maxAttempts:  3,
		baseDelay:    time.Second,
		networkDelay: time.Second,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ValidateAPIKey applies the format check used before storing a key: at least
// ten characters, letters and digits with optional dashes.
func ValidateAPIKey(key string) error {
	if len(key) < 10 {
		return fmt.Errorf("api key too short")
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
		default:
			return fmt.Errorf("api key contains invalid character %q", r)
		}
	}
	return nil
}

// MaskAPIKey keeps the first and last four characters.
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

// get performs a GET request with retry on 429 and transport errors.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	url := c.baseURL + path

	var lastErr error
	for attempt := range c.maxAttempts {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("X-API-KEY", c.apiKey)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("executing request: %w", err)
			c.logger.Warn("bitpanda request failed", "path", path, "attempt", attempt+1, "error", err)
			if attempt < c.maxAttempts-1 {
				if err := sleep(ctx, c.networkDelay); err != nil {
					return nil, err
				}
			}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			return body, nil
		case http.StatusUnauthorized:
			return nil, ErrUnauthorized
		case http.StatusTooManyRequests:
			lastErr = fmt.Errorf("%w: %s (attempt %d/%d)", ErrRateLimited, path, attempt+1, c.maxAttempts)
			if attempt < c.maxAttempts-1 {
				delay := c.baseDelay * time.Duration(1<<uint(attempt))
				c.logger.Warn("bitpanda rate limit hit", "path", path, "wait", delay)
				if err := sleep(ctx, delay); err != nil {
					return nil, err
				}
			}
			continue
		}

		lastErr = fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, path, strings.TrimSpace(string(body)))
		c.logger.Warn("bitpanda api error", "path", path, "status", resp.StatusCode, "attempt", attempt+1)
	}

	return nil, lastErr
}

// getJSON performs a GET request and unmarshals the JSON response.
func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	body, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("parsing JSON from %s: %w", path, err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
