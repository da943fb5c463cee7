// Package coingecko is a client for the public CoinGecko API.
//
// Only the two endpoints needed to track a single asset are implemented: the
// simple price and the market chart range.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://api.coingecko.com/api/v3"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 30 // requests per minute, the public API limit
	DefaultAsset     = "bitcoin"
	DefaultVS        = "usd"
)

// Client fetches prices of one asset in one currency.
type Client struct {
	baseURL    string
	asset, vs  string
	httpClient *http.Client
	// history is httpClient behind a daily disk cache when a cache folder is set.
	history  *http.Client
	cacheDir string
	logger   zerolog.Logger
	limiter  *rate.Limiter
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets the base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithRateLimit sets the maximum number of requests per minute. Zero or less disables the limit.
func WithRateLimit(requestsPerMinute int) ClientOption {
	return func(c *Client) {
		if requestsPerMinute <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = client }
}

// WithAsset sets the CoinGecko coin id and the quote currency, e.g. "bitcoin", "usd".
func WithAsset(id, vs string) ClientOption {
	return func(c *Client) { c.asset, c.vs = id, vs }
}

// WithCache caches historical series responses in dir. Entries expire daily.
func WithCache(dir string) ClientOption {
	return func(c *Client) { c.cacheDir = dir }
}

// NewClient creates a new CoinGecko client. No API key is required.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		asset:      DefaultAsset,
		vs:         DefaultVS,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/DefaultRateLimit), 1),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.history = c.httpClient
	if c.cacheDir != "" {
		base := c.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		c.history = &http.Client{
			Timeout:   c.httpClient.Timeout,
			Transport: &diskCache{base: base, dir: c.cacheDir, logger: c.logger},
		}
	}
	return c
}

// Asset returns the coin id.
func (c *Client) Asset() string { return c.asset }

// Currency returns the quote currency code, upper case.
func (c *Client) Currency() string { return currencyCode(c.vs) }

// get performs a rate limited GET on addr and decodes the json body into v.
func (c *Client) get(ctx context.Context, client *http.Client, addr string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Error().Err(err).Str("url", req.URL.Path).Dur("elapsed", elapsed).Msg("CoinGecko request failed")
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().Str("url", req.URL.Path).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("CoinGecko non-OK response")
		return fmt.Errorf("cannot GET %s: %s", req.URL.Path, resp.Status)
	}
	c.logger.Debug().Str("url", req.URL.Path).Dur("elapsed", elapsed).Msg("CoinGecko request")

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
