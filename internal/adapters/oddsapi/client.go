package oddsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL  = "https://api.the-odds-api.com/v4"
	defaultSportKey = "basketball_nba"
	defaultRegions  = "us,eu"

	// The Odds API meters a monthly request quota rather than a rate, but
	// the per-event prop endpoint dislikes bursts. One request per second
	// with a small burst mirrors the pacing the quota survives on.
	requestsPerSec = 1
	requestBurst   = 3

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Config selects what the provider pulls. The zero value of the optional
// fields falls back to production defaults.
type Config struct {
	APIKey      string
	BaseURL     string
	SportKey    string
	Regions     string
	Bookmakers  []string // every book to request, the reference book included
	GameMarkets []string
	PropMarkets []string
}

// Client is The Odds API HTTP client with rate limiting and retries. It
// implements ports.OddsProvider.
type Client struct {
	http    *http.Client
	cfg     Config
	limiter *rate.Limiter
}

// NewClient creates a Client for the given config.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("oddsapi.NewClient: missing API key")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.SportKey == "" {
		cfg.SportKey = defaultSportKey
	}
	if cfg.Regions == "" {
		cfg.Regions = defaultRegions
	}
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		cfg:     cfg,
		limiter: rate.NewLimiter(requestsPerSec, requestBurst),
	}, nil
}

// get performs a GET with rate limiting and retries, decoding JSON into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("apiKey", c.cfg.APIKey)
	u := c.cfg.BaseURL + path + "?" + params.Encode()
	return c.doWithRetry(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return c.http.Do(req)
	}, out)
}

// doWithRetry runs the request with exponential backoff on 429s, 5xx and
// transport errors.
func (c *Client) doWithRetry(ctx context.Context, fn func() (*http.Response, error), out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			slog.Warn("rate limited by The Odds API", "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		if remaining := resp.Header.Get("X-Requests-Remaining"); remaining != "" {
			slog.Debug("odds api quota", "remaining", remaining)
		}

		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep waits with exponential backoff, respecting the context.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
