// Package provider implements clients for the public market data endpoints
// this system consumes: the SZSE trading calendar, the Eastmoney limit-up
// pool and sector boards, and the market breadth snapshot. All requests are
// rate limited and retried; provider failures are returned as errors for the
// caller to degrade on, never panics.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/BBbandit/Dayil-Review/internal/util"
)

// Options configures a Client. Zero values select sensible defaults.
type Options struct {
	Timeout         time.Duration
	RateLimitPerMin int
	MaxRetries      int
	UserAgent       string
}

// Client is the shared HTTP layer for all upstream endpoints.
type Client struct {
	httpClient *http.Client
	limiter    *util.RateLimiter
	maxRetries int
	userAgent  string
	log        *slog.Logger
}

// NewClient creates a Client with the given options.
func NewClient(opts Options, log *slog.Logger) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RateLimitPerMin == 0 {
		opts.RateLimitPerMin = 60
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    util.NewRateLimiter(opts.RateLimitPerMin),
		maxRetries: opts.MaxRetries,
		userAgent:  opts.UserAgent,
		log:        log,
	}
}

// getJSON fetches url and decodes the response body into out, applying the
// client's rate limit and retry policy.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	return util.Retry(ctx, c.maxRetries, 500*time.Millisecond, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding %s: %w", url, err)
		}
		return nil
	})
}

// jsonFloat decodes a JSON number that the upstream sometimes reports as the
// placeholder string "-" for missing values.
type jsonFloat float64

func (f *jsonFloat) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == `"-"` || s == `"--"` || s == "null" {
		*f = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parsing number %s: %w", string(data), err)
	}
	*f = jsonFloat(v)
	return nil
}
