// Package drawsource fetches EuroMillions draw history over HTTP.
package drawsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/rewired-gh/luckylogic/internal/draws"
	"github.com/rewired-gh/luckylogic/internal/models"
)

const (
	// DefaultURL is the public draws API.
	DefaultURL = "https://euromillions.api.pedromealha.dev/v1/draws"
	// SourceName tags draws fetched from the draws API.
	SourceName = "pedromealha"

	maxBodyBytes = 16 << 20
)

// Client provides rate-limited access to the draws API.
type Client struct {
	apiURL     string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
}

// NewClient creates a draws API client. requestsPerSecond <= 0 disables rate limiting.
func NewClient(apiURL string, timeout time.Duration, requestsPerSecond float64, maxRetries int) *Client {
	if apiURL == "" {
		apiURL = DefaultURL
	}
	if maxRetries < 1 {
		maxRetries = 1
	}
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Client{
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: maxRetries,
		backoff:    time.Second,
	}
}

// Source names where FetchDraws gets its data.
func (c *Client) Source() string { return SourceName }

// FetchDraws retrieves and normalizes the full draw history.
// A payload that is not a JSON array yields no draws.
func (c *Client) FetchDraws(ctx context.Context) ([]models.Draw, error) {
	body, err := c.Get(ctx, c.apiURL, http.Header{"Accept": {"application/json"}})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch draws: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("failed to decode draws: invalid JSON")
	}
	return draws.NormalizeAll(body, SourceName), nil
}

// Get performs a GET with rate limiting and retries on network errors and
// 5xx responses, backing off linearly. Other non-2xx statuses fail at once.
func (c *Client) Get(ctx context.Context, urlStr string, header http.Header) ([]byte, error) {
	var lastErr error

	for i := 0; i < c.maxRetries; i++ {
		if i > 0 {
			if err := sleep(ctx, time.Duration(i)*c.backoff); err != nil {
				return nil, err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
		if err != nil {
			return nil, err
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		resp.Body.Close()
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
		}
		if err != nil {
			lastErr = fmt.Errorf("failed to read body: %w", err)
			continue
		}
		return body, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
