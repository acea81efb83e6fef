// internal/adapters/csvsource/client.go
package csvsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"tourism_dashboard/internal/adapters/observability"
	"tourism_dashboard/internal/domain"
)

// maxBody caps the CSV we are willing to buffer.
const maxBody = 32 << 20

type Client struct {
	url string
	hc  *http.Client
	rl  *rate.Limiter
}

func New(url string, rps int) (*Client, error) {
	if url == "" {
		return nil, fmt.Errorf("dataset URL is required")
	}
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		url: url,
		hc:  &http.Client{Timeout: 20 * time.Second},
		rl:  rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

func (c *Client) URL() string { return c.url }

// Fetch does a single GET. Failures are returned as-is; there is no retry.
func (c *Client) Fetch(ctx context.Context) (domain.RawCSV, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return domain.RawCSV{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return domain.RawCSV{}, err
	}
	req.Header.Set("Accept", "text/csv, */*;q=0.5")
	req.Header.Set("User-Agent", "tourism-dashboard/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("dataset", "csv", 0, time.Since(start))
		return domain.RawCSV{}, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("dataset", "csv", resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// read a small error body for diagnostics
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.RawCSV{}, fmt.Errorf("%w: bad status %d: %s", domain.ErrUpstream, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return domain.RawCSV{}, fmt.Errorf("%w: read body: %v", domain.ErrUpstream, err)
	}
	return domain.RawCSV{URL: c.url, ETag: resp.Header.Get("ETag"), Body: body}, nil
}
