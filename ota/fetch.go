package ota

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// FetchConfig controls how remote rate plan messages are retrieved.
type FetchConfig struct {
	Timeout    time.Duration
	MaxRetries int
	MaxBytes   int64
}

// DefaultFetchConfig is used when the caller passes a zero config.
var DefaultFetchConfig = FetchConfig{
	Timeout:    15 * time.Second,
	MaxRetries: 3,
	MaxBytes:   8 << 20,
}

// Fetch downloads a rate plan message from url and parses it. Transient
// HTTP failures are retried with backoff.
func Fetch(ctx context.Context, url string, cfg FetchConfig) (*Document, error) {
	if cfg.Timeout == 0 {
		cfg = DefaultFetchConfig
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.MaxRetries
	client.HTTPClient.Timeout = cfg.Timeout
	client.Logger = nil

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, cfg.MaxBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}

	return Parse(data)
}
