// internal/source/client.go
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	custom_errors "commit-watcher/internal/errors"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "commit-watcher/1.0"
	// Upper bound on the page body we are willing to buffer.
	maxBodyBytes = 8 << 20
)

// Client fetches the raw commit feed page.
type Client struct {
	url       string
	userAgent string
	http      *http.Client
	logger    *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the transport timeout for each fetch.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with each fetch.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient creates a Client for the page at url.
func NewClient(url string, logger *slog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		url:       url,
		userAgent: defaultUserAgent,
		http:      &http.Client{Timeout: defaultTimeout},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch issues a single GET for the page. Any transport failure or non-2xx
// response is returned as a *errors.FetchError.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &custom_errors.FetchError{URL: c.url, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &custom_errors.FetchError{URL: c.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &custom_errors.FetchError{URL: c.url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &custom_errors.FetchError{URL: c.url, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.Debug("Fetched commit page", "url", c.url, "bytes", len(body), "duration", time.Since(start).String())
	return body, nil
}
