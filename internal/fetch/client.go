// Package fetch provides the retrying, timeout-bounded HTTP client used to
// pull rate payloads.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/me/ratefeed/internal/logging"
	"github.com/me/ratefeed/internal/metrics"
)

// Config holds the retry budget for a Client. Both values are fixed for the
// lifetime of the client.
type Config struct {
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int

	// Timeout bounds the wall-clock time of each individual attempt.
	Timeout time.Duration
}

// DefaultConfig returns the default retry budget: no retries, 10s per attempt.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 0,
		Timeout:    10 * time.Second,
	}
}

// Payload is the decoded rate document: a calendar date and a mapping from
// currency code to rate. A null rate decodes to a nil pointer.
type Payload struct {
	Date  string              `json:"date"`
	Rates map[string]*float64 `json:"rates"`
}

// Client performs one logical GET against a URL, retrying failed attempts
// up to the configured budget.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     *slog.Logger
}

// NewClient creates a Client with the given retry budget.
func NewClient(config Config, logger *slog.Logger) *Client {
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if logger == nil {
		logger = logging.Discard()
	}

	return &Client{
		// Per-attempt deadlines come from the request context, not from
		// the http.Client timeout.
		httpClient: &http.Client{},
		config:     config,
		logger:     logger.With("component", "fetch-client"),
	}
}

// Get fetches and decodes the payload at url. Attempts run strictly in
// sequence; a non-2xx status consumes a retry attempt exactly like a
// transport failure or an expired attempt deadline. The error from the last
// attempt is returned unchanged.
func (c *Client) Get(ctx context.Context, url string) (*Payload, error) {
	attempts := c.config.MaxRetries + 1

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		payload, err := c.doRequest(ctx, url)
		if err == nil {
			return payload, nil
		}
		lastErr = err

		if attempt < attempts {
			metrics.FetchRetriesTotal.Inc()
			c.logger.Warn("request failed, retrying",
				"attempt", attempt,
				"attempts", attempts,
				"url", url,
				"error", err)
		}
	}

	return nil, lastErr
}

// doRequest performs a single attempt under its own deadline.
func (c *Client) doRequest(ctx context.Context, url string) (*Payload, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")

	metrics.FetchAttemptsTotal.Inc()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Code:   resp.StatusCode,
			Status: resp.Status,
			URL:    url,
		}
	}

	var p Payload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding response from %s: %w", url, err)
	}
	return &p, nil
}
