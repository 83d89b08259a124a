// Package httpclient provides the outbound fetch primitive shared by all
// provider adapters: one GET with a per-attempt timeout and bounded
// exponential-backoff retry. Retry policy lives here and nowhere else.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ternarybob/arbor"
)

const (
	// DefaultTimeout is the default per-attempt timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetries is the default number of retries after the first attempt.
	DefaultMaxRetries = 2

	// DefaultRetryBackoff is the default base delay between retries.
	DefaultRetryBackoff = 500 * time.Millisecond
)

// StatusError represents a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	URL        string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http status %d from %s", e.StatusCode, e.URL)
}

// Transient reports whether the status is retryable. Server errors are
// transient; client errors are not.
func (e *StatusError) Transient() bool {
	return e.StatusCode >= 500
}

// RetryingClient issues GET requests with timeout and retry handling.
type RetryingClient struct {
	client     *http.Client
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	logger     arbor.ILogger
}

// Option configures the RetryingClient.
type Option func(*RetryingClient)

// WithTimeout sets the per-attempt timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *RetryingClient) {
		c.timeout = timeout
	}
}

// WithMaxRetries sets how many times a transient failure is retried.
func WithMaxRetries(retries int) Option {
	return func(c *RetryingClient) {
		c.maxRetries = retries
	}
}

// WithRetryBackoff sets the base retry delay; actual delay is
// backoff × 2^attempt.
func WithRetryBackoff(backoff time.Duration) Option {
	return func(c *RetryingClient) {
		c.backoff = backoff
	}
}

// WithHTTPClient sets a custom underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *RetryingClient) {
		c.client = client
	}
}

// New creates a RetryingClient with the given logger and options.
func New(logger arbor.ILogger, opts ...Option) *RetryingClient {
	c := &RetryingClient{
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
		backoff:    DefaultRetryBackoff,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = &http.Client{}
	}
	return c
}

// Get performs a GET request and returns the response body.
//
// Timeouts, transport errors, and 5xx responses are retried up to the
// configured limit with exponential backoff; the last such error is
// returned once retries are exhausted. 4xx responses fail immediately
// with a *StatusError. The backoff sleep observes ctx so an aborted run
// stops waiting, and it never blocks unrelated goroutines.
func (c *RetryingClient) Get(ctx context.Context, rawURL string, params url.Values, headers http.Header) ([]byte, error) {
	reqURL := rawURL
	if len(params) > 0 {
		reqURL = rawURL + "?" + params.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff * (1 << (attempt - 1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		body, err := c.doAttempt(ctx, reqURL, headers)
		if err == nil {
			return body, nil
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Transient() {
			return nil, err
		}

		lastErr = err
		if c.logger != nil {
			c.logger.Warn().
				Str("url", rawURL).
				Int("attempt", attempt+1).
				Int("max_attempts", c.maxRetries+1).
				Err(err).
				Msg("Request failed, will retry if attempts remain")
		}
	}

	return nil, lastErr
}

// doAttempt performs a single request with its own timeout.
func (c *RetryingClient) doAttempt(ctx context.Context, reqURL string, headers http.Header) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			URL:        reqURL,
			Body:       body,
		}
	}

	return body, nil
}
