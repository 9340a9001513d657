package remote

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Option mutates the Client during New().
type Option func(*Client) error

// WithHTTPClient injects a custom *http.Client. The bearer transport is
// layered on top of its Transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("nil http client")
		}
		c.httpClient = hc
		return nil
	}
}

// WithHTTPTimeout sets the per-request timeout. Zero disables it.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d < 0 {
			return fmt.Errorf("negative timeout: %s", d)
		}
		c.httpClient.Timeout = d
		return nil
	}
}

// WithRetry sets how many times a recoverable GET or DELETE is retried.
func WithRetry(maxRetries int) Option {
	return func(c *Client) error {
		if maxRetries < 0 {
			return fmt.Errorf("negative retry count: %d", maxRetries)
		}
		c.maxRetries = uint64(maxRetries)
		return nil
	}
}

// WithBackoff sets the first and the largest wait between retries.
func WithBackoff(initial, max time.Duration) Option {
	return func(c *Client) error {
		if initial <= 0 || max < initial {
			return fmt.Errorf("invalid backoff window: %s..%s", initial, max)
		}
		c.initialInterval = initial
		c.maxInterval = max
		return nil
	}
}

// WithLogger sets the logger used for retries and debug dumps.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) error {
		c.log = log
		return nil
	}
}

// WithDebugLogging logs every request and response at debug level when enabled.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		c.debug = enabled
		return nil
	}
}
