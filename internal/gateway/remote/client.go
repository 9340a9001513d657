// Package remote implements gateway.Gateway against the favorites REST API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/nikbrunner/favs/internal/gateway"
)

const (
	defaultTimeout    = 20 * time.Second
	defaultMaxRetries = 3
)

type apiErrorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Client talks to the favorites API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        zerolog.Logger
	debug      bool

	maxRetries      uint64
	initialInterval time.Duration
	maxInterval     time.Duration
}

var _ gateway.Gateway = (*Client)(nil)

// New constructs a client for baseURL authenticating with token.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	normalized, err := NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:         normalized,
		token:           token,
		httpClient:      &http.Client{Timeout: defaultTimeout},
		log:             zerolog.Nop(),
		maxRetries:      defaultMaxRetries,
		initialInterval: 200 * time.Millisecond,
		maxInterval:     5 * time.Second,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	transport := c.httpClient.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	if c.debug {
		transport = &debugTransport{base: transport, log: c.log}
	}
	c.httpClient.Transport = &bearerTransport{base: transport, token: c.token}
	return c, nil
}

// NormalizeBaseURL trims the URL and ensures it has a scheme.
func NormalizeBaseURL(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", fmt.Errorf("gateway url cannot be empty")
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return "", fmt.Errorf("invalid gateway url: %w", err)
	}
	if parsed.Scheme == "" {
		return "", fmt.Errorf("gateway url must include scheme (https://)")
	}
	return strings.TrimRight(value, "/"), nil
}

// do runs a request, retrying idempotent methods on recoverable failures.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, reqBody, respBody any) error {
	attempt := func() error {
		err := c.doJSON(ctx, method, path, query, reqBody, respBody)
		if err != nil && !(idempotent(method) && recoverable(err)) {
			return backoff.Permanent(err)
		}
		return err
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.initialInterval
	exp.MaxInterval = c.maxInterval
	exp.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, c.maxRetries), ctx)

	notify := func(err error, wait time.Duration) {
		retriesTotal.WithLabelValues(op).Inc()
		c.log.Debug().Err(err).Str("op", op).Dur("wait", wait).Msg("retrying gateway call")
	}

	err := backoff.RetryNotify(attempt, policy, notify)
	requestsTotal.WithLabelValues(op, outcome(err)).Inc()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, reqBody, respBody any) error {
	endpoint, err := c.buildURL(path, query)
	if err != nil {
		return err
	}

	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &gateway.APIError{Status: resp.StatusCode}
		var payload apiErrorPayload
		if err := json.Unmarshal(respData, &payload); err == nil {
			apiErr.Code = payload.Error
			apiErr.Message = payload.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(respData))
		}
		return apiErr
	}

	if respBody == nil || len(respData) == 0 {
		return nil
	}
	// A malformed success body will not improve on retry.
	if err := json.Unmarshal(respData, respBody); err != nil {
		return backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *Client) buildURL(path string, query url.Values) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	endpoint := base.JoinPath(path)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}
	return endpoint.String(), nil
}

func idempotent(method string) bool {
	return method == http.MethodGet || method == http.MethodDelete
}

// recoverable treats transport failures and 408/429/5xx responses as transient.
// Context cancellation is never retried.
func recoverable(err error) bool {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Recoverable()
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return "error"
}
