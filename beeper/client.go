package beeper

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

	"github.com/rs/zerolog"
)

// Client represents a Beeper Desktop API client. It is safe for concurrent
// use; all state is read-only after NewClient returns.
type Client struct {
	cfg        Config
	baseURL    *url.URL
	httpClient *http.Client
	logger     zerolog.Logger
	backoff    BackoffFunc
	sleep      func(context.Context, time.Duration) error

	Accounts *Accounts
	App      *App
	Chats    *Chats
	Contacts *Contacts
	Messages *Messages
	Token    *Token
}

// Option configures a Client beyond what Config covers
type Option func(*Client)

// WithBackoff replaces the delay schedule between retries
func WithBackoff(backoff BackoffFunc) Option {
	return func(c *Client) {
		if backoff != nil {
			c.backoff = backoff
		}
	}
}

// withSleep replaces the backoff wait. Tests use it to observe delays.
func withSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(c *Client) {
		c.sleep = sleep
	}
}

// NewClient creates a new Beeper Desktop client. cfg is validated and copied;
// a *Error of KindConfig is returned when it is unusable.
func NewClient(cfg Config, logger zerolog.Logger, opts ...Option) (*Client, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}

	baseURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, &Error{Kind: KindConfig, Message: "invalid base URL", Err: err}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	c := &Client{
		cfg:        cfg,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "beeper").Logger(),
		backoff:    defaultBackoff,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Accounts = &Accounts{client: c}
	c.App = &App{client: c}
	c.Chats = &Chats{client: c, Reminders: &Reminders{client: c}}
	c.Contacts = &Contacts{client: c}
	c.Messages = &Messages{client: c}
	c.Token = &Token{client: c}

	return c, nil
}

// Config returns a copy of the normalized configuration
func (c *Client) Config() Config {
	return c.cfg
}

// Do performs a request with an optional JSON body and decodes the response
// into result. Retryable failures are retried per the configured budget.
func (c *Client) Do(ctx context.Context, method, path string, body, result any) error {
	return c.withRetry(ctx, method, path, func() error {
		return c.exchange(ctx, method, path, nil, body, result)
	})
}

// DoQuery performs a request whose parameters travel in the query string.
// No body is sent.
func (c *Client) DoQuery(ctx context.Context, method, path string, query Query, result any) error {
	return c.withRetry(ctx, method, path, func() error {
		return c.exchange(ctx, method, path, query, nil, result)
	})
}

// resolve joins path onto the base URL and appends the encoded query.
func (c *Client) resolve(path string, query Query) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, &Error{Kind: KindURL, Message: fmt.Sprintf("invalid path %q", path), Err: err}
	}

	u := c.baseURL.ResolveReference(ref)
	if encoded := query.Encode(); encoded != "" {
		if u.RawQuery != "" {
			u.RawQuery += "&" + encoded
		} else {
			u.RawQuery = encoded
		}
	}
	return u, nil
}

// exchange performs exactly one HTTP round trip. GET and HEAD requests never
// carry a body.
func (c *Client) exchange(ctx context.Context, method, path string, query Query, body, result any) error {
	u, err := c.resolve(path, query)
	if err != nil {
		return err
	}

	if method == http.MethodGet || method == http.MethodHead {
		body = nil
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindSerialization, Message: "failed to encode request body", Err: err}
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return transportError("failed to create request", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError("request failed", unwrapURLError(err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError("failed to read response body", err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("url", u.Redacted()).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Beeper API request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Classify(resp.StatusCode, respBody)
	}

	if result == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return &Error{Kind: KindSerialization, Message: "failed to decode response", Err: err}
	}
	return nil
}

// unwrapURLError strips the *url.Error wrapper so the cause reads cleanly
// while keeping context errors visible to errors.Is.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}
