// Package client is the JSON REST client shared by every store: it attaches
// bearer credentials, retries exactly once through a token refresh on the
// first 401, and normalizes backend error payloads into APIError.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// defaultTimeout bounds every request; there is no cancellation beyond the
// caller's context.
const defaultTimeout = 30 * time.Second

// TokenPair is the access/refresh credential pair issued by the backend.
type TokenPair struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

// TokenSource provides and persists credentials. The storage package's
// key-value store is the usual implementation.
type TokenSource interface {
	// Tokens returns the current pair; ok is false when signed out.
	Tokens() (pair TokenPair, ok bool)
	SetTokens(pair TokenPair) error
	ClearTokens() error
}

// Client talks JSON to one backend base URL.
type Client struct {
	base   *url.URL
	http   *http.Client
	tokens TokenSource
	logger *slog.Logger

	refreshPath string
	// refreshMu serializes refresh attempts so concurrent 401s trigger a
	// single token exchange.
	refreshMu sync.Mutex
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the client's logger; nil keeps slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRefreshPath overrides the token refresh endpoint.
func WithRefreshPath(path string) Option {
	return func(c *Client) { c.refreshPath = path }
}

// New creates a client for the given base URL. tokens may be nil for a
// purely anonymous client.
func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	c := &Client{
		base:        base,
		http:        &http.Client{Timeout: defaultTimeout},
		tokens:      tokens,
		logger:      slog.Default(),
		refreshPath: "/auth/refresh",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get issues a GET and decodes the response into out (which may be nil).
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Patch issues a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// do runs one logical request. On the first 401, if a refresh token is
// stored, it refreshes the pair and replays the original request exactly
// once; a second 401 is terminal and clears stored credentials. A 401
// without a refresh token is returned as a plain APIError carrying the
// backend's message.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	status, respBody, err := c.roundTrip(ctx, method, path, payload)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && c.canRefresh() {
		if refreshErr := c.refresh(ctx); refreshErr != nil {
			// Refresh could not rescue the session; surface the original
			// response's error, which carries the backend's message for
			// the request the caller actually made.
			c.logger.Info("token refresh failed", slog.String("error", refreshErr.Error()))
			return parseAPIError(status, respBody)
		}
		status, respBody, err = c.roundTrip(ctx, method, path, payload)
		if err != nil {
			return err
		}
		if status == http.StatusUnauthorized {
			// Refresh succeeded but the replay was still rejected; the
			// session is not salvageable.
			_ = c.tokens.ClearTokens()
			return parseAPIError(status, respBody)
		}
	}

	if status < 200 || status > 299 {
		apiErr := parseAPIError(status, respBody)
		c.logger.Debug("request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", status))
		return apiErr
	}

	if out != nil && status != http.StatusNoContent && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response from %s %s: %w", method, path, err)
		}
	}
	return nil
}

// roundTrip performs a single HTTP exchange and drains the body.
func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	u := c.base.JoinPath(path)

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if pair, ok := c.tokens.Tokens(); ok && pair.Access != "" {
			req.Header.Set("Authorization", "Bearer "+pair.Access)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response from %s %s: %w", method, path, err)
	}
	return resp.StatusCode, respBody, nil
}

// canRefresh reports whether a refresh token is available to attempt a
// token exchange. A 401 without one (an anonymous request, a failed login)
// is just an error response, not a session to rescue.
func (c *Client) canRefresh() bool {
	if c.tokens == nil {
		return false
	}
	pair, ok := c.tokens.Tokens()
	return ok && pair.Refresh != ""
}

// refresh exchanges the refresh token for a new pair. Failure clears the
// stored credentials; the session is over.
func (c *Client) refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	pair, ok := c.tokens.Tokens()
	if !ok || pair.Refresh == "" {
		// Cleared by a concurrent failed refresh.
		return fmt.Errorf("no refresh token")
	}

	payload, err := json.Marshal(map[string]string{"refresh_token": pair.Refresh})
	if err != nil {
		return fmt.Errorf("encode refresh request: %w", err)
	}

	u := c.base.JoinPath(c.refreshPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("refresh tokens: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read refresh response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = c.tokens.ClearTokens()
		c.logger.Info("token refresh rejected", slog.Int("status", resp.StatusCode))
		return parseAPIError(resp.StatusCode, respBody)
	}

	var fresh TokenPair
	if err := json.Unmarshal(respBody, &fresh); err != nil {
		return fmt.Errorf("decode refresh response: %w", err)
	}
	if err := c.tokens.SetTokens(fresh); err != nil {
		return fmt.Errorf("persist refreshed tokens: %w", err)
	}
	return nil
}
