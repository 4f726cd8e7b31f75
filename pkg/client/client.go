// Package client is a Go client for the lockserver HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"pkt.systems/pslog"

	"github.com/vigor8or/lockserver/pkg/api"
	"github.com/vigor8or/lockserver/pkg/httpx"
	"github.com/vigor8or/lockserver/pkg/types"
)

type Client struct {
	baseURL string
	httpc   *http.Client
	logger  pslog.Logger

	username string
	password string
	withAuth bool
}

type Option func(*Client)

// WithBasicAuth attaches credentials to every request.
func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
		c.withAuth = true
	}
}

// WithHTTPClient overrides the underlying HTTP client, e.g. for TLS
// configuration.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithLogger attaches a logger for keep-alive diagnostics.
func WithLogger(logger pslog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	c := &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 10 * time.Second},
		logger:  pslog.NoopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Acquire requests the named lock. On conflict it returns types.ErrConflict;
// the caller decides retry and backoff policy.
func (c *Client) Acquire(ctx context.Context, name string, kind types.LockKind) (*Lock, error) {
	var resp api.AcquireResponse
	err := c.do(ctx, http.MethodPut, "/v1/locks/"+url.PathEscape(name), "",
		api.AcquireRequest{Kind: kind.String()}, &resp)
	if err != nil {
		return nil, err
	}
	return &Lock{
		client:    c,
		name:      name,
		token:     resp.Token,
		expiresAt: resp.ExpiresAt,
	}, nil
}

// Release drops the holding identified by token. A types.ErrNotFound result
// means the lease already lapsed or was released; callers may ignore it.
func (c *Client) Release(ctx context.Context, name, token string) error {
	return c.do(ctx, http.MethodDelete, "/v1/locks/"+url.PathEscape(name), token, nil, nil)
}

// Renew extends the lease identified by token and returns the new expiry.
func (c *Client) Renew(ctx context.Context, name, token string) (time.Time, error) {
	var resp api.RenewResponse
	err := c.do(ctx, http.MethodPost, "/v1/locks/"+url.PathEscape(name)+"/renew", token, nil, &resp)
	if err != nil {
		return time.Time{}, err
	}
	return resp.ExpiresAt, nil
}

// Status reports the current kind and holder count of the named lock.
func (c *Client) Status(ctx context.Context, name string) (api.LockStatus, error) {
	var resp api.LockStatus
	err := c.do(ctx, http.MethodGet, "/v1/locks/"+url.PathEscape(name), "", nil, &resp)
	return resp, err
}

// List returns the status of every held lock.
func (c *Client) List(ctx context.Context) (map[string]api.LockStatus, error) {
	resp := make(map[string]api.LockStatus)
	if err := c.do(ctx, http.MethodGet, "/v1/locks", "", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(api.HeaderLockToken, token)
	}
	if c.withAuth {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.statusError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// statusError maps error responses back to the domain sentinels so callers
// can branch with errors.Is.
func (c *Client) statusError(resp *http.Response) error {
	var body httpx.ErrorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4<<10)).Decode(&body)

	switch resp.StatusCode {
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", types.ErrConflict, body.Message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", types.ErrNotFound, body.Message)
	default:
		if body.Message != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, body.Message)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}
}
