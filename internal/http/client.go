package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "spotify-dl"

// maxErrorBody bounds how much of a failed response is kept for diagnosis.
const maxErrorBody = 4 << 10

// StatusError is returned when the server answers with a non-200 status.
// Body holds the start of the response so callers can classify it.
type StatusError struct {
	Code   int
	Status string
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Status)
}

// Client wraps HTTP operations with the downloader's configuration.
//
// Client is safe for concurrent use; every pipeline shares one instance.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each request including the body read. Zero means no
// limit, which streaming callers need.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.httpClient.Transport = rt }
}

// NewClient creates a new HTTP client.
//
// The client is configured with:
//   - 60 second timeout
//   - DefaultUserAgent
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestOption decorates a single request.
type RequestOption func(*http.Request)

// WithBearer sets an Authorization bearer token. Empty tokens are ignored.
func WithBearer(token string) RequestOption {
	return func(r *http.Request) {
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

// WithHeader sets an arbitrary request header.
func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

// Get performs a GET request and returns the response body as bytes.
//
// Use it for small payloads like cover art. Non-200 responses return a
// *StatusError.
func (c *Client) Get(ctx context.Context, url string, opts ...RequestOption) ([]byte, error) {
	body, err := c.Stream(ctx, url, opts...)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return io.ReadAll(body)
}

// Stream performs a GET request and returns the open response body.
//
// The caller must close the body. Non-200 responses are drained into a
// *StatusError and the body is closed before returning.
func (c *Client) Stream(ctx context.Context, url string, opts ...RequestOption) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status, Body: body}
	}

	return resp.Body, nil
}
