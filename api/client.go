// Package api provides the HTTP client facade for the pothole
// reporting service and its third-party geocoder. The facade owns
// transport configuration (timeouts, headers, auth injection) and the
// error taxonomy; callers own response decoding.
package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// maxResponseSize limits response bodies to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

const (
	defaultLookupTimeout = 15 * time.Second
	defaultUploadTimeout = 30 * time.Second
	defaultUserAgent     = "SmartPotholeClient/1.0"
)

// TokenSource supplies the current authority credential. The session
// store satisfies this; the facade never mutates the token.
type TokenSource interface {
	Current() (string, bool)
}

// Recorder observes request outcomes. The metrics package provides a
// prometheus-backed implementation.
type Recorder interface {
	ObserveRequest(endpoint, outcome string, elapsed time.Duration)
}

// RawResponse is an undecoded 2xx response body.
type RawResponse struct {
	Status int
	Body   []byte
}

// Client is the single configured transport used by all workflows.
// Lookups and uploads use distinct pools with distinct timeouts.
type Client struct {
	baseURL     string
	geocoderURL string
	countryCode string
	userAgent   string
	lookup      *http.Client
	upload      *http.Client
	tokens      TokenSource
	logger      *slog.Logger
	metrics     Recorder
}

// Option configures a Client.
type Option func(*Client)

// WithGeocoder sets the geocoder base URL and country code filter.
func WithGeocoder(baseURL, countryCode string) Option {
	return func(c *Client) {
		c.geocoderURL = baseURL
		c.countryCode = countryCode
	}
}

// WithUserAgent sets the descriptive client identifier sent on every
// request. The geocoder requires one.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithTimeouts overrides the lookup and upload pool timeouts.
func WithTimeouts(lookup, upload time.Duration) Option {
	return func(c *Client) {
		c.lookup.Timeout = lookup
		c.upload.Timeout = upload
	}
}

// WithTokenSource sets the session credential source for
// authenticated requests.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRecorder sets the request metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Client) {
		c.metrics = r
	}
}

// NewClient creates a facade for the service at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   baseURL,
		userAgent: defaultUserAgent,
		lookup:    &http.Client{Timeout: defaultLookupTimeout},
		upload:    &http.Client{Timeout: defaultUploadTimeout},
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Do issues one request against the service. When authenticated is
// true and no session token exists it fails immediately with
// ErrUnauthorized, without touching the network. Non-2xx responses
// surface as *ServerError, transport failures as *NetworkError.
// No retry, no decoding.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader, contentType string, authenticated bool) (*RawResponse, error) {
	return c.do(ctx, c.lookup, method, c.baseURL+path, body, contentType, authenticated, path)
}

// DoUpload is Do on the upload pool, for multipart image payloads.
func (c *Client) DoUpload(ctx context.Context, method, path string, body io.Reader, contentType string, authenticated bool) (*RawResponse, error) {
	return c.do(ctx, c.upload, method, c.baseURL+path, body, contentType, authenticated, path)
}

func (c *Client) do(ctx context.Context, pool *http.Client, method, url string, body io.Reader, contentType string, authenticated bool, endpoint string) (*RawResponse, error) {
	var token string
	if authenticated {
		var ok bool
		if c.tokens != nil {
			token, ok = c.tokens.Current()
		}
		if !ok {
			c.record(endpoint, "unauthorized", 0)
			return nil, ErrUnauthorized
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := pool.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			c.record(endpoint, "cancelled", time.Since(start))
			return nil, ctx.Err()
		}
		c.record(endpoint, "network_error", time.Since(start))
		c.logger.Debug("Request failed",
			"method", method,
			"endpoint", endpoint,
			"request_id", requestID,
			"error", err)
		return nil, NewNetworkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		c.record(endpoint, "network_error", time.Since(start))
		return nil, NewNetworkError(err)
	}

	c.logger.Debug("Request complete",
		"method", method,
		"endpoint", endpoint,
		"request_id", requestID,
		"status", resp.StatusCode,
		"elapsed", time.Since(start))

	// An expired or rejected credential surfaces as the unauthorized
	// sentinel so every authenticated workflow can force logout on it.
	if resp.StatusCode == http.StatusUnauthorized && authenticated {
		c.record(endpoint, "unauthorized", time.Since(start))
		return nil, ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.record(endpoint, "server_error", time.Since(start))
		return nil, &ServerError{Status: resp.StatusCode, Body: string(raw)}
	}

	c.record(endpoint, "ok", time.Since(start))
	return &RawResponse{Status: resp.StatusCode, Body: raw}, nil
}

func (c *Client) record(endpoint, outcome string, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveRequest(endpoint, outcome, elapsed)
}
