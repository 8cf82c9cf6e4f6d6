// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assistant provides the HTTP client for the remote assistant endpoint.
package assistant

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

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Configuration constants for the assistant endpoint.
const (
	// DefaultEndpoint is where the assistant backend listens by default.
	DefaultEndpoint = "http://localhost:8000/chat"

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

	// pingTimeout bounds the reachability probe.
	pingTimeout = 5 * time.Second
)

// sharedHTTPClient has no Timeout; requests are bounded by their context only,
// so an unconfigured client waits as long as the backend takes.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// Error variables for the assistant client.
var (
	// ErrEmptyMessage indicates Send was called with blank text.
	ErrEmptyMessage = errors.New("empty message")

	// ErrMissingResponse indicates the reply had no "response" field.
	ErrMissingResponse = errors.New("reply has no response field")

	// ErrEmptyResponse indicates the "response" field was an empty string.
	ErrEmptyResponse = errors.New("reply response is empty")

	// ErrResponseTooLarge indicates the body exceeded MaxResponseSize.
	ErrResponseTooLarge = errors.New("response exceeded maximum size")

	// ErrInvalidJSON indicates the body could not be parsed at all.
	ErrInvalidJSON = errors.New("invalid JSON in response")
)

// StatusError is returned inside a transport-failure outcome for non-2xx replies.
type StatusError struct {
	Status int
	Detail string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("assistant endpoint error (HTTP %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("assistant endpoint error (HTTP %d)", e.Status)
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// Request is the outbound body.
type Request struct {
	Message string `json:"message"`
}

// errorBody is the FastAPI-style error envelope some backends return.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client sends one message per call to the assistant endpoint. It never
// retries: a failed exchange is reported once as an Outcome.
type Client struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
	limiter    *rate.Limiter
	userAgent  string
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the shared HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each exchange. Zero keeps the default of no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit caps outbound requests per minute. Zero means unlimited.
func WithRateLimit(perMinute int) Option {
	return func(c *Client) {
		if perMinute > 0 {
			c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for endpoint. An empty endpoint uses DefaultEndpoint.
func New(endpoint string, opts ...Option) *Client {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint:   endpoint,
		httpClient: sharedHTTPClient,
		userAgent:  "albert-tui",
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Timeout returns the per-exchange timeout, zero when unbounded.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Send posts {"message": text} and classifies the result. It never returns
// an error value; every failure is folded into the Outcome.
func (c *Client) Send(ctx context.Context, text string) Outcome {
	start := time.Now()
	out := c.send(ctx, text)
	out.Latency = time.Since(start)

	fields := []zap.Field{
		zap.String("endpoint", c.endpoint),
		zap.Stringer("outcome", out.Kind),
		zap.Int("status", out.StatusCode),
		zap.Duration("latency", out.Latency),
	}
	switch out.Kind {
	case OutcomeReply:
		c.logger.Info("assistant reply received", append(fields, zap.Int("reply_len", len(out.Text)))...)
	case OutcomeMalformed:
		c.logger.Warn("assistant reply malformed", append(fields, zap.Error(out.Err))...)
	default:
		c.logger.Error("assistant request failed", append(fields, zap.Error(out.Err))...)
	}
	return out
}

func (c *Client) send(ctx context.Context, text string) Outcome {
	if strings.TrimSpace(text) == "" {
		return TransportFailure(ErrEmptyMessage)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return TransportFailure(fmt.Errorf("rate limit wait: %w", err))
		}
	}

	body, err := json.Marshal(Request{Message: text})
	if err != nil {
		return TransportFailure(fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return TransportFailure(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	// Body is never logged; it carries the user's text.
	c.logger.Debug("assistant request", zap.String("method", req.Method), zap.String("path", req.URL.Path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return TransportFailure(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	raw, err := readResponse(resp)
	if err != nil {
		out := TransportFailure(err)
		out.StatusCode = resp.StatusCode
		return out
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		out := TransportFailure(statusError(resp.StatusCode, raw))
		out.StatusCode = resp.StatusCode
		return out
	}

	out := ParseReply(raw)
	out.StatusCode = resp.StatusCode
	return out
}

// ParseReply classifies a 2xx body. Invalid JSON is a transport failure;
// valid JSON without a non-empty string "response" is malformed.
func ParseReply(raw []byte) Outcome {
	if !json.Valid(raw) {
		return TransportFailure(ErrInvalidJSON)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return Malformed(fmt.Errorf("reply is not a JSON object: %w", ErrMissingResponse))
	}

	field, ok := fields["response"]
	if !ok {
		return Malformed(ErrMissingResponse)
	}
	var text string
	if err := json.Unmarshal(field, &text); err != nil {
		return Malformed(fmt.Errorf("response field is not a string: %w", err))
	}
	if text == "" {
		return Malformed(ErrEmptyResponse)
	}

	out := Reply(text)
	out.Model = optionalString(fields["model"])
	out.SessionID = optionalString(fields["session_id"])
	return out
}

// Ping checks that the endpoint's host answers HTTP at all. Any status code
// counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	u.Path = "/"
	u.RawQuery = ""

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("endpoint unreachable: %w", err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// readResponse reads the body with a size limit.
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) > MaxResponseSize {
		return nil, fmt.Errorf("%w of %d bytes", ErrResponseTooLarge, MaxResponseSize)
	}
	return body, nil
}

// statusError extracts a short detail from an error body.
func statusError(status int, body []byte) error {
	var eb errorBody
	detail := ""
	if err := json.Unmarshal(body, &eb); err == nil && len(eb.Detail) > 0 {
		var s string
		if json.Unmarshal(eb.Detail, &s) == nil {
			detail = s
		} else {
			detail = string(eb.Detail)
		}
	} else {
		detail = strings.TrimSpace(string(body))
	}
	if r := []rune(detail); len(r) > 200 {
		detail = string(r[:200]) + "..."
	}
	return &StatusError{Status: status, Detail: detail}
}

func optionalString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
