// Package gateway wraps every outbound call to the tree inventory backend.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// TokenSource yields the bearer token currently held, "" when logged out.
type TokenSource interface {
	Token() string
}

// Client sends JSON requests to a fixed base URL.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
	logger *zap.Logger
}

// New builds a Client. tokens may be nil when no call needs authorization.
func New(baseURL string, httpClient *http.Client, tokens TokenSource, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   httpClient,
		tokens: tokens,
		logger: logger,
	}
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.base
}

// Response is any HTTP answer from the backend, successful or not.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// OK reports a 2xx status.
func (r Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Message extracts the conventional "message" field, "" when absent.
func (r Response) Message() string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if len(r.Body) == 0 || json.Unmarshal(r.Body, &payload) != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

// Decode unmarshals the body into v.
func (r Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return &NetworkError{Op: "decode", Err: io.ErrUnexpectedEOF}
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &NetworkError{Op: "decode", Err: err}
	}
	return nil
}

// Err converts a non-2xx response into NotFoundError or ServerError; nil otherwise.
func (r Response) Err() error {
	switch {
	case r.OK():
		return nil
	case r.StatusCode == http.StatusNotFound:
		return &NotFoundError{Message: r.Message()}
	default:
		return &ServerError{StatusCode: r.StatusCode, Message: r.Message()}
	}
}

// Request sends method path with body serialised as JSON when non-nil. When auth is
// set the call carries the held bearer token and fails with ErrAuthRequired, before
// any network traffic, if there is none. Any HTTP status yields a Response; only a
// transport failure or an unparsable body yields a *NetworkError.
func (c *Client) Request(ctx context.Context, method, path string, body any, auth bool) (Response, error) {
	var token string
	if auth {
		if c.tokens != nil {
			token = c.tokens.Token()
		}
		if token == "" {
			return Response{}, ErrAuthRequired
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return Response{}, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return Response{}, &NetworkError{Op: method + " " + path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return Response{}, &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, &NetworkError{Op: method + " " + path, Err: fmt.Errorf("read body: %w", err)}
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && !json.Valid(raw) {
		return Response{}, &NetworkError{Op: method + " " + path, Err: fmt.Errorf("malformed response body (status %s)", resp.Status)}
	}

	c.logger.Debug("request done",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)
	return Response{StatusCode: resp.StatusCode, Body: json.RawMessage(raw)}, nil
}
