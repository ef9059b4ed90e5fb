// Copyright (c) 2025 SQLPilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package transport performs HTTP calls against the SQLPilot backend.
// It unwraps response bodies, turns non-2xx responses and network failures into
// typed errors from internal/errors, and surfaces every failure except
// cancellations to the user through an injected notifier.
//
// Each request states how its body must be interpreted: ParsedBody decodes JSON
// into a caller-supplied value, RawBytes hands back the exact bytes the server
// sent. Only the export endpoint uses RawBytes.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "sqlpilot/cli/internal/errors"
	"sqlpilot/cli/internal/httperrors"
)

// DefaultTimeout applies to every call unless overridden.
const DefaultTimeout = 5 * time.Second

// RequestIDHeader carries a per-call identifier for correlating client and server logs.
const RequestIDHeader = "X-Request-ID"

// Expectation describes how a response body is interpreted.
type Expectation int

const (
	// ParsedBody decodes a JSON body into Request.Into.
	ParsedBody Expectation = iota
	// RawBytes returns the body untouched in Response.Raw.
	RawBytes
)

func (e Expectation) String() string {
	switch e {
	case ParsedBody:
		return "parsed"
	case RawBytes:
		return "raw"
	default:
		return fmt.Sprintf("expectation(%d)", int(e))
	}
}

// Request describes one backend call.
type Request struct {
	Method string
	// Path is appended to the client's base URL, e.g. "/connections/".
	Path string
	// Body is JSON-encoded when non-nil.
	Body   any
	Expect Expectation
	// Into receives the decoded body for ParsedBody requests. It may be nil
	// when the caller does not need the body.
	Into any
	// Silent suppresses user-visible notification of failures.
	Silent bool
	// Action names the operation in notifications, e.g. "listing connections".
	Action string
}

// Response is what a successful call produced.
type Response struct {
	Status int
	Header http.Header
	// Raw is set for RawBytes requests; it is never nil on success.
	Raw []byte
}

// Client is the HTTP transport to the backend.
type Client struct {
	// baseURL is the prefix for all request paths (e.g., "http://localhost:8000/api/v1")
	baseURL string
	// client is the underlying HTTP client with configured timeout
	client   *http.Client
	logger   *zap.Logger
	notifier httperrors.Notifier
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithLogger sets the developer-facing logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithNotifier sets where user-visible failures go.
func WithNotifier(n httperrors.Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// New creates a transport for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: DefaultTimeout},
		logger:   zap.NewNop(),
		notifier: httperrors.Discard,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("transport")
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Do performs req. On failure the returned error is an *apperrors.E and, unless
// the request is Silent or the failure is a cancellation, the notifier has been
// called exactly once.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.do(ctx, req)
	if err != nil {
		c.report(req, err)
		return nil, err
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, req Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.TransportFailure, "encode request", err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.TransportFailure, "create request", err)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Expect == RawBytes {
		httpReq.Header.Set("Accept", "*/*")
	} else {
		httpReq.Header.Set("Accept", "application/json")
	}
	requestID := uuid.NewString()
	httpReq.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classify(ctx, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(ctx, "read response", err)
	}

	c.logger.Debug("backend call",
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(raw)),
		zap.Stringer("expect", req.Expect),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.Server(resp.StatusCode, extractDetail(raw))
	}

	out := &Response{Status: resp.StatusCode, Header: resp.Header}
	switch req.Expect {
	case RawBytes:
		if raw == nil {
			raw = []byte{}
		}
		out.Raw = raw
	default:
		if req.Into != nil && len(bytes.TrimSpace(raw)) > 0 {
			if err := json.Unmarshal(raw, req.Into); err != nil {
				return nil, apperrors.Wrap(apperrors.TransportFailure, "decode response", err)
			}
		}
	}
	return out, nil
}

// classify maps a client-side failure to Canceled or TransportFailure.
// Timeouts are ordinary transport failures.
func classify(ctx context.Context, msg string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return apperrors.Wrap(apperrors.Canceled, "request canceled", err)
	}
	return apperrors.Wrap(apperrors.TransportFailure, msg, err)
}

func (c *Client) report(req Request, err error) {
	if apperrors.IsCanceled(err) {
		c.logger.Debug("request canceled",
			zap.String("method", req.Method),
			zap.String("path", req.Path))
		return
	}

	c.logger.Warn("backend call failed",
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.String("kind", string(apperrors.KindOf(err))),
		zap.Int("status", apperrors.StatusOf(err)),
		zap.Error(err))

	if req.Silent {
		return
	}
	action := req.Action
	if action == "" {
		action = req.Method + " " + req.Path
	}
	c.notifier.Notify(action, err)
}

// extractDetail pulls the "detail" field out of an error body. FastAPI sends
// either a string or a list of validation errors with "msg" fields.
func extractDetail(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil || len(envelope.Detail) == 0 {
		if trimmed[0] == '{' || trimmed[0] == '[' {
			return ""
		}
		return truncate(string(trimmed), 200)
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
