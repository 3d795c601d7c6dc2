// Package client talks to the cinema REST backend.  Every response is wrapped
// in a {status, message, data} envelope; the client unwraps it and maps
// failures onto the apperror kinds so callers never inspect HTTP details.
// Nothing here retries: a failed call is reported once and the caller decides.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-checkout/internal/apperror"
)

// IdempotencyHeader carries the per-draft key on booking creation.
const IdempotencyHeader = "Idempotency-Key"

// Client is an HTTP client for the backend API.  It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// New returns a Client rooted at baseURL, e.g. http://localhost:8080/api/v1.0.
func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// call describes one backend request.
type call struct {
	method  string
	path    string
	query   url.Values
	token   string
	headers map[string]string
	body    any
}

// do executes c and decodes the envelope data into out (which may be nil).
func (cl *Client) do(ctx context.Context, c call, out any) error {
	op := c.method + " " + c.path
	u := cl.baseURL + c.path
	if len(c.query) > 0 {
		u += "?" + c.query.Encode()
	}

	var body io.Reader
	if c.body != nil {
		b, err := json.Marshal(c.body)
		if err != nil {
			return fmt.Errorf("encode %s: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, u, body)
	if err != nil {
		return fmt.Errorf("build %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := cl.httpClient.Do(req)
	if err != nil {
		cl.log.Warn("backend call failed", zap.String("op", op), zap.Error(err))
		return &apperror.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apperror.TransportError{Op: op, Err: err}
	}
	cl.log.Debug("backend call",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	// A 401 is reported as such even when the body is not an envelope.
	if resp.StatusCode == http.StatusUnauthorized {
		return &apperror.AuthError{Message: messageOf(raw, "unauthorized")}
	}

	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return &apperror.TransportError{Op: op, Err: fmt.Errorf("non-JSON response (HTTP %d): %w", resp.StatusCode, err)}
		}
	}

	status := resp.StatusCode
	if status < 300 && env.Status >= 400 {
		status = env.Status
	}
	if status >= 300 {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(status)
		}
		return statusError(status, msg)
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &apperror.TransportError{Op: op, Err: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}

func statusError(status int, msg string) error {
	switch status {
	case http.StatusUnauthorized:
		return &apperror.AuthError{Message: msg}
	case http.StatusConflict:
		return &apperror.ConflictError{Message: msg}
	}
	return &apperror.UpstreamError{Status: status, Message: msg}
}

func messageOf(raw []byte, fallback string) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Message != "" {
		return env.Message
	}
	return fallback
}
