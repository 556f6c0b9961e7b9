package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Saurav036/nexus/internal/logger"
	"github.com/Saurav036/nexus/internal/metrics"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxBodyBytes = 10 << 20

// TokenProvider is the token capability the client needs: read the
// current identity token and drop everything cached for the session.
type TokenProvider interface {
	IDToken(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// Client is the single point of outbound communication with the backend.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenProvider
}

// NewClient builds a client with a fixed per-request timeout. tokens may be
// nil for unauthenticated use.
func NewClient(baseURL string, timeout time.Duration, tokens TokenProvider) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tokens: tokens,
	}
}

// do sends one request and decodes a 2xx body into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	start := time.Now()

	req, err := c.newRequest(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Message: err.Error(), Err: err}
	}

	if c.tokens != nil {
		token, err := c.tokens.IDToken(ctx)
		if err != nil {
			logger.Warn("backend token lookup failed", map[string]any{
				"error": err.Error(),
			})
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordBackend(method, "0", time.Since(start).Seconds())
		return transportError(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	metrics.RecordBackend(method, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
	if err != nil {
		return transportError(ctx, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if c.tokens != nil {
			if err := c.tokens.Clear(ctx); err != nil {
				logger.Error("failed to clear cached tokens", map[string]any{
					"error": err.Error(),
				})
			}
		}
		return &Error{
			Status:  http.StatusUnauthorized,
			Payload: raw,
			Message: msgSessionExpired,
			Err:     ErrSessionExpired,
		}
	}

	if resp.StatusCode >= 400 {
		logger.Debug("backend error response", map[string]any{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		})
		return &Error{
			Status:  resp.StatusCode,
			Payload: raw,
			Message: messageFrom(raw, resp.StatusCode),
		}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{
			Status:  resp.StatusCode,
			Payload: raw,
			Message: "invalid response from server",
			Err:     err,
		}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// transportError separates caller cancellation from real network failure.
// Timeouts count as network failures.
func transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled) {
		return ErrCancelled
	}
	return &Error{Message: msgNetwork, Err: err}
}

// messageFrom reads the body's "message" field. Validation failures from the
// backend send a list of messages.
func messageFrom(raw []byte, status int) string {
	var body struct {
		Message any `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil {
		switch m := body.Message.(type) {
		case string:
			if m != "" {
				return m
			}
		case []any:
			parts := make([]string, 0, len(m))
			for _, p := range m {
				if s, ok := p.(string); ok {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, ", ")
			}
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "Request failed"
}

// call decodes an enveloped response and returns its value.
func call[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var env Envelope[T]
	if err := c.do(ctx, method, path, body, &env); err != nil {
		var zero T
		return zero, err
	}
	v, _ := env.Value()
	return v, nil
}
