// Package marketplace is the typed HTTP client for the bolha
// marketplace API. Every durable operation of the frontend goes through
// it; authentication rides on the upstream session cookie held in a
// per-browser cookie jar.
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Error is a non-2xx response from the marketplace API. Message carries
// the backend-provided text verbatim when the body could be decoded.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("marketplace: request failed with status %d", e.StatusCode)
}

// IsAPIError reports whether err originated as a backend-reported
// failure rather than a transport one.
func IsAPIError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr)
}

// Client talks to one marketplace API origin. The zero value is not
// usable; construct it with New. Derive per-browser clients with
// ForJar so that each session owns its upstream cookie.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *slog.Logger
}

// New validates the base URL and builds a client without a cookie jar.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("marketplace: base url is required")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("marketplace: invalid base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("marketplace: unsupported base url scheme %q", parsed.Scheme)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base:   parsed,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}, nil
}

// ForJar derives a client sharing the transport and timeout but owning
// the given cookie jar. The jar is where the upstream session cookie
// set by POST /auth/login lives.
func (c *Client) ForJar(jar http.CookieJar) *Client {
	derived := *c
	derived.http = &http.Client{
		Transport: c.http.Transport,
		Timeout:   c.http.Timeout,
		Jar:       jar,
	}
	return &derived
}

// Ping probes the API with the cheapest unauthenticated read. Used by
// the readiness endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/category", nil, nil, nil)
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do performs one API call. body is JSON-encoded when non-nil, out is
// JSON-decoded when non-nil and the response carries a body. All non-2xx
// statuses are mapped to *Error uniformly.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marketplace: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Debug("marketplace request failed", "method", method, "path", path, "error", err)
		}
		return fmt.Errorf("marketplace: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return c.decodeError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("marketplace: decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(snippet, &payload); err == nil {
		apiErr.Message = strings.TrimSpace(payload.Message)
	}
	if c.logger != nil {
		c.logger.Debug("marketplace returned error",
			"status", resp.StatusCode,
			"message", apiErr.Message,
		)
	}
	return apiErr
}
