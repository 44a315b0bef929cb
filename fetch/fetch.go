// Package fetch issues HTTP requests for the scraper and classifies
// failures into the two categories callers care about: the connection
// failed (TransportError) or the server answered with a 4xx/5xx status
// (StatusError). Neither is retried here; retry policy belongs to
// callers.
package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

// DefaultUserAgent is sent on every request unless the caller overrides
// it through extra headers.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

// DefaultTimeout bounds each individual request.
const DefaultTimeout = 30 * time.Second

// Client fetches a URL with optional query parameters and extra
// headers, returning the raw response body. Extra headers win over the
// client defaults on conflict.
type Client interface {
	Get(ctx context.Context, rawURL string, params map[string]string, headers map[string]string) ([]byte, error)
}

// Config controls client behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

func (c Config) withDefaults() Config {
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// TransportError indicates the request never produced a usable
// response: connection refused, DNS failure, timeout, cancellation.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError indicates the server answered with a client or server
// error status.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.Code, e.URL)
}

func buildURL(rawURL string, params map[string]string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if len(params) > 0 {
		query := u.Query()
		for key, value := range params {
			query.Set(key, value)
		}
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

func newTransport(timeout time.Duration) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}
