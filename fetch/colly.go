package fetch

import (
	"context"
	"net/http"

	"github.com/gocolly/colly/v2"
)

// CollyClient implements Client on a synchronous colly collector. A
// fresh collector is built per request so response and error hooks
// never accumulate across calls.
type CollyClient struct {
	cfg       Config
	transport http.RoundTripper
}

// NewCollyClient builds a client from cfg, filling in defaults.
func NewCollyClient(cfg Config) *CollyClient {
	cfg = cfg.withDefaults()
	return &CollyClient{
		cfg:       cfg,
		transport: newTransport(cfg.Timeout),
	}
}

// WithTransport swaps the underlying round tripper. Tests use this to
// install a mock transport.
func (c *CollyClient) WithTransport(rt http.RoundTripper) {
	c.transport = rt
}

// Get fetches rawURL with params merged into the query string. Extra
// headers are applied over the defaults; a caller-provided User-Agent
// wins over the configured one.
func (c *CollyClient) Get(ctx context.Context, rawURL string, params map[string]string, headers map[string]string) ([]byte, error) {
	target, err := buildURL(rawURL, params)
	if err != nil {
		return nil, err
	}

	collector := c.newCollector()

	var (
		body     []byte
		status   int
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		fetchErr = err
		if r != nil {
			status = r.StatusCode
		}
	})

	hdr := http.Header{}
	for key, value := range headers {
		hdr.Set(key, value)
	}

	done := make(chan error, 1)
	go func() {
		done <- collector.Request(http.MethodGet, target, nil, nil, hdr)
	}()
	select {
	case <-ctx.Done():
		return nil, &TransportError{URL: target, Err: ctx.Err()}
	case err := <-done:
		if err != nil {
			fetchErr = err
		}
	}

	if fetchErr != nil {
		if status >= http.StatusBadRequest {
			return nil, &StatusError{Code: status, URL: target}
		}
		return nil, &TransportError{URL: target, Err: fetchErr}
	}
	return body, nil
}

func (c *CollyClient) newCollector() *colly.Collector {
	collector := colly.NewCollector(
		colly.UserAgent(c.cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.IgnoreRobotsTxt = true
	collector.SetRequestTimeout(c.cfg.Timeout)
	if c.transport != nil {
		collector.WithTransport(c.transport)
	}
	return collector
}
