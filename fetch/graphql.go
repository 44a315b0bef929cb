package fetch

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// GraphQL posts queries to a single GraphQL endpoint and returns the
// raw response body. Interpretation of the payload, the errors array
// included, belongs to the caller.
type GraphQL struct {
	client   *resty.Client
	endpoint string
}

// NewGraphQL builds a client for endpoint, filling cfg defaults.
func NewGraphQL(endpoint string, cfg Config) *GraphQL {
	cfg = cfg.withDefaults()
	client := resty.New()
	client.SetHeader("User-Agent", cfg.UserAgent)
	client.SetTimeout(cfg.Timeout)
	return &GraphQL{
		client:   client,
		endpoint: endpoint,
	}
}

// WithTransport swaps the underlying round tripper for tests.
func (g *GraphQL) WithTransport(rt http.RoundTripper) {
	g.client.SetTransport(rt)
}

// Endpoint returns the configured endpoint URL.
func (g *GraphQL) Endpoint() string {
	return g.endpoint
}

// Do posts {query, variables} as JSON and returns the response body.
// Failures follow the package taxonomy: TransportError when no
// response arrived, StatusError on 4xx/5xx.
func (g *GraphQL) Do(ctx context.Context, query string, variables map[string]any) ([]byte, error) {
	res, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{"query": query, "variables": variables}).
		Post(g.endpoint)
	if err != nil {
		return nil, &TransportError{URL: g.endpoint, Err: err}
	}
	if res.StatusCode() >= http.StatusBadRequest {
		return nil, &StatusError{Code: res.StatusCode(), URL: g.endpoint}
	}
	return res.Body(), nil
}
