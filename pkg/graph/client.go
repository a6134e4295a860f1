// Package graph provides an authenticated GraphQL client for the OS2mo API,
// with helpers for decoding results and walking cursor-paginated queries.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	graphql "github.com/hasura/go-graphql-client"
)

type config struct {
	version int
	logger  *slog.Logger
}

// Option defines a functional option for configuring the client.
type Option func(*config)

// WithVersion pins the versioned GraphQL endpoint (/graphql/v{n}).
// The default is the unversioned /graphql path.
func WithVersion(n int) Option {
	return func(c *config) {
		c.version = n
	}
}

// WithLogger sets the structured logger used for query diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// Client executes GraphQL documents against OS2mo. It is stateless per
// call and safe for concurrent use; a single instance can be shared for
// the lifetime of an application.
type Client struct {
	gql    *graphql.Client
	hc     *http.Client
	url    string
	logger *slog.Logger
}

// New returns a client for the GraphQL endpoint under moURL. The supplied
// HTTP client is expected to carry authentication (see the auth package).
func New(moURL string, httpClient *http.Client, opts ...Option) *Client {
	cfg := config{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&cfg)
	}

	endpoint := strings.TrimRight(moURL, "/") + "/graphql"
	if cfg.version > 0 {
		endpoint = fmt.Sprintf("%s/v%d", endpoint, cfg.version)
	}

	return &Client{
		gql:    graphql.NewClient(endpoint, httpClient),
		hc:     httpClient,
		url:    endpoint,
		logger: cfg.logger,
	}
}

// URL returns the resolved GraphQL endpoint.
func (c *Client) URL() string {
	return c.url
}

// Execute runs a raw GraphQL document with the given variables and decodes
// the response data into out. A nil out discards the data.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any, out any) error {
	c.logger.Debug("executing graphql document", "url", c.url)

	raw, err := c.gql.ExecRaw(ctx, query, variables)
	if err != nil {
		return fmt.Errorf("graphql execute: %w", err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("graphql decode: %w", err)
	}
	return nil
}

// Query runs a struct-shaped query, deriving the document from the fields
// of q. See the go-graphql-client documentation for the struct convention.
func (c *Client) Query(ctx context.Context, q any, variables map[string]any) error {
	if err := c.gql.Query(ctx, q, variables); err != nil {
		return fmt.Errorf("graphql query: %w", err)
	}
	return nil
}

// Close releases idle connections held by the underlying HTTP client.
func (c *Client) Close() {
	c.hc.CloseIdleConnections()
}
