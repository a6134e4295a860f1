package raclients

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/oauth2"

	"github.com/magenta-aps/raclients/internal/logging"
	"github.com/magenta-aps/raclients/pkg/auth"
	"github.com/magenta-aps/raclients/pkg/graph"
	"github.com/magenta-aps/raclients/pkg/metrics"
	"github.com/magenta-aps/raclients/pkg/modelclient"
)

// Config collects the connection settings shared by every client.
type Config struct {
	MOURL   string      `yaml:"mo_url"`
	LoRaURL string      `yaml:"lora_url"`
	Auth    auth.Config `yaml:"auth"`
}

type options struct {
	logger      *slog.Logger
	registerer  prometheus.Registerer
	timeout     time.Duration
	tokenSource oauth2.TokenSource
	uploadOpts  []modelclient.Option
}

// Option defines a functional option shared by the convenience constructors.
type Option func(*options)

// WithLogger sets a custom structured logger for the clients.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRegisterer sets the Prometheus registerer for request metrics.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithTimeout sets the per-request timeout of the underlying HTTP clients.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithTokenSource shares a token source (e.g. a tokencache.Redis) between
// clients instead of each fetching its own grants.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(o *options) {
		o.tokenSource = ts
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:     logging.NewNop(),
		registerer: prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) httpClient(ctx context.Context, cfg auth.Config, service string) (*http.Client, error) {
	authOpts := []auth.Option{
		auth.WithBaseTransport(metrics.NewTransport(nil, service, metrics.WithRegisterer(o.registerer))),
	}
	if o.timeout > 0 {
		authOpts = append(authOpts, auth.WithTimeout(o.timeout))
	}
	if o.tokenSource != nil {
		authOpts = append(authOpts, auth.WithTokenSource(o.tokenSource))
	}
	return cfg.Client(ctx, authOpts...)
}

// NewGraphQLClient returns a GraphQL client for MO, authenticated against
// the configured Keycloak realm and instrumented with request metrics.
func NewGraphQLClient(ctx context.Context, cfg Config, opts ...Option) (*graph.Client, error) {
	o := newOptions(opts)
	hc, err := o.httpClient(ctx, cfg.Auth, "mo")
	if err != nil {
		return nil, err
	}
	return graph.New(cfg.MOURL, hc, graph.WithLogger(o.logger)), nil
}

// WithUploadOptions forwards options to the model upload clients, e.g.
// modelclient.WithForce or modelclient.WithChunkSize.
func WithUploadOptions(opts ...modelclient.Option) Option {
	return func(o *options) {
		o.uploadOpts = append(o.uploadOpts, opts...)
	}
}

// NewMOClient returns a model upload client for MO.
func NewMOClient(ctx context.Context, cfg Config, opts ...Option) (*modelclient.MO, error) {
	o := newOptions(opts)
	hc, err := o.httpClient(ctx, cfg.Auth, "mo")
	if err != nil {
		return nil, err
	}
	mcOpts := append([]modelclient.Option{modelclient.WithLogger(o.logger)}, o.uploadOpts...)
	return modelclient.NewMO(cfg.MOURL, hc, mcOpts...), nil
}

// NewLoRaClient returns a model upload client for LoRa.
func NewLoRaClient(ctx context.Context, cfg Config, opts ...Option) (*modelclient.LoRa, error) {
	o := newOptions(opts)
	hc, err := o.httpClient(ctx, cfg.Auth, "lora")
	if err != nil {
		return nil, err
	}
	mcOpts := append([]modelclient.Option{modelclient.WithLogger(o.logger)}, o.uploadOpts...)
	return modelclient.NewLoRa(cfg.LoRaURL, hc, mcOpts...), nil
}
