// Package tokencache shares Keycloak access tokens between processes, so a
// fleet of integrations hitting the same realm does not hammer the token
// endpoint with redundant client-credentials grants.
package tokencache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	backend "github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
)

// DefaultSkew is subtracted from the token lifetime before it is cached, so
// a token read from the cache always has time left to be used.
const DefaultSkew = 30 * time.Second

// Redis is an oauth2.TokenSource backed by a shared Redis key. A cache miss
// or a Redis outage falls through to the wrapped source; the cache never
// fails a request on its own.
type Redis struct {
	source oauth2.TokenSource
	client *backend.Client
	key    string
	skew   time.Duration
	logger *slog.Logger

	mu sync.Mutex
}

// Option defines a functional option for configuring the Redis token cache.
type Option func(*Redis)

// WithSkew sets the safety margin subtracted from the cached token TTL.
func WithSkew(d time.Duration) Option {
	return func(r *Redis) {
		r.skew = d
	}
}

// WithLogger sets the structured logger used for cache diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Redis) {
		r.logger = logger
	}
}

// NewRedis wraps source with a Redis-backed cache under the given key.
func NewRedis(source oauth2.TokenSource, client *backend.Client, key string, opts ...Option) *Redis {
	r := &Redis{
		source: source,
		client: client,
		key:    key,
		skew:   DefaultSkew,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Token returns a valid token, preferring the shared cache. Tokens past
// their expiry are never returned.
func (r *Redis) Token() (*oauth2.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx := context.Background()

	data, err := r.client.Get(ctx, r.key).Bytes()
	switch {
	case err == nil:
		var tok oauth2.Token
		if jsonErr := json.Unmarshal(data, &tok); jsonErr == nil && tok.Valid() {
			return &tok, nil
		}
	case !errors.Is(err, backend.Nil):
		r.logger.Warn("token cache read failed, falling through", "err", err)
	}

	tok, err := r.source.Token()
	if err != nil {
		return nil, err
	}

	if ttl := time.Until(tok.Expiry) - r.skew; ttl > 0 {
		payload, jsonErr := json.Marshal(tok)
		if jsonErr == nil {
			if setErr := r.client.Set(ctx, r.key, payload, ttl).Err(); setErr != nil {
				r.logger.Warn("token cache write failed", "err", setErr)
			}
		}
	}

	return tok, nil
}
