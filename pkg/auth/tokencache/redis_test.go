package tokencache_test

import (
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/magenta-aps/raclients/pkg/auth/tokencache"
)

// countingSource hands out tokens with a fixed lifetime and counts fetches.
type countingSource struct {
	calls int
	err   error
}

func (s *countingSource) Token() (*oauth2.Token, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.calls++
	return &oauth2.Token{
		AccessToken: "token-from-source",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(5 * time.Minute),
	}, nil
}

func newCache(t *testing.T, src oauth2.TokenSource) (*tokencache.Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return tokencache.NewRedis(src, client, "raclients:token:mordor"), mr
}

func TestRedis_CachesToken(t *testing.T) {
	src := &countingSource{}
	cache, _ := newCache(t, src)

	for range 3 {
		tok, err := cache.Token()
		require.NoError(t, err)
		assert.Equal(t, "token-from-source", tok.AccessToken)
	}
	assert.Equal(t, 1, src.calls)
}

func TestRedis_SharedBetweenSources(t *testing.T) {
	src := &countingSource{}
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	first := tokencache.NewRedis(src, client, "raclients:token:mordor")
	_, err := first.Token()
	require.NoError(t, err)

	// A second process with a broken source still gets the cached token.
	broken := &countingSource{err: errors.New("keycloak down")}
	second := tokencache.NewRedis(broken, client, "raclients:token:mordor")
	tok, err := second.Token()
	require.NoError(t, err)
	assert.Equal(t, "token-from-source", tok.AccessToken)
}

func TestRedis_RefetchesAfterExpiry(t *testing.T) {
	src := &countingSource{}
	cache, mr := newCache(t, src)

	_, err := cache.Token()
	require.NoError(t, err)

	mr.FastForward(10 * time.Minute)

	_, err = cache.Token()
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestRedis_OutageFallsThroughToSource(t *testing.T) {
	src := &countingSource{}
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := tokencache.NewRedis(src, client, "raclients:token:mordor")

	mr.Close()

	// Redis being unreachable must not fail token acquisition.
	tok, err := cache.Token()
	require.NoError(t, err)
	assert.Equal(t, "token-from-source", tok.AccessToken)
	assert.Equal(t, 1, src.calls)
}

func TestRedis_SourceErrorPropagates(t *testing.T) {
	src := &countingSource{err: errors.New("keycloak down")}
	cache, _ := newCache(t, src)

	_, err := cache.Token()
	assert.ErrorContains(t, err, "keycloak down")
}
