package cache

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Genders map[string]int64 `json:"genders"`
}

func newTestCache(t *testing.T) (*FacetCache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewFacetCache(client, time.Minute), srv
}

func TestFacetKeyIsOrderIndependent(t *testing.T) {
	a := url.Values{"category": {"Eyeglasses"}, "Brands": {"Ray"}}
	b := url.Values{"Brands": {"Ray"}, "category": {"Eyeglasses"}}
	assert.Equal(t, FacetKey(a), FacetKey(b))
	assert.Equal(t, "facets:", FacetKey(url.Values{}))
}

func TestFacetCacheRoundTrip(t *testing.T) {
	c, srv := newTestCache(t)
	ctx := context.Background()
	key := FacetKey(url.Values{"category": {"Sunglasses"}})

	var got entry
	assert.False(t, c.Get(ctx, key, &got))

	c.Set(ctx, key, entry{Genders: map[string]int64{"MEN": 2}})
	require.True(t, c.Get(ctx, key, &got))
	assert.Equal(t, int64(2), got.Genders["MEN"])

	srv.FastForward(2 * time.Minute)
	assert.False(t, c.Get(ctx, key, &got))
}

func TestFacetCacheInvalidate(t *testing.T) {
	c, srv := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, FacetKey(url.Values{"a": {"1"}}), entry{})
	c.Set(ctx, FacetKey(url.Values{"b": {"2"}}), entry{})
	require.NoError(t, srv.Set("session:1", "keep"))

	require.NoError(t, c.Invalidate(ctx))
	assert.Equal(t, []string{"session:1"}, srv.Keys())
}

func TestFacetCacheCorruptEntryIsAMiss(t *testing.T) {
	c, srv := newTestCache(t)
	require.NoError(t, srv.Set("facets:x=1", "{not json"))

	var got entry
	assert.False(t, c.Get(context.Background(), "facets:x=1", &got))
}

func TestNilFacetCache(t *testing.T) {
	var c *FacetCache
	assert.Nil(t, NewFacetCache(nil, time.Minute))

	var got entry
	assert.False(t, c.Get(context.Background(), "k", &got))
	c.Set(context.Background(), "k", entry{})
	assert.NoError(t, c.Invalidate(context.Background()))
}
