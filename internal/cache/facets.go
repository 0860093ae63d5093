package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
)

const facetPrefix = "facets:"

// FacetCache stores facet responses keyed by their canonical filter. A nil
// *FacetCache is valid and caches nothing.
type FacetCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewFacetCache(client *redis.Client, ttl time.Duration) *FacetCache {
	if client == nil {
		return nil
	}
	return &FacetCache{client: client, ttl: ttl}
}

// FacetKey derives the cache key from filter parameters. url.Values.Encode
// sorts keys, so parameter order does not matter.
func FacetKey(filter url.Values) string {
	return facetPrefix + filter.Encode()
}

// Get decodes a cached entry into dst. Misses and Redis failures both
// report false; the caller falls through to the database.
func (c *FacetCache) Get(ctx context.Context, key string, dst interface{}) bool {
	if c == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		log.Println("[CACHE] [ERROR] get failed:", err)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Println("[CACHE] [ERROR] corrupt entry:", key, err)
		return false
	}
	return true
}

func (c *FacetCache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		log.Println("[CACHE] [ERROR] encode failed:", err)
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		log.Println("[CACHE] [ERROR] set failed:", err)
	}
}

// Invalidate drops every facet entry. Catalog writes call it so counts do
// not outlive the change that made them stale.
func (c *FacetCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, facetPrefix+"*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
