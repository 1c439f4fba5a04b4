package cache

import (
	"context"
	"fmt"
	"time"

	"meal_planner_backend/internal/storefinder/transport"

	"github.com/dgraph-io/ristretto"
)

// MemoryCache is the per-process fallback used when Redis is not configured.
type MemoryCache struct {
	cache *ristretto.Cache
}

// NewMemoryCache sizes the cache for roughly maxEntries lookups.
func NewMemoryCache(maxEntries int64) (*MemoryCache, error) {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        maxEntries * 10,
		MaxCost:            maxEntries,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create memory cache: %w", err)
	}
	return &MemoryCache{cache: c}, nil
}

// Get returns the cached response for key.
func (c *MemoryCache) Get(_ context.Context, key string) (transport.SearchResponse, bool, error) {
	value, ok := c.cache.Get(key)
	if !ok {
		return transport.SearchResponse{}, false, nil
	}
	resp, ok := value.(transport.SearchResponse)
	return resp, ok, nil
}

// Set stores resp for ttl. Each entry costs one unit.
func (c *MemoryCache) Set(_ context.Context, key string, resp transport.SearchResponse, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.cache.SetWithTTL(key, resp, 1, ttl)
	c.cache.Wait()
	return nil
}

// Close stops the cache's background goroutines.
func (c *MemoryCache) Close() {
	c.cache.Close()
}
