// Package cache stores finished store lookups, in Redis when configured and
// in process otherwise.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"meal_planner_backend/internal/storefinder/transport"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "storefinder:v1:"

// RedisCache keeps serialized responses under a hash of the normalized query.
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache wraps an existing client. The caller owns the client.
func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

// Get returns the cached response for key. A miss is (zero, false, nil).
func (c *RedisCache) Get(ctx context.Context, key string) (transport.SearchResponse, bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return transport.SearchResponse{}, false, nil
	}
	if err != nil {
		return transport.SearchResponse{}, false, fmt.Errorf("read store cache: %w", err)
	}

	var resp transport.SearchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		return transport.SearchResponse{}, false, nil
	}
	return resp, true, nil
}

// Set stores resp for ttl. A non-positive ttl disables caching.
func (c *RedisCache) Set(ctx context.Context, key string, resp transport.SearchResponse, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode store cache entry: %w", err)
	}
	if err := c.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("write store cache: %w", err)
	}
	return nil
}

// Key derives the cache key of a lookup. Text and region are normalized so
// "Milk " and "milk" share an entry; the bias is rounded to roughly 100 m.
func Key(profile, text, region string, lat, lng *float64, limit int) string {
	parts := []string{
		strings.ToLower(strings.TrimSpace(profile)),
		strings.ToLower(strings.Join(strings.Fields(text), " ")),
		strings.ToUpper(strings.TrimSpace(region)),
		strconv.Itoa(limit),
	}
	if lat != nil && lng != nil {
		parts = append(parts, strconv.FormatFloat(*lat, 'f', 3, 64), strconv.FormatFloat(*lng, 'f', 3, 64))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return keyPrefix + hex.EncodeToString(sum[:])
}
