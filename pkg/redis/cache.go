package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache provides typed caching utilities
// ⭐ SSOT: 캐시 헬퍼는 여기서만
//
// When Redis is disabled the cache keeps working in-process on top of
// go-cache, so a single-node deployment still avoids refetching upstream data.
type Cache struct {
	client *Client
	prefix string
	local  *gocache.Cache
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
		local:  gocache.New(TTLMedium, 2*TTLMedium),
	}
}

func (c *Cache) fullKey(key string) string {
	return fmt.Sprintf("%s:cache:%s", c.prefix, key)
}

// Get retrieves a cached value
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	var data []byte

	if c.client.Enabled() {
		b, err := c.client.Redis().Get(ctx, c.fullKey(key)).Bytes()
		if err != nil {
			// Key not found is not an error
			return false, nil
		}
		data = b
	} else {
		v, ok := c.local.Get(c.fullKey(key))
		if !ok {
			return false, nil
		}
		data = v.([]byte)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return true, nil
}

// Set stores a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	if !c.client.Enabled() {
		c.local.Set(c.fullKey(key), data, ttl)
		return nil
	}

	return c.client.Redis().Set(ctx, c.fullKey(key), data, ttl).Err()
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.client.Enabled() {
		c.local.Delete(c.fullKey(key))
		return nil
	}

	return c.client.Redis().Del(ctx, c.fullKey(key)).Err()
}

// GetOrSet retrieves from cache or calls fn to populate it
func (c *Cache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, fn func() (interface{}, error)) error {
	found, err := c.Get(ctx, key, dest)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	// Cache miss - call function
	value, err := fn()
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	// A failed write only costs a refetch next time
	_ = c.Set(ctx, key, value, ttl)

	return json.Unmarshal(data, dest)
}

// Predefined TTLs
const (
	TTLShort  = 1 * time.Minute
	TTLMedium = 10 * time.Minute // 월별 배당 일정
	TTLLong   = 1 * time.Hour    // 종목 상세
	TTLDaily  = 24 * time.Hour   // 종목 목록
)

// Common cache key generators

// MonthKey is the key of one month of dividend events.
func MonthKey(year, month int) string {
	return fmt.Sprintf("dividends:%04d-%02d", year, month)
}

// YieldKey is the key of a whole-year server-side yield filter result.
func YieldKey(year int, threshold float64) string {
	return fmt.Sprintf("dividends:yield:%04d:%.2f", year, threshold)
}

// StockKey is the key of one stock's info + history.
func StockKey(code string) string {
	return fmt.Sprintf("stock:%s", code)
}

// LatestKey is the key of one stock's latest event.
func LatestKey(code string) string {
	return fmt.Sprintf("stock:%s:latest", code)
}

// StockListKey is the key of the full stock list.
func StockListKey() string {
	return "stocks:list"
}

// RateLimitKey is the sorted set behind one sliding window.
func RateLimitKey(prefix, key string) string {
	return fmt.Sprintf("%s:ratelimit:%s", prefix, key)
}
