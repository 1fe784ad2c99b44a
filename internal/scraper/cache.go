package scraper

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"cognisense-backend/internal/logger"
)

const cacheKeyPrefix = "scrape:"

// KV is the subset of a Redis client the cache needs.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedFetcher memoizes successful fetches in Redis. Cache failures are
// logged and fall through to the wrapped fetcher.
type CachedFetcher struct {
	next Fetcher
	kv   KV
	ttl  time.Duration
	log  *logger.Logger
}

func NewCachedFetcher(next Fetcher, kv KV, ttl time.Duration, log *logger.Logger) *CachedFetcher {
	return &CachedFetcher{next: next, kv: kv, ttl: ttl, log: logger.OrNop(log)}
}

func cacheKey(targetURL string) string {
	sum := sha256.Sum256([]byte(targetURL))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *CachedFetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	key := cacheKey(targetURL)

	raw, err := c.kv.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var page Page
		if jerr := json.Unmarshal(raw, &page); jerr == nil {
			return &page, nil
		}
		c.log.Warn("Discarding corrupt scrape cache entry", "url", targetURL)
	case !errors.Is(err, redis.Nil):
		c.log.Warn("Scrape cache read failed", "url", targetURL, "error", err)
	}

	page, err := c.next.Fetch(ctx, targetURL)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(page); err == nil {
		if err := c.kv.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.log.Warn("Scrape cache write failed", "url", targetURL, "error", err)
		}
	}
	return page, nil
}
