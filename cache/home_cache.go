package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"dhammasound/logger"
)

const homeCacheKey = "home:payload"

// HomeCache keeps the landing-page aggregate in Redis. A nil client
// disables caching entirely; every Get is then a miss.
type HomeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewHomeCache creates a cache around the given client.
func NewHomeCache(client *redis.Client, ttl time.Duration) *HomeCache {
	return &HomeCache{client: client, ttl: ttl}
}

// Get returns the cached payload bytes, or false on a miss. Redis
// errors count as misses so the page can still be built from the
// database.
func (c *HomeCache) Get(ctx context.Context) ([]byte, bool) {
	if c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, homeCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("home cache read failed", logger.ErrorField(err))
		}
		return nil, false
	}
	return data, true
}

// Set stores the payload with the configured TTL. Failures are logged
// and swallowed.
func (c *HomeCache) Set(ctx context.Context, payload interface{}) {
	if c.client == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Warn("home cache marshal failed", logger.ErrorField(err))
		return
	}
	if err := c.client.Set(ctx, homeCacheKey, data, c.ttl).Err(); err != nil {
		logger.Warn("home cache write failed", logger.ErrorField(err))
	}
}

// Invalidate drops the cached payload. Content mutations call this so
// the next read rebuilds the page.
func (c *HomeCache) Invalidate(ctx context.Context) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, homeCacheKey).Err(); err != nil {
		logger.Warn("home cache invalidate failed", logger.ErrorField(err))
	}
}
