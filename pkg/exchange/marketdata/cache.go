package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache stores JSON snapshots in redis with a short TTL. It is best-effort:
// a miss or a redis error just means the snapshot is recomputed from the
// book.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Second
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context, key string, out any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			zap.S().Debugw("marketdata cache get failed", "key", key, "err", err)
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false
	}
	return true
}

func (c *Cache) Set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		zap.S().Debugw("marketdata cache set failed", "key", key, "err", err)
	}
}

func depthKey(symbol string, depth int) string {
	return fmt.Sprintf("md:depth:%s:%d", symbol, depth)
}

func tickerKey(symbol string) string {
	return fmt.Sprintf("md:ticker:%s", symbol)
}
