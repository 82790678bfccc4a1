package webhooks

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper remembers webhook delivery ids so retried deliveries are
// acknowledged without being processed twice.
type Deduper interface {
	// Seen marks the id as processed and reports whether it had been
	// marked before. The first caller for an id gets false.
	Seen(ctx context.Context, id string) (bool, error)
	// Forget releases an id claimed by Seen, so a delivery whose handling
	// failed can be retried by the provider.
	Forget(ctx context.Context, id string) error
}

// RedisDeduper tracks delivery ids with SETNX keys that expire after ttl.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisDeduper{client: client, ttl: ttl}
}

func (d *RedisDeduper) Seen(ctx context.Context, id string) (bool, error) {
	ok, err := d.client.SetNX(ctx, "wh:seen:"+id, "1", d.ttl).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (d *RedisDeduper) Forget(ctx context.Context, id string) error {
	return d.client.Del(ctx, "wh:seen:"+id).Err()
}

// NoopDeduper never reports a duplicate. Used when Redis is not configured.
type NoopDeduper struct{}

func (NoopDeduper) Seen(ctx context.Context, id string) (bool, error) {
	return false, nil
}

func (NoopDeduper) Forget(ctx context.Context, id string) error { return nil }
