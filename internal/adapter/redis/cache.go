package redis

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/neomorfeo/listiq/internal/domain"
)

// Compile-time check: Cache implements domain.KVStore.
var _ domain.KVStore = (*Cache)(nil)

// Cache is the advisory KV store backed by Redis. It caches derived reads
// (audit statistics); it is never consulted for eligibility or status
// decisions, and every value carries a TTL so staleness is bounded.
type Cache struct {
	client *redis.Client
}

// New creates a cache on the given Redis address. An empty password and
// database 0 match the common local setup.
func New(addr, password string, db int) *Cache {
	return &Cache{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// Ping verifies the connection; callers typically downgrade to no cache on failure.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrCacheMiss
		}
		return "", err
	}
	return val, nil
}

func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}
