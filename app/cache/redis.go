package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// SlugCache mirrors the slugs that are persisted. The database stays the
// source of truth: entries are checked against it, and every cache failure
// is logged and treated as a miss.
type SlugCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSlugCache connects to Redis at addr. A ttl of zero keeps keys forever.
func NewSlugCache(ctx context.Context, addr, password string, ttl time.Duration) (*SlugCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Connected to Redis", "addr", addr, "ttl", ttl)

	return &SlugCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func GenerateSlugKey(kind, slug string) string {
	return fmt.Sprintf("slug:%s:%s", kind, slug)
}

// Seen reports whether slug was remembered for kind.
func (c *SlugCache) Seen(ctx context.Context, kind, slug string) bool {
	count, err := c.client.Exists(ctx, GenerateSlugKey(kind, slug)).Result()
	if err != nil {
		slog.Warn("Slug cache lookup failed", "kind", kind, "slug", slug, "error", err)
		return false
	}
	return count > 0
}

func (c *SlugCache) Remember(ctx context.Context, kind, slug string) {
	err := c.client.Set(ctx, GenerateSlugKey(kind, slug), time.Now().Unix(), c.ttl).Err()
	if err != nil {
		slog.Warn("Slug cache write failed", "kind", kind, "slug", slug, "error", err)
	}
}

func (c *SlugCache) Forget(ctx context.Context, kind, slug string) {
	if err := c.client.Del(ctx, GenerateSlugKey(kind, slug)).Err(); err != nil {
		slog.Warn("Slug cache delete failed", "kind", kind, "slug", slug, "error", err)
	}
}

// Health returns cache health information
func (c *SlugCache) Health(ctx context.Context) map[string]interface{} {
	health := map[string]interface{}{
		"status": "healthy",
		"type":   "redis",
	}

	if err := c.client.Ping(ctx).Err(); err != nil {
		health["status"] = "unhealthy"
		health["error"] = err.Error()
		return health
	}

	if size, err := c.client.DBSize(ctx).Result(); err == nil {
		health["key_count"] = size
	}

	return health
}

func (c *SlugCache) Close() error {
	return c.client.Close()
}
