package cache

import (
	"context"
	"log"
	"time"

	"github.com/pwanystay/pwanystay-api/internal/config"
	"github.com/redis/go-redis/v9"
)

// Redis caches values in a shared Redis instance.
type Redis struct {
	client *redis.Client
}

// New returns the configured cache. Redis is disabled by default to keep
// local development simple; an enabled but unreachable Redis degrades to
// the no-op cache rather than failing the service.
func New(cfg *config.Config) Cache {
	if !cfg.RedisEnabled {
		return Noop{}
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("⚠️ Invalid REDIS_URL, continuing without cache: %v", err)
		return Noop{}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️ Redis not available, continuing without cache: %v", err)
		return Noop{}
	}

	log.Println("✅ Connected to Redis")
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrMiss
	}
	return val, err
}

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}
