package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/academy-admin/pkg/config"
)

const pingTimeout = 5 * time.Second

// NewRedis returns a configured Redis client for the query cache. It returns
// nil without error when caching is disabled.
func NewRedis(cacheCfg config.CacheConfig, cfg config.RedisConfig) (*redis.Client, error) {
	if !cacheCfg.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}
