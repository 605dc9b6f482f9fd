package database

import (
	"context"

	"promptforge/config"

	"github.com/go-redis/redis/v8"
)

// ConnectRedis opens the optional redis cache. Returns nil when no
// REDIS_HOST is configured; callers treat a nil client as cache disabled.
func ConnectRedis(cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisFullAddr(),
		Password: cfg.RedisPassword,
		DB:       0, // use default DB
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}
	return client, nil
}
