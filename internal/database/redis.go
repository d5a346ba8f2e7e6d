package database

import (
	"context"
	"fmt"
	"log"

	"thanks-bot/internal/config"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns nil without error when REDIS_HOST is empty.
func ConnectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisHost == "" {
		log.Println("REDIS_HOST is not set, processed updates are tracked in memory")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       0,
	})

	_, err := rdb.Ping(ctx).Result()
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Println("Connected to Redis")
	return rdb, nil
}
