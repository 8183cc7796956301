package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"oxyspa/b2b/internal/config"
)

const pingTimeout = 5 * time.Second

// ConnectRedis returns a client for the notification queue's Redis.
// It returns nil, nil when the queue is disabled.
func ConnectRedis(cfg *config.Config) (*redis.Client, error) {
	if !cfg.QueueEnabled() {
		log.Println("REDIS_ADDR not set, lead notifications disabled")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr, err)
	}

	log.Printf("Connected to Redis at %s (db %d)", cfg.RedisAddr, cfg.RedisDB)
	return rdb, nil
}

// DisconnectRedis closes the Redis client connection.
func DisconnectRedis(client *redis.Client) error {
	if client == nil {
		return nil
	}
	if err := client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis connection: %w", err)
	}
	log.Println("Redis connection closed.")
	return nil
}
