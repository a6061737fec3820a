package adapter

import (
	"context"
	"fmt"
	"strings"

	"quiz-shell/internal/config"

	"github.com/redis/go-redis/v9"
)

const GlobalKeyPrefix = "quizshell"

// GenerateKey joins the global prefix and parts into a Redis key,
// e.g. quizshell:scoreboard:best.
func GenerateKey(parts ...string) string {
	return strings.Join(append([]string{GlobalKeyPrefix}, parts...), ":")
}

// NewRedisClient creates and returns a new Redis client instance.
// It pings the server to ensure connectivity.
func NewRedisClient(ctx context.Context, redisCfg config.RedisConfig) (*redis.Client, error) {
	if redisCfg.Address == "" {
		return nil, fmt.Errorf("redis configuration is missing or address is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Address,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", redisCfg.Address, err)
	}

	return client, nil
}
