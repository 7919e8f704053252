package configs

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// OpenRedis connects the optional cache. Returns nil when no address is
// configured or the server is unreachable; callers treat nil as "cache
// disabled".
func OpenRedis(env ENV) *redis.Client {
	if env.RedisAddr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     env.RedisAddr,
		Password: env.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		zap.L().Warn("redis unreachable, product cache disabled", zap.Error(err))
		return nil
	}

	return client
}
