package database

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// InitRedis initializes the Redis client used for dashboard caching.
// Returns nil when Redis is unreachable; callers treat a nil client as
// cache-off and keep serving from Postgres.
func InitRedis(logger *zap.Logger) *redis.Client {
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", "6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	addr := viper.GetString("redis.host") + ":" + viper.GetString("redis.port")
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.db"),
	})

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis connection failed, continuing without cache", zap.Error(err))
		return nil
	}

	logger.Info("redis connection established", zap.String("addr", addr))
	return rdb
}
