package config

import (
	"context"
	"fmt"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Redis backs the rate limiter, upload metadata and report job progress.
// It is optional: when REDIS_HOST is unset those features degrade gracefully.
var Redis *redis.Client

func InitRedis() {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		logrus.Warn("REDIS_HOST not set, redis-backed features disabled")
		return
	}

	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: os.Getenv("REDIS_PASSWD"),
		DB:       0, // use default DB
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logrus.WithError(err).Warn("redis unreachable, redis-backed features disabled")
		return
	}

	Redis = client
	logrus.Info("redis connected")
}
