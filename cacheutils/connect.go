package cacheutils

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/taskflow/taskflow-backend/logger"
	"go.uber.org/zap"
)

// Connect returns a valid connection with the redis instance backing the
// OAuth state store.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	log := logger.FromCtx(ctx)

	// redis client setup (recommended in local development setup)
	client := redis.NewClient(&redis.Options{
		Addr: redisURL,
		DB:   0,
	})

	// redis client setup overriden in prod
	if os.Getenv("ENV") == logger.PROD {
		log.Info("Attempt redis connection in production mode")
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}

		opt.TLSConfig = &tls.Config{
			ServerName: os.Getenv("REDIS_TLS_SERVER_NAME"),
		}
		client = redis.NewClient(opt)
		log.Info("Redis client initialized",
			zap.String("Addr", opt.Addr),
			zap.Bool("TLS", opt.TLSConfig != nil),
		)
	}

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("error connecting to Redis: %w", err)
	}

	log.Info("got response from redis client", zap.String("ping", pong))
	return client, nil
}
