package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/course-marketplace/internal/config"
)

// Redis wraps the go-redis client and, when no address is configured, the
// embedded server it talks to.
type Redis struct {
	Client   *redis.Client
	embedded *miniredis.Miniredis
}

// NewRedis connects to Redis using the provided configuration. An empty
// address starts an embedded in-process server.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) (*Redis, error) {
	if cfg.Addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("start embedded redis: %w", err)
		}
		logger.Info("started embedded redis", zap.String("addr", mr.Addr()))
		return &Redis{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()}), embedded: mr}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr))
	}

	return &Redis{Client: client}, nil
}

// Embedded reports whether the client talks to the in-process server.
func (r *Redis) Embedded() bool {
	return r != nil && r.embedded != nil
}

// Close closes the client and stops the embedded server if any.
func (r *Redis) Close() {
	if r == nil {
		return
	}
	if r.Client != nil {
		_ = r.Client.Close()
	}
	if r.embedded != nil {
		r.embedded.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}
