// Package redis creates the shared Redis client.
package redis

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotConfigured is returned when REDIS_HOST is not set.
var ErrNotConfigured = errors.New("redis is not configured")

// Options holds the Redis connection settings.
type Options struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// LoadOptionsFromEnv reads REDIS_HOST, REDIS_PORT and REDIS_PASSWORD.
func LoadOptionsFromEnv() Options {
	opts := Options{
		Host:     os.Getenv("REDIS_HOST"),
		Port:     os.Getenv("REDIS_PORT"),
		Password: os.Getenv("REDIS_PASSWORD"),
	}
	if opts.Port == "" {
		opts.Port = "6379"
	}
	return opts
}

// NewRedisClient connects and pings Redis. Callers fall back to other stores on error.
func NewRedisClient(ctx context.Context, opts Options) (*redis.Client, error) {
	if opts.Host == "" {
		return nil, ErrNotConfigured
	}
	addr := net.JoinHostPort(opts.Host, opts.Port)

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	// 接続確認
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", addr, "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", addr)
	return rdb, nil
}
