package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"go-entry-board/internal/model"
)

const (
	redisDialTimeout  = 3 * time.Second
	redisReadTimeout  = 2 * time.Second
	redisWriteTimeout = 2 * time.Second
	redisPingTimeout  = 2 * time.Second
)

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Connect parses a redis URL and pings the server before handing back a client.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	options.PoolSize = 10
	options.MinIdleConns = 2
	options.DialTimeout = redisDialTimeout
	options.ReadTimeout = redisReadTimeout
	options.WriteTimeout = redisWriteTimeout

	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	slog.Info("redis connected", "addr", options.Addr, "pool_size", options.PoolSize)
	return client, nil
}

func (r *Redis) Get(ctx context.Context, username string) (model.PublicProfile, error) {
	raw, err := r.client.Get(ctx, key(username)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.PublicProfile{}, model.ErrCacheMiss
	}
	if err != nil {
		return model.PublicProfile{}, fmt.Errorf("redis get profile: %w", err)
	}

	var profile model.PublicProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return model.PublicProfile{}, model.ErrCacheMiss
	}
	return profile, nil
}

func (r *Redis) Set(ctx context.Context, profile model.PublicProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := r.client.Set(ctx, key(profile.Username), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set profile: %w", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, username string) error {
	if err := r.client.Del(ctx, key(username)).Err(); err != nil {
		return fmt.Errorf("redis delete profile: %w", err)
	}
	return nil
}
