// Package cache stores JSON-encoded responses for short periods.
// Failures are logged and treated as misses; callers never see cache errors.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	opTimeout   = 2 * time.Second
	scanTimeout = 3 * time.Second
	scanRounds  = 10
)

// Cache is a JSON key/value cache
type Cache interface {
	// GetJSON decodes the value at key into dest and reports whether it was found
	GetJSON(ctx context.Context, key string, dest any) bool
	// SetJSON encodes v and stores it with the cache TTL
	SetJSON(ctx context.Context, key string, v any)
	// InvalidatePrefix drops every key starting with prefix
	InvalidatePrefix(ctx context.Context, prefix string)
}

// Key joins parts with ':'
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// Redis is a Cache backed by Redis
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis creates a Redis cache with the given TTL
func NewRedis(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, ttl: ttl, logger: logger}
}

func (r *Redis) GetJSON(ctx context.Context, key string, dest any) bool {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Debug("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(b, dest); err != nil {
		r.logger.Warn("cache entry undecodable", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (r *Redis) SetJSON(ctx context.Context, key string, v any) {
	if r.ttl <= 0 {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := r.client.Set(ctx, key, b, r.ttl).Err(); err != nil {
		r.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidatePrefix deletes matching keys using SCAN so Redis is never blocked by KEYS
func (r *Redis) InvalidatePrefix(ctx context.Context, prefix string) {
	ctx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()

	var cursor uint64
	for i := 0; i < scanRounds; i++ {
		keys, next, err := r.client.Scan(ctx, cursor, prefix+"*", 1000).Result()
		if err != nil {
			r.logger.Warn("cache invalidate failed", zap.String("prefix", prefix), zap.Error(err))
			return
		}
		if len(keys) > 0 {
			pipe := r.client.Pipeline()
			for _, k := range keys {
				pipe.Del(ctx, k)
			}
			if _, err := pipe.Exec(ctx); err != nil {
				r.logger.Warn("cache delete failed", zap.String("prefix", prefix), zap.Error(err))
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}

// Noop is used when no Redis address is configured
type Noop struct{}

func (Noop) GetJSON(context.Context, string, any) bool { return false }
func (Noop) SetJSON(context.Context, string, any)      {}
func (Noop) InvalidatePrefix(context.Context, string)  {}
