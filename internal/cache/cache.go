// Package cache stores rendered API responses in redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/zsiec/timecode/internal/config"
	"github.com/zsiec/timecode/internal/metrics"
)

// ErrMiss is returned by Get when no entry exists.
var ErrMiss = stderrors.New("cache miss")

// Cache is the response cache used by the API handlers.
type Cache interface {
	Get(ctx context.Context, key string, dst interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
}

// Key derives a cache key from an endpoint and its canonical request. The
// request is marshalled with encoding/json so field order is fixed by the
// struct definition.
func Key(endpoint string, request interface{}) (string, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key: %w", err)
	}
	sum := sha256.New()
	sum.Write([]byte(endpoint))
	sum.Write([]byte{0})
	sum.Write(body)
	return endpoint + ":" + hex.EncodeToString(sum.Sum(nil)), nil
}

// RedisCache keeps JSON encoded responses under a key prefix with a TTL.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *logrus.Entry
}

// NewRedisCache creates a cache on client using cfg's prefix and TTL.
func NewRedisCache(client *redis.Client, cfg config.CacheConfig, logger *logrus.Entry) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
		logger: logger.WithField("component", "cache"),
	}
}

// Get decodes the entry for key into dst. A missing entry is ErrMiss.
func (c *RedisCache) Get(ctx context.Context, key string, dst interface{}) error {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			metrics.RecordCacheResult(metrics.CacheMiss)
			return ErrMiss
		}
		metrics.RecordCacheResult(metrics.CacheError)
		return fmt.Errorf("failed to read cache entry: %w", err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		metrics.RecordCacheResult(metrics.CacheError)
		c.logger.WithError(err).WithField("key", key).Warn("Dropping undecodable cache entry")
		c.client.Del(ctx, c.prefix+key)
		return ErrMiss
	}

	metrics.RecordCacheResult(metrics.CacheHit)
	return nil
}

// Set stores value under key.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		metrics.RecordCacheResult(metrics.CacheError)
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string, interface{}) error { return ErrMiss }

func (Nop) Set(context.Context, string, interface{}) error { return nil }

// NewRedisClient opens a client from cfg and verifies it with a ping.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addresses[0],
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
