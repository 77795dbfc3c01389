// Package cache stores short-lived JSON snapshots (dashboards) in Redis.
//
// A Cache never fails a request: callers treat any error as a miss and fall
// back to computing the value. Nop is used when no Redis address is set.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a typed-by-JSON key/value store with expiry.
type Cache interface {
	// Get decodes the value at key into dst and reports whether it was found.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Options configures a Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces every key written by this process.
	Prefix string
}

// Redis implements Cache on go-redis.
type Redis struct {
	Client *redis.Client
	Prefix string
}

// NewRedis connects lazily; use Ping to verify reachability.
func NewRedis(o Options) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:         o.Addr,
		Password:     o.Password,
		DB:           o.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	return &Redis{Client: rdb, Prefix: o.Prefix}
}

// Ping tests the Redis connection.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

func (r *Redis) key(k string) string { return r.Prefix + k }

func (r *Redis) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := r.Client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

func (r *Redis) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	return r.Client.Set(ctx, r.key(key), b, ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	return r.Client.Del(ctx, full...).Err()
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (Nop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Nop) Delete(context.Context, ...string) error               { return nil }
