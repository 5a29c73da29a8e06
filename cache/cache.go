// Package cache stores JSON encoded values under string keys.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, val any) error
	Delete(ctx context.Context, key string) error
}

type Redis struct {
	client  *redis.Client
	baseTTL time.Duration
}

// NewRedis caches entries for ttl plus up to a tenth of ttl of jitter so
// entries written together do not expire together.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, baseTTL: ttl}
}

func (r *Redis) Get(ctx context.Context, key string, dst any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Set(ctx context.Context, key string, val any) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	var jitter time.Duration
	if n := int64(r.baseTTL / 10); n > 0 {
		jitter = time.Duration(rand.Int63n(n))
	}
	if err := r.client.Set(ctx, key, data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Noop never stores anything; every Get is a miss.
type Noop struct{}

func (Noop) Get(context.Context, string, any) error { return ErrCacheMiss }
func (Noop) Set(context.Context, string, any) error { return nil }
func (Noop) Delete(context.Context, string) error   { return nil }
