package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"
)

type line struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func newRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedis(client, time.Minute), mr
}

func TestRedisRoundTrip(t *testing.T) {
	c, mr := newRedis(t)
	ctx := context.Background()

	want := []line{{ProductID: "p1", Quantity: 2}}
	if err := c.Set(ctx, "cart:u1", want); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got []line
	if err := c.Get(ctx, "cart:u1", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected value (-want +got):\n%s", diff)
	}

	ttl := mr.TTL("cart:u1")
	if ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("expected ttl between 1m and 1m6s, got %v", ttl)
	}
}

func TestRedisMissAndDelete(t *testing.T) {
	c, _ := newRedis(t)
	ctx := context.Background()

	var got []line
	if err := c.Get(ctx, "cart:none", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	if err := c.Set(ctx, "cart:u1", []line{}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Delete(ctx, "cart:u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := c.Get(ctx, "cart:u1", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss after delete, got %v", err)
	}
}

func TestRedisCorruptEntry(t *testing.T) {
	c, mr := newRedis(t)

	mr.Set("cart:u1", "{not json")

	var got []line
	err := c.Get(context.Background(), "cart:u1", &got)
	if err == nil || errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected a decode error, got %v", err)
	}
}

func TestNoop(t *testing.T) {
	var c Cache = Noop{}
	ctx := context.Background()

	if err := c.Set(ctx, "k", 1); err != nil {
		t.Fatalf("set: %v", err)
	}
	var v int
	if err := c.Get(ctx, "k", &v); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}
