package cache

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
)

func TestInitRedisWithCustomAddr(t *testing.T) {
	t.Setenv("REDIS_URL", "redis:9999")

	origNewClient := newRedisClient
	origPing := pingRedis
	t.Cleanup(func() {
		newRedisClient = origNewClient
		pingRedis = origPing
		Client = nil
	})

	var capturedAddr string
	newRedisClient = func(opts *redis.Options) *redis.Client {
		capturedAddr = opts.Addr
		return redis.NewClient(opts)
	}
	pingRedis = func(ctx context.Context, client *redis.Client) error {
		return nil
	}

	InitRedis(context.Background())
	if capturedAddr != "redis:9999" {
		t.Fatalf("expected custom addr, got %s", capturedAddr)
	}
}

func TestInitRedisDisabledWithoutURL(t *testing.T) {
	t.Setenv("REDIS_URL", "")

	origNewClient := newRedisClient
	t.Cleanup(func() {
		newRedisClient = origNewClient
		Client = nil
	})

	called := false
	newRedisClient = func(opts *redis.Options) *redis.Client {
		called = true
		return redis.NewClient(opts)
	}

	InitRedis(context.Background())
	if called {
		t.Fatal("no client should be created without REDIS_URL")
	}
	if Client != nil {
		t.Fatal("expected nil client when cache is disabled")
	}
}
