//go:build integration

package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisAddr returns the address of the test Redis instance from
// GNS3LAB_TEST_REDIS_ADDR, or "" when unset.
func RedisAddr() string {
	return os.Getenv("GNS3LAB_TEST_REDIS_ADDR")
}

// SkipIfNoRedis skips the test if the test Redis instance is not reachable.
func SkipIfNoRedis(t *testing.T) {
	t.Helper()

	addr := RedisAddr()
	if addr == "" {
		t.Skip("test Redis not available: set GNS3LAB_TEST_REDIS_ADDR")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("test Redis not reachable at %s: %v", addr, err)
	}
}

// RedisClient returns a client for the given DB, closed via t.Cleanup.
func RedisClient(t *testing.T, db int) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: RedisAddr(), DB: db})
	t.Cleanup(func() { client.Close() })
	return client
}

// FlushDB empties one database on the test Redis instance.
func FlushDB(t *testing.T, db int) {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: RedisAddr(), DB: db})
	defer client.Close()
	if err := client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("failed to flush DB %d: %v", db, err)
	}
}

// Keys returns all keys matching pattern in a database.
func Keys(t *testing.T, db int, pattern string) []string {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: RedisAddr(), DB: db})
	defer client.Close()
	keys, err := client.Keys(context.Background(), pattern).Result()
	if err != nil {
		t.Fatalf("failed to list keys for DB %d: %v", db, err)
	}
	return keys
}
