//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

// Run with: BATCHSORT_REDIS_ADDR=localhost:6379 go test -tags integration ./pkg/cache
func TestRedisCacheIntegration(t *testing.T) {
	addr := os.Getenv("BATCHSORT_REDIS_ADDR")
	if addr == "" {
		t.Skip("BATCHSORT_REDIS_ADDR not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, addr)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	key := "batchsort:test:" + time.Now().Format(time.RFC3339Nano)
	if err := c.Set(ctx, key, []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("deleted key should miss")
	}
}
