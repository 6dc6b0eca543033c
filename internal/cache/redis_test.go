package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

func TestNopCache(t *testing.T) {
	var c PageCache = NopCache{}
	if err := c.Set(context.Background(), "k", 1, time.Minute); err != nil {
		t.Fatal(err)
	}
	var v int
	if err := c.Get(context.Background(), "k", &v); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss, got %v", err)
	}
}

// Runs against a real server when REDIS_ADDR is set.
func TestRedisCache(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, addr, os.Getenv("REDIS_PASSWORD"), 0)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	type page struct {
		Total int      `json:"total"`
		SKUs  []string `json:"skus"`
	}
	key := "products:test:" + time.Now().Format(time.RFC3339Nano)
	if err := c.Set(ctx, key, page{Total: 2, SKUs: []string{"A", "B"}}, time.Minute); err != nil {
		t.Fatal(err)
	}
	var got page
	if err := c.Get(ctx, key, &got); err != nil {
		t.Fatal(err)
	}
	if got.Total != 2 || len(got.SKUs) != 2 {
		t.Fatalf("unexpected page %+v", got)
	}
	if err := c.Get(ctx, key+":missing", &got); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss, got %v", err)
	}
}
