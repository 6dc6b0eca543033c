package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is not cached.
var ErrMiss = errors.New("cache miss")

// ProductListKey is keyed by generation id and a hash of the request.
const ProductListKey = "products:%s:%s"

// PageCache stores JSON encoded values under a TTL.
type PageCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, data interface{}, expiration time.Duration) error
}

type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to addr and pings it once.
func NewRedisCache(ctx context.Context, addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, err
	}
	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(val, dest)
}

func (c *RedisCache) Set(ctx context.Context, key string, data interface{}, expiration time.Duration) error {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, dataJSON, expiration).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context, string, interface{}) error                { return ErrMiss }
func (NopCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }
