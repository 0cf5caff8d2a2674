package fetch

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache stores extracted filing text by URL. Filings under an EDGAR
// accession path never change, so entries only expire to bound memory.
type Cache interface {
	Get(ctx context.Context, url string) (string, bool, error)
	Set(ctx context.Context, url, text string) error
}

type MemoryCache struct {
	lru *expirable.LRU[string, string]
}

func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{lru: expirable.NewLRU[string, string](size, nil, ttl)}
}

func (c *MemoryCache) Get(_ context.Context, url string) (string, bool, error) {
	text, ok := c.lru.Get(url)
	return text, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, url, text string) error {
	c.lru.Add(url, text)
	return nil
}

func (c *MemoryCache) Len() int {
	return c.lru.Len()
}

const redisKeyPrefix = "filingmetrics:text:"

// RedisCache shares extracted text between runs and hosts.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: redis.NewClient(&redis.Options{Addr: addr}), ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, url string) (string, bool, error) {
	text, err := c.client.Get(ctx, redisKey(url)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

func (c *RedisCache) Set(ctx context.Context, url, text string) error {
	return c.client.Set(ctx, redisKey(url), text, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func redisKey(url string) string {
	return redisKeyPrefix + url
}
