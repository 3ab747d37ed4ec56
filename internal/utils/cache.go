package utils

import (
	"context"
	"errors"
	"stackqa/internal/log"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache 缓存序列化后的响应。ttl <= 0 表示不过期。
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// CacheItem 包装缓存数据和过期时间
type CacheItem struct {
	Data      []byte
	ExpiresAt time.Time
}

func (i CacheItem) expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// LocalCache 进程内 LRU 缓存
type LocalCache struct {
	lruCache *lru.Cache[string, CacheItem]
	now      func() time.Time
}

func NewLocalCache(size int) (*LocalCache, error) {
	l, err := lru.New[string, CacheItem](size)
	if err != nil {
		return nil, err
	}
	return &LocalCache{lruCache: l, now: time.Now}, nil
}

func (c *LocalCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) {
	item := CacheItem{Data: data}
	if ttl > 0 {
		item.ExpiresAt = c.now().Add(ttl)
	}
	c.lruCache.Add(key, item)
}

// Get 获取缓存，若不存在或已过期则返回 false
func (c *LocalCache) Get(_ context.Context, key string) ([]byte, bool) {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil, false
	}

	if val.expired(c.now()) {
		c.lruCache.Remove(key)
		return nil, false
	}
	return val.Data, true
}

func (c *LocalCache) Delete(_ context.Context, key string) {
	c.lruCache.Remove(key)
}

// RedisCache shares cached pages between instances. Redis errors degrade to
// cache misses.
type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.L.Warn("redis cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return data, true
}

func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		log.L.Warn("redis cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		log.L.Warn("redis cache delete failed", zap.String("key", key), zap.Error(err))
	}
}
