package utils

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
)

// CacheItem 包装缓存数据和过期时间
type CacheItem struct {
	Data      string
	ExpiresAt time.Time
}

// RenderCache 渲染结果的本地 LRU 缓存，只存派生数据
type RenderCache struct {
	lruCache *lru.Cache[string, CacheItem]
}

var (
	cacheInstance *RenderCache
	cacheOnce     sync.Once
)

// GetCache 获取单例缓存实例
func GetCache() *RenderCache {
	cacheOnce.Do(func() {
		cacheInstance = NewRenderCache(500)
	})
	return cacheInstance
}

func NewRenderCache(size int) *RenderCache {
	l, err := lru.New[string, CacheItem](size)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create LRU cache")
	}
	return &RenderCache{lruCache: l}
}

// Set 设置缓存，TTL 为过期时间
func (c *RenderCache) Set(key string, data string, ttl time.Duration) {
	c.lruCache.Add(key, CacheItem{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
	})
}

// Get 获取缓存，若不存在或已过期则返回 false
func (c *RenderCache) Get(key string) (string, bool) {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return "", false
	}

	if time.Now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		return "", false
	}

	return val.Data, true
}

func (c *RenderCache) Len() int {
	return c.lruCache.Len()
}
