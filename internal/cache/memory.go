package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache implements Cache with an in-memory TTL store
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a memory cache with the given default TTL and
// cleanup interval
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a vector from the cache
func (c *MemoryCache) Get(key string) ([]float64, bool) {
	if val, found := c.cache.Get(key); found {
		return val.([]float64), true
	}
	return nil, false
}

// Set stores a vector with the given TTL
func (c *MemoryCache) Set(key string, vector []float64, ttl time.Duration) {
	c.cache.Set(key, vector, ttl)
}

// Flush removes all cached vectors
func (c *MemoryCache) Flush() {
	c.cache.Flush()
}
