package cache

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultMemoryEntries bounds the in-process layer for long-running servers
const DefaultMemoryEntries = 5000

// MemoryCache keeps search payloads in process with per-entry expiry.
// Stored slices are copied so callers cannot mutate cached results.
type MemoryCache struct {
	items      *gocache.Cache
	mu         sync.Mutex
	maxEntries int
}

// NewMemoryCache creates a memory cache without an entry bound
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{items: gocache.New(defaultTTL, cleanupInterval)}
}

// WithMaxEntries bounds the number of stored entries. Once full, expired
// entries are purged and new keys are dropped if there is still no room.
func (c *MemoryCache) WithMaxEntries(n int) *MemoryCache {
	c.maxEntries = n
	return c
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	val, found := c.items.Get(key)
	if !found {
		return nil, false
	}
	data, ok := val.([]byte)
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

// Set stores a copy of value; a zero ttl uses the cache default
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	data := append([]byte(nil), value...)

	if c.maxEntries <= 0 {
		c.items.Set(key, data, ttl)
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.items.Get(key); !exists && c.items.ItemCount() >= c.maxEntries {
		c.items.DeleteExpired()
		if c.items.ItemCount() >= c.maxEntries {
			return nil
		}
	}
	c.items.Set(key, data, ttl)
	return nil
}

func (c *MemoryCache) Delete(key string) error {
	c.items.Delete(key)
	return nil
}

func (c *MemoryCache) Clear() error {
	c.items.Flush()
	return nil
}

// Len reports the number of stored entries, including expired ones not yet purged
func (c *MemoryCache) Len() int {
	return c.items.ItemCount()
}
