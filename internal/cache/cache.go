package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/truthquest/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey generates a stable cache key from its parts
func CacheKey(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "truthquest:v1:" + hex.EncodeToString(hash[:])
}

// New builds the cache described by cfg: memory in front of either redis
// or disk. A disabled cache returns nil.
func New(cfg model.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	memory := NewMemoryCache(ttl, 10*time.Minute).WithMaxEntries(DefaultMemoryEntries)

	if cfg.RedisURL != "" {
		remote, err := NewRedisCache(cfg.RedisURL, ttl)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return NewLayered(memory, remote), nil
	}

	if cfg.Dir == "" {
		return memory, nil
	}
	return NewLayered(memory, NewDiskCache(cfg.Dir, ttl)), nil
}
