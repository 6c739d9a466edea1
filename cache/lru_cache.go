package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultLRUSize = 256

// LRUListCache is the in-process fallback used when Redis is not configured.
// Values are stored encoded so callers never share slices with the cache.
type LRUListCache struct {
	cache *expirable.LRU[string, []byte]
}

// NewLRUListCache builds a cache holding at most size entries, each for ttl.
// A non-positive ttl keeps entries until they are evicted or invalidated.
func NewLRUListCache(size int, ttl time.Duration) *LRUListCache {
	if size <= 0 {
		size = defaultLRUSize
	}
	return &LRUListCache{cache: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (c *LRUListCache) Get(_ context.Context, key string, dest interface{}) error {
	data, ok := c.cache.Get(key)
	if !ok {
		return ErrMiss
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal cached list %s: %w", key, err)
	}
	return nil
}

func (c *LRUListCache) Set(_ context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal list %s: %w", key, err)
	}
	c.cache.Add(key, data)
	return nil
}

func (c *LRUListCache) Invalidate(_ context.Context, keys ...string) error {
	for _, k := range keys {
		c.cache.Remove(k)
	}
	return nil
}
