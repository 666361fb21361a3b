package marketdata

import (
	"sync"
	"time"
)

// cacheEntry holds a cached value and its expiry deadline.
type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// ttlCache is a mutex-guarded in-process memo keyed by "op|args" strings.
// Expired entries are treated as misses and overwritten in place; there is
// no background eviction.
type ttlCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

func newTTLCache() *ttlCache {
	return &ttlCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// get returns the cached value for key, or (nil, false) when the entry is
// missing or past its TTL.
func (c *ttlCache) get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

// set stores value under key for the given TTL, replacing any prior entry.
func (c *ttlCache) set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
}
