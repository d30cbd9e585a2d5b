package cache

import (
	"sync"
	"time"

	"freelanceradar/internal/scraper"
)

type entry struct {
	value  []scraper.Listing
	expiry time.Time
}

// MemoryCache implements Service with an in-process map. Expiry is lazy:
// an entry past its TTL is deleted by the Get that observes it. There is no
// sliding expiration and no eviction beyond TTL; the key set is small and
// fixed, so unbounded growth is not a concern here.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]entry
}

// NewMemoryCache creates an empty in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
	}
}

// Get retrieves a value, deleting it first if expired
func (c *MemoryCache) Get(key string) ([]scraper.Listing, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiry) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores a value with expiry now+ttl, overwriting unconditionally
func (c *MemoryCache) Set(key string, value []scraper.Listing, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		value:  value,
		expiry: time.Now().Add(ttl),
	}
}

// Delete removes an entry if present
func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Clear removes all entries
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry)
}

// Size returns the current entry count
func (c *MemoryCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
