package orcid

import "sync"

// Cache memoizes registry lookups for the lifetime of one run. The same
// search, validation, or scrape is never issued twice, which keeps external
// call volume bounded and log output deterministic. Clear exists for test
// isolation.
type Cache struct {
	mu      sync.Mutex
	entries map[string]any
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]any)}
}

// get returns the cached value for key, if any.
func (c *Cache) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// set stores a value for key.
func (c *Cache) set(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = v
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops all cached entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]any)
}
