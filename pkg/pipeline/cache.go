// pkg/pipeline/cache.go
package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Cache stores completed pipeline results keyed by input content. Results
// are computed once per distinct input set and reused; entries are never
// mutated in place, only replaced wholesale or invalidated on explicit
// reload. Identical inputs always recompute to the same result, so serving
// a cached entry is indistinguishable from recomputing.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Result
}

// NewCache creates an empty result cache
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Result)}
}

// Key derives a cache key from the raw bytes of every input file
func Key(inputs ...[]byte) string {
	h := sha256.New()
	for _, input := range inputs {
		h.Write(input)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached result for a key, if present
func (c *Cache) Get(key string) (*Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result, ok := c.entries[key]
	return result, ok
}

// Put stores a completed result under a key
func (c *Cache) Put(key string, result *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = result
}

// Invalidate drops all cached results
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*Result)
}
