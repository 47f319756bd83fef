package services

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
	"github.com/zeebo/xxh3"
)

// Invalidator drops derived data after a write.
type Invalidator interface {
	Invalidate()
}

type nopInvalidator struct{}

func (nopInvalidator) Invalidate() {}

type cacheEntry[V any] struct {
	key   string
	value V
}

// ViewCache memoises computed read models keyed by a query string. Every
// write to the underlying data must call Invalidate. Cached values are shared
// between callers and must not be mutated.
type ViewCache[V any] struct {
	entries    *xsync.Map[uint64, cacheEntry[V]]
	generation atomic.Uint64
}

var _ Invalidator = (*ViewCache[int])(nil)

// NewViewCache creates an empty cache.
func NewViewCache[V any]() *ViewCache[V] {
	return &ViewCache[V]{entries: xsync.NewMap[uint64, cacheEntry[V]]()}
}

// Generation must be read before computing a value and handed back to Store.
func (c *ViewCache[V]) Generation() uint64 {
	return c.generation.Load()
}

// Load returns the cached value for key.
func (c *ViewCache[V]) Load(key string) (V, bool) {
	entry, ok := c.entries.Load(xxh3.HashString(key))
	if !ok || entry.key != key {
		var zero V
		return zero, false
	}
	return entry.value, true
}

// Store caches value unless the cache was invalidated since generation was
// read, in which case value may already be stale and is dropped.
func (c *ViewCache[V]) Store(key string, generation uint64, value V) {
	if c.generation.Load() != generation {
		return
	}

	h := xxh3.HashString(key)
	c.entries.Store(h, cacheEntry[V]{key: key, value: value})
	if c.generation.Load() != generation {
		c.entries.Delete(h)
	}
}

// Invalidate empties the cache.
func (c *ViewCache[V]) Invalidate() {
	c.generation.Add(1)
	c.entries.Clear()
}

// Len reports the number of cached entries.
func (c *ViewCache[V]) Len() int {
	return c.entries.Size()
}
