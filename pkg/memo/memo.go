// Package memo provides a generic memoized-fetch cache with in-flight
// request deduplication. Both successful and failed fetches are cached by
// key; an explicit Forget or Reset is the only eviction path.
package memo

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

type result[V any] struct {
	value V
	err   error
}

// Cache memoizes the results of asynchronous fetches keyed by string.
// Concurrent calls to Do with the same key before the first fetch resolves
// share a single underlying fetch and observe the same outcome.
type Cache[V any] struct {
	group   singleflight.Group
	mu      sync.Mutex
	entries map[string]result[V]
}

// New creates an empty cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{entries: make(map[string]result[V])}
}

// Do returns the cached result for key, or runs fetch to populate it.
// The outcome of fetch, error included, is memoized; later calls for the
// same key return it without re-fetching.
func (c *Cache[V]) Do(ctx context.Context, key string, fetch func(ctx context.Context) (V, error)) (V, error) {
	c.mu.Lock()
	if r, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return r.value, r.err
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent caller may have populated the entry between the
		// check above and entering the group.
		c.mu.Lock()
		if r, ok := c.entries[key]; ok {
			c.mu.Unlock()
			return r.value, r.err
		}
		c.mu.Unlock()

		value, err := fetch(ctx)
		c.mu.Lock()
		c.entries[key] = result[V]{value: value, err: err}
		c.mu.Unlock()
		return value, err
	})

	value, ok := v.(V)
	if !ok {
		var zero V
		return zero, err
	}
	return value, err
}

// Peek returns the memoized value for key without fetching.
// The second return is false when no successful result is cached.
func (c *Cache[V]) Peek(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[key]
	if !ok || r.err != nil {
		var zero V
		return zero, false
	}
	return r.value, true
}

// Forget drops the entry for key so the next Do re-fetches it.
func (c *Cache[V]) Forget(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	c.group.Forget(key)
}

// Reset drops every cached entry.
func (c *Cache[V]) Reset() {
	c.mu.Lock()
	c.entries = make(map[string]result[V])
	c.mu.Unlock()
}

// Len returns the number of memoized entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
