// Package cache provides a thread-safe LRU cache for parse outcomes.
//
// The cache is used by the validator to avoid re-parsing the same expression
// source on every keystroke or model reload. Unlike a plain expression cache
// it stores failures as well: an expression that failed to parse once will
// fail identically every time, so the error itself is worth caching.
//
// # Example
//
//	c := cache.New(500)
//	out := c.GetOrParse("rain * 0.9", func() (*types.Expression, error) {
//	    return parser.Parse("rain * 0.9")
//	})
package cache

import (
	"container/list"
	"sync"

	"github.com/hydrokit/flowexpr/pkg/types"
)

// Outcome is the cached result of parsing one source string.
// Exactly one of Expr and Err is set.
type Outcome struct {
	Expr *types.Expression
	Err  error
}

// entry is a cache entry stored in the doubly-linked list.
type entry struct {
	key     string
	outcome *Outcome
}

// Cache is a thread-safe LRU (Least Recently Used) cache of parse outcomes,
// keyed by the exact source text. Once the capacity is reached, the least
// recently accessed entry is evicted.
//
// Safe for concurrent use by multiple goroutines.
type Cache struct {
	mu       sync.RWMutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
}

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 500

// New creates a new LRU cache with the given capacity.
// capacity must be > 0; if <= 0, DefaultCapacity is used.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Get retrieves the cached outcome for key.
// Returns (outcome, true) if found and moves the entry to front (MRU).
// Returns (nil, false) if not present.
func (c *Cache) Get(key string) (*Outcome, bool) {
	c.mu.RLock()
	el, ok := c.items[key]
	// If the element is already at the front, skip the write lock entirely.
	alreadyFront := ok && c.ll.Front() == el
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !alreadyFront {
		// Promote to front under write lock; re-check in case of concurrent eviction.
		c.mu.Lock()
		el, ok = c.items[key]
		if ok {
			c.ll.MoveToFront(el)
		}
		c.mu.Unlock()

		if !ok {
			return nil, false
		}
	}
	return el.Value.(*entry).outcome, true
}

// Set inserts or replaces an outcome in the cache.
// If at capacity, the least recently used entry is evicted first.
func (c *Cache) Set(key string, outcome *Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry).outcome = outcome
		c.ll.MoveToFront(el)
		return
	}

	if c.ll.Len() >= c.capacity {
		c.evictLocked()
	}

	el := c.ll.PushFront(&entry{key: key, outcome: outcome})
	c.items[key] = el
}

// GetOrParse retrieves the outcome for key from the cache, or calls parse,
// caches its result, and returns it. Both successes and failures are
// cached, so parse is called at most once per key while the entry survives.
//
// Under concurrent misses for the same key, parse may run more than once;
// the resulting outcomes are identical and the last one wins.
func (c *Cache) GetOrParse(key string, parse func() (*types.Expression, error)) *Outcome {
	if out, ok := c.Get(key); ok {
		return out
	}
	expr, err := parse()
	out := &Outcome{Expr: expr, Err: err}
	if err != nil {
		out.Expr = nil
	}
	c.Set(key, out)
	return out
}

// Len returns the number of entries currently in the cache.
func (c *Cache) Len() int {
	c.mu.RLock()
	n := len(c.items)
	c.mu.RUnlock()
	return n
}

// Capacity returns the maximum number of entries the cache can hold.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Invalidate removes a single entry from the cache.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.Remove(el)
		delete(c.items, key)
	}
}

// Clear removes all entries from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element, c.capacity)
}

// evictLocked removes the least recently used entry.
// Must be called with c.mu held for writing.
func (c *Cache) evictLocked() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry).key)
}
