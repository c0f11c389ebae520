// ABOUTME: Thread-safe TTL cache for rendered views keyed by request path.
// ABOUTME: Actions invalidate entries after committed mutations so stale lists are recomputed.

package viewcache

import (
	"container/list"
	"sync"
	"time"
)

// cacheEntry stores the rendered body, timestamp, and list element for a cached path.
type cacheEntry struct {
	body      []byte
	timestamp time.Time
	element   *list.Element
}

// Cache provides a thread-safe, TTL-based, size-limited cache of rendered
// views keyed by path. Uses a doubly-linked list to maintain insertion order
// for O(1) eviction.
type Cache struct {
	mu      sync.RWMutex
	views   map[string]*cacheEntry
	order   *list.List // List of paths in insertion order (oldest at front)
	ttl     time.Duration
	maxSize int
	done    chan struct{}
	closed  bool
}

// New creates a new view cache with the specified TTL and maximum size.
// A background goroutine periodically cleans up expired entries.
func New(ttl time.Duration, maxSize int) *Cache {
	c := &Cache{
		views:   make(map[string]*cacheEntry),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		done:    make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// Get returns the cached body for a path, or (nil, false) if the path is
// missing or its entry has expired.
func (c *Cache) Get(path string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.views[path]
	if !ok || time.Since(entry.timestamp) >= c.ttl {
		return nil, false
	}
	return entry.body, true
}

// Put stores a rendered body for a path. If the cache is at capacity,
// the oldest entry is evicted to make room.
func (c *Cache) Put(path string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()

	// If path already exists, replace body, update timestamp, move to back
	if entry, exists := c.views[path]; exists {
		entry.body = body
		entry.timestamp = now
		c.order.MoveToBack(entry.element)
		return
	}

	// Evict oldest if at capacity
	if len(c.views) >= c.maxSize {
		c.evictOldest()
	}

	elem := c.order.PushBack(path)
	c.views[path] = &cacheEntry{
		body:      body,
		timestamp: now,
		element:   elem,
	}
}

// Invalidate marks the cached view for a path as stale by removing it.
// The next request for the path recomputes the view. Invalidating a path
// with no cached entry is a no-op.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.views[path]
	if !ok {
		return
	}
	c.order.Remove(entry.element)
	delete(c.views, path)
}

// Len returns the number of cached views.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.views)
}

// evictOldest removes the oldest entry from the cache.
// Must be called with mu held. O(1) operation using linked list.
func (c *Cache) evictOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}

	path, _ := front.Value.(string)
	c.order.Remove(front)
	delete(c.views, path)
}

// cleanup runs in a background goroutine, periodically removing expired entries.
func (c *Cache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.runCleanup()
		case <-c.done:
			return
		}
	}
}

// runCleanup removes all expired entries from the cache.
func (c *Cache) runCleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for path, entry := range c.views {
		if now.Sub(entry.timestamp) > c.ttl {
			c.order.Remove(entry.element)
			delete(c.views, path)
		}
	}
}

// Close stops the background cleanup goroutine. It is safe to call multiple times.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.done)
		c.closed = true
	}
}
