package cache

import "sync"

// SizeFunc reports the cost of a value in bytes.
type SizeFunc[V any] func(V) int64

// Cache is a thread-safe LRU cache bounded by total entry size.
//
// A budget of 0 means unlimited.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*lruNode[K, V]
	list    lruList[K, V]
	sizeOf  SizeFunc[V]
	budget  int64
	used    int64

	hits      uint64
	misses    uint64
	evictions uint64
}

// New creates a cache holding at most budget bytes as measured by sizeOf.
func New[K comparable, V any](budget int64, sizeOf SizeFunc[V]) *Cache[K, V] {
	return &Cache[K, V]{
		entries: make(map[K]*lruNode[K, V]),
		sizeOf:  sizeOf,
		budget:  budget,
	}
}

// Get retrieves a value and marks it as recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.list.MoveToFront(node)
	return node.value, true
}

// Put stores value under key, replacing any previous entry, and evicts the
// oldest entries while over budget. It reports false when the value alone
// exceeds the budget; the value is not stored in that case and any
// previous entry for key is removed.
func (c *Cache[K, V]) Put(key K, value V) bool {
	size := c.sizeOf(value)

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[key]; ok {
		c.removeNode(old)
	}
	if c.budget > 0 && size > c.budget {
		return false
	}

	node := &lruNode[K, V]{key: key, value: value, size: size}
	c.entries[key] = node
	c.list.PushFront(node)
	c.used += size

	for c.budget > 0 && c.used > c.budget {
		oldest := c.list.Oldest()
		if oldest == nil || oldest == node {
			break
		}
		c.removeNode(oldest)
		c.evictions++
	}
	return true
}

// Delete removes an entry. It reports whether the key was present.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.entries[key]
	if ok {
		c.removeNode(node)
	}
	return ok
}

// Clear removes all entries. Statistics are kept.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*lruNode[K, V])
	c.list.Clear()
	c.used = 0
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Len:       len(c.entries),
		Bytes:     c.used,
		Budget:    c.budget,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// removeNode unlinks node and releases its budget.
// Caller must hold c.mu.
func (c *Cache[K, V]) removeNode(node *lruNode[K, V]) {
	c.list.Remove(node)
	delete(c.entries, node.key)
	c.used -= node.size
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Bytes is the summed size of all entries.
	Bytes int64
	// Budget is the configured byte budget (0 = unlimited).
	Budget int64
	// Hits is the number of successful lookups.
	Hits uint64
	// Misses is the number of failed lookups.
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0 when there were no lookups.
	HitRate float64
	// Evictions is the number of entries dropped to stay within budget.
	Evictions uint64
}
