// Package cache provides a byte-budgeted LRU cache.
//
// Entries are charged by a caller-supplied size function. When the total
// size exceeds the budget, the least recently used entries are evicted
// until the cache fits again. A single entry larger than the budget is
// never stored.
//
//	c := cache.New[string, []byte](64<<20, func(b []byte) int64 { return int64(len(b)) })
//	c.Put(url, body)
//	body, ok := c.Get(url)
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
