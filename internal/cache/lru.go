package cache

// lruNode is one cached entry linked into the recency list.
type lruNode[K comparable, V any] struct {
	key   K
	value V
	size  int64
	prev  *lruNode[K, V]
	next  *lruNode[K, V]
}

// lruList is a doubly-linked list ordered by recency.
// The head is the most recently used, tail is least recently used.
// The list is not thread-safe; callers must handle synchronization.
type lruList[K comparable, V any] struct {
	head *lruNode[K, V]
	tail *lruNode[K, V]
	len  int
}

// PushFront inserts node as the most recently used entry.
func (l *lruList[K, V]) PushFront(node *lruNode[K, V]) {
	node.prev = nil
	node.next = l.head
	if l.head != nil {
		l.head.prev = node
	}
	l.head = node
	if l.tail == nil {
		l.tail = node
	}
	l.len++
}

// MoveToFront marks node as most recently used.
func (l *lruList[K, V]) MoveToFront(node *lruNode[K, V]) {
	if node == l.head {
		return
	}
	l.unlink(node)
	l.PushFront(node)
}

// Remove unlinks node.
func (l *lruList[K, V]) Remove(node *lruNode[K, V]) {
	l.unlink(node)
}

// Oldest returns the least recently used node, or nil.
func (l *lruList[K, V]) Oldest() *lruNode[K, V] {
	return l.tail
}

// Clear drops every node.
func (l *lruList[K, V]) Clear() {
	l.head = nil
	l.tail = nil
	l.len = 0
}

func (l *lruList[K, V]) unlink(node *lruNode[K, V]) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}
	node.prev = nil
	node.next = nil
	l.len--
}
