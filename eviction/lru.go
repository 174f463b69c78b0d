// This file implements LRU eviction.

package eviction

// lruNode is one key in a doubly-linked list ordered by use.
type lruNode[K comparable] struct {
	key  K
	prev *lruNode[K]
	next *lruNode[K]
}

type lru[K comparable] struct {
	// nodes finds a key's node in O(1).
	nodes map[K]*lruNode[K]

	// head is the MOST recently used key
	head *lruNode[K]

	// tail is the LEAST recently used key
	tail *lruNode[K]
}

func newLRU[K comparable]() *lru[K] {
	return &lru[K]{nodes: make(map[K]*lruNode[K])}
}

// OnGet marks k as most recently used.
func (l *lru[K]) OnGet(k K) {
	if n, ok := l.nodes[k]; ok {
		l.moveToFront(n)
	}
}

// OnPut adds a new key at the front. Existing keys are left alone.
func (l *lru[K]) OnPut(k K) {
	if _, ok := l.nodes[k]; ok {
		return
	}
	n := &lruNode[K]{key: k}
	l.nodes[k] = n
	l.addFront(n)
}

// Evict drops the least recently used key, which is always the tail.
func (l *lru[K]) Evict() (K, bool) {
	if l.tail == nil {
		var zero K
		return zero, false
	}
	k := l.tail.key
	l.remove(l.tail)
	delete(l.nodes, k)
	return k, true
}

func (l *lru[K]) Remove(k K) {
	if n, ok := l.nodes[k]; ok {
		l.remove(n)
		delete(l.nodes, k)
	}
}

func (l *lru[K]) addFront(n *lruNode[K]) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
}

// remove unlinks n, fixing up head and tail.
func (l *lru[K]) remove(n *lruNode[K]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

func (l *lru[K]) moveToFront(n *lruNode[K]) {
	l.remove(n)
	l.addFront(n)
}
