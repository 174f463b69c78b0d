package store

import (
	"maps"
	"sync/atomic"
)

/*
This file defines how the cache holds its entries in memory.
- Reads should be very fast and lock-free
- Writes are rare and can afford extra work
- The write-through path needs a consistent view of ALL entries

To get all three, we use "Copy-On-Write" (COW).
*/

/*
COWStore is a Copy-On-Write map.

- Readers always see an immutable map
- Writers build a NEW map and swap it in atomically
- Snapshot hands that immutable map out, so persistence can serialize it
  without copying again

COWStore does not serialize writers. Callers that write from several
goroutines must hold their own lock around Put/Delete/Replace.
*/
type COWStore[K comparable, V any] struct {
	data atomic.Pointer[map[K]V]
}

func NewCOWStore[K comparable, V any]() *COWStore[K, V] {
	s := &COWStore[K, V]{}
	m := make(map[K]V)
	s.data.Store(&m)
	return s
}

func (s *COWStore[K, V]) load() map[K]V {
	return *s.data.Load()
}

// Get retrieves a value.
func (s *COWStore[K, V]) Get(key K) (V, bool) {
	v, ok := s.load()[key]
	return v, ok
}

/*
Put inserts or replaces a value.
1. Load the current map
2. Copy it into a new map with room for one more
3. Set the key
4. Atomically replace the old map
*/
func (s *COWStore[K, V]) Put(key K, value V) {
	old := s.load()
	n := make(map[K]V, len(old)+1)
	maps.Copy(n, old)
	n[key] = value
	s.data.Store(&n)
}

// PutAll merges entries into the store with a single copy.
func (s *COWStore[K, V]) PutAll(entries map[K]V) {
	old := s.load()
	n := make(map[K]V, len(old)+len(entries))
	maps.Copy(n, old)
	maps.Copy(n, entries)
	s.data.Store(&n)
}

// Snapshot returns the current map. It must be treated as read-only.
func (s *COWStore[K, V]) Snapshot() map[K]V {
	return s.load()
}

// Size returns how many entries are stored.
func (s *COWStore[K, V]) Size() int {
	return len(s.load())
}
