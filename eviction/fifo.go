// This file implements FIFO eviction.

package eviction

import "slices"

type fifo[K comparable] struct {
	// queue keeps keys in the order they were added; index 0 is the oldest.
	queue []K

	// set tracks which keys are in the queue.
	set map[K]struct{}
}

func newFIFO[K comparable]() *fifo[K] {
	return &fifo[K]{set: make(map[K]struct{})}
}

// OnGet does nothing: FIFO ignores reads completely.
func (f *fifo[K]) OnGet(K) {}

// OnPut appends a new key. A key already tracked keeps its place.
func (f *fifo[K]) OnPut(k K) {
	if _, ok := f.set[k]; ok {
		return
	}
	f.queue = append(f.queue, k)
	f.set[k] = struct{}{}
}

func (f *fifo[K]) Evict() (K, bool) {
	if len(f.queue) == 0 {
		var zero K
		return zero, false
	}
	k := f.queue[0]
	f.queue = f.queue[1:]
	delete(f.set, k)
	return k, true
}

// Remove drops k from the queue, keeping the order of the rest.
func (f *fifo[K]) Remove(k K) {
	if _, ok := f.set[k]; !ok {
		return
	}
	delete(f.set, k)
	if i := slices.Index(f.queue, k); i >= 0 {
		f.queue = slices.Delete(f.queue, i, i+1)
	}
}
