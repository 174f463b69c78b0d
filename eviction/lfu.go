// This file implements LFU eviction.

package eviction

type lfuNode[K comparable] struct {
	key  K
	freq int
	// seq breaks ties: among equally used keys the oldest goes first.
	seq uint64
}

type lfu[K comparable] struct {
	nodes map[K]*lfuNode[K]

	// freqMap groups keys by how many times they were used.
	freqMap map[int]map[K]*lfuNode[K]

	// minFreq is the smallest frequency present, so eviction never scans
	// every bucket.
	minFreq int

	seq uint64
}

func newLFU[K comparable]() *lfu[K] {
	return &lfu[K]{
		nodes:   make(map[K]*lfuNode[K]),
		freqMap: make(map[int]map[K]*lfuNode[K]),
	}
}

func (l *lfu[K]) OnGet(k K) {
	n, ok := l.nodes[k]
	if !ok {
		return
	}
	old := n.freq
	n.freq++

	delete(l.freqMap[old], k)
	if len(l.freqMap[old]) == 0 {
		delete(l.freqMap, old)
		if l.minFreq == old {
			l.minFreq = n.freq
		}
	}
	l.bucket(n.freq)[k] = n
}

func (l *lfu[K]) OnPut(k K) {
	if _, ok := l.nodes[k]; ok {
		return
	}
	l.seq++
	n := &lfuNode[K]{key: k, freq: 1, seq: l.seq}
	l.nodes[k] = n
	l.bucket(1)[k] = n
	l.minFreq = 1
}

func (l *lfu[K]) Evict() (K, bool) {
	var victim *lfuNode[K]
	for _, n := range l.freqMap[l.minFreq] {
		if victim == nil || n.seq < victim.seq {
			victim = n
		}
	}
	if victim == nil {
		var zero K
		return zero, false
	}
	l.Remove(victim.key)
	return victim.key, true
}

func (l *lfu[K]) Remove(k K) {
	n, ok := l.nodes[k]
	if !ok {
		return
	}
	delete(l.freqMap[n.freq], k)
	if len(l.freqMap[n.freq]) == 0 {
		delete(l.freqMap, n.freq)
	}
	delete(l.nodes, k)
	l.recomputeMin()
}

func (l *lfu[K]) bucket(freq int) map[K]*lfuNode[K] {
	b, ok := l.freqMap[freq]
	if !ok {
		b = make(map[K]*lfuNode[K])
		l.freqMap[freq] = b
	}
	return b
}

// recomputeMin walks the buckets. Lists are tiny, so this stays cheap.
func (l *lfu[K]) recomputeMin() {
	if _, ok := l.freqMap[l.minFreq]; ok {
		return
	}
	l.minFreq = 0
	for f := range l.freqMap {
		if l.minFreq == 0 || f < l.minFreq {
			l.minFreq = f
		}
	}
}
