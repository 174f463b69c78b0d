package eviction

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func evictAll[K comparable](p Policy[K]) []K {
	var out []K
	for {
		k, ok := p.Evict()
		if !ok {
			return out
		}
		out = append(out, k)
	}
}

func TestFIFO(t *testing.T) {
	p := New[int](FIFO)
	p.OnPut(1)
	p.OnPut(2)
	p.OnPut(3)
	p.OnPut(1) // already tracked
	p.OnGet(1) // ignored
	p.Remove(2)
	require.Equal(t, []int{1, 3}, evictAll(p))
}

func TestLRU(t *testing.T) {
	p := New[int](LRU)
	p.OnPut(1)
	p.OnPut(2)
	p.OnPut(3)
	p.OnGet(1)
	require.Equal(t, []int{2, 3, 1}, evictAll(p))

	p.OnPut(4)
	p.OnPut(5)
	p.Remove(4)
	require.Equal(t, []int{5}, evictAll(p))
}

func TestLFU(t *testing.T) {
	p := New[string](LFU)
	p.OnPut("a")
	p.OnPut("b")
	p.OnPut("c")
	p.OnGet("a")
	p.OnGet("a")
	p.OnGet("c")

	// b used once, c twice, a three times
	require.Equal(t, []string{"b", "c", "a"}, evictAll(p))
}

func TestLFUTieBreaksOnAge(t *testing.T) {
	p := New[int](LFU)
	p.OnPut(7)
	p.OnPut(3)
	p.OnPut(9)
	k, ok := p.Evict()
	require.True(t, ok)
	require.Equal(t, 7, k)
}

func TestLFURemoveUpdatesMin(t *testing.T) {
	p := New[int](LFU)
	p.OnPut(1)
	p.OnPut(2)
	p.OnGet(2)
	p.Remove(1)

	k, ok := p.Evict()
	require.True(t, ok)
	require.Equal(t, 2, k)
}

func TestEmptyPolicies(t *testing.T) {
	for _, pt := range []PolicyType{FIFO, LRU, LFU} {
		_, ok := New[int](pt).Evict()
		require.False(t, ok, string(pt))
	}
}

func TestParsePolicyType(t *testing.T) {
	pt, err := ParsePolicyType(" lru ")
	require.NoError(t, err)
	require.Equal(t, LRU, pt)

	_, err = ParsePolicyType("random")
	require.Error(t, err)

	require.Panics(t, func() { New[int]("random") })
}
