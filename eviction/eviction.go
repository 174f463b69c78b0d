package eviction

import (
	"strings"

	"github.com/pkg/errors"
)

/*
This file defines how a capped list decides what to drop when it is full.
*/

/*
Policy is the interface that all eviction strategies must follow.

The list does NOT care how eviction works internally. It only calls these
methods, and it owns the lock: policies are not safe for concurrent use.
*/
type Policy[K comparable] interface {

	// OnGet is called whenever a key is looked at.
	// LRU moves it to the front, LFU counts it, FIFO ignores it.
	OnGet(K)

	// OnPut is called whenever a key is added.
	OnPut(K)

	// Remove is called when a key is removed on purpose (not evicted).
	Remove(K)

	// Evict picks the key to drop and forgets it.
	// ok is false when nothing is tracked.
	Evict() (key K, ok bool)
}

// PolicyType is a simple identifier for supported eviction strategies.
type PolicyType string

const (
	// LRU (Least Recently Used): drops the key that was looked at longest ago.
	LRU PolicyType = "LRU"

	// LFU (Least Frequently Used): drops the key looked at the fewest times.
	LFU PolicyType = "LFU"

	// FIFO (First In First Out): drops the oldest added key.
	FIFO PolicyType = "FIFO"
)

// ParsePolicyType accepts a policy name in any case.
func ParsePolicyType(s string) (PolicyType, error) {
	switch t := PolicyType(strings.ToUpper(strings.TrimSpace(s))); t {
	case LRU, LFU, FIFO:
		return t, nil
	default:
		return "", errors.Errorf("unknown eviction policy %q", s)
	}
}

// New is a small factory function.
// Given a PolicyType, it creates the correct eviction policy.
func New[K comparable](t PolicyType) Policy[K] {
	switch t {
	case LRU:
		return newLRU[K]()
	case LFU:
		return newLFU[K]()
	case FIFO:
		return newFIFO[K]()
	default:
		panic("unknown eviction policy")
	}
}
