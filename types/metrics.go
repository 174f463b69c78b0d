package types

// This file defines how the cache and lists report what they are doing.

/*
Metrics is an interface that defines what the cache wants to measure.
Each method represents an event in the cache lifecycle.
*/
type Metrics interface {

	// Hit is called when Get finds the id in memory.
	Hit()

	// Miss is called when Get does NOT find the id.
	Miss()

	// Expire is called when Load finds a snapshot older than the expiry window and removes it.
	Expire()

	// Eviction is called when a capped list drops an item to make room.
	Eviction()

	// Persisted is called after a successful write-through.
	Persisted()

	// PersistFailed is called when a write-through could not reach storage.
	PersistFailed()

	// SnapshotRejected is called when a stored value could not be decoded.
	SnapshotRejected()
}

/*
NoopMetrics is a "do nothing" implementation of Metrics.

Callers that do not care about metrics still get a working cache without
nil checks on every event.
*/
type NoopMetrics struct{}

func (NoopMetrics) Hit()              {}
func (NoopMetrics) Miss()             {}
func (NoopMetrics) Expire()           {}
func (NoopMetrics) Eviction()         {}
func (NoopMetrics) Persisted()        {}
func (NoopMetrics) PersistFailed()    {}
func (NoopMetrics) SnapshotRejected() {}
