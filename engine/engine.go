package engine

import (
	"context"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/moonsters/evolution-cache/expiration"
	"github.com/moonsters/evolution-cache/storage"
	"github.com/moonsters/evolution-cache/types"
	"github.com/moonsters/evolution-cache/writepolicy"
)

/*
CacheEngine is the policy layer of the evolution cache.
It decides how the in-memory state meets storage, NOT how entries are held.

It decides:
- How a snapshot is stamped and written after a mutation
- Whether a stored snapshot is still valid
- What happens to expired or malformed snapshots
- How metrics are recorded and failures are logged

It does NOT:
- Store entries
- Handle locking
*/
type CacheEngine struct {

	// Backend is where snapshots live. Nil means in-memory only: nothing is
	// written and nothing is restored.
	Backend storage.Backend

	// Key is the storage slot of the snapshot.
	Key string

	// Expiration decides whether a restored snapshot is too old.
	Expiration expiration.Strategy

	// WritePolicy pushes snapshots to the backend. Nil when Backend is nil.
	WritePolicy writepolicy.WritePolicy

	Metrics types.Metrics
	Clock   clockwork.Clock
	Logger  zerolog.Logger
}

/*
NewCacheEngine creates a CacheEngine. A nil backend yields an in-memory-only
engine; otherwise writes go through a WriteThroughPolicy on key.
*/
func NewCacheEngine(
	backend storage.Backend,
	key string,
	exp expiration.Strategy,
	metrics types.Metrics,
	clock clockwork.Clock,
	logger zerolog.Logger,
) *CacheEngine {
	if metrics == nil {
		metrics = types.NoopMetrics{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if exp == nil {
		exp = expiration.FixedWindow{Window: types.ExpiryWindow}
	}

	e := &CacheEngine{
		Backend:    backend,
		Key:        key,
		Expiration: exp,
		Metrics:    metrics,
		Clock:      clock,
		Logger:     logger,
	}
	if backend != nil {
		e.WritePolicy = writepolicy.NewWriteThroughPolicy(backend, key)
	}
	return e
}

// Persistent reports whether snapshots reach storage.
func (e *CacheEngine) Persistent() bool {
	return e.Backend != nil && e.WritePolicy != nil
}

/*
Persist writes the full entry set through to storage, stamped with the
current time.

Failures are logged and counted, never returned: the in-memory state is
still correct even when storage refused the write.
*/
func (e *CacheEngine) Persist(ctx context.Context, entries map[int]types.EvolutionRecord) {
	if !e.Persistent() {
		return
	}
	snap := types.NewSnapshot(entries, e.Clock.Now())
	if err := e.WritePolicy.OnWrite(ctx, snap); err != nil {
		e.Metrics.PersistFailed()
		e.Logger.Error().Err(err).Str("key", e.Key).Int("entries", len(entries)).Msg("could not persist evolution cache")
		return
	}
	e.Metrics.Persisted()
}

/*
Restore reads the stored snapshot and returns its entries.

Return values:
- entries, nil: a fresh snapshot was found
- nil, nil: nothing is stored under the key
- nil, err: err wraps one of types.ErrStorageUnavailable,
  types.ErrMalformedSnapshot or types.ErrExpiredSnapshot

An expired snapshot is removed from storage before returning.
*/
func (e *CacheEngine) Restore(ctx context.Context) (map[int]types.EvolutionRecord, error) {
	if e.Backend == nil {
		return nil, types.ErrStorageUnavailable
	}

	raw, ok, err := e.Backend.GetItem(ctx, e.Key)
	if err != nil {
		e.Logger.Warn().Err(err).Str("key", e.Key).Msg("could not read evolution cache, starting empty")
		return nil, errors.Wrap(types.ErrStorageUnavailable, err.Error())
	}
	if !ok {
		return nil, nil
	}

	snap, err := types.DecodeSnapshot(raw)
	if err != nil {
		e.Metrics.SnapshotRejected()
		e.Logger.Warn().Err(err).Str("key", e.Key).Msg("ignoring malformed evolution cache")
		return nil, err
	}

	now := e.Clock.Now()
	if e.Expiration.IsExpired(snap.WrittenAt(), now) {
		e.Metrics.Expire()
		e.Logger.Debug().
			Str("key", e.Key).
			Time("written_at", snap.WrittenAt()).
			Dur("age", now.Sub(snap.WrittenAt())).
			Msg("evolution cache expired, removing")
		if err := e.Backend.RemoveItem(ctx, e.Key); err != nil {
			e.Logger.Warn().Err(err).Str("key", e.Key).Msg("could not remove expired evolution cache")
		}
		return nil, types.ErrExpiredSnapshot
	}

	entries, skipped := snap.Entries()
	if len(skipped) > 0 {
		e.Logger.Warn().Strs("keys", skipped).Msg("skipping non-integer ids in evolution cache")
	}
	return entries, nil
}

// Close shuts the write policy down.
func (e *CacheEngine) Close() {
	if e.WritePolicy != nil {
		e.WritePolicy.Close()
	}
}
