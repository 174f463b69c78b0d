package cache

import (
	"context"
	"slices"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/moonsters/evolution-cache/engine"
	"github.com/moonsters/evolution-cache/expiration"
	"github.com/moonsters/evolution-cache/storage"
	"github.com/moonsters/evolution-cache/store"
	"github.com/moonsters/evolution-cache/types"
)

/*
EvolutionCache keeps evolution records of entities in memory and writes every
change through to storage so the next session can pick them up with Load.

This struct connects:
- the copy-on-write entry store (what is cached)
- the engine (how it reaches storage, expiry, metrics)

It is best-effort by contract: none of its operations fail. A storage problem
only ever turns into a cache miss or a skipped write.
*/
type EvolutionCache struct {
	entries *store.COWStore[int, types.EvolutionRecord]
	engine  *engine.CacheEngine

	// mu serializes writers so each persisted snapshot matches the store
	// state at the time of the write. Readers never take it.
	mu sync.Mutex
}

type options struct {
	key     string
	clock   clockwork.Clock
	logger  *zerolog.Logger
	metrics types.Metrics
}

// Option configures an EvolutionCache.
type Option func(*options)

// WithStorageKey overrides types.DefaultStorageKey.
func WithStorageKey(key string) Option {
	return func(o *options) { o.key = key }
}

func WithClock(c clockwork.Clock) Option {
	return func(o *options) { o.clock = c }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = &l }
}

func WithMetrics(m types.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

/*
NewEvolutionCache creates an empty cache on top of backend.

The backend is probed once here. A nil backend, or one that fails the probe,
puts the cache in in-memory-only mode for its whole lifetime; that is logged
once and never again.
*/
func NewEvolutionCache(ctx context.Context, backend storage.Backend, opts ...Option) *EvolutionCache {
	o := options{key: types.DefaultStorageKey}
	for _, opt := range opts {
		opt(&o)
	}
	logger := log.Logger
	if o.logger != nil {
		logger = *o.logger
	}
	logger = logger.With().Str("component", "evolution-cache").Logger()

	if backend == nil {
		logger.Warn().Err(types.ErrStorageUnavailable).Msg("no storage configured, evolution cache is in-memory only")
	} else if err := storage.Probe(ctx, backend); err != nil {
		logger.Warn().Err(err).Msg("storage unavailable, evolution cache is in-memory only")
		backend = nil
	}

	return &EvolutionCache{
		entries: store.NewCOWStore[int, types.EvolutionRecord](),
		engine:  engine.NewCacheEngine(backend, o.key, expiration.FixedWindow{Window: types.ExpiryWindow}, o.metrics, o.clock, logger),
	}
}

// Persistent reports whether the cache writes through to storage.
func (c *EvolutionCache) Persistent() bool {
	return c.engine.Persistent()
}

/*
Get returns the cached record for id.

The returned record is a copy; changing it does not change the cache.
Get never loads from storage and never fetches.
*/
func (c *EvolutionCache) Get(id int) (types.EvolutionRecord, bool) {
	rec, ok := c.entries.Get(id)
	if !ok {
		c.engine.Metrics.Miss()
		return types.EvolutionRecord{}, false
	}
	c.engine.Metrics.Hit()
	return rec.Clone(), true
}

// Has reports whether id is cached.
func (c *EvolutionCache) Has(id int) bool {
	_, ok := c.entries.Get(id)
	return ok
}

/*
Set stores record under id, replacing any previous record, and then writes
the entire cache through to storage before returning.

A failed write is logged and counted; the in-memory entry stays.
*/
func (c *EvolutionCache) Set(ctx context.Context, id int, record types.EvolutionRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries.Put(id, record.Clone())
	c.engine.Persist(ctx, c.entries.Snapshot())
}

/*
Load restores a persisted snapshot into memory.

- No storage: nothing happens.
- Nothing stored: nothing happens.
- Fresh snapshot: its entries are merged over the in-memory ones.
- Expired snapshot: the storage key is removed, memory is untouched.
- Malformed snapshot: logged and ignored, memory is untouched.

It has to be called explicitly; a new cache does not see persisted data
until it is.
*/
func (c *EvolutionCache) Load(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	restored, err := c.engine.Restore(ctx)
	if err != nil || len(restored) == 0 {
		return
	}
	c.entries.PutAll(restored)
	c.engine.Logger.Debug().Int("entries", len(restored)).Msg("evolution cache restored")
}

// Len returns the number of cached records.
func (c *EvolutionCache) Len() int {
	return c.entries.Size()
}

// IDs returns the cached ids in ascending order.
func (c *EvolutionCache) IDs() []int {
	snap := c.entries.Snapshot()
	ids := make([]int, 0, len(snap))
	for id := range snap {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Close releases the engine. The cache must not be used afterwards.
func (c *EvolutionCache) Close() {
	c.engine.Close()
}
