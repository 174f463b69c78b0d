// Package lists implements the small persisted lists of the app: the
// capture list and the comparison list.
package lists

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/moonsters/evolution-cache/eviction"
	"github.com/moonsters/evolution-cache/storage"
	"github.com/moonsters/evolution-cache/types"
)

const (
	CaptureListLimit = 5
	CaptureListKey   = "moonsterCaptureList"

	ComparisonListLimit = 2
	ComparisonListKey   = "moonsterComparisonList"
)

var (
	ErrListFull  = errors.New("list is full")
	ErrDuplicate = errors.New("already in list")
)

// Overflow says what Add does when the list is at its limit.
type Overflow int

const (
	// Reject refuses the new item with ErrListFull.
	Reject Overflow = iota
	// Evict drops an item chosen by the eviction policy.
	Evict
)

type Config struct {
	Key      string
	Limit    int
	Overflow Overflow
	// Policy is only used with Evict. Defaults to FIFO.
	Policy eviction.PolicyType
}

// CaptureList holds up to five moonsters and refuses a sixth.
func CaptureList() Config {
	return Config{Key: CaptureListKey, Limit: CaptureListLimit, Overflow: Reject}
}

// ComparisonList holds two moonsters; adding a third pushes out the oldest.
func ComparisonList() Config {
	return Config{Key: ComparisonListKey, Limit: ComparisonListLimit, Overflow: Evict, Policy: eviction.FIFO}
}

/*
List is a capped, ordered list of moonsters written through to storage on
every change. Like the evolution cache it never fails because of storage:
a nil backend keeps it in memory, and bad stored data is ignored.
*/
type List struct {
	cfg     Config
	backend storage.Backend
	metrics types.Metrics
	logger  zerolog.Logger

	mu     sync.Mutex
	items  []types.Moonster
	policy eviction.Policy[int]
}

type Option func(*List)

func WithLogger(l zerolog.Logger) Option {
	return func(li *List) { li.logger = l }
}

func WithMetrics(m types.Metrics) Option {
	return func(li *List) { li.metrics = m }
}

func New(cfg Config, backend storage.Backend, opts ...Option) *List {
	if cfg.Limit <= 0 {
		cfg.Limit = 1
	}
	if cfg.Policy == "" {
		cfg.Policy = eviction.FIFO
	}
	l := &List{
		cfg:     cfg,
		backend: backend,
		metrics: types.NoopMetrics{},
		logger:  log.Logger,
		policy:  eviction.New[int](cfg.Policy),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With().Str("component", "list").Str("key", cfg.Key).Logger()
	return l
}

// Limit returns the maximum number of items.
func (l *List) Limit() int {
	return l.cfg.Limit
}

/*
Load replaces the in-memory items with the stored list.
Stored lists longer than the limit are truncated to their first items.
*/
func (l *List) Load(ctx context.Context) {
	if l.backend == nil {
		return
	}
	raw, ok, err := l.backend.GetItem(ctx, l.cfg.Key)
	if err != nil {
		l.logger.Warn().Err(err).Msg("could not read list, starting empty")
		return
	}
	if !ok {
		return
	}
	var items []types.Moonster
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		l.metrics.SnapshotRejected()
		l.logger.Warn().Err(err).Msg("ignoring malformed list")
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = l.items[:0]
	l.policy = eviction.New[int](l.cfg.Policy)
	for _, m := range items {
		if len(l.items) == l.cfg.Limit {
			break
		}
		if l.indexOf(m.ID) >= 0 {
			continue
		}
		l.items = append(l.items, m)
		l.policy.OnPut(m.ID)
	}
}

/*
Add appends m.

It returns ErrDuplicate if an item with the same id is present, and
ErrListFull if the list is full and configured to Reject.
*/
func (l *List) Add(ctx context.Context, m types.Moonster) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.indexOf(m.ID) >= 0 {
		return errors.Wrapf(ErrDuplicate, "moonster %d", m.ID)
	}
	if len(l.items) >= l.cfg.Limit {
		if l.cfg.Overflow == Reject {
			return errors.Wrapf(ErrListFull, "limit %d", l.cfg.Limit)
		}
		victim, ok := l.policy.Evict()
		if ok {
			l.removeAt(l.indexOf(victim))
			l.metrics.Eviction()
			l.logger.Debug().Int("evicted", victim).Int("added", m.ID).Msg("list full, evicted")
		}
	}

	l.items = append(l.items, m)
	l.policy.OnPut(m.ID)
	l.persist(ctx)
	return nil
}

// Remove drops the item with id and reports whether it was there.
func (l *List) Remove(ctx context.Context, id int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return false
	}
	l.removeAt(i)
	l.policy.Remove(id)
	l.persist(ctx)
	return true
}

// Contains reports whether id is in the list. It counts as a use for LRU/LFU.
func (l *List) Contains(id int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.indexOf(id) < 0 {
		return false
	}
	l.policy.OnGet(id)
	return true
}

// Items returns a copy of the items in insertion order.
func (l *List) Items() []types.Moonster {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.items)
}

func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

func (l *List) Full() bool {
	return l.Len() >= l.cfg.Limit
}

// Clear empties the list and its stored copy.
func (l *List) Clear(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = nil
	l.policy = eviction.New[int](l.cfg.Policy)
	if l.backend == nil {
		return
	}
	if err := l.backend.RemoveItem(ctx, l.cfg.Key); err != nil {
		l.logger.Error().Err(err).Msg("could not clear stored list")
	}
}

func (l *List) indexOf(id int) int {
	return slices.IndexFunc(l.items, func(m types.Moonster) bool { return m.ID == id })
}

func (l *List) removeAt(i int) {
	if i < 0 {
		return
	}
	l.items = slices.Delete(l.items, i, i+1)
}

// persist must be called with mu held.
func (l *List) persist(ctx context.Context) {
	if l.backend == nil {
		return
	}
	items := l.items
	if items == nil {
		items = []types.Moonster{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		l.metrics.PersistFailed()
		l.logger.Error().Err(err).Msg("could not encode list")
		return
	}
	if err := l.backend.SetItem(ctx, l.cfg.Key, string(raw)); err != nil {
		l.metrics.PersistFailed()
		l.logger.Error().Err(err).Msg("could not persist list")
		return
	}
	l.metrics.Persisted()
}
