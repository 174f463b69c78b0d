package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/moonsters/evolution-cache/types"
)

// Prometheus counts cache and list events.
type Prometheus struct {
	Hits              prometheus.Counter
	Misses            prometheus.Counter
	Expirations       prometheus.Counter
	Evictions         prometheus.Counter
	Writes            *prometheus.CounterVec
	RejectedSnapshots prometheus.Counter
}

var _ types.Metrics = &Prometheus{}

// NewPrometheus registers the counters on reg. Pass prometheus.DefaultRegisterer
// to expose them on the default /metrics handler.
func NewPrometheus(reg prometheus.Registerer, namespace string) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		Hits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Evolution lookups served from memory",
		}),
		Misses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Evolution lookups not found in memory",
		}),
		Expirations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_expirations_total",
			Help:      "Persisted snapshots discarded for being older than the expiry window",
		}),
		Evictions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "list_evictions_total",
			Help:      "Items dropped from full lists",
		}),
		Writes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_writes_total",
			Help:      "Write-through attempts by result",
		}, []string{"result"}),
		RejectedSnapshots: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_rejected_total",
			Help:      "Stored values that could not be decoded",
		}),
	}
}

func (p *Prometheus) Hit()              { p.Hits.Inc() }
func (p *Prometheus) Miss()             { p.Misses.Inc() }
func (p *Prometheus) Expire()           { p.Expirations.Inc() }
func (p *Prometheus) Eviction()         { p.Evictions.Inc() }
func (p *Prometheus) Persisted()        { p.Writes.WithLabelValues("ok").Inc() }
func (p *Prometheus) PersistFailed()    { p.Writes.WithLabelValues("error").Inc() }
func (p *Prometheus) SnapshotRejected() { p.RejectedSnapshots.Inc() }
