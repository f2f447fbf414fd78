package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/erazemk/obras/internal/store"
)

// Recorder holds the inventory collectors on its own registry.
type Recorder struct {
	Registry *prometheus.Registry

	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	sites      prometheus.Counter
	movements  prometheus.Counter
	cache      *prometheus.CounterVec
}

// New creates a Recorder and registers its collectors, plus the Go runtime
// and process collectors, on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		Registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "obras",
			Name:      "operations_total",
			Help:      "Store operations by name and result kind.",
		}, []string{"operation", "result"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "obras",
			Name:      "operation_duration_seconds",
			Help:      "Store operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		sites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "obras",
			Name:      "sites_created_total",
			Help:      "Sites created on first reference.",
		}),
		movements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "obras",
			Name:      "movements_registered_total",
			Help:      "Movements committed to the ledger.",
		}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "obras",
			Name:      "cache_lookups_total",
			Help:      "Read cache lookups by result.",
		}, []string{"result"}),
	}
	r.Registry.MustRegister(
		r.operations, r.durations, r.sites, r.movements, r.cache,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Observe records the outcome of one store operation.
func (r *Recorder) Observe(_ context.Context, operation string, err error, duration time.Duration) {
	if r == nil || operation == "" {
		return
	}
	r.operations.WithLabelValues(operation, Result(err)).Inc()
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// SiteCreated counts a site created by resolution.
func (r *Recorder) SiteCreated() {
	if r != nil {
		r.sites.Inc()
	}
}

// MovementRegistered counts a committed movement.
func (r *Recorder) MovementRegistered() {
	if r != nil {
		r.movements.Inc()
	}
}

// CacheHit counts a read served from the cache.
func (r *Recorder) CacheHit() {
	if r != nil {
		r.cache.WithLabelValues("hit").Inc()
	}
}

// CacheMiss counts a read that went to the store.
func (r *Recorder) CacheMiss() {
	if r != nil {
		r.cache.WithLabelValues("miss").Inc()
	}
}

// Result maps an operation error to its metric label.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, store.ErrValidation):
		return "validation"
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, store.ErrUniquenessConflict):
		return "conflict"
	default:
		return "persistence"
	}
}
