// Package prom exports cache.Metrics signals as Prometheus metrics.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/IvanBrykalov/zonecache/cache"
)

// Adapter implements cache.Metrics and exports Prometheus counters/gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	promotes  prometheus.Counter
	evicts    prometheus.Counter
	coalesced prometheus.Counter
	size      prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	counter := func(name, help string) prometheus.Counter {
		return f.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
	}
	return &Adapter{
		hits:      counter("hits_total", "Lookups that found the key."),
		misses:    counter("misses_total", "Lookups that did not find the key."),
		promotes:  counter("promotions_total", "Hits that moved a probation entry into the hot zone."),
		evicts:    counter("evictions_total", "Entries evicted from the probation end."),
		coalesced: counter("coalesced_loads_total", "GetOrLoad calls that shared an in-flight load."),
		size: f.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "size_entries",
			Help:        "Number of resident entries.",
			ConstLabels: constLabels,
		}),
	}
}

func (a *Adapter) Hit()       { a.hits.Inc() }
func (a *Adapter) Miss()      { a.misses.Inc() }
func (a *Adapter) Promote()   { a.promotes.Inc() }
func (a *Adapter) Evict()     { a.evicts.Inc() }
func (a *Adapter) Coalesced() { a.coalesced.Inc() }

// Size updates the resident-entries gauge.
func (a *Adapter) Size(entries int) { a.size.Set(float64(entries)) }

// Compile-time check: ensure Adapter implements cache.Metrics.
var _ cache.Metrics = (*Adapter)(nil)
