// Package telemetry exposes Prometheus metrics for cache usage, external
// lookups and rhyme tiers. Metrics live on a private registry so batch runs
// can dump them to a textfile and the server can serve them on /metrics.
package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lyriceval"

// Metrics groups the collectors of one process.
type Metrics struct {
	registry      *prometheus.Registry
	cacheLookups  *prometheus.CounterVec
	lookups       *prometheus.CounterVec
	lookupLatency *prometheus.HistogramVec
	stanzas       *prometheus.CounterVec
	songs         prometheus.Counter
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by cache and result.",
		}, []string{"cache", "result"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "service_lookups_total",
			Help:      "External service lookups by service and outcome.",
		}, []string{"service", "outcome"}),
		lookupLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "service_lookup_duration_seconds",
			Help:      "Latency of external service lookups.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service"}),
		stanzas: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stanzas_total",
			Help:      "Scored stanzas by rhyme tier.",
		}, []string{"tier"}),
		songs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "songs_evaluated_total",
			Help:      "Songs evaluated.",
		}),
	}

	m.registry.MustRegister(m.cacheLookups, m.lookups, m.lookupLatency, m.stanzas, m.songs)
	return m
}

// CacheLookup records a cache hit or miss.
func (m *Metrics) CacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(cache, result).Inc()
}

// ObserveLookup records one external lookup.
func (m *Metrics) ObserveLookup(service, outcome string, elapsed time.Duration) {
	m.lookups.WithLabelValues(service, outcome).Inc()
	m.lookupLatency.WithLabelValues(service).Observe(elapsed.Seconds())
}

// StanzaScored records the tier of a counted stanza.
func (m *Metrics) StanzaScored(tier string) {
	m.stanzas.WithLabelValues(tier).Inc()
}

// SongEvaluated counts a finished song.
func (m *Metrics) SongEvaluated() {
	m.songs.Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the current values in textfile-collector format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
