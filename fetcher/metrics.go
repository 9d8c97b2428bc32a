package fetcher

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the page fetcher.
type Metrics struct {
	Registry           *prometheus.Registry
	FetchesTotal       *prometheus.CounterVec
	FetchDuration      prometheus.Histogram
	FetchErrorsTotal   *prometheus.CounterVec
	CacheHitsTotal     prometheus.Counter
	RankingsFoundTotal prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	fetches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bsr_fetches_total",
			Help: "Total product page fetches by phase.",
		},
		[]string{"phase"},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bsr_fetch_duration_seconds",
			Help:    "Product page fetch latency.",
			Buckets: prometheus.DefBuckets,
		},
	)
	fetchErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bsr_fetch_errors_total",
			Help: "Total fetch failures by type.",
		},
		[]string{"error_type"},
	)
	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bsr_page_cache_hits_total",
			Help: "Fetches served from the in-memory page cache.",
		},
	)
	rankingsFound := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bsr_rankings_found_total",
			Help: "Total ranking entries extracted from product pages.",
		},
	)

	registry.MustRegister(fetches, fetchDuration, fetchErrors, cacheHits, rankingsFound)

	return &Metrics{
		Registry:           registry,
		FetchesTotal:       fetches,
		FetchDuration:      fetchDuration,
		FetchErrorsTotal:   fetchErrors,
		CacheHitsTotal:     cacheHits,
		RankingsFoundTotal: rankingsFound,
	}
}

// IncFetch increments the fetches counter for a phase.
func (m *Metrics) IncFetch(phase string) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(phase).Inc()
}

// ObserveDuration records a fetch duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.FetchErrorsTotal.WithLabelValues(errorType).Inc()
}

// IncCacheHit increments the page cache hit counter.
func (m *Metrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

// AddRankings records ranking entries extracted from one page.
func (m *Metrics) AddRankings(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RankingsFoundTotal.Add(float64(n))
}
