package providers

import (
	"citystate/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	IncStoreFailures(op string)
	IncMigrations(key string)
	SetEventsTotal(count int)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	storeFailures       *prometheus.CounterVec
	migrations          *prometheus.CounterVec
	eventsTotal         prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncStoreFailures(op string) {
	m.storeFailures.WithLabelValues(op).Inc()
}

func (m *MetricsProvider) IncMigrations(key string) {
	m.migrations.WithLabelValues(key).Inc()
}

func (m *MetricsProvider) SetEventsTotal(count int) {
	m.eventsTotal.Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	return newMetricsProvider(conf, prometheus.DefaultRegisterer)
}

func newMetricsProvider(conf *structures.Config, reg prometheus.Registerer) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "citystate_requests_total",
			Help: "Total number of bridge requests",
		}, []string{"endpoint", "status"}),

		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "citystate_request_duration_seconds",
			Help:    "Bridge request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "citystate_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "citystate_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "citystate_persistence_duration_seconds",
			Help:    "Duration of store writes in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		storeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "citystate_store_failures_total",
			Help: "Store operations that fell back to defaults or dropped a write",
		}, []string{"op"}),

		migrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "citystate_migrations_total",
			Help: "Records rewritten by the migration runner",
		}, []string{"key"}),

		eventsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "citystate_analytics_events",
			Help: "Current length of the analytics log",
		}),
	}

	reg.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.cacheHits,
		m.cacheMisses,
		m.persistenceDuration,
		m.storeFailures,
		m.migrations,
		m.eventsTotal,
	)

	return m
}

// noopMetrics is used when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) IncStoreFailures(_ string)                        {}
func (n *noopMetrics) IncMigrations(_ string)                           {}
func (n *noopMetrics) SetEventsTotal(_ int)                             {}
