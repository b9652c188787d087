package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"wiltd/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncPageLoads(direction string)
	IncPageLoadErrors(direction string)
	ObserveUpsertDuration(duration time.Duration)
	SetRecordsTotal(table string, count int)
}

type MetricsProvider struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	pageLoads       *prometheus.CounterVec
	pageLoadErrors  *prometheus.CounterVec
	upsertDuration  prometheus.Histogram
	recordsTotal    *prometheus.GaugeVec
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

func (m *MetricsProvider) IncPageLoads(direction string) {
	m.pageLoads.WithLabelValues(direction).Inc()
}

func (m *MetricsProvider) IncPageLoadErrors(direction string) {
	m.pageLoadErrors.WithLabelValues(direction).Inc()
}

func (m *MetricsProvider) ObserveUpsertDuration(duration time.Duration) {
	m.upsertDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) SetRecordsTotal(table string, count int) {
	m.recordsTotal.WithLabelValues(table).Set(float64(count))
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
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wiltd_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wiltd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wiltd_cache_hits_total",
			Help: "Total number of response cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wiltd_cache_misses_total",
			Help: "Total number of response cache misses",
		}),

		pageLoads: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wiltd_page_loads_total",
			Help: "Total number of remote history page loads",
		}, []string{"direction"}),

		pageLoadErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wiltd_page_load_errors_total",
			Help: "Total number of failed remote history page loads",
		}, []string{"direction"}),

		upsertDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "wiltd_upsert_duration_seconds",
			Help:    "Duration of store batch upserts in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		recordsTotal: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wiltd_records_total",
			Help: "Total number of cached records per table",
		}, []string{"table"}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncPageLoads(_ string)                            {}
func (n *noopMetrics) IncPageLoadErrors(_ string)                       {}
func (n *noopMetrics) ObserveUpsertDuration(_ time.Duration)            {}
func (n *noopMetrics) SetRecordsTotal(_ string, _ int)                  {}
