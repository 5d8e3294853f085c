// Package metrics provides Prometheus metrics for the tutormatch service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values shared by callers.
const (
	OutcomeEnqueued  = "enqueued"
	OutcomeDuplicate = "duplicate"
	OutcomeRejected  = "rejected"

	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Match scores live in [0,100] under the canonical policy.
var scoreBuckets = []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100} //nolint:gochecknoglobals // fixed bucket layout

// Manager manages all Prometheus metrics for the tutormatch service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	constLabels    map[string]string
	enabled        bool
	registry       prometheus.Registerer

	// Matching
	profilesUpserted     prometheus.Counter
	profilesTotal        prometheus.Gauge
	matchScores          prometheus.Histogram
	rankLatency          prometheus.Histogram
	suggestionsGenerated prometheus.Counter

	// Recompute pipeline
	recomputeRequests *prometheus.CounterVec
	recomputeLatency  prometheus.Histogram
	recomputeErrors   prometheus.Counter
	queueSize         prometheus.Gauge
	queueCapacity     prometheus.Gauge
	workerCount       prometheus.Gauge
	workerActive      prometheus.Gauge

	// Storage
	cacheRequests *prometheus.CounterVec
	storeLatency  *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	rateLimited         prometheus.Counter

	errors *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "tutormatch",
		subsystem:      "matching",
		latencyBuckets: prometheus.DefBuckets,
		enabled:        true,
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.profilesUpserted = auto.NewCounter(m.counterOpts("profiles_upserted_total", "Total number of profile writes"))
	m.profilesTotal = auto.NewGauge(m.gaugeOpts("profiles", "Number of stored profiles"))
	m.matchScores = auto.NewHistogram(m.histogramOpts("match_score", "Distribution of computed match scores", scoreBuckets))
	m.rankLatency = auto.NewHistogram(m.histogramOpts("rank_latency_milliseconds", "Latency of live ranking in milliseconds", m.latencyBuckets))
	m.suggestionsGenerated = auto.NewCounter(m.counterOpts("suggestions_generated_total", "Total number of suggestions persisted"))

	m.recomputeRequests = auto.NewCounterVec(
		m.counterOpts("recompute_requests_total", "Recompute requests by outcome"),
		[]string{"outcome"},
	)
	m.recomputeLatency = auto.NewHistogram(m.histogramOpts("recompute_latency_milliseconds", "Time to regenerate one profile's suggestions", m.latencyBuckets))
	m.recomputeErrors = auto.NewCounter(m.counterOpts("recompute_errors_total", "Recomputes that failed"))
	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Pending recompute requests"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Capacity of the recompute queue"))
	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Configured recompute workers"))
	m.workerActive = auto.NewGauge(m.gaugeOpts("worker_active", "Workers currently recomputing"))

	m.cacheRequests = auto.NewCounterVec(
		m.counterOpts("cache_requests_total", "Suggestion cache lookups by result"),
		[]string{"result"},
	)
	m.storeLatency = auto.NewHistogramVec(
		m.histogramOpts("store_latency_milliseconds", "Storage operation latency in milliseconds", m.latencyBuckets),
		[]string{"operation"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.latencyBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.rateLimited = auto.NewCounter(m.counterOpts("rate_limited_total", "Requests rejected by the rate limiter"))

	m.errors = auto.NewCounterVec(
		m.counterOpts("errors_total", "Errors by component and type"),
		[]string{"component", "type"},
	)
}

// RecordProfileUpsert counts a profile write.
func RecordProfileUpsert() {
	if globalManager.enabled {
		globalManager.profilesUpserted.Inc()
	}
}

// UpdateProfileCount sets the stored profile gauge.
func UpdateProfileCount(count int) {
	if globalManager.enabled {
		globalManager.profilesTotal.Set(float64(count))
	}
}

// RecordMatchScore observes a computed score.
func RecordMatchScore(score float64) {
	if globalManager.enabled {
		globalManager.matchScores.Observe(score)
	}
}

// RecordRankLatency records live ranking latency in milliseconds.
func RecordRankLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.rankLatency.Observe(latencyMs)
	}
}

// RecordSuggestionsGenerated adds n persisted suggestions.
func RecordSuggestionsGenerated(n int) {
	if globalManager.enabled && n > 0 {
		globalManager.suggestionsGenerated.Add(float64(n))
	}
}

// RecordRecomputeRequest counts a recompute request by outcome.
func RecordRecomputeRequest(outcome string) {
	if globalManager.enabled {
		globalManager.recomputeRequests.WithLabelValues(outcome).Inc()
	}
}

// RecordRecomputeLatency records how long a recompute took.
func RecordRecomputeLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.recomputeLatency.Observe(latencyMs)
	}
}

// RecordRecomputeError counts a failed recompute.
func RecordRecomputeError() {
	if globalManager.enabled {
		globalManager.recomputeErrors.Inc()
	}
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	if globalManager.enabled {
		globalManager.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	if globalManager.enabled {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	if globalManager.enabled {
		globalManager.workerCount.Set(float64(count))
	}
}

// AddWorkerActive moves the busy-worker gauge by delta.
func AddWorkerActive(delta int) {
	if globalManager.enabled {
		globalManager.workerActive.Add(float64(delta))
	}
}

// RecordCacheRequest counts a suggestion cache lookup by result.
func RecordCacheRequest(result string) {
	if globalManager.enabled {
		globalManager.cacheRequests.WithLabelValues(result).Inc()
	}
}

// RecordStoreLatency records a storage operation's latency.
func RecordStoreLatency(operation string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.storeLatency.WithLabelValues(operation).Observe(latencyMs)
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// RecordRateLimited counts a request rejected by the limiter.
func RecordRateLimited() {
	if globalManager.enabled {
		globalManager.rateLimited.Inc()
	}
}

// RecordError records an error with component and type labels.
func RecordError(component, errorType string) {
	if globalManager.enabled {
		globalManager.errors.WithLabelValues(component, errorType).Inc()
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
