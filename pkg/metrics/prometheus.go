// Package metrics provides Prometheus metrics for the workforce analytics service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector registered by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ingestion
	rowsIngested   *prometheus.CounterVec
	rowsDuplicate  *prometheus.CounterVec
	rowsSkipped    *prometheus.CounterVec
	rowsRepaired   *prometheus.CounterVec
	ingestLatency  *prometheus.HistogramVec
	recordsLoaded  prometheus.Gauge
	staleDiscarded prometheus.Counter
	teamEntries    *prometheus.GaugeVec

	// Source fetching
	fetchTotal  *prometheus.CounterVec
	fetchErrors *prometheus.CounterVec

	// Alerts
	alertsGenerated *prometheus.CounterVec
	alertLatency    prometheus.Histogram

	// Document-store sync
	syncQueueSize     prometheus.Gauge
	syncQueueCapacity prometheus.Gauge
	syncJobs          *prometheus.CounterVec
	syncRecords       prometheus.Counter
	syncCollapsed     prometheus.Counter
	syncLatency       prometheus.Histogram
	syncWorkers       prometheus.Gauge

	// Narrative summary
	summaryRequests *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "workforce",
		subsystem:        "analytics",
		histogramBuckets: []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.rowsIngested = m.counterVec("rows_ingested_total", "Rows turned into canonical records", "kind")
	m.rowsDuplicate = m.counterVec("rows_duplicate_total", "Rows dropped by fingerprint deduplication", "kind")
	m.rowsSkipped = m.counterVec("rows_skipped_total", "Rows skipped for having fewer than two tokens", "kind")
	m.rowsRepaired = m.counterVec("rows_repaired_total", "Split decimal merges applied by column repair", "kind")
	m.ingestLatency = m.histogramVec("ingest_latency_milliseconds", "Time spent parsing one source", "kind")
	m.recordsLoaded = m.gauge("records_loaded", "Records in the active dataset")
	m.staleDiscarded = m.counter("stale_ingest_discarded_total", "Ingestion results discarded because a newer request superseded them")
	m.teamEntries = promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "team_entries",
		Help:      "Team configuration entries per layer",
	}, []string{"layer"})

	m.fetchTotal = m.counterVec("fetch_total", "Source fetches by outcome", "outcome")
	m.fetchErrors = m.counterVec("fetch_errors_total", "Source fetch failures by kind", "kind")

	m.alertsGenerated = m.counterVec("alerts_generated_total", "Alerts produced by the rule engine", "severity", "rule")
	m.alertLatency = m.histogram("alert_evaluation_milliseconds", "Alert evaluation latency")

	m.syncQueueSize = m.gauge("sync_queue_size", "Sync jobs waiting in the queue")
	m.syncQueueCapacity = m.gauge("sync_queue_capacity", "Sync queue capacity")
	m.syncJobs = m.counterVec("sync_jobs_total", "Sync jobs by outcome", "outcome")
	m.syncRecords = m.counter("sync_records_total", "Records written to the document store")
	m.syncCollapsed = m.counter("sync_records_collapsed_total", "Records dropped because an earlier record had the same document id")
	m.syncLatency = m.histogram("sync_latency_milliseconds", "Document store sync latency per job")
	m.syncWorkers = m.gauge("sync_workers", "Running sync workers")

	m.summaryRequests = m.counterVec("summary_requests_total", "Narrative summary requests by status", "status")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request latency", "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// Ingestion.

// RecordIngest records the counters of one parsed source.
func RecordIngest(kind string, ingested, duplicates, skipped, repaired int, latencyMs float64) {
	globalManager.rowsIngested.WithLabelValues(kind).Add(float64(ingested))
	globalManager.rowsDuplicate.WithLabelValues(kind).Add(float64(duplicates))
	globalManager.rowsSkipped.WithLabelValues(kind).Add(float64(skipped))
	globalManager.rowsRepaired.WithLabelValues(kind).Add(float64(repaired))
	globalManager.ingestLatency.WithLabelValues(kind).Observe(latencyMs)
}

// UpdateRecordsLoaded sets the active dataset size.
func UpdateRecordsLoaded(n int) {
	globalManager.recordsLoaded.Set(float64(n))
}

// RecordStaleDiscarded counts a superseded ingestion result.
func RecordStaleDiscarded() {
	globalManager.staleDiscarded.Inc()
}

// UpdateTeamEntries sets the entry count of a team configuration layer.
func UpdateTeamEntries(layer string, n int) {
	globalManager.teamEntries.WithLabelValues(layer).Set(float64(n))
}

// Fetching.

// RecordFetch counts a fetch outcome ("ok" or "error").
func RecordFetch(outcome string) {
	globalManager.fetchTotal.WithLabelValues(outcome).Inc()
}

// RecordFetchError counts a fetch failure by kind.
func RecordFetchError(kind string) {
	globalManager.fetchErrors.WithLabelValues(kind).Inc()
	globalManager.fetchTotal.WithLabelValues("error").Inc()
}

// Alerts.

// RecordAlert counts one generated alert.
func RecordAlert(severity, rule string) {
	globalManager.alertsGenerated.WithLabelValues(severity, rule).Inc()
}

// RecordAlertLatency records one evaluation latency.
func RecordAlertLatency(latencyMs float64) {
	globalManager.alertLatency.Observe(latencyMs)
}

// Sync.

// UpdateSyncQueueSize sets the number of queued sync jobs.
func UpdateSyncQueueSize(n int) {
	globalManager.syncQueueSize.Set(float64(n))
}

// UpdateSyncQueueCapacity sets the sync queue capacity.
func UpdateSyncQueueCapacity(n int) {
	globalManager.syncQueueCapacity.Set(float64(n))
}

// RecordSyncJob counts a sync job outcome ("enqueued", "rejected", "done", "failed").
func RecordSyncJob(outcome string) {
	globalManager.syncJobs.WithLabelValues(outcome).Inc()
}

// RecordSyncRecords adds to the number of records written.
func RecordSyncRecords(n int) {
	globalManager.syncRecords.Add(float64(n))
}

// RecordSyncCollapsed adds to the number of records that shared a document id.
func RecordSyncCollapsed(n int) {
	globalManager.syncCollapsed.Add(float64(n))
}

// RecordSyncLatency records the latency of one sync job.
func RecordSyncLatency(latencyMs float64) {
	globalManager.syncLatency.Observe(latencyMs)
}

// UpdateSyncWorkers sets the number of running sync workers.
func UpdateSyncWorkers(n int) {
	globalManager.syncWorkers.Set(float64(n))
}

// Summary.

// RecordSummaryRequest counts a summary request by status.
func RecordSummaryRequest(status string) {
	globalManager.summaryRequests.WithLabelValues(status).Inc()
}

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Errors.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System.

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
