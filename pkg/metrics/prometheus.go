package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Ingestion
	profilesIngested     prometheus.Counter
	profilesRejected     prometheus.Counter
	transitionsExtracted prometheus.Counter
	transitionsDuplicate prometheus.Counter
	transitionsPublished prometheus.Counter
	ingestLatency        prometheus.Histogram
	dataGeneration       prometheus.Gauge
	graphCompanies       prometheus.Gauge
	graphEmployees       prometheus.Gauge
	graphProjectionEdges prometheus.Gauge

	// Ranking and flow
	rankingRuns         *prometheus.CounterVec
	rankingNonConverged *prometheus.CounterVec
	rankingLatency      *prometheus.HistogramVec
	rankingIterations   *prometheus.HistogramVec
	flowQueries         prometheus.Counter
	signalQueries       prometheus.Counter

	// Stores and cache
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec
	cacheHits    *prometheus.CounterVec
	cacheMisses  *prometheus.CounterVec

	// Queue and workers
	queueSize               prometheus.Gauge
	queueCapacity           prometheus.Gauge
	queueEnqueued           prometheus.Counter
	queueDequeued           prometheus.Counter
	queueEnqueueErrors      prometheus.Counter
	workerCount             prometheus.Gauge
	workerActive            prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "talentflow",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: buckets,
	}, labels)
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	iterationBuckets := []float64{1, 5, 10, 20, 40, 60, 80, 100}

	m.profilesIngested = m.counter("profiles_ingested_total", "Profiles accepted by ingestion")
	m.profilesRejected = m.counter("profiles_rejected_total", "Profiles rejected with a validation error")
	m.transitionsExtracted = m.counter("transitions_extracted_total", "Transition events extracted from experience lists")
	m.transitionsDuplicate = m.counter("transitions_duplicate_total", "Transition events skipped as already stored")
	m.transitionsPublished = m.counter("transitions_published_total", "Transition events published to the message bus")
	m.ingestLatency = m.histogram("ingest_latency_milliseconds", "Batch ingestion latency in milliseconds", m.histogramBuckets)
	m.dataGeneration = m.gauge("data_generation", "Monotonic counter bumped by every ingest that changed stored data")
	m.graphCompanies = m.gauge("graph_companies", "Companies in the bipartite graph")
	m.graphEmployees = m.gauge("graph_employees", "Employees in the bipartite graph")
	m.graphProjectionEdges = m.gauge("graph_projection_edges", "Weighted company to company edges in the projection")

	m.rankingRuns = m.counterVec("ranking_runs_total", "Ranking runs by algorithm", "algorithm")
	m.rankingNonConverged = m.counterVec("ranking_non_converged_total", "Ranking runs that hit the iteration cap", "algorithm")
	m.rankingLatency = m.histogramVec("ranking_latency_milliseconds", "Ranking latency in milliseconds", m.histogramBuckets, "algorithm")
	m.rankingIterations = m.histogramVec("ranking_iterations", "Iterations used by a ranking run", iterationBuckets, "algorithm")
	m.flowQueries = m.counter("flow_queries_total", "Talent-flow metric queries")
	m.signalQueries = m.counter("signal_queries_total", "Investment signal queries")

	m.storeLatency = m.histogramVec("store_latency_milliseconds", "Backing store operation latency", m.histogramBuckets, "store", "op")
	m.storeErrors = m.counterVec("store_errors_total", "Backing store operation failures", "store", "op")
	m.cacheHits = m.counterVec("cache_hits_total", "Cache hits", "cache")
	m.cacheMisses = m.counterVec("cache_misses_total", "Cache misses", "cache")

	m.queueSize = m.gauge("queue_size", "Ingest jobs waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Ingest queue capacity")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Ingest jobs enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Ingest jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Ingest jobs rejected by a full or closed queue")
	m.workerCount = m.gauge("worker_count", "Configured ingest workers")
	m.workerActive = m.gauge("worker_active", "Workers currently running a job")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Job processing latency in milliseconds", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Jobs that finished with an error")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		m.histogramBuckets, "endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and type", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes in use")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
}

// Ingestion.

// RecordProfilesIngested adds accepted profiles.
func RecordProfilesIngested(n int) { globalManager.profilesIngested.Add(float64(n)) }

// RecordProfilesRejected adds rejected profiles.
func RecordProfilesRejected(n int) { globalManager.profilesRejected.Add(float64(n)) }

// RecordTransitionsExtracted adds extracted transitions.
func RecordTransitionsExtracted(n int) { globalManager.transitionsExtracted.Add(float64(n)) }

// RecordTransitionsDuplicate adds transitions skipped as duplicates.
func RecordTransitionsDuplicate(n int) { globalManager.transitionsDuplicate.Add(float64(n)) }

// RecordTransitionsPublished adds published transitions.
func RecordTransitionsPublished(n int) { globalManager.transitionsPublished.Add(float64(n)) }

// RecordIngestLatency records batch ingestion latency.
func RecordIngestLatency(latencyMs float64) { globalManager.ingestLatency.Observe(latencyMs) }

// UpdateDataGeneration sets the current data generation.
func UpdateDataGeneration(gen uint64) { globalManager.dataGeneration.Set(float64(gen)) }

// UpdateGraphSize sets the graph size gauges.
func UpdateGraphSize(companies, employees, projectionEdges int) {
	globalManager.graphCompanies.Set(float64(companies))
	globalManager.graphEmployees.Set(float64(employees))
	globalManager.graphProjectionEdges.Set(float64(projectionEdges))
}

// Ranking and flow.

// RecordRankingRun records one ranking run.
func RecordRankingRun(algorithm string, latencyMs float64, iterations int, converged bool) {
	globalManager.rankingRuns.WithLabelValues(algorithm).Inc()
	globalManager.rankingLatency.WithLabelValues(algorithm).Observe(latencyMs)
	globalManager.rankingIterations.WithLabelValues(algorithm).Observe(float64(iterations))
	if !converged {
		globalManager.rankingNonConverged.WithLabelValues(algorithm).Inc()
	}
}

// RecordFlowQuery increments the flow query counter.
func RecordFlowQuery() { globalManager.flowQueries.Inc() }

// RecordSignalQuery increments the signal query counter.
func RecordSignalQuery() { globalManager.signalQueries.Inc() }

// Stores and cache.

// RecordStoreOperation records latency of a store operation and counts failures.
func RecordStoreOperation(store, op string, latencyMs float64, err error) {
	globalManager.storeLatency.WithLabelValues(store, op).Observe(latencyMs)
	if err != nil {
		globalManager.storeErrors.WithLabelValues(store, op).Inc()
	}
}

// RecordCacheHit increments hits for the named cache.
func RecordCacheHit(cache string) { globalManager.cacheHits.WithLabelValues(cache).Inc() }

// RecordCacheMiss increments misses for the named cache.
func RecordCacheMiss(cache string) { globalManager.cacheMisses.WithLabelValues(cache).Inc() }

// Queue.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// Workers.

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// AddWorkerActive moves the active worker gauge by delta.
func AddWorkerActive(delta int) { globalManager.workerActive.Add(float64(delta)) }

// RecordWorkerProcessingLatency records job processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// System.

// UpdateSystemMemoryUsage sets heap bytes in use.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
