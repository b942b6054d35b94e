// Package metrics provides Prometheus metrics for monitoring the advisor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Advising metrics
	QueriesTotal         *prometheus.CounterVec
	QueryDurationSeconds *prometheus.HistogramVec

	// Narrator (LLM) metrics
	NarratorRequestsTotal *prometheus.CounterVec
	NarratorCacheHits     prometheus.Counter
	NarratorCacheMisses   prometheus.Counter
	NarratorTokensTotal   *prometheus.CounterVec

	// Schedule metrics
	SchedulesTotal  prometheus.Counter
	ConflictsTotal  prometheus.Counter
	ModulesPerPlan  prometheus.Histogram

	// Catalog metrics
	CatalogCourses          prometheus.Gauge
	CatalogLecturers        prometheus.Gauge
	CatalogIntegrityIssues  *prometheus.CounterVec

	// Ingest metrics
	IngestRequestsTotal   *prometheus.CounterVec
	IngestDurationSeconds *prometheus.HistogramVec

	// Session metrics
	SessionsActive       prometheus.Gauge
	SessionsCreatedTotal prometheus.Counter

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec
	RateLimiterUsers   *prometheus.GaugeVec

	// Snapshot metrics
	SnapshotTotal           *prometheus.CounterVec
	SnapshotDurationSeconds prometheus.Histogram

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		QueriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_queries_total",
				Help: "Total number of advising queries by classified intent",
			},
			[]string{"intent"},
		),

		QueryDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "advisor_query_duration_seconds",
				Help:    "Advising query handling duration in seconds by intent",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
			},
			[]string{"intent"},
		),

		NarratorRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_narrator_requests_total",
				Help: "Total number of narrator calls by provider and status",
			},
			[]string{"provider", "status"}, // status: success, error, timeout, fallback
		),

		NarratorCacheHits: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "advisor_narrator_cache_hits_total",
				Help: "Total number of narrator response cache hits",
			},
		),

		NarratorCacheMisses: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "advisor_narrator_cache_misses_total",
				Help: "Total number of narrator response cache misses",
			},
		),

		NarratorTokensTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_narrator_tokens_total",
				Help: "Total narrator tokens consumed by provider and direction",
			},
			[]string{"provider", "direction"}, // direction: prompt, completion
		),

		SchedulesTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "advisor_schedules_generated_total",
				Help: "Total number of module schedules generated",
			},
		),

		ConflictsTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "advisor_timetable_conflicts_total",
				Help: "Total number of timetable conflicts detected",
			},
		),

		ModulesPerPlan: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "advisor_modules_per_plan",
				Help:    "Number of modules per generated schedule",
				Buckets: []float64{1, 2, 3, 4, 5, 6, 7},
			},
		),

		CatalogCourses: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "advisor_catalog_courses",
				Help: "Number of courses currently loaded in the catalog",
			},
		),

		CatalogLecturers: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "advisor_catalog_lecturers",
				Help: "Number of lecturers currently loaded in the catalog",
			},
		),

		CatalogIntegrityIssues: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_catalog_integrity_issues_total",
				Help: "Total number of catalog data integrity issues detected",
			},
			[]string{"issue_type"}, // issue_type: missing_id, empty_name, bad_type, etc.
		),

		IngestRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_ingest_requests_total",
				Help: "Total number of catalog ingest requests by source and status",
			},
			[]string{"source", "status"}, // status: success, error, timeout
		),

		IngestDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "advisor_ingest_duration_seconds",
				Help:    "Catalog ingest duration in seconds by source",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"source"}, // source: csv, html
		),

		SessionsActive: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "advisor_sessions_active",
				Help: "Number of live advising sessions",
			},
		),

		SessionsCreatedTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "advisor_sessions_created_total",
				Help: "Total number of advising sessions created",
			},
		),

		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_rate_limiter_dropped_total",
				Help: "Total number of requests dropped by rate limiter",
			},
			[]string{"limiter_type"}, // limiter_type: narrator, session
		),

		RateLimiterUsers: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "advisor_rate_limiter_users",
				Help: "Number of keys currently tracked by each rate limiter",
			},
			[]string{"limiter_type"},
		),

		SnapshotTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_snapshot_operations_total",
				Help: "Total number of snapshot operations by kind and status",
			},
			[]string{"operation", "status"}, // operation: upload, download
		),

		SnapshotDurationSeconds: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "advisor_snapshot_duration_seconds",
				Help:    "Snapshot upload/download duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
		),

		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_http_errors_total",
				Help: "Total HTTP errors by type and route",
			},
			[]string{"error_type", "route"},
		),
	}

	return m
}

// RecordQuery records a handled advising query
func (m *Metrics) RecordQuery(intent string, duration float64) {
	m.QueriesTotal.WithLabelValues(intent).Inc()
	m.QueryDurationSeconds.WithLabelValues(intent).Observe(duration)
}

// RecordNarratorRequest records a narrator call outcome
func (m *Metrics) RecordNarratorRequest(provider, status string) {
	m.NarratorRequestsTotal.WithLabelValues(provider, status).Inc()
}

// RecordNarratorCacheHit records a narrator cache hit
func (m *Metrics) RecordNarratorCacheHit() {
	m.NarratorCacheHits.Inc()
}

// RecordNarratorCacheMiss records a narrator cache miss
func (m *Metrics) RecordNarratorCacheMiss() {
	m.NarratorCacheMisses.Inc()
}

// AddNarratorTokens accumulates token usage for a provider
func (m *Metrics) AddNarratorTokens(provider string, prompt, completion int64) {
	m.NarratorTokensTotal.WithLabelValues(provider, "prompt").Add(float64(prompt))
	m.NarratorTokensTotal.WithLabelValues(provider, "completion").Add(float64(completion))
}

// RecordSchedule records a generated schedule and its module count
func (m *Metrics) RecordSchedule(modules int) {
	m.SchedulesTotal.Inc()
	m.ModulesPerPlan.Observe(float64(modules))
}

// RecordConflicts records detected timetable conflicts
func (m *Metrics) RecordConflicts(count int) {
	m.ConflictsTotal.Add(float64(count))
}

// SetCatalogSize updates the catalog gauges after a load or reseed
func (m *Metrics) SetCatalogSize(courses, lecturers int) {
	m.CatalogCourses.Set(float64(courses))
	m.CatalogLecturers.Set(float64(lecturers))
}

// RecordCatalogIntegrityIssue records a catalog data integrity issue
func (m *Metrics) RecordCatalogIntegrityIssue(issueType string) {
	m.CatalogIntegrityIssues.WithLabelValues(issueType).Inc()
}

// RecordIngest records an ingest attempt with status and duration
func (m *Metrics) RecordIngest(source, status string, duration float64) {
	m.IngestRequestsTotal.WithLabelValues(source, status).Inc()
	m.IngestDurationSeconds.WithLabelValues(source).Observe(duration)
}

// RecordSessionCreated records a new advising session
func (m *Metrics) RecordSessionCreated() {
	m.SessionsCreatedTotal.Inc()
}

// SetActiveSessions updates the live session gauge
func (m *Metrics) SetActiveSessions(count int) {
	m.SessionsActive.Set(float64(count))
}

// RecordRateLimiterDrop records a dropped request
func (m *Metrics) RecordRateLimiterDrop(limiterType string) {
	m.RateLimiterDropped.WithLabelValues(limiterType).Inc()
}

// SetRateLimiterUsers updates the tracked-key gauge for a limiter
func (m *Metrics) SetRateLimiterUsers(limiterType string, count int) {
	m.RateLimiterUsers.WithLabelValues(limiterType).Set(float64(count))
}

// RecordSnapshot records a snapshot operation
func (m *Metrics) RecordSnapshot(operation, status string, duration float64) {
	m.SnapshotTotal.WithLabelValues(operation, status).Inc()
	m.SnapshotDurationSeconds.Observe(duration)
}

// RecordHTTPError records an HTTP-level error
func (m *Metrics) RecordHTTPError(errorType, route string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType, route).Inc()
}
