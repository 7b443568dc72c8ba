package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the tennis ingestion service

var (
	// Provider call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tennis_api_calls_total",
			Help: "Total number of tennis provider API calls",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tennis_api_call_duration_seconds",
			Help:    "Duration of tennis provider API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Quota metrics
	QuotaUsed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tennis_quota_used",
			Help: "Provider requests consumed in the current quota window",
		},
	)

	QuotaRemaining = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tennis_quota_remaining",
			Help: "Provider requests left in the current quota window",
		},
	)

	QuotaRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tennis_quota_rejections_total",
			Help: "Total number of calls refused because the quota was exhausted",
		},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tennis_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tennis_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tennis_db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tennis_db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// Import metrics
	RecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tennis_import_records_total",
			Help: "Match records seen by the importer, by outcome",
		},
		[]string{"outcome"},
	)

	ClassifierRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tennis_classifier_rejections_total",
			Help: "Records rejected by the tournament classifier, by reason",
		},
		[]string{"reason"},
	)

	ImportRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tennis_import_runs_total",
			Help: "Total number of import runs",
		},
		[]string{"action", "status"},
	)

	ImportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tennis_import_duration_seconds",
			Help:    "Duration of import runs in seconds",
			Buckets: []float64{.5, 1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"action"},
	)

	MatchesStored = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tennis_matches_stored",
			Help: "Number of tennis matches in the matches table",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tennis_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "kind"},
	)

	LastSuccessfulImport = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tennis_last_successful_import_timestamp",
			Help: "Timestamp of last successful import run",
		},
	)
)

// Record outcomes
const (
	OutcomeFetched  = "fetched"
	OutcomeRejected = "rejected"
	OutcomeImported = "imported"
	OutcomeSkipped  = "skipped"
	OutcomeError    = "error"
)

// RecordAPICall records an API call metric
func RecordAPICall(endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(endpoint, status).Inc()
	APICallDuration.WithLabelValues(endpoint).Observe(duration)
}

// UpdateQuota publishes the current quota usage
func UpdateQuota(used, remaining int) {
	QuotaUsed.Set(float64(used))
	QuotaRemaining.Set(float64(remaining))
}

// RecordQuotaRejection records a call refused by the quota
func RecordQuotaRejection() {
	QuotaRejectionsTotal.Inc()
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table, status string, duration float64) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration)
}

// RecordRecords adds n records with the given outcome
func RecordRecords(outcome string, n int) {
	if n > 0 {
		RecordsTotal.WithLabelValues(outcome).Add(float64(n))
	}
}

// RecordClassifierRejection records one record turned away by the classifier
func RecordClassifierRejection(reason string) {
	ClassifierRejectionsTotal.WithLabelValues(reason).Inc()
}

// RecordImport records an import run
func RecordImport(action, status string, duration float64) {
	ImportRunsTotal.WithLabelValues(action, status).Inc()
	ImportDuration.WithLabelValues(action).Observe(duration)

	if status == "success" {
		LastSuccessfulImport.SetToCurrentTime()
	}
}

// RecordError records an error
func RecordError(component, kind string) {
	ErrorsTotal.WithLabelValues(component, kind).Inc()
}

// UpdateDBConnectionStats updates database connection pool statistics
func UpdateDBConnectionStats(active, idle int32) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}

// UpdateMatchesStored sets the stored tennis match count
func UpdateMatchesStored(count int64) {
	MatchesStored.Set(float64(count))
}
