package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the rotation job

var (
	// API Call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "player_rotation_api_calls_total",
			Help: "Total number of player API calls",
		},
		[]string{"status"},
	)

	APICallDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "player_rotation_api_call_duration_seconds",
			Help:    "Duration of player API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	PlayersFetched = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "player_rotation_players_fetched",
			Help: "Number of players returned by the last successful fetch",
		},
	)

	CountriesFetched = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "player_rotation_countries_fetched",
			Help: "Number of distinct countries in the last successful fetch",
		},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "player_rotation_db_queries_total",
			Help: "Total number of database operations",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "player_rotation_db_query_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Rotation metrics
	RotationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "player_rotation_runs_total",
			Help: "Total number of rotation invocations by outcome",
		},
		[]string{"outcome"},
	)

	RotationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "player_rotation_run_duration_seconds",
			Help:    "Duration of rotation invocations in seconds",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 120},
		},
	)

	PlayersAdded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "player_rotation_players_added_total",
			Help: "Total number of player rows written",
		},
		[]string{"country"},
	)

	LastSuccessfulRotation = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "player_rotation_last_success_timestamp",
			Help: "Timestamp of the last invocation that wrote players",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "player_rotation_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "player_rotation_system_uptime_seconds",
			Help: "Worker uptime in seconds",
		},
	)
)

// RecordAPICall records an API call metric
func RecordAPICall(status string, duration float64) {
	APICallsTotal.WithLabelValues(status).Inc()
	APICallDuration.Observe(duration)
}

// RecordFetch records the size of a successful fetch
func RecordFetch(players, countries int) {
	PlayersFetched.Set(float64(players))
	CountriesFetched.Set(float64(countries))
}

// RecordDBQuery records a database operation metric
func RecordDBQuery(operation, status string, duration float64) {
	DBQueriesTotal.WithLabelValues(operation, status).Inc()
	DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// RecordRotation records a finished invocation
func RecordRotation(outcome string, duration float64) {
	RotationsTotal.WithLabelValues(outcome).Inc()
	RotationDuration.Observe(duration)
}

// RecordPlayersAdded records a committed batch
func RecordPlayersAdded(country string, count int) {
	PlayersAdded.WithLabelValues(country).Add(float64(count))
	LastSuccessfulRotation.SetToCurrentTime()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
