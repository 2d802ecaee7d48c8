package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/i474232898/weather-field/internal/weather"
)

// Field build metrics
var (
	// FieldBuildsTotal counts rebuild attempts per region
	FieldBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "field_builds_total",
			Help: "Total number of weather field builds",
		},
		[]string{"region", "status"},
	)

	// FieldBuildDuration tracks how long a source takes to build a field
	FieldBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "field_build_duration_seconds",
			Help:    "Duration of weather field builds in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"region"},
	)

	// FieldCells tracks the table size of the current field per region
	FieldCells = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "field_cells",
			Help: "Number of (time, location) cells in the current weather field",
		},
		[]string{"region"},
	)
)

// Query metrics
var (
	// FieldEvaluationsTotal counts point queries by completeness of the result
	FieldEvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "field_evaluations_total",
			Help: "Total number of weather field point evaluations",
		},
		[]string{"region", "result"},
	)

	// AppStartTime records when the application started
	AppStartTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "weather_field_app_start_time_seconds",
			Help: "Unix timestamp of when the application started",
		},
	)
)

func init() {
	AppStartTime.SetToCurrentTime()
}

// RecordBuild records a field build attempt
func RecordBuild(region string, duration time.Duration, cells int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	FieldBuildsTotal.WithLabelValues(region, status).Inc()
	FieldBuildDuration.WithLabelValues(region).Observe(duration.Seconds())
	if err == nil {
		FieldCells.WithLabelValues(region).Set(float64(cells))
	}
}

// RecordEvaluation records a point query and whether its result was complete
func RecordEvaluation(region string, t weather.Tuple) {
	FieldEvaluationsTotal.WithLabelValues(region, EvaluationResult(t)).Inc()
}

// EvaluationResult classifies a tuple as complete, partial or missing
func EvaluationResult(t weather.Tuple) string {
	switch {
	case t.IsMissing():
		return "missing"
	case t.HasMissing():
		return "partial"
	}
	return "complete"
}
