package pipeline

import "github.com/prometheus/client_golang/prometheus"

// Metrics
var (
	runsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "proftwo_pipeline_runs_total", Help: "Processing runs started"},
	)
	runsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "proftwo_pipeline_completed_total", Help: "Runs reaching Done"},
	)
	runsInterrupted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "proftwo_pipeline_interrupted_total", Help: "Runs interrupted"},
	)
	stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "proftwo_pipeline_stage_duration_seconds",
			Help:    "Wall time per stage",
			Buckets: []float64{1, 5, 10, 30, 60, 120},
		},
		[]string{"stage"},
	)
	aiCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "proftwo_ai_calls_total", Help: "External AI calls by outcome"},
		[]string{"service", "outcome"},
	)
)

func RegisterMetrics() {
	prometheus.MustRegister(runsStarted, runsCompleted, runsInterrupted, stageDuration, aiCalls)
}
