package lifecycle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medical_reports_generations_total",
			Help: "Total number of report generation attempts by result",
		},
		[]string{"result"},
	)

	generationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "medical_reports_generation_duration_seconds",
			Help:    "Time spent generating a report",
			Buckets: prometheus.DefBuckets,
		},
	)

	skippedTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "medical_reports_skipped_ticks_total",
			Help: "Ticks skipped because a generation was still running",
		},
	)

	currentSequence = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "medical_reports_current_sequence",
			Help: "Sequence number of the report currently served",
		},
	)
)
