// Package metrics provides Prometheus metrics for the Clover service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LinkingRunsTotal tracks total linking runs by outcome
	LinkingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "linker",
			Name:      "runs_total",
			Help:      "Total number of linking runs by outcome",
		},
		[]string{"trigger", "outcome"},
	)

	// LinkingRunDuration tracks linking run duration in seconds
	LinkingRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "linker",
			Name:      "run_duration_seconds",
			Help:      "Duration of linking runs in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	// ConnectionsPerRun tracks how many connections each run produced
	ConnectionsPerRun = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "linker",
			Name:      "connections_per_run",
			Help:      "Number of connections produced per linking run",
			Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
		},
	)

	// RunConfidenceAverage reports the average confidence of the last run
	RunConfidenceAverage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "clover",
			Subsystem: "linker",
			Name:      "run_confidence_average",
			Help:      "Average confidence of the most recent linking run",
		},
	)

	// ImportedRecordsTotal tracks imported records by kind
	ImportedRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "import",
			Name:      "records_total",
			Help:      "Total number of imported records by kind",
		},
		[]string{"kind"},
	)
)
