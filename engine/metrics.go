package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	propagationRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "draid",
			Subsystem: "engine",
			Name:      "propagation_runs_total",
			Help:      "Total propagation runs, by outcome",
		},
		[]string{"outcome"},
	)

	componentProcessDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "draid",
			Subsystem: "engine",
			Name:      "component_process_duration_seconds",
			Help:      "Time spent processing a single component",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"function"},
	)

	obligationsActivatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "draid",
			Subsystem: "engine",
			Name:      "obligations_activated_total",
			Help:      "Total obligations activated, by action",
		},
		[]string{"action"},
	)
)

func init() {
	prometheus.MustRegister(propagationRunsTotal, componentProcessDuration, obligationsActivatedTotal)
}
