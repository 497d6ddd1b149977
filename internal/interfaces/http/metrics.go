package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run-level screening metrics, exported at /metrics.
var (
	recordsInspected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "volrun_records_inspected_total",
		Help: "Records inspected across all screening runs",
	})
	recordsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "volrun_records_rejected_total",
		Help: "Records rejected by the filter chain",
	})
	recordsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "volrun_records_accepted_total",
		Help: "Records accepted as candidates",
	})
	candidatesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "volrun_candidates",
		Help: "Candidates in the most recent screening run",
	})
	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "volrun_run_duration_seconds",
		Help:    "Wall time of a full screening run",
		Buckets: prometheus.DefBuckets,
	})
)

// ObserveRun records one finished screening run.
func ObserveRun(inspected, rejected, accepted, candidates int, seconds float64) {
	recordsInspected.Add(float64(inspected))
	recordsRejected.Add(float64(rejected))
	recordsAccepted.Add(float64(accepted))
	candidatesGauge.Set(float64(candidates))
	runDuration.Observe(seconds)
}
