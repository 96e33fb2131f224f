// Package metrics provides Prometheus instrumentation for the Sentinel
// safety pipeline. It exposes counters for verdicts, category hits, and
// escalations, histograms for filter and classification latency, and a
// gauge for the classification queue depth.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// VerdictsTotal counts fast-filter verdicts, labeled by decision:
	// "allow", "block_first_message_profanity", "block_brand_violation".
	VerdictsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_verdicts_total",
		Help: "Fast filter verdicts by decision",
	}, []string{"decision"})

	// FilterLatency records fast-filter evaluation time in seconds. The
	// send path budget is 50ms, so buckets concentrate below that.
	FilterLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sentinel_filter_latency_seconds",
		Help:    "Fast filter evaluation latency in seconds",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1},
	})

	// ClassifyJobDuration records end-to-end classification job time.
	ClassifyJobDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sentinel_classify_job_duration_seconds",
		Help:    "Classification job duration in seconds",
		Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
	})

	// ClassifyJobsDropped counts jobs dropped because the worker pool
	// queue was full, the job timed out before recording, or the job
	// arrived after shutdown began.
	ClassifyJobsDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_classify_jobs_dropped_total",
		Help: "Classification jobs dropped without recording hits",
	}, []string{"reason"}) // reason = "queue_full", "timeout", "shutdown"

	// ClassifyQueueDepth tracks jobs waiting in the worker pool queue.
	ClassifyQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sentinel_classify_queue_depth",
		Help: "Classification jobs queued and not yet picked up",
	})

	// DetectorFailures counts contained detector errors by detector name.
	DetectorFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_detector_failures_total",
		Help: "Detector errors degraded to zero hits",
	}, []string{"detector"})

	// CategoryHits counts recorded category hits by category.
	CategoryHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_category_hits_total",
		Help: "Category hits recorded to the risk ledger",
	}, []string{"category"})

	// EscalationsTotal counts escalations published to the review queue.
	EscalationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_escalations_total",
		Help: "Escalations published to the review queue",
	}, []string{"priority"})

	// LedgerConflictsTotal counts profile write conflicts that were retried.
	LedgerConflictsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sentinel_ledger_conflicts_total",
		Help: "Risk profile write conflicts retried",
	})
)

func init() {
	prometheus.MustRegister(
		VerdictsTotal,
		FilterLatency,
		ClassifyJobDuration,
		ClassifyJobsDropped,
		ClassifyQueueDepth,
		DetectorFailures,
		CategoryHits,
		EscalationsTotal,
		LedgerConflictsTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
