package sync

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	cyclesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookmarkable",
		Subsystem: "sync",
		Name:      "cycles_total",
		Help:      "Finished sync cycles by outcome.",
	}, []string{"outcome"})

	cycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bookmarkable",
		Subsystem: "sync",
		Name:      "cycle_duration_seconds",
		Help:      "Wall time of a sync cycle.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	recordsPushed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bookmarkable",
		Subsystem: "sync",
		Name:      "records_pushed_total",
		Help:      "Local records uploaded to the service.",
	})

	recordsPulled = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bookmarkable",
		Subsystem: "sync",
		Name:      "records_pulled_total",
		Help:      "Remote records merged into the store.",
	})

	mergesSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bookmarkable",
		Subsystem: "sync",
		Name:      "merges_skipped_total",
		Help:      "Pull merges refused because the local record had unpushed edits.",
	})

	recordFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bookmarkable",
		Subsystem: "sync",
		Name:      "record_failures_total",
		Help:      "Records that errored during a cycle and stayed pending.",
	})

	inFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bookmarkable",
		Subsystem: "sync",
		Name:      "in_flight",
		Help:      "1 while a sync cycle is running.",
	})
)

func init() {
	prometheus.MustRegister(cyclesTotal, cycleDuration, recordsPushed, recordsPulled, mergesSkipped, recordFailures, inFlight)
}

func observeCycle(res *Result) {
	cyclesTotal.WithLabelValues(string(res.Outcome)).Inc()
	cycleDuration.Observe(res.FinishedAt.Sub(res.StartedAt).Seconds())
	recordsPushed.Add(float64(res.Pushed))
	recordsPulled.Add(float64(res.Pulled))
	mergesSkipped.Add(float64(res.Skipped))
	recordFailures.Add(float64(res.Failures))
}
