package rag

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "esglens",
		Subsystem: "rag",
		Name:      "generations_total",
		Help:      "Completed generation requests by outcome.",
	}, []string{"outcome"})

	generationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "esglens",
		Subsystem: "rag",
		Name:      "generation_duration_seconds",
		Help:      "Wall-clock duration of generation requests.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
	})
)

func observeGeneration(elapsed time.Duration, degraded bool) {
	outcome := "ok"
	if degraded {
		outcome = "degraded"
	}
	generationsTotal.WithLabelValues(outcome).Inc()
	generationDuration.Observe(elapsed.Seconds())
}
