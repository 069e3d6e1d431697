package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Completion outcomes recorded by CompletionsTotal.
const (
	OutcomeSuccess = "success"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"
)

var (
	CompletionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "titleopt_completions_total",
		Help: "Completion relay attempts by outcome.",
	}, []string{"outcome"})

	CompletionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "titleopt_completion_duration_seconds",
		Help:    "Time spent waiting on the completion API.",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	})
)
