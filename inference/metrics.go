package inference

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	inferred = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rdfsail_inferred_statements_total",
		Help: "Number of statements derived, by stage.",
	}, []string{"stage"})
	duplicates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rdfsail_inference_duplicates_total",
		Help: "Number of derived statements dropped as duplicates.",
	})
	runTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rdfsail_inference_run_transitions_total",
		Help: "Number of reasoning run state transitions, by target state.",
	}, []string{"state"})
	runSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "rdfsail_inference_run_seconds",
		Help: "Duration of reasoning runs, by final state.",
	}, []string{"state"})
)
