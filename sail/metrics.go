package sail

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	approvedStatements = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rdfsail_sail_approved_statements_total",
		Help: "Number of statements added to a model.",
	})
	deprecatedStatements = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rdfsail_sail_deprecated_statements_total",
		Help: "Number of statements removed from a model.",
	})
	forks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rdfsail_sail_forks_total",
		Help: "Number of sources forked.",
	})
)
