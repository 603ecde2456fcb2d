package bridge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	exportedStatements = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rdfsail_bridge_exported_statements_total",
		Help: "Number of statements exported from graphs.",
	})
	importedStatements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rdfsail_bridge_imported_statements_total",
		Help: "Number of statements imported into record stores, by kind.",
	}, []string{"kind"})
	syncRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rdfsail_bridge_sync_runs_total",
		Help: "Number of graph re-exports that changed the store.",
	})
	syncSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "rdfsail_bridge_sync_seconds",
		Help: "Time to re-export a graph into its store.",
	})
)
