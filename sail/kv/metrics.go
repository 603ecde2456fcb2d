package kv

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	savedStatements = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rdfsail_kv_saved_statements_total",
		Help: "Number of statements written to snapshots.",
	})
	loadedStatements = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rdfsail_kv_loaded_statements_total",
		Help: "Number of statements read from snapshots.",
	})
	saveSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "rdfsail_kv_save_seconds",
		Help: "Time to write a snapshot.",
	})
)
