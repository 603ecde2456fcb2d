package remote

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	remoteQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rdfsail_remote_queries_total",
		Help: "Number of remote graph queries, by query type.",
	}, []string{"type"})
	remoteElements = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rdfsail_remote_elements_total",
		Help: "Number of elements returned by remote graph services.",
	})
	remoteStatements = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rdfsail_remote_statements_total",
		Help: "Number of statements returned by SPARQL endpoints.",
	})
)
