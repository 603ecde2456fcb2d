package materialize

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var materialized = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rdfsail_materialized_total",
	Help: "Number of inputs turned into records, by kind.",
}, []string{"kind"})
