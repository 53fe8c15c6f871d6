package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	aggregationsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "balance_queries_submitted_total",
		Help: "Total number of balance aggregations submitted",
	})

	cellsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "balance_cells_resolved_total",
			Help: "Total number of balance cells resolved, by outcome",
		},
		[]string{"status"},
	)

	staleWritesDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "balance_stale_writes_discarded_total",
		Help: "Results dropped because their aggregation had been superseded",
	})

	rpcDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "balance_rpc_duration_seconds",
		Help:    "Duration of single balance queries",
		Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	})

	rpcInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "balance_rpc_in_flight",
		Help: "Number of balance queries currently awaiting a response",
	})
)
