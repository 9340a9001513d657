package remote

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "favs_gateway",
			Name:      "requests_total",
			Help:      "Gateway calls by operation and final outcome.",
		},
		[]string{"op", "outcome"},
	)

	retriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "favs_gateway",
			Name:      "retries_total",
			Help:      "Retried gateway attempts by operation.",
		},
		[]string{"op"},
	)
)
