// internal/app/system/gateway/metrics.go
package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	callsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "leadhub",
		Subsystem: "gateway",
		Name:      "calls_total",
		Help:      "Total number of backend GraphQL calls broken down by operation and result.",
	}, []string{"operation", "result"})

	callSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "leadhub",
		Subsystem: "gateway",
		Name:      "call_seconds",
		Help:      "Latency distribution for backend GraphQL calls.",
		Buckets: []float64{
			0.005, 0.01, 0.02, 0.05,
			0.1, 0.2, 0.5,
			1, 2, 5, 10, 30,
		},
	}, []string{"operation", "result"})

	inFlightGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "leadhub",
		Subsystem: "gateway",
		Name:      "calls_in_flight",
		Help:      "Backend GraphQL calls currently awaiting a response.",
	})
)
