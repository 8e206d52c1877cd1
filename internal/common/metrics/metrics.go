// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReconcileLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_loads_total",
			Help: "Total reconciliation loads by terminal state and source tier",
		},
		[]string{"state", "source"},
	)

	PropagateWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propagate_writes_total",
			Help: "Total tier writes performed by the mutation propagator",
		},
		[]string{"scope", "status"},
	)

	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_api_requests_total",
			Help: "Total backend API requests by endpoint and outcome",
		},
		[]string{"endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "backend_api_request_duration_seconds",
			Help: "Duration of backend API requests in seconds",
		},
		[]string{"endpoint"},
	)

	HistoryDeletes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "history_deletes_total",
			Help: "Total history delete operations by outcome",
		},
		[]string{"status"},
	)

	NormalizeFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "normalize_fallbacks_total",
			Help: "Total malformed list fields degraded to empty during normalization",
		},
		[]string{"field"},
	)
)
