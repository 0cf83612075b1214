package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Вызовы хранилища сессий
	StoreCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_store_calls_total",
			Help: "Total number of session store operations",
		},
		[]string{"backend", "method", "status"},
	)

	StoreDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "session_store_duration_seconds",
			Help:    "Duration of session store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "method"},
	)

	// Вызовы удалённого API
	RemoteCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remote_api_calls_total",
			Help: "Total number of remote API calls",
		},
		[]string{"method", "status"},
	)

	RemoteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "remote_api_duration_seconds",
			Help:    "Duration of remote API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	GateDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_gate_decisions_total",
			Help: "Session gate decisions for protected views",
		},
		[]string{"outcome", "reason"},
	)

	SessionEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_events_total",
			Help: "Session lifecycle events by type and publish status",
		},
		[]string{"type", "status"},
	)
)

var registerOnce sync.Once

func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(StoreCalls, StoreDuration, RemoteCalls, RemoteDuration, GateDecisions, SessionEvents)
	})
}
