package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// heartbeatsTotal counts heartbeats that reached the store successfully.
	heartbeatsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "presence_heartbeats_total",
			Help: "Total number of heartbeats recorded.",
		},
	)

	// fallbacksTotal counts telemetry operations answered with their
	// fail-open fallback, by operation.
	fallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telemetry_fallbacks_total",
			Help: "Telemetry operations that returned a degraded fallback value.",
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(heartbeatsTotal, fallbacksTotal)
}
