package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AaronLay10/AdventEngine/internal/version"
)

// registerCollectors exposes server-side state that is read at scrape time.
// The engine's own counters live in internal/metrics.
func (s *Server) registerCollectors(reg prometheus.Registerer) {
	labels := prometheus.Labels{"version": version.Version}
	b2f := func(b bool) float64 {
		if b {
			return 1
		}
		return 0
	}

	reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   "advent",
			Name:        "uptime_seconds",
			Help:        "Number of seconds since the engine started",
			ConstLabels: labels,
		}, func() float64 { return time.Since(s.startTime).Seconds() }),

		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "advent",
			Name:      "events_total",
			Help:      "Total number of events emitted since startup",
		}, func() float64 { return float64(s.bus.TotalCount()) }),

		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "advent",
			Name:      "ws_clients",
			Help:      "Number of active WebSocket client connections",
		}, func() float64 { return float64(s.bus.SubscriberCount()) }),

		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "advent",
			Name:      "mqtt_connected",
			Help:      "Whether the MQTT broker is connected (1) or not (0); 1 when disabled",
		}, func() float64 { return b2f(s.readiness.MQTTConnected()) }),

		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "advent",
			Name:      "postgres_connected",
			Help:      "Whether PostgreSQL is connected (1) or not (0); 1 when disabled",
		}, func() float64 { return b2f(s.readiness.PostgresHealthy()) }),
	)
}
