package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Live-layer collectors.
var (
	ConnectionsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "live_connections_open",
		Help: "Currently open websocket connections.",
	})
	EventsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "live_events_emitted_total",
		Help: "Events fanned out, by kind.",
	}, []string{"kind"})
	EventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "live_events_dropped_total",
		Help: "Per-connection delivery drops, by kind and reason.",
	}, []string{"kind", "reason"})
)

// RegisterRoomGauge tracks open rooms via a callback so the room table stays
// the single source of truth.
func RegisterRoomGauge(count func() int) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "live_rooms_open",
		Help: "Rooms with at least one member.",
	}, func() float64 { return float64(count()) }))
}

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
