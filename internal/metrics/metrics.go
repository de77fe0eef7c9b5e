// Package metrics exposes prometheus collectors for the relay.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConnectedSessions tracks live connections, logged-in or not.
	ConnectedSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "picochat_connected_sessions",
		Help: "Number of currently connected sessions",
	})

	// FramesTotal counts inbound frames by message type.
	FramesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "picochat_frames_total",
		Help: "Total inbound frames processed by message type",
	}, []string{"type"})

	// BroadcastFanout observes how many recipients each broadcast
	// reached.
	BroadcastFanout = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "picochat_broadcast_recipients",
		Help:    "Recipients reached per room broadcast",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
	})
)

func init() {
	prometheus.MustRegister(ConnectedSessions)
	prometheus.MustRegister(FramesTotal)
	prometheus.MustRegister(BroadcastFanout)
}

// Handler serves the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
