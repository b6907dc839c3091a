package handler

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	wsClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "merchant_hub",
			Subsystem: "ws",
			Name:      "connected_clients",
			Help:      "Number of dashboard clients connected over WebSocket",
		},
	)
)

func RegisterMetrics() {
	prometheus.MustRegister(
		wsClients,
	)
}
