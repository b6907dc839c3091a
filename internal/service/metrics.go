package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	statusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "merchant_hub",
		Subsystem: "orders",
		Name:      "status_transitions_total",
		Help:      "Total number of applied order status transitions.",
	}, []string{"from", "to", "trigger"})

	ordersAutoDeclined = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "merchant_hub",
		Subsystem: "orders",
		Name:      "auto_declined_total",
		Help:      "Total number of pending orders declined by countdown expiry.",
	})

	syncFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "merchant_hub",
		Subsystem: "poller",
		Name:      "sync_failures_total",
		Help:      "Total number of failed order sync attempts against the gateway.",
	})
)
