package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "merchant_hub",
	Subsystem: "gateway",
	Name:      "request_duration_seconds",
	Help:      "Duration of requests to the storefront gateway.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "status"})
