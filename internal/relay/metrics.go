package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the relay's Prometheus collectors
type Metrics struct {
	Requests        *prometheus.CounterVec
	UpstreamLatency prometheus.Histogram
	BytesServed     prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retrodesk_relay_requests_total",
				Help: "Relay requests by outcome",
			},
			[]string{"outcome"},
		),
		UpstreamLatency: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "retrodesk_relay_upstream_duration_seconds",
				Help:    "Time spent fetching upstream resources",
				Buckets: prometheus.DefBuckets,
			},
		),
		BytesServed: f.NewCounter(
			prometheus.CounterOpts{
				Name: "retrodesk_relay_bytes_total",
				Help: "Bytes relayed to clients",
			},
		),
	}
}
