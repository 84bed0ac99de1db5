// Package metrics exposes carrier call counters for Prometheus.
package metrics

import (
    "time"

    "github.com/prometheus/client_golang/prometheus"

    "printship/internal/shipping"
)

// Collector implements shipping.Observer.
type Collector struct {
    calls    *prometheus.CounterVec
    duration *prometheus.HistogramVec
}

// New registers the carrier metrics with reg.
func New(reg prometheus.Registerer) *Collector {
    c := &Collector{
        calls: prometheus.NewCounterVec(prometheus.CounterOpts{
            Namespace: "printship",
            Subsystem: "carrier",
            Name:      "rate_requests_total",
            Help:      "Carrier rate requests by outcome.",
        }, []string{"carrier", "outcome"}),
        duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
            Namespace: "printship",
            Subsystem: "carrier",
            Name:      "rate_request_duration_seconds",
            Help:      "Carrier rate request latency.",
            Buckets:   []float64{.05, .1, .25, .5, 1, 2, 4, 8, 16},
        }, []string{"carrier"}),
    }
    reg.MustRegister(c.calls, c.duration)
    return c
}

func (c *Collector) ObserveProvider(carrier shipping.Carrier, outcome shipping.Outcome, elapsed time.Duration) {
    c.calls.WithLabelValues(string(carrier), string(outcome)).Inc()
    c.duration.WithLabelValues(string(carrier)).Observe(elapsed.Seconds())
}
