package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetricsCollector tracks mediator requests: simulation runs, settlement
// commands and report queries.
type RequestMetricsCollector struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
	inFlight *prometheus.GaugeVec
}

// NewRequestMetricsCollector creates a new request metrics collector
func NewRequestMetricsCollector() *RequestMetricsCollector {
	return &RequestMetricsCollector{
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "mediator",
				Name:      "request_duration_seconds",
				Help:      "Wall time spent handling a request",
				// Queries finish in microseconds; a multi-sol run can take minutes.
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
			},
			[]string{"request", "kind", "status"},
		),
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "mediator",
				Name:      "requests_total",
				Help:      "Requests handled by type and outcome",
			},
			[]string{"request", "kind", "status"},
		),
		inFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "mediator",
				Name:      "requests_in_flight",
				Help:      "Requests currently being handled",
			},
			[]string{"request"},
		),
	}
}

// Register registers the request metrics with the Prometheus registry
func (c *RequestMetricsCollector) Register() error {
	if Registry == nil {
		return nil
	}
	for _, metric := range []prometheus.Collector{c.duration, c.total, c.inFlight} {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

func (c *RequestMetricsCollector) started(request string) {
	c.inFlight.WithLabelValues(request).Inc()
}

// RecordRequest records one finished request. status is success, error or cancelled.
func (c *RequestMetricsCollector) RecordRequest(request, kind, status string, seconds float64) {
	c.inFlight.WithLabelValues(request).Dec()
	c.duration.WithLabelValues(request, kind, status).Observe(seconds)
	c.total.WithLabelValues(request, kind, status).Inc()
}
