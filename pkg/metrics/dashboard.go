package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DashboardMetrics contains Prometheus metrics for the dashboard HTTP API.
type DashboardMetrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewDashboardMetrics creates and registers dashboard API metrics.
func NewDashboardMetrics(namespace string) *DashboardMetrics {
	m := &DashboardMetrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	return m
}
