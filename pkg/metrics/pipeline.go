package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics contains Prometheus metrics for the data-generation and
// aggregation pipeline.
type PipelineMetrics struct {
	ReadingsGenerated     prometheus.Counter
	AuditRecordsGenerated prometheus.Counter
	AggregateQueries      *prometheus.CounterVec
	AggregateDuration     *prometheus.HistogramVec
	ReportsExported       *prometheus.CounterVec
	ExportFailures        *prometheus.CounterVec
}

// NewPipelineMetrics creates and registers pipeline metrics.
func NewPipelineMetrics(namespace string) *PipelineMetrics {
	m := &PipelineMetrics{
		ReadingsGenerated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "readings_generated_total",
				Help:      "Total number of telemetry readings generated",
			},
		),
		AuditRecordsGenerated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "audit_records_generated_total",
				Help:      "Total number of audit metadata records generated",
			},
		),
		AggregateQueries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "aggregate_queries_total",
				Help:      "Total number of aggregate queries served",
			},
			[]string{"query"}, // query: scope1, water_intensity, disclosure, asset_performance, simulator
		),
		AggregateDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "aggregate_duration_seconds",
				Help:      "Duration of aggregate query computation",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"query"},
		),
		ReportsExported: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "reports_exported_total",
				Help:      "Total number of disclosure reports exported",
			},
			[]string{"format"}, // format: xlsx, pdf
		),
		ExportFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "export_failures_total",
				Help:      "Total number of disclosure export failures",
			},
			[]string{"format"},
		),
	}

	MustRegister(
		m.ReadingsGenerated,
		m.AuditRecordsGenerated,
		m.AggregateQueries,
		m.AggregateDuration,
		m.ReportsExported,
		m.ExportFailures,
	)

	return m
}
