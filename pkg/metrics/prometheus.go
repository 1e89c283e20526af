package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	MessagesScanned  prometheus.Counter
	MessagesSkipped  *prometheus.CounterVec
	RecordsExtracted *prometheus.CounterVec
	ErrorsCount      *prometheus.CounterVec
	RunDuration      prometheus.Histogram
	LastRunRecords   prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewMetrics creates the tracker metrics on reg. A nil reg gets a fresh registry.
func NewMetrics(namespace string, reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		MessagesScanned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_scanned_total",
			Help:      "The total number of messages read from the source",
		}),
		MessagesSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_skipped_total",
			Help:      "The total number of messages that produced no record",
		}, []string{"reason"}),
		RecordsExtracted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_extracted_total",
			Help:      "The total number of priced records extracted",
		}, []string{"variant"}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Time taken by one tracker run",
			Buckets:   prometheus.DefBuckets,
		}),
		LastRunRecords: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_records",
			Help:      "Records exported by the most recent run",
		}),
		gatherer: reg,
	}
}

// Gatherer exposes the underlying registry for promhttp
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.gatherer
}

// WriteTextfile dumps the registry in the node-exporter textfile format
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.gatherer)
}
