package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DocumentRecorder is implemented by recorders that also track per-index
// document outcomes.
type DocumentRecorder interface {
	RecordDocuments(index string, indexed, failed int)
}

// IndexerMetrics contains Prometheus metrics for bulk indexing.
// It implements Recorder and DocumentRecorder.
type IndexerMetrics struct {
	registry *prometheus.Registry

	batchesTotal   *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	batchDuration  *prometheus.HistogramVec
	documentsTotal *prometheus.CounterVec
}

// NewIndexerMetrics creates and registers new indexer metrics
func NewIndexerMetrics(registry *prometheus.Registry) (*IndexerMetrics, error) {
	m := &IndexerMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *IndexerMetrics) initMetrics() error {
	m.batchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaseed_bulk_batches_total",
			Help: "Total number of bulk requests by outcome",
		},
		[]string{"operation", "status"}, // status: success, partial, error
	)

	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaseed_bulk_errors_total",
			Help: "Total number of bulk failures by type",
		},
		[]string{"operation", "error_type"}, // error_type: transport, document
	)

	m.batchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "mediaseed_bulk_batch_duration_seconds",
			Help: "Round-trip time of one bulk request",
			// 10ms to ~40s
			Buckets: prometheus.ExponentialBuckets(BucketStart10ms, BucketFactor2, BucketCount12),
		},
		[]string{"operation"},
	)

	m.documentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaseed_bulk_documents_total",
			Help: "Total number of documents submitted, by index and result",
		},
		[]string{"index", "result"}, // result: indexed, failed
	)

	return nil
}

// Describe implements the Collector interface
func (m *IndexerMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.batchesTotal.Describe(ch)
	m.errorsTotal.Describe(ch)
	m.batchDuration.Describe(ch)
	m.documentsTotal.Describe(ch)
}

// Collect implements the Collector interface
func (m *IndexerMetrics) Collect(ch chan<- prometheus.Metric) {
	m.batchesTotal.Collect(ch)
	m.errorsTotal.Collect(ch)
	m.batchDuration.Collect(ch)
	m.documentsTotal.Collect(ch)
}

// RecordOperation counts one bulk request outcome.
func (m *IndexerMetrics) RecordOperation(operation, status string) {
	m.batchesTotal.WithLabelValues(operation, status).Inc()
}

// RecordDuration observes one bulk request round trip.
func (m *IndexerMetrics) RecordDuration(operation string, seconds float64) {
	m.batchDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordError counts one bulk failure.
func (m *IndexerMetrics) RecordError(operation, errorType string) {
	m.errorsTotal.WithLabelValues(operation, errorType).Inc()
}

// RecordDocuments adds the per-document results of one batch.
func (m *IndexerMetrics) RecordDocuments(index string, indexed, failed int) {
	m.documentsTotal.WithLabelValues(index, "indexed").Add(float64(indexed))
	m.documentsTotal.WithLabelValues(index, "failed").Add(float64(failed))
}
