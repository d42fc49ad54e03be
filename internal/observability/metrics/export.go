package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ExportMetrics tracks artifact uploads per export target.
type ExportMetrics struct {
	registry *prometheus.Registry

	uploadsTotal   *prometheus.CounterVec
	uploadBytes    *prometheus.HistogramVec
	uploadDuration *prometheus.HistogramVec
}

// NewExportMetrics creates and registers new export metrics
func NewExportMetrics(registry *prometheus.Registry) (*ExportMetrics, error) {
	m := &ExportMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *ExportMetrics) initMetrics() error {
	m.uploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaseed_export_uploads_total",
			Help: "Total number of artifact uploads by target and outcome",
		},
		[]string{"target", "status"},
	)

	m.uploadBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "mediaseed_export_upload_bytes",
			Help: "Size of uploaded artifacts",
			// 1KB to ~256GB
			Buckets: prometheus.ExponentialBuckets(BucketStart1KB, BucketFactor4, BucketCount10),
		},
		[]string{"target"},
	)

	m.uploadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediaseed_export_upload_duration_seconds",
			Help:    "Time taken to store one artifact",
			Buckets: prometheus.ExponentialBuckets(BucketStart10ms, BucketFactor2, BucketCount12),
		},
		[]string{"target"},
	)

	return nil
}

// Describe implements the Collector interface
func (m *ExportMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.uploadsTotal.Describe(ch)
	m.uploadBytes.Describe(ch)
	m.uploadDuration.Describe(ch)
}

// Collect implements the Collector interface
func (m *ExportMetrics) Collect(ch chan<- prometheus.Metric) {
	m.uploadsTotal.Collect(ch)
	m.uploadBytes.Collect(ch)
	m.uploadDuration.Collect(ch)
}

// RecordUpload records one store attempt. Size is only observed on success.
func (m *ExportMetrics) RecordUpload(target, status string, size int, seconds float64) {
	m.uploadsTotal.WithLabelValues(target, status).Inc()
	m.uploadDuration.WithLabelValues(target).Observe(seconds)
	if status == StatusSuccess {
		m.uploadBytes.WithLabelValues(target).Observe(float64(size))
	}
}
