package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// GeneratorMetrics contains Prometheus metrics for record generation.
// It implements Recorder.
type GeneratorMetrics struct {
	registry *prometheus.Registry

	recordsTotal   *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	recordDuration *prometheus.HistogramVec

	// Run-level gauges
	lastRunRecords  prometheus.Gauge
	lastRunFailed   prometheus.Gauge
	lastRunDuration prometheus.Gauge
}

// NewGeneratorMetrics creates and registers new generator metrics
func NewGeneratorMetrics(registry *prometheus.Registry) (*GeneratorMetrics, error) {
	m := &GeneratorMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *GeneratorMetrics) initMetrics() error {
	m.recordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaseed_records_total",
			Help: "Total number of records processed, by primary detection category or error",
		},
		[]string{"operation", "status"},
	)

	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaseed_record_errors_total",
			Help: "Total number of records skipped, by failing stage",
		},
		[]string{"operation", "stage"},
	)

	m.recordDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "mediaseed_record_duration_seconds",
			Help: "Time taken to assemble one record",
			// 0.1ms to ~400ms
			Buckets: prometheus.ExponentialBuckets(BucketStart100us, BucketFactor2, BucketCount12),
		},
		[]string{"operation"},
	)

	m.lastRunRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mediaseed_last_run_records",
		Help: "Records generated by the last run",
	})
	m.lastRunFailed = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mediaseed_last_run_failed_records",
		Help: "Records skipped by the last run",
	})
	m.lastRunDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mediaseed_last_run_duration_seconds",
		Help: "Wall time of the last generation run",
	})

	return nil
}

// Describe implements the Collector interface
func (m *GeneratorMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.recordsTotal.Describe(ch)
	m.errorsTotal.Describe(ch)
	m.recordDuration.Describe(ch)
	m.lastRunRecords.Describe(ch)
	m.lastRunFailed.Describe(ch)
	m.lastRunDuration.Describe(ch)
}

// Collect implements the Collector interface
func (m *GeneratorMetrics) Collect(ch chan<- prometheus.Metric) {
	m.recordsTotal.Collect(ch)
	m.errorsTotal.Collect(ch)
	m.recordDuration.Collect(ch)
	m.lastRunRecords.Collect(ch)
	m.lastRunFailed.Collect(ch)
	m.lastRunDuration.Collect(ch)
}

// RecordOperation counts one record outcome.
func (m *GeneratorMetrics) RecordOperation(operation, status string) {
	m.recordsTotal.WithLabelValues(operation, status).Inc()
}

// RecordDuration observes the assembly time of one record.
func (m *GeneratorMetrics) RecordDuration(operation string, seconds float64) {
	m.recordDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordError counts a skipped record by the stage that failed.
func (m *GeneratorMetrics) RecordError(operation, errorType string) {
	m.errorsTotal.WithLabelValues(operation, errorType).Inc()
}

// RecordRun sets the last-run gauges.
func (m *GeneratorMetrics) RecordRun(generated, failed int, seconds float64) {
	m.lastRunRecords.Set(float64(generated))
	m.lastRunFailed.Set(float64(failed))
	m.lastRunDuration.Set(seconds)
}
