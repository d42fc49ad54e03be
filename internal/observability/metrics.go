// Package observability holds the Prometheus registry for a mediaseed run and
// writes it out in the node_exporter textfile format.
package observability

import (
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tphakala/mediaseed/internal/errors"
	"github.com/tphakala/mediaseed/internal/logger"
	"github.com/tphakala/mediaseed/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry  *prometheus.Registry
	Generator *metrics.GeneratorMetrics
	Indexer   *metrics.IndexerMetrics
	Export    *metrics.ExportMetrics
}

// NewMetrics creates a new instance of Metrics, initializing all metric collectors.
// It returns an error if any metric collector fails to initialize.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	generatorMetrics, err := metrics.NewGeneratorMetrics(registry)
	if err != nil {
		return nil, wrap(err, "generator")
	}

	indexerMetrics, err := metrics.NewIndexerMetrics(registry)
	if err != nil {
		return nil, wrap(err, "indexer")
	}

	exportMetrics, err := metrics.NewExportMetrics(registry)
	if err != nil {
		return nil, wrap(err, "export")
	}

	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, wrap(err, "go_runtime")
	}

	return &Metrics{
		registry:  registry,
		Generator: generatorMetrics,
		Indexer:   indexerMetrics,
		Export:    exportMetrics,
	}, nil
}

func wrap(err error, collector string) error {
	return errors.New(err).
		Component("observability").
		Category(errors.CategoryMetrics).
		Context("collector", collector).
		Build()
}

// Gatherer exposes the registry for inspection.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes every registered metric to path, creating parent
// directories as needed. The write is atomic.
func (m *Metrics) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.New(err).
				Component("observability").
				Category(errors.CategoryFileIO).
				Context("path", path).
				Build()
		}
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.New(err).
			Component("observability").
			Category(errors.CategoryMetrics).
			Context("path", path).
			Build()
	}
	log.Info("metrics written", logger.String("path", path))
	return nil
}
