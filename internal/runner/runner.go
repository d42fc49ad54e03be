// Package runner executes one generate run: records are synthesized, written
// to the output file, bulk indexed, exported and recorded in the history
// database, in that order.
package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/tphakala/mediaseed/internal/conf"
	"github.com/tphakala/mediaseed/internal/datastore"
	"github.com/tphakala/mediaseed/internal/errors"
	"github.com/tphakala/mediaseed/internal/export"
	"github.com/tphakala/mediaseed/internal/indexer"
	"github.com/tphakala/mediaseed/internal/logger"
	"github.com/tphakala/mediaseed/internal/observability"
	"github.com/tphakala/mediaseed/internal/record"
)

// GetLogger returns the runner module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("runner")
}

// Summary is what a run produced.
type Summary struct {
	RunID     string
	Seed      uint64
	Reference time.Time
	Requested int
	Generated int
	Failed    int
	// Output is the records file written, empty when none was requested.
	Output string
	// Index is nil when no endpoint is configured.
	Index *indexer.Result
	// ReportPath is the error artifact, set only when indexing had failures.
	ReportPath string
	// ExportErr joins every export target failure; it does not fail the run.
	ExportErr error
	Duration  time.Duration
}

// Runner holds the collaborators of a run. The zero value is not usable; use New.
type Runner struct {
	settings    *conf.Settings
	legacyCount int
	writer      indexer.BulkWriter
	targets     []export.Target
	hasTargets  bool
	now         func() time.Time
	log         logger.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLegacyCount sets how many devices the legacy layout gets when no
// tenants are configured.
func WithLegacyCount(n int) Option {
	return func(r *Runner) { r.legacyCount = n }
}

// WithWriter replaces the Elasticsearch writer built from settings.
func WithWriter(w indexer.BulkWriter) Option {
	return func(r *Runner) { r.writer = w }
}

// WithTargets replaces the export targets built from settings.
func WithTargets(targets ...export.Target) Option {
	return func(r *Runner) {
		r.targets = targets
		r.hasTargets = true
	}
}

// WithClock sets the clock used for run timestamps and a missing reference time.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// New returns a Runner for settings.
func New(settings *conf.Settings, opts ...Option) *Runner {
	r := &Runner{
		settings:    settings,
		legacyCount: conf.DefaultMediaCount,
		now:         time.Now,
		log:         GetLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs the run. Generation failures of single records and indexing
// failures of documents or batches are reported in the Summary. An error is
// returned when the store is unreachable, when the output or error artifact
// cannot be written, or when ctx is cancelled; the Summary is still returned
// when any work was done.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	started := r.now()
	sum := &Summary{RunID: uuid.NewString()}
	s := r.settings

	var m *observability.Metrics
	if s.Metrics.Enabled {
		var err error
		if m, err = observability.NewMetrics(); err != nil {
			return nil, err
		}
	}

	genOpts := []record.Option{record.WithClock(r.now)}
	if m != nil {
		genOpts = append(genOpts, record.WithRecorder(m.Generator))
	}
	gen, err := record.NewGenerator(s, genOpts...)
	if err != nil {
		return nil, err
	}

	res, err := gen.Run(ctx, r.legacyCount)
	if res != nil {
		sum.Seed = res.Seed
		sum.Reference = res.Reference
		sum.Requested = res.Requested
		sum.Generated = res.Generated()
		sum.Failed = res.Failed
		if m != nil {
			m.Generator.RecordRun(res.Generated(), res.Failed, res.Duration.Seconds())
		}
	}
	if err != nil {
		return r.finish(sum, started), err
	}

	data, err := record.Encode(res.Records, s.Output.Pretty)
	if err != nil {
		return r.finish(sum, started), err
	}
	if s.Output.Path != "" {
		if err := export.WriteFileAtomic(s.Output.Path, data); err != nil {
			return r.finish(sum, started), err
		}
		sum.Output = s.Output.Path
		r.log.Info("records written",
			logger.String("path", s.Output.Path),
			logger.Int("records", res.Generated()))
	}

	var report []byte
	if s.Elasticsearch.Endpoint != "" || r.writer != nil {
		if sum.Index, err = r.index(ctx, res.Records, m); err != nil {
			return r.finish(sum, started), err
		}
		if len(sum.Index.Failures) > 0 {
			if report, err = indexer.EncodeReport(sum.Index.Failures); err != nil {
				return r.finish(sum, started), err
			}
			sum.ReportPath = indexer.ErrorReportPath(s.Output.Path)
			if err := export.WriteFileAtomic(sum.ReportPath, report); err != nil {
				return r.finish(sum, started), err
			}
			r.log.Warn("indexing failures written",
				logger.String("path", sum.ReportPath),
				logger.Int("failures", len(sum.Index.Failures)))
		}
	}

	sum.ExportErr = r.export(ctx, sum, data, report, m)

	if s.History.Enabled {
		if err := r.saveHistory(ctx, sum, started); err != nil {
			r.log.Error("failed to save run history", logger.Error(err))
		}
	}

	if m != nil {
		if err := m.WriteTextfile(s.Metrics.Textfile); err != nil {
			r.log.Error("failed to write metrics textfile", logger.Error(err))
		}
	}

	return r.finish(sum, started), nil
}

func (r *Runner) finish(sum *Summary, started time.Time) *Summary {
	sum.Duration = r.now().Sub(started)
	return sum
}

// index checks the store is reachable, then bulk loads records.
func (r *Runner) index(ctx context.Context, records []*record.MediaRecord, m *observability.Metrics) (*indexer.Result, error) {
	es := &r.settings.Elasticsearch
	w := r.writer
	if w == nil {
		ew, err := indexer.NewElasticWriter(es)
		if err != nil {
			return nil, err
		}
		w = ew
	}

	info, err := w.CheckConnection(ctx)
	if err != nil {
		return nil, err
	}
	r.log.Info("connected to elasticsearch",
		logger.String("cluster", info.ClusterName),
		logger.String("version", info.Version))

	var opts []indexer.Option
	if m != nil {
		opts = append(opts, indexer.WithRecorder(m.Indexer))
	}
	return indexer.New(w, indexer.ConfigFrom(es), opts...).Index(ctx, records)
}

// export stores the records artifact, and the error report when there is
// one, on every configured target.
func (r *Runner) export(ctx context.Context, sum *Summary, data, report []byte, m *observability.Metrics) error {
	targets := r.targets
	if !r.hasTargets {
		var err error
		if targets, err = export.FromSettings(ctx, &r.settings.Export); err != nil {
			r.log.Error("export targets unavailable", logger.Error(err))
			return err
		}
	}
	if len(targets) == 0 {
		return nil
	}

	var rec export.UploadRecorder
	if m != nil {
		rec = m.Export
	}
	name := ArtifactName(sum.Output, sum.RunID)
	errs := []error{export.Dispatch(ctx, targets, name, data, rec)}
	if report != nil {
		errs = append(errs, export.Dispatch(ctx, targets, filepath.Base(sum.ReportPath), report, rec))
	}
	return errors.Join(errs...)
}

// ArtifactName is the exported name of the records file: the base name of the
// output path, or one derived from the run id.
func ArtifactName(output, runID string) string {
	if output != "" {
		return filepath.Base(output)
	}
	return fmt.Sprintf("mediaseed-%s.json", runID)
}

func (r *Runner) saveHistory(ctx context.Context, sum *Summary, started time.Time) error {
	store, err := datastore.Open(r.settings.History.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			r.log.Warn("failed to close history database", logger.Error(err))
		}
	}()

	run := &datastore.Run{
		RunID:         sum.RunID,
		StartedAt:     started,
		FinishedAt:    r.now(),
		Seed:          datastore.FormatSeed(sum.Seed),
		ReferenceTime: sum.Reference,
		Requested:     sum.Requested,
		Generated:     sum.Generated,
		Failed:        sum.Failed,
		Output:        sum.Output,
	}
	if sum.Index != nil {
		run.Indexed = sum.Index.Successful
		run.IndexTotal = sum.Index.Total
		if run.Failures, err = datastore.FailureRows(sum.Index.Failures); err != nil {
			return err
		}
	}
	run.Duration = run.FinishedAt.Sub(started)
	return store.SaveRun(ctx, run)
}
