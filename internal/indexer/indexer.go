package indexer

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/tphakala/mediaseed/internal/conf"
	"github.com/tphakala/mediaseed/internal/errors"
	"github.com/tphakala/mediaseed/internal/logger"
	"github.com/tphakala/mediaseed/internal/observability/metrics"
	"github.com/tphakala/mediaseed/internal/record"
)

// DefaultBatchSize is used when Config.BatchSize is not positive.
const DefaultBatchSize = 100

// Config controls batching and scheduling.
type Config struct {
	Prefix          string
	BatchSize       int
	ParallelTenants int     // tenants indexed at once; batches within a tenant stay sequential
	RateLimit       float64 // batches per second across all tenants, 0 = unlimited
}

// ConfigFrom extracts the indexer settings from the elasticsearch section.
func ConfigFrom(s *conf.ElasticsearchSettings) Config {
	return Config{
		Prefix:          s.IndexPrefix,
		BatchSize:       s.BatchSize,
		ParallelTenants: s.ParallelTenants,
		RateLimit:       s.RateLimit,
	}
}

// Result summarizes an indexing run. Failures are ordered by index, then batch.
type Result struct {
	Successful int
	Total      int
	Batches    int
	Failures   []BatchFailure
	Duration   time.Duration
}

// Indexer groups records by tenant and submits them in batches.
type Indexer struct {
	writer   BulkWriter
	cfg      Config
	recorder metrics.Recorder
	limiter  *rate.Limiter
	log      logger.Logger
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithRecorder reports batch outcomes to r. When r also implements
// metrics.DocumentRecorder, per-index document counts are reported too.
func WithRecorder(r metrics.Recorder) Option {
	return func(ix *Indexer) { ix.recorder = r }
}

// New returns an Indexer writing through w.
func New(w BulkWriter, cfg Config, opts ...Option) *Indexer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	cfg.ParallelTenants = max(cfg.ParallelTenants, 1)

	ix := &Indexer{writer: w, cfg: cfg, log: GetLogger()}
	if cfg.RateLimit > 0 {
		ix.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// IndexName returns the per-tenant index: prefix, a dash, and the tenant id
// with its dashes removed.
func IndexName(prefix, tenantID string) string {
	return prefix + "-" + strings.ReplaceAll(tenantID, "-", "")
}

type tenantGroup struct {
	tenantID string
	index    string
	records  []*record.MediaRecord
}

// groupByTenant keeps tenants in first-seen order and records in input order.
func groupByTenant(prefix string, records []*record.MediaRecord) []*tenantGroup {
	var groups []*tenantGroup
	byTenant := make(map[string]*tenantGroup)
	for _, r := range records {
		g, ok := byTenant[r.TenantID]
		if !ok {
			g = &tenantGroup{tenantID: r.TenantID, index: IndexName(prefix, r.TenantID)}
			byTenant[r.TenantID] = g
			groups = append(groups, g)
		}
		g.records = append(g.records, r)
	}
	return groups
}

// split cuts items into consecutive batches of at most size.
func split[T any](items []T, size int) [][]T {
	var batches [][]T
	for chunk := range slices.Chunk(items, size) {
		batches = append(batches, chunk)
	}
	return batches
}

type tenantResult struct {
	successful int
	batches    int
	failures   []BatchFailure
}

// Index submits records and returns the aggregate outcome. Document and batch
// failures are reported in the Result and never stop the run; only a
// cancelled ctx does, in which case the partial Result is returned with the
// error.
func (ix *Indexer) Index(ctx context.Context, records []*record.MediaRecord) (*Result, error) {
	started := time.Now()
	res := &Result{Total: len(records), Failures: []BatchFailure{}}
	groups := groupByTenant(ix.cfg.Prefix, records)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.cfg.ParallelTenants)
	for _, group := range groups {
		g.Go(func() error {
			out, err := ix.indexTenant(gctx, group)
			mu.Lock()
			res.Successful += out.successful
			res.Batches += out.batches
			res.Failures = append(res.Failures, out.failures...)
			mu.Unlock()
			return err
		})
	}
	err := g.Wait()

	slices.SortStableFunc(res.Failures, func(a, b BatchFailure) int {
		return cmp.Or(cmp.Compare(a.Index, b.Index), cmp.Compare(a.Batch, b.Batch))
	})
	res.Duration = time.Since(started)

	if err != nil {
		return res, errors.New(err).
			Component("indexer").
			Category(errors.CategoryCancellation).
			Context("successful", res.Successful).
			Context("batches", res.Batches).
			Build()
	}
	ix.log.Info("indexing finished",
		logger.Int("successful", res.Successful),
		logger.Int("total", res.Total),
		logger.Int("batches", res.Batches),
		logger.Int("failed_batches", len(res.Failures)),
		logger.Duration("duration", res.Duration))
	return res, nil
}

func (ix *Indexer) indexTenant(ctx context.Context, group *tenantGroup) (tenantResult, error) {
	var out tenantResult
	batches := split(group.records, ix.cfg.BatchSize)
	ix.log.Info("uploading tenant records",
		logger.String("tenant_id", group.tenantID),
		logger.String("index", group.index),
		logger.Int("records", len(group.records)),
		logger.Int("batches", len(batches)))

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if ix.limiter != nil {
			if err := ix.limiter.Wait(ctx); err != nil {
				return out, err
			}
		}
		ok, failure := ix.submit(ctx, group, i+1, len(batches), batch)
		out.successful += ok
		out.batches++
		if failure != nil {
			out.failures = append(out.failures, *failure)
		}
	}
	return out, nil
}

// submit sends one batch and returns its successful count and, when anything
// failed, the failure entry.
func (ix *Indexer) submit(ctx context.Context, group *tenantGroup, n, total int, batch []*record.MediaRecord) (int, *BatchFailure) {
	start := time.Now()
	docs, err := encodeDocuments(batch)
	var results []ItemResult
	if err == nil {
		results, err = ix.writer.Bulk(ctx, group.index, docs)
	}
	elapsed := time.Since(start)
	if ix.recorder != nil {
		ix.recorder.RecordDuration(metrics.OpBulkBatch, elapsed.Seconds())
	}

	if err != nil {
		wrapped := errors.New(err).
			Component("indexer").
			Category(errors.CategoryIndexing).
			Context("index", group.index).
			Context("batch", n).
			Timing("bulk", elapsed).
			Build()
		ix.log.Error("batch upload failed",
			logger.Error(wrapped),
			logger.String("index", group.index),
			logger.Int("batch", n),
			logger.Int("size", len(batch)))
		ix.recordBatch(group.index, metrics.StatusError, 0, len(batch))
		if ix.recorder != nil {
			ix.recorder.RecordError(metrics.OpBulkBatch, metrics.ErrorTypeTransport)
		}
		return 0, &BatchFailure{
			TenantID: group.tenantID,
			Index:    group.index,
			Batch:    n,
			Size:     len(batch),
			Error:    err.Error(),
		}
	}

	successful, failed, samples := tally(results, len(batch))
	ix.log.Info("batch uploaded",
		logger.String("index", group.index),
		logger.Int("batch", n),
		logger.Int("of", total),
		logger.Int("size", len(batch)),
		logger.Int("failed", failed),
		logger.Duration("duration", elapsed))

	if failed == 0 {
		ix.recordBatch(group.index, metrics.StatusSuccess, successful, 0)
		return successful, nil
	}

	ix.recordBatch(group.index, metrics.StatusPartial, successful, failed)
	if ix.recorder != nil {
		for range failed {
			ix.recorder.RecordError(metrics.OpBulkBatch, metrics.ErrorTypeDocument)
		}
	}
	for i, s := range samples {
		ix.log.Warn("document rejected",
			logger.String("index", group.index),
			logger.Int("batch", n),
			logger.Int("sample", i+1),
			logger.String("document_id", s.ID),
			logger.String("type", s.Type),
			logger.String("reason", s.Reason),
			logger.String("caused_by", s.CausedBy))
	}
	if failed > len(samples) {
		ix.log.Warn("more documents rejected", logger.Int("count", failed-len(samples)))
	}
	return successful, &BatchFailure{
		TenantID: group.tenantID,
		Index:    group.index,
		Batch:    n,
		Size:     len(batch),
		Failed:   failed,
		Samples:  samples,
		Omitted:  failed - len(samples),
	}
}

func (ix *Indexer) recordBatch(index, status string, indexed, failed int) {
	if ix.recorder == nil {
		return
	}
	ix.recorder.RecordOperation(metrics.OpBulkBatch, status)
	if dr, ok := ix.recorder.(metrics.DocumentRecorder); ok {
		dr.RecordDocuments(index, indexed, failed)
	}
}

func encodeDocuments(batch []*record.MediaRecord) ([][]byte, error) {
	docs := make([][]byte, 0, len(batch))
	for _, r := range batch {
		doc, err := record.Marshal(r)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
