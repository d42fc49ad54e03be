// Package datastore keeps a SQLite history of generate runs and their failed
// bulk batches.
package datastore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tphakala/mediaseed/internal/errors"
	"github.com/tphakala/mediaseed/internal/indexer"
	"github.com/tphakala/mediaseed/internal/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// Store is the run history database.
type Store struct {
	db *gorm.DB
}

// Open opens or creates the database at path and migrates the schema. SQL
// statements are logged at trace level on the datastore module.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, dbError(err, "mkdir").Context("path", path).Build()
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.NewGormLoggerAdapter(GetLogger(), slowQueryThreshold),
	})
	if err != nil {
		return nil, dbError(err, "open").Context("path", path).Build()
	}
	if err := db.AutoMigrate(&Run{}, &BatchFailureRow{}); err != nil {
		return nil, dbError(err, "migrate").Context("path", path).Build()
	}
	GetLogger().Debug("history database ready", logger.String("path", path))
	return &Store{db: db}, nil
}

func dbError(err error, op string) *errors.ErrorBuilder {
	return errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", op)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return dbError(err, "close").Build()
	}
	return sqlDB.Close()
}

// SaveRun inserts run together with its failures.
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return dbError(err, "save_run").Context("run_id", run.RunID).Build()
	}
	return nil
}

// ListRuns returns the most recent runs first, at most limit of them, with
// their failures loaded.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	var runs []Run
	q := s.db.WithContext(ctx).
		Preload("Failures", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("started_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, dbError(err, "list_runs").Build()
	}
	return runs, nil
}

// GetRun looks a run up by its run id.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	var run Run
	err := s.db.WithContext(ctx).Preload("Failures").Where("run_id = ?", runID).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Newf("run %s not found", runID).
			Component("datastore").
			Category(errors.CategoryNotFound).
			Build()
	}
	if err != nil {
		return nil, dbError(err, "get_run").Context("run_id", runID).Build()
	}
	return &run, nil
}

// FormatSeed renders a seed for the Seed column.
func FormatSeed(seed uint64) string {
	return strconv.FormatUint(seed, 10)
}

// FailureRows converts indexer failure reports into rows.
func FailureRows(failures []indexer.BatchFailure) ([]BatchFailureRow, error) {
	rows := make([]BatchFailureRow, 0, len(failures))
	for _, f := range failures {
		row := BatchFailureRow{
			TenantID: f.TenantID,
			Index:    f.Index,
			Batch:    f.Batch,
			Size:     f.Size,
			Failed:   f.Failed,
			Omitted:  f.Omitted,
			Error:    f.Error,
		}
		if len(f.Samples) > 0 {
			data, err := json.Marshal(f.Samples)
			if err != nil {
				return nil, dbError(err, "encode_samples").Build()
			}
			row.Samples = string(data)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// DecodeSamples parses the Samples column.
func (r *BatchFailureRow) DecodeSamples() ([]indexer.ErrorSample, error) {
	if r.Samples == "" {
		return nil, nil
	}
	var samples []indexer.ErrorSample
	if err := json.Unmarshal([]byte(r.Samples), &samples); err != nil {
		return nil, dbError(err, "decode_samples").Build()
	}
	return samples, nil
}
