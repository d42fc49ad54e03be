// Package export stores run artifacts (the records file and the error report)
// on the configured destinations.
package export

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tphakala/mediaseed/internal/conf"
	"github.com/tphakala/mediaseed/internal/errors"
	"github.com/tphakala/mediaseed/internal/logger"
)

// Target is a destination for artifacts.
type Target interface {
	// Name returns the name of the target
	Name() string
	// Store writes data under name, replacing any previous artifact of that name
	Store(ctx context.Context, name string, data []byte) error
	// Validate checks the target configuration without writing anything
	Validate() error
}

// UploadRecorder receives one call per store attempt.
type UploadRecorder interface {
	RecordUpload(target, status string, size int, seconds float64)
}

// GetLogger returns the export module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("export")
}

// FromSettings builds every enabled target. A target that fails validation
// is an error; nothing is returned in that case.
func FromSettings(ctx context.Context, settings *conf.ExportSettings) ([]Target, error) {
	var targets []Target
	if settings.Local.Enabled {
		targets = append(targets, NewLocalTarget(settings.Local.Path))
	}
	if settings.S3.Enabled {
		t, err := NewS3Target(ctx, &settings.S3)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	if settings.FTP.Enabled {
		targets = append(targets, NewFTPTarget(&settings.FTP))
	}

	for _, t := range targets {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	return targets, nil
}

// Dispatch stores the artifact on every target concurrently. A failing
// target does not stop the others; all failures are joined into the
// returned error.
func Dispatch(ctx context.Context, targets []Target, name string, data []byte, rec UploadRecorder) error {
	log := GetLogger()
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for _, t := range targets {
		g.Go(func() error {
			start := time.Now()
			err := t.Store(ctx, name, data)
			elapsed := time.Since(start)

			status := "success"
			if err != nil {
				status = "error"
			}
			if rec != nil {
				rec.RecordUpload(t.Name(), status, len(data), elapsed.Seconds())
			}

			if err != nil {
				log.Error("artifact export failed",
					logger.Error(err),
					logger.String("target", t.Name()),
					logger.String("artifact", name))
				mu.Lock()
				errs = append(errs, storeError(err, t.Name(), name))
				mu.Unlock()
				return nil
			}
			log.Info("artifact exported",
				logger.String("target", t.Name()),
				logger.String("artifact", name),
				logger.Int("bytes", len(data)),
				logger.Duration("duration", elapsed))
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func storeError(err error, target, name string) error {
	return errors.New(err).
		Component("export").
		Category(errors.CategoryExport).
		Context("target", target).
		Context("artifact", name).
		Build()
}
