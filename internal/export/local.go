package export

import (
	"context"
	"os"
	"path/filepath"

	"github.com/tphakala/mediaseed/internal/errors"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

// LocalTarget writes artifacts into a directory. Writes go to a temporary
// file that is renamed into place, so readers never see a partial file.
type LocalTarget struct {
	dir string
}

// NewLocalTarget returns a target writing into dir.
func NewLocalTarget(dir string) *LocalTarget {
	return &LocalTarget{dir: dir}
}

// Name returns the name of this target
func (t *LocalTarget) Name() string { return "local" }

// Validate checks that a directory is configured.
func (t *LocalTarget) Validate() error {
	if t.dir == "" {
		return errors.Newf("local export path is not configured").
			Component("export").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return nil
}

// Store writes data to dir/name.
func (t *LocalTarget) Store(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return WriteFileAtomic(filepath.Join(t.dir, name), data)
}

// WriteFileAtomic writes data to path through a temporary file in the same
// directory, creating the directory when missing.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fileError(err, path)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fileError(err, path)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fileError(err, path)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fileError(err, path)
	}
	if err := tmp.Close(); err != nil {
		return fileError(err, path)
	}
	if err := os.Chmod(tmpName, filePermissions); err != nil {
		return fileError(err, path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fileError(err, path)
	}
	return nil
}

func fileError(err error, path string) error {
	return errors.New(err).
		Component("export").
		Category(errors.CategoryFileIO).
		Context("path", path).
		Build()
}
