package export

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/mediaseed/internal/conf"
	"github.com/tphakala/mediaseed/internal/errors"
)

func TestLocalTargetStore(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "exports")
	target := NewLocalTarget(dir)
	require.NoError(t, target.Validate())

	require.NoError(t, target.Store(context.Background(), "records.json", []byte(`[1]`)))
	require.NoError(t, target.Store(context.Background(), "records.json", []byte(`[1,2]`)))

	data, err := os.ReadFile(filepath.Join(dir, "records.json"))
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestLocalTargetValidate(t *testing.T) {
	t.Parallel()

	err := NewLocalTarget("").Validate()
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

type fakeUploader struct {
	mu     sync.Mutex
	inputs []*s3.PutObjectInput
	bodies []string
	err    error
}

func (f *fakeUploader) Upload(_ context.Context, in *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	body, _ := io.ReadAll(in.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, string(body))
	if f.err != nil {
		return nil, f.err
	}
	return &manager.UploadOutput{}, nil
}

func TestS3TargetStore(t *testing.T) {
	t.Parallel()

	up := &fakeUploader{}
	target := newS3Target("media-bucket", "/mediaseed/runs/", up)
	require.NoError(t, target.Validate())
	assert.Equal(t, "mediaseed/runs/records.json", target.Key("records.json"))

	require.NoError(t, target.Store(context.Background(), "records.json", []byte(`[]`)))
	require.Len(t, up.inputs, 1)
	assert.Equal(t, "media-bucket", *up.inputs[0].Bucket)
	assert.Equal(t, "mediaseed/runs/records.json", *up.inputs[0].Key)
	assert.Equal(t, "application/json", *up.inputs[0].ContentType)
	assert.Equal(t, `[]`, up.bodies[0])

	assert.Equal(t, "x.json", newS3Target("b", "", up).Key("x.json"))
}

func TestS3TargetErrors(t *testing.T) {
	t.Parallel()

	require.Error(t, newS3Target("", "", &fakeUploader{}).Validate())

	target := newS3Target("b", "", &fakeUploader{err: errors.NewStd("access denied")})
	err := target.Store(context.Background(), "x.json", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryNetwork))
}

// fakeFTP is an in-memory FTP server session.
type fakeFTP struct {
	dirs     map[string]bool
	files    map[string]string
	cwd      string
	loggedIn bool
	quit     bool
	storErr  error
}

func newFakeFTP() *fakeFTP {
	return &fakeFTP{dirs: map[string]bool{"/": true}, files: map[string]string{}, cwd: "/"}
}

func (f *fakeFTP) Login(user, password string) error {
	if user != "uploader" || password != "secret" {
		return errors.NewStd("530 Login incorrect")
	}
	f.loggedIn = true
	return nil
}

func (f *fakeFTP) CurrentDir() (string, error) { return f.cwd, nil }

func (f *fakeFTP) ChangeDir(p string) error {
	if !f.dirs[p] {
		return errors.NewStd("550 No such directory")
	}
	f.cwd = p
	return nil
}

func (f *fakeFTP) MakeDir(p string) error {
	if f.dirs[p] {
		return errors.NewStd("550 File exists")
	}
	f.dirs[p] = true
	return nil
}

func (f *fakeFTP) Stor(p string, r io.Reader) error {
	if f.storErr != nil {
		return f.storErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.files[p] = string(data)
	return nil
}

func (f *fakeFTP) Rename(from, to string) error {
	data, ok := f.files[from]
	if !ok {
		return errors.NewStd("550 not found")
	}
	delete(f.files, from)
	f.files[to] = data
	return nil
}

func (f *fakeFTP) Delete(p string) error {
	delete(f.files, p)
	return nil
}

func (f *fakeFTP) Quit() error {
	f.quit = true
	return nil
}

func newTestFTPTarget(conn *fakeFTP) *FTPTarget {
	target := NewFTPTarget(&conf.FTPExport{
		Host:     "ftp.test",
		Username: "uploader",
		Password: "secret",
		Path:     "/exports/mediaseed/",
	})
	target.dial = func(_ context.Context, addr string, timeout time.Duration) (ftpConn, error) {
		if addr != "ftp.test:21" || timeout != defaultFTPTimeout {
			return nil, errors.NewStd("unexpected dial " + addr)
		}
		return conn, nil
	}
	return target
}

func TestFTPTargetStore(t *testing.T) {
	t.Parallel()

	conn := newFakeFTP()
	target := newTestFTPTarget(conn)
	require.NoError(t, target.Validate())

	require.NoError(t, target.Store(context.Background(), "records.json", []byte(`[1]`)))
	assert.True(t, conn.loggedIn)
	assert.True(t, conn.quit)
	assert.True(t, conn.dirs["/exports"])
	assert.True(t, conn.dirs["/exports/mediaseed"])
	assert.Equal(t, map[string]string{"/exports/mediaseed/records.json": `[1]`}, conn.files)
	assert.Equal(t, "/", conn.cwd)
}

func TestFTPTargetStoreFailureCleansUp(t *testing.T) {
	t.Parallel()

	conn := newFakeFTP()
	conn.storErr = errors.NewStd("452 insufficient storage")
	target := newTestFTPTarget(conn)

	err := target.Store(context.Background(), "records.json", []byte(`[1]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "452")
	assert.Empty(t, conn.files)
	assert.True(t, conn.quit)
}

func TestFTPTargetLoginFailure(t *testing.T) {
	t.Parallel()

	conn := newFakeFTP()
	target := newTestFTPTarget(conn)
	target.password = "wrong"

	err := target.Store(context.Background(), "records.json", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryNetwork))
	assert.True(t, conn.quit)
}

type stubTarget struct {
	name string
	err  error

	mu     sync.Mutex
	stored map[string]string
}

func (s *stubTarget) Name() string { return s.name }
func (s *stubTarget) Validate() error { return nil }

func (s *stubTarget) Store(_ context.Context, name string, data []byte) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stored == nil {
		s.stored = map[string]string{}
	}
	s.stored[name] = string(data)
	return nil
}

type uploadCall struct {
	target, status string
	size           int
}

type fakeUploadRecorder struct {
	mu    sync.Mutex
	calls []uploadCall
}

func (f *fakeUploadRecorder) RecordUpload(target, status string, size int, _ float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, uploadCall{target, status, size})
}

func TestDispatch(t *testing.T) {
	t.Parallel()

	ok1 := &stubTarget{name: "local"}
	ok2 := &stubTarget{name: "s3"}
	bad := &stubTarget{name: "ftp", err: errors.NewStd("connection refused")}
	rec := &fakeUploadRecorder{}

	err := Dispatch(context.Background(), []Target{ok1, bad, ok2}, "records.json", []byte("data"), rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, errors.IsCategory(err, errors.CategoryExport))

	assert.Equal(t, "data", ok1.stored["records.json"])
	assert.Equal(t, "data", ok2.stored["records.json"])

	sort.Slice(rec.calls, func(i, j int) bool { return rec.calls[i].target < rec.calls[j].target })
	assert.Equal(t, []uploadCall{
		{"ftp", "error", 4},
		{"local", "success", 4},
		{"s3", "success", 4},
	}, rec.calls)
}

func TestDispatchNoTargets(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Dispatch(context.Background(), nil, "x", nil, nil))
}

func TestFromSettings(t *testing.T) {
	t.Parallel()

	targets, err := FromSettings(context.Background(), &conf.ExportSettings{
		Local: conf.LocalExport{Enabled: true, Path: t.TempDir()},
		FTP:   conf.FTPExport{Enabled: true, Host: "ftp.test"},
	})
	require.NoError(t, err)
	names := make([]string, len(targets))
	for i, target := range targets {
		names[i] = target.Name()
	}
	assert.Equal(t, "local,ftp", strings.Join(names, ","))

	_, err = FromSettings(context.Background(), &conf.ExportSettings{FTP: conf.FTPExport{Enabled: true}})
	require.Error(t, err)
}
