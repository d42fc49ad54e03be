package runner

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/mediaseed/internal/conf"
	"github.com/tphakala/mediaseed/internal/datastore"
	"github.com/tphakala/mediaseed/internal/errors"
	"github.com/tphakala/mediaseed/internal/indexer"
)

var testNow = time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

func testSettings(t *testing.T, count int) *conf.Settings {
	t.Helper()
	dir := t.TempDir()
	return &conf.Settings{
		Generation: conf.GenerationSettings{Seed: 7, ReferenceTime: "2025-06-01T12:00:00Z"},
		Tenants: []conf.Tenant{{
			ID:   "tenant-001",
			Name: "Default Tenant",
			Properties: []conf.Property{{
				ID:       "prop-123456",
				Name:     "Rain Creek Ranch",
				Timezone: "America/Chicago",
				Devices: []conf.Device{{
					ID:           "device-001",
					Name:         "Main Gate Camera",
					Make:         "Axis",
					Model:        "P1448-LE",
					SerialNumber: "ACCC8E123456",
					Location:     []float64{-99.607781, 30.990075},
					BoundaryID:   "bound-001",
				}},
			}},
		}},
		MediaCountPerDevice: conf.FixedCount(count),
		DateRange:           conf.DateRange{DaysBack: 30},
		Detection: conf.DetectionSettings{
			WildlifeProbability: 0.6,
			PeopleProbability:   0.2,
			VehicleProbability:  0.15,
			EmptyProbability:    0.05,
		},
		Weather: conf.WeatherSettings{SunTimes: "banded"},
		Output:  conf.OutputSettings{Path: filepath.Join(dir, "out", "records.json"), Pretty: true},
		Elasticsearch: conf.ElasticsearchSettings{
			IndexPrefix:     "wisr-media",
			BatchSize:       4,
			ParallelTenants: 1,
		},
		History: conf.HistorySettings{Path: filepath.Join(dir, "history.db")},
		Metrics: conf.MetricsSettings{Textfile: filepath.Join(dir, "metrics", "mediaseed.prom")},
	}
}

// fakeWriter rejects the documents whose submission position is in reject.
type fakeWriter struct {
	mu      sync.Mutex
	reject  map[int]bool
	connErr error
	docs    int
}

func (f *fakeWriter) CheckConnection(context.Context) (indexer.ClusterInfo, error) {
	if f.connErr != nil {
		return indexer.ClusterInfo{}, f.connErr
	}
	return indexer.ClusterInfo{ClusterName: "test", Version: "8.19.0"}, nil
}

func (f *fakeWriter) Bulk(_ context.Context, _ string, docs [][]byte) ([]indexer.ItemResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]indexer.ItemResult, len(docs))
	for i := range docs {
		n := f.docs
		f.docs++
		out[i] = indexer.ItemResult{ID: "doc", Status: 201}
		if f.reject[n] {
			out[i].Status = 400
			out[i].Error = &indexer.ItemError{Type: "mapper_parsing_exception", Reason: "bad field"}
		}
	}
	return out, nil
}

type memTarget struct {
	mu     sync.Mutex
	stored map[string][]byte
	err    error
}

func (m *memTarget) Name() string    { return "mem" }
func (m *memTarget) Validate() error { return nil }

func (m *memTarget) Store(_ context.Context, name string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stored == nil {
		m.stored = map[string][]byte{}
	}
	m.stored[name] = data
	return nil
}

func clock() time.Time { return testNow }

func TestRunWritesOutputWithoutEndpoint(t *testing.T) {
	t.Parallel()

	settings := testSettings(t, 5)
	sum, err := New(settings, WithClock(clock), WithTargets()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, sum.Requested)
	assert.Equal(t, 5, sum.Generated)
	assert.Zero(t, sum.Failed)
	assert.Equal(t, uint64(7), sum.Seed)
	assert.Nil(t, sum.Index)
	assert.Empty(t, sum.ReportPath)
	assert.Len(t, sum.RunID, 36)

	data, err := os.ReadFile(settings.Output.Path)
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	assert.Len(t, records, 5)
}

func TestRunIndexesAndReportsFailures(t *testing.T) {
	t.Parallel()

	settings := testSettings(t, 10)
	settings.History.Enabled = true
	settings.Metrics.Enabled = true
	w := &fakeWriter{reject: map[int]bool{1: true, 6: true}}
	target := &memTarget{}

	sum, err := New(settings, WithClock(clock), WithWriter(w), WithTargets(target)).Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sum.Index)

	assert.Equal(t, 8, sum.Index.Successful)
	assert.Equal(t, 10, sum.Index.Total)
	assert.Equal(t, 3, sum.Index.Batches)
	require.Len(t, sum.Index.Failures, 2)
	assert.Equal(t, settings.Output.Path+"_errors.json", sum.ReportPath)
	assert.NoError(t, sum.ExportErr)

	report, err := os.ReadFile(sum.ReportPath)
	require.NoError(t, err)
	var failures []indexer.BatchFailure
	require.NoError(t, json.Unmarshal(report, &failures))
	assert.Len(t, failures, 2)

	assert.Contains(t, target.stored, "records.json")
	assert.Contains(t, target.stored, "records.json_errors.json")

	assert.FileExists(t, settings.Metrics.Textfile)

	store, err := datastore.Open(settings.History.Path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	run, err := store.GetRun(context.Background(), sum.RunID)
	require.NoError(t, err)
	assert.Equal(t, 10, run.Generated)
	assert.Equal(t, 8, run.Indexed)
	assert.Equal(t, "7", run.Seed)
	assert.Len(t, run.Failures, 2)
}

func TestRunConnectionFailureIsFatal(t *testing.T) {
	t.Parallel()

	settings := testSettings(t, 2)
	w := &fakeWriter{connErr: errors.Newf("connection refused").
		Component("indexer").
		Category(errors.CategoryNetwork).
		Build()}

	sum, err := New(settings, WithClock(clock), WithWriter(w), WithTargets()).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryNetwork))
	require.NotNil(t, sum)
	assert.Equal(t, 2, sum.Generated)
	assert.Nil(t, sum.Index)
	assert.Zero(t, w.docs)
	assert.FileExists(t, settings.Output.Path)
}

func TestRunExportFailureDoesNotFailRun(t *testing.T) {
	t.Parallel()

	settings := testSettings(t, 1)
	target := &memTarget{err: errors.NewStd("disk full")}

	sum, err := New(settings, WithClock(clock), WithTargets(target)).Run(context.Background())
	require.NoError(t, err)
	require.Error(t, sum.ExportErr)
	assert.True(t, errors.IsCategory(sum.ExportErr, errors.CategoryExport))
}

func TestRunLegacyLayout(t *testing.T) {
	t.Parallel()

	settings := testSettings(t, 1)
	settings.Tenants = nil
	settings.Output.Path = ""

	sum, err := New(settings, WithClock(clock), WithLegacyCount(3), WithTargets()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Generated)
	assert.Empty(t, sum.Output)
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum, err := New(testSettings(t, 3), WithClock(clock), WithTargets()).Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryCancellation))
	require.NotNil(t, sum)
	assert.Zero(t, sum.Generated)
}

func TestRunSkipsMalformedDeviceFromConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
generation: {seed: 11, reference_time: "2025-06-01T12:00:00Z"}
tenants:
  - id: tenant-a
    properties:
      - id: p1
        timezone: America/Chicago
        devices:
          - {id: cam-good, location: [-99.6, 30.9]}
          - {id: cam-broken}
media_count_per_device: 4
`), 0o600))

	res, err := conf.Load(path)
	require.NoError(t, err)
	require.NoError(t, res.FallbackReason)
	settings := res.Settings
	settings.Output.Path = filepath.Join(dir, "records.json")

	sum, err := New(settings, WithClock(clock), WithTargets()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, sum.Requested)
	assert.Equal(t, 4, sum.Generated)
	assert.Equal(t, 4, sum.Failed)

	data, err := os.ReadFile(settings.Output.Path)
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 4)
	for _, r := range records {
		assert.Equal(t, "tenant-a", r["tenant_id"])
		assert.Equal(t, "cam-good", r["device"].(map[string]any)["id"])
	}
}

func TestArtifactName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "records.json", ArtifactName("/tmp/out/records.json", "abc"))
	assert.Equal(t, "mediaseed-abc.json", ArtifactName("", "abc"))
}
