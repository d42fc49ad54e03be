package history

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/mediaseed/internal/conf"
	"github.com/tphakala/mediaseed/internal/datastore"
	"github.com/tphakala/mediaseed/internal/indexer"
)

func seedHistory(t *testing.T) *conf.Settings {
	t.Helper()
	settings := &conf.Settings{}
	settings.History.Path = filepath.Join(t.TempDir(), "history.db")

	store, err := datastore.Open(settings.History.Path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	rows, err := datastore.FailureRows([]indexer.BatchFailure{{
		TenantID: "tenant-001",
		Index:    "wisr-media-tenant001",
		Batch:    1,
		Size:     100,
		Failed:   3,
		Samples:  []indexer.ErrorSample{{ID: "m-1", Type: "mapper_parsing_exception", Reason: "bad date"}},
	}})
	require.NoError(t, err)

	started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveRun(context.Background(), &datastore.Run{
		RunID: "run-a", StartedAt: started, Requested: 100, Generated: 100,
	}))
	require.NoError(t, store.SaveRun(context.Background(), &datastore.Run{
		RunID: "run-b", StartedAt: started.Add(time.Hour), Requested: 100, Generated: 100,
		Indexed: 97, IndexTotal: 100, Failures: rows,
	}))
	return settings
}

func execute(t *testing.T, settings *conf.Settings, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := Command(settings)
	cmd.SetOut(&out)
	cmd.SetArgs(append([]string{}, args...))
	cmd.SetContext(context.Background())
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestHistoryLists(t *testing.T) {
	t.Parallel()

	out := execute(t, seedHistory(t))
	assert.Contains(t, out, "RUN ID")
	assert.Less(t, bytes.Index([]byte(out), []byte("run-b")), bytes.Index([]byte(out), []byte("run-a")))
	assert.Contains(t, out, "97/100")
}

func TestHistoryShowsRun(t *testing.T) {
	t.Parallel()

	out := execute(t, seedHistory(t), "run-b")
	assert.Contains(t, out, "Indexed:        97/100")
	assert.Contains(t, out, "wisr-media-tenant001 batch 1: 3 of 100 failed")
	assert.Contains(t, out, "m-1: mapper_parsing_exception: bad date")
}

func TestHistoryEmpty(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}
	settings.History.Path = filepath.Join(t.TempDir(), "history.db")
	assert.Contains(t, execute(t, settings, "--limit", "5"), "No runs recorded.")
}
