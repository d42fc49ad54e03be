package datastore

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/mediaseed/internal/errors"
	"github.com/tphakala/mediaseed/internal/indexer"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveAndListRuns(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	rows, err := FailureRows([]indexer.BatchFailure{
		{TenantID: "tenant-001", Index: "wisr-media-tenant001", Batch: 1, Size: 100, Failed: 3,
			Samples: []indexer.ErrorSample{{ID: "a", Type: "mapper_parsing_exception", Reason: "bad"}}},
		{TenantID: "tenant-001", Index: "wisr-media-tenant001", Batch: 2, Size: 50, Error: "timeout"},
	})
	require.NoError(t, err)

	first := &Run{RunID: "run-1", StartedAt: base, Seed: FormatSeed(math.MaxUint64), Requested: 10, Generated: 10}
	second := &Run{RunID: "run-2", StartedAt: base.Add(time.Hour), Seed: FormatSeed(42), Requested: 150,
		Generated: 149, Failed: 1, Indexed: 146, IndexTotal: 149, Failures: rows}
	require.NoError(t, store.SaveRun(ctx, first))
	require.NoError(t, store.SaveRun(ctx, second))

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].RunID)
	assert.Equal(t, "run-1", runs[1].RunID)
	assert.Equal(t, "18446744073709551615", runs[1].Seed)
	assert.Empty(t, runs[1].Failures)

	require.Len(t, runs[0].Failures, 2)
	assert.Equal(t, 1, runs[0].Failures[0].Batch)
	samples, err := runs[0].Failures[0].DecodeSamples()
	require.NoError(t, err)
	assert.Equal(t, []indexer.ErrorSample{{ID: "a", Type: "mapper_parsing_exception", Reason: "bad"}}, samples)
	assert.Equal(t, "timeout", runs[0].Failures[1].Error)

	limited, err := store.ListRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestGetRun(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveRun(ctx, &Run{RunID: "abc", StartedAt: time.Now(), Generated: 5}))

	run, err := store.GetRun(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 5, run.Generated)

	_, err = store.GetRun(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestDuplicateRunIDRejected(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveRun(ctx, &Run{RunID: "dup"}))
	err := store.SaveRun(ctx, &Run{RunID: "dup"})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryDatabase))
}

func TestDecodeSamplesEmpty(t *testing.T) {
	t.Parallel()

	samples, err := (&BatchFailureRow{}).DecodeSamples()
	require.NoError(t, err)
	assert.Nil(t, samples)
}
