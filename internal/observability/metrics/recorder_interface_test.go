package metrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Recorder         = (*GeneratorMetrics)(nil)
	_ Recorder         = (*IndexerMetrics)(nil)
	_ DocumentRecorder = (*IndexerMetrics)(nil)
	_ Recorder         = (*fakeRecorder)(nil)
)

// recordBatch is what the indexer reports for one bulk request.
func recordBatch(r Recorder, failedDocs int, transportErr bool, seconds float64) {
	r.RecordDuration(OpBulkBatch, seconds)
	switch {
	case transportErr:
		r.RecordOperation(OpBulkBatch, StatusError)
		r.RecordError(OpBulkBatch, ErrorTypeTransport)
	case failedDocs > 0:
		r.RecordOperation(OpBulkBatch, StatusPartial)
		r.RecordError(OpBulkBatch, ErrorTypeDocument)
	default:
		r.RecordOperation(OpBulkBatch, StatusSuccess)
	}
}

func TestBatchOutcomes(t *testing.T) {
	t.Parallel()

	rec := newFakeRecorder()
	recordBatch(rec, 0, false, 0.2)
	recordBatch(rec, 3, false, 0.4)
	recordBatch(rec, 0, true, 1.5)

	assert.Equal(t, 1, rec.op(OpBulkBatch, StatusSuccess))
	assert.Equal(t, 1, rec.op(OpBulkBatch, StatusPartial))
	assert.Equal(t, 1, rec.op(OpBulkBatch, StatusError))
	assert.Equal(t, 1, rec.err(OpBulkBatch, ErrorTypeTransport))
	assert.Equal(t, 1, rec.err(OpBulkBatch, ErrorTypeDocument))
	assert.Equal(t, []float64{0.2, 0.4, 1.5}, rec.durations[OpBulkBatch])
}

func TestBatchOutcomesOnCollector(t *testing.T) {
	t.Parallel()

	m, err := NewIndexerMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	recordBatch(m, 0, false, 0.1)
	recordBatch(m, 2, false, 0.1)
	recordBatch(m, 2, false, 0.1)

	assert.InDelta(t, 2, testutil.ToFloat64(m.batchesTotal.WithLabelValues(OpBulkBatch, StatusPartial)), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.errorsTotal.WithLabelValues(OpBulkBatch, ErrorTypeDocument)), 0)
}

func TestFakeRecorderConcurrent(t *testing.T) {
	t.Parallel()

	rec := newFakeRecorder()
	const workers, calls = 8, 50

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range calls {
				recordBatch(rec, 0, false, 0.01)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers*calls, rec.op(OpBulkBatch, StatusSuccess))
	assert.Len(t, rec.durations[OpBulkBatch], workers*calls)
}
