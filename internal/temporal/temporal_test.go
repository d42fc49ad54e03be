package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/mediaseed/internal/errors"
	"github.com/tphakala/mediaseed/internal/randomness"
)

var ref = time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

func TestSampleOrdering(t *testing.T) {
	t.Parallel()

	w := NewWindow(ref, 30)
	s := NewSampler(w, randomness.New(7))
	for range 2000 {
		ts := s.Sample()
		assert.True(t, w.Contains(ts.Capture), "capture %v outside window", ts.Capture)
		assert.False(t, ts.Upload.Before(ts.Capture))
		assert.False(t, ts.Processing.Before(ts.Upload))
		assert.LessOrEqual(t, ts.Upload.Sub(ts.Capture), MaxUploadDelay*time.Second)
		assert.LessOrEqual(t, ts.Processing.Sub(ts.Upload), MaxProcessingDelay*time.Second)
		assert.Zero(t, ts.Capture.Nanosecond())
	}
}

func TestSampleDeterministic(t *testing.T) {
	t.Parallel()

	w := NewWindow(ref, 7)
	a := NewSampler(w, randomness.New(99))
	b := NewSampler(w, randomness.New(99))
	for range 50 {
		assert.Equal(t, a.Sample(), b.Sample())
	}
}

func TestWindow(t *testing.T) {
	t.Parallel()

	w := NewWindow(ref.Add(500*time.Millisecond), 1)
	assert.Equal(t, ref, w.End)
	assert.Equal(t, 86400, w.Seconds())
	assert.True(t, w.Contains(w.Start))
	assert.False(t, w.Contains(w.End.Add(time.Second)))
}

func TestLocalConversion(t *testing.T) {
	t.Parallel()

	loc, err := LoadZone("America/Chicago")
	require.NoError(t, err)

	local := Times{Capture: ref}.In(loc)
	// Chicago is on CDT (UTC-5) on this date.
	assert.Equal(t, 7, local.Capture.Hour())
	assert.True(t, local.Capture.Equal(ref))

	utc, err := LoadZone("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, utc)

	_, err = LoadZone("Nowhere/Special")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestOnDateAndFilename(t *testing.T) {
	t.Parallel()

	loc, err := LoadZone("Europe/Helsinki")
	require.NoError(t, err)
	day := time.Date(2025, 1, 2, 23, 59, 0, 0, loc)
	got := OnDate(day, 7, 25, 9)
	assert.Equal(t, time.Date(2025, 1, 2, 7, 25, 9, 0, loc), got)

	assert.Equal(t, "03_20250102235900000.mp4", Filename(day, 3, "mp4"))
}
