package suncalc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSunEventTimesHelsinkiMidsummer(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("Europe/Helsinki")
	require.NoError(t, err)
	sc := NewSunCalc(60.1699, 24.9384)
	date := time.Date(2024, 6, 21, 15, 0, 0, 0, loc)

	times, err := sc.GetSunEventTimes(date)
	require.NoError(t, err)

	assert.Equal(t, loc, times.Sunrise.Location())
	assert.Equal(t, 21, times.Sunrise.Day())
	// Sunrise in Helsinki at midsummer is just before 04:00 local.
	assert.Equal(t, 3, times.Sunrise.Hour())
	assert.Equal(t, 22, times.Sunset.Hour())
	assert.True(t, times.Sunrise.Before(times.Sunset))

	cached, err := sc.GetSunEventTimes(date.Add(2 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, times, cached)
}

func TestSunriseSunsetTexas(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	sc := NewSunCalc(30.990075, -99.607781)
	date := time.Date(2025, 3, 20, 0, 0, 0, 0, loc)

	times, err := sc.GetSunEventTimes(date)
	require.NoError(t, err)

	assert.Equal(t, 7, times.Sunrise.Hour())
	assert.Equal(t, 19, times.Sunset.Hour())
	assert.InDelta(t, 12*time.Hour, times.Sunset.Sub(times.Sunrise), float64(30*time.Minute))
}
