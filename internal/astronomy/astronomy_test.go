package astronomy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/mediaseed/internal/catalog"
	"github.com/tphakala/mediaseed/internal/randomness"
	"github.com/tphakala/mediaseed/internal/weather"
)

func TestSunPosition(t *testing.T) {
	t.Parallel()

	want := map[int]string{0: Night, 5: Night, 6: Dawn, 7: Day, 12: Day, 18: Day, 19: Dusk, 20: Night, 23: Night}
	for h, pos := range want {
		assert.Equal(t, pos, SunPosition(h), "hour %d", h)
	}
}

func TestSynthesizeReusesWeatherSunTimes(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	cat := catalog.MustDefault()
	rnd := randomness.New(11)
	ws := weather.NewSynthesizer(cat, rnd, nil)
	as := NewSynthesizer(cat, rnd)

	bands := make(map[string]catalog.MoonPhase)
	for _, p := range cat.MoonPhases {
		bands[p.Name] = p
	}

	for i := range 500 {
		local := time.Date(2025, 4, 1+i%28, i%24, (i*7)%60, 0, 0, loc)
		w, err := ws.Synthesize(local, 31, -99)
		require.NoError(t, err)
		a := as.Synthesize(local, w)

		assert.Equal(t, w.Sunrise, a.Sun.Sunrise)
		assert.Equal(t, w.Sunset, a.Sun.Sunset)
		assert.Equal(t, SunPosition(local.Hour()), a.Sun.Position)
		if a.Sun.Position == Night {
			assert.LessOrEqual(t, a.Sun.Altitude, -0.5)
		}

		band, ok := bands[a.Moon.Phase]
		require.True(t, ok, a.Moon.Phase)
		assert.GreaterOrEqual(t, a.Moon.Illumination, band.Illumination[0]-0.001)
		assert.LessOrEqual(t, a.Moon.Illumination, band.Illumination[1]+0.001)
		assert.GreaterOrEqual(t, a.Moon.DaysSinceNewMoon, band.DaysSinceNew[0]-0.05)
		assert.LessOrEqual(t, a.Moon.DaysSinceNewMoon, band.DaysSinceNew[1]+0.05)

		gap := a.Moon.Moonset.Sub(a.Moon.Moonrise)
		assert.GreaterOrEqual(t, gap, 11*time.Hour+30*time.Minute)
		assert.LessOrEqual(t, gap, 12*time.Hour+30*time.Minute)

		require.Len(t, a.Feeding.Major, 2)
		require.Len(t, a.Feeding.Minor, 2)
		for j := range 2 {
			assert.Equal(t, 2*time.Hour, a.Feeding.Major[j].End.Sub(a.Feeding.Major[j].Start))
			assert.Equal(t, time.Hour, a.Feeding.Minor[j].End.Sub(a.Feeding.Minor[j].Start))
			assert.Equal(t, 5*time.Hour+30*time.Minute, a.Feeding.Major[j].Start.Sub(a.Feeding.Minor[j].Start))
		}
		assert.True(t, a.RequestTimestamp.After(w.RequestTimestamp))
	}
}
