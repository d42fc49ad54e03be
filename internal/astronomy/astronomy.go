// Package astronomy derives the sun, moon and feeding-window block of a
// capture from its local time and weather snapshot.
package astronomy

import (
	"math"
	"time"

	"github.com/tphakala/mediaseed/internal/catalog"
	"github.com/tphakala/mediaseed/internal/numeric"
	"github.com/tphakala/mediaseed/internal/randomness"
	"github.com/tphakala/mediaseed/internal/temporal"
	"github.com/tphakala/mediaseed/internal/weather"
)

// Source is the provider name stamped on every snapshot.
const Source = "skyfield"

// Sun positions.
const (
	Dawn  = "dawn"
	Day   = "day"
	Dusk  = "dusk"
	Night = "night"
)

const synodicMonthDays = 29.5

// Sun is the solar block. Sunrise and Sunset come from the weather snapshot.
type Sun struct {
	Position string    `json:"position"`
	Altitude float64   `json:"altitude"`
	Azimuth  float64   `json:"azimuth"`
	Sunrise  time.Time `json:"sunrise"`
	Sunset   time.Time `json:"sunset"`
}

// Moon is the lunar block.
type Moon struct {
	Phase            string    `json:"phase"`
	Illumination     float64   `json:"illumination"`
	DaysSinceNewMoon float64   `json:"days_since_new_moon"`
	Altitude         float64   `json:"altitude"`
	Azimuth          float64   `json:"azimuth"`
	Distance         float64   `json:"distance"`
	Moonrise         time.Time `json:"moonrise"`
	Moonset          time.Time `json:"moonset"`
}

// Window is a feeding period.
type Window struct {
	Start time.Time `json:"start_timestamp"`
	End   time.Time `json:"end_timestamp"`
}

// Feeding holds the two major and two minor solunar windows.
type Feeding struct {
	Major []Window `json:"major"`
	Minor []Window `json:"minor"`
}

// Snapshot is the astronomical block of a record.
type Snapshot struct {
	Sun              Sun       `json:"sun"`
	Moon             Moon      `json:"moon"`
	Feeding          Feeding   `json:"feeding"`
	Source           string    `json:"source"`
	RequestTimestamp time.Time `json:"request_timestamp"`
}

// SunPosition buckets a local hour.
func SunPosition(hour int) string {
	switch {
	case hour == 6:
		return Dawn
	case hour >= 7 && hour < 19:
		return Day
	case hour == 19:
		return Dusk
	default:
		return Night
	}
}

// pathAltitude and pathAzimuth are smooth periodic stand-ins for an
// ephemeris, with dayFraction in [0, 1).
func pathAltitude(dayFraction float64) float64 {
	return -90 + 180*math.Sin(math.Pi*dayFraction)
}

func pathAzimuth(dayFraction float64) float64 {
	return 90 + 180*dayFraction
}

// Synthesizer produces astronomy snapshots.
type Synthesizer struct {
	phases []catalog.MoonPhase
	rnd    *randomness.Source
}

// NewSynthesizer returns a Synthesizer drawing from rnd.
func NewSynthesizer(cat *catalog.Catalog, rnd *randomness.Source) *Synthesizer {
	return &Synthesizer{phases: cat.MoonPhases, rnd: rnd}
}

// Synthesize derives the snapshot for a capture at local. It must run after
// the weather synthesizer for the same capture.
func (s *Synthesizer) Synthesize(local time.Time, w weather.Snapshot) Snapshot {
	phase := randomness.Choice(s.rnd, s.phases)
	illumination := s.rnd.Uniform(phase.Illumination[0], phase.Illumination[1])
	daysSinceNew := s.rnd.Uniform(phase.DaysSinceNew[0], phase.DaysSinceNew[1])

	position := SunPosition(local.Hour())
	t := (float64(local.Hour()) + float64(local.Minute())/60) / 24

	sunAltitude := pathAltitude(t)
	switch position {
	case Night:
		sunAltitude = math.Min(sunAltitude, -0.5)
	case Dawn, Dusk:
		sunAltitude = s.rnd.Uniform(-5, 5)
	}

	moonTime := math.Mod(t*24+daysSinceNew/synodicMonthDays*24, 24)

	moonriseHour := (w.Sunrise.Hour() + 12 + s.rnd.IntRange(-2, 2)) % 24
	moonrise := temporal.OnDate(local, moonriseHour, s.rnd.IntRange(0, 59), s.rnd.IntRange(0, 59))
	moonset := moonrise.Add(12*time.Hour + time.Duration(s.rnd.IntRange(-30, 30))*time.Minute)

	major1 := moonrise.Add(time.Duration(s.rnd.IntRange(0, 2)) * time.Hour)
	major2 := moonset.Add(time.Duration(s.rnd.IntRange(-2, 0)) * time.Hour)
	const minorLead = 5*time.Hour + 30*time.Minute

	return Snapshot{
		Sun: Sun{
			Position: position,
			Altitude: numeric.Round(sunAltitude, 2),
			Azimuth:  numeric.Round(pathAzimuth(t), 2),
			Sunrise:  w.Sunrise,
			Sunset:   w.Sunset,
		},
		Moon: Moon{
			Phase:            phase.Name,
			Illumination:     numeric.Round(illumination, 3),
			DaysSinceNewMoon: numeric.Round(daysSinceNew, 1),
			Altitude:         numeric.Round(pathAltitude(moonTime/24), 2),
			Azimuth:          numeric.Round(pathAzimuth(moonTime/24), 2),
			Distance:         numeric.Round(220000+s.rnd.Uniform(0, 10000), 2),
			Moonrise:         moonrise,
			Moonset:          moonset,
		},
		Feeding: Feeding{
			Major: []Window{
				{Start: major1, End: major1.Add(2 * time.Hour)},
				{Start: major2, End: major2.Add(2 * time.Hour)},
			},
			Minor: []Window{
				{Start: major1.Add(-minorLead), End: major1.Add(-minorLead + time.Hour)},
				{Start: major2.Add(-minorLead), End: major2.Add(-minorLead + time.Hour)},
			},
		},
		Source:           Source,
		RequestTimestamp: w.RequestTimestamp.Add(s.rnd.Seconds(2, 10)),
	}
}
