package weather

import (
	"time"

	"github.com/tphakala/mediaseed/internal/errors"
	"github.com/tphakala/mediaseed/internal/randomness"
	"github.com/tphakala/mediaseed/internal/suncalc"
	"github.com/tphakala/mediaseed/internal/temporal"
)

// Sun time modes accepted in configuration.
const (
	SunTimesBanded    = "banded"
	SunTimesEphemeris = "ephemeris"
)

// SunTimeSource yields sunrise and sunset on the calendar date of local.
type SunTimeSource interface {
	SunTimes(local time.Time, lat, lon float64) (sunrise, sunset time.Time, err error)
}

// BandedSunTimes pins sunrise to 07:20-07:35 and sunset to 19:45-19:59 local,
// ignoring the location.
type BandedSunTimes struct {
	rnd *randomness.Source
}

// NewBandedSunTimes returns the banded source.
func NewBandedSunTimes(rnd *randomness.Source) *BandedSunTimes {
	return &BandedSunTimes{rnd: rnd}
}

// SunTimes implements SunTimeSource.
func (b *BandedSunTimes) SunTimes(local time.Time, _, _ float64) (sunrise, sunset time.Time, err error) {
	sunrise = temporal.OnDate(local, 7, b.rnd.IntRange(20, 35), b.rnd.IntRange(0, 59))
	sunset = temporal.OnDate(local, 19, b.rnd.IntRange(45, 59), b.rnd.IntRange(0, 59))
	return sunrise, sunset, nil
}

// EphemerisSunTimes computes real sunrise and sunset for the device location.
// It keeps one calculator per location; it is not safe for concurrent use.
type EphemerisSunTimes struct {
	calcs map[[2]float64]*suncalc.SunCalc
}

// NewEphemerisSunTimes returns the ephemeris source.
func NewEphemerisSunTimes() *EphemerisSunTimes {
	return &EphemerisSunTimes{calcs: make(map[[2]float64]*suncalc.SunCalc)}
}

// SunTimes implements SunTimeSource.
func (e *EphemerisSunTimes) SunTimes(local time.Time, lat, lon float64) (sunrise, sunset time.Time, err error) {
	key := [2]float64{lat, lon}
	sc, ok := e.calcs[key]
	if !ok {
		sc = suncalc.NewSunCalc(lat, lon)
		e.calcs[key] = sc
	}
	times, err := sc.GetSunEventTimes(local)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return times.Sunrise, times.Sunset, nil
}

// NewSunTimeSource maps a configured mode to a source.
func NewSunTimeSource(mode string, rnd *randomness.Source) (SunTimeSource, error) {
	switch mode {
	case "", SunTimesBanded:
		return NewBandedSunTimes(rnd), nil
	case SunTimesEphemeris:
		return NewEphemerisSunTimes(), nil
	default:
		return nil, errors.Newf("unknown sun times mode %q", mode).
			Component("weather").
			Category(errors.CategoryConfiguration).
			Build()
	}
}
