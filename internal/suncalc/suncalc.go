// Package suncalc computes sunrise and sunset for a device location. It backs
// the ephemeris sun-times mode of the weather synthesizer.
package suncalc

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sj14/astral/pkg/astral"

	"github.com/tphakala/mediaseed/internal/errors"
)

// SunEventTimes holds sun event times in the location of the requested date
type SunEventTimes struct {
	Sunrise time.Time
	Sunset  time.Time
}

// SunCalc calculates and caches sun event times for one observer
type SunCalc struct {
	cache    *cache.Cache
	observer astral.Observer
}

// NewSunCalc creates a new SunCalc instance. Entries never expire; a
// generation run only touches the dates inside its window.
func NewSunCalc(latitude, longitude float64) *SunCalc {
	return &SunCalc{
		cache:    cache.New(cache.NoExpiration, 0),
		observer: astral.Observer{Latitude: latitude, Longitude: longitude},
	}
}

// GetSunEventTimes returns the sun event times for the calendar date of date,
// expressed in date's location.
func (sc *SunCalc) GetSunEventTimes(date time.Time) (SunEventTimes, error) {
	key := date.Format("2006-01-02") + "@" + date.Location().String()
	if v, ok := sc.cache.Get(key); ok {
		return v.(SunEventTimes), nil
	}

	times, err := sc.calculateSunEventTimes(date)
	if err != nil {
		return SunEventTimes{}, errors.New(err).
			Component("suncalc").
			Category(errors.CategoryGeneration).
			Context("date", date.Format("2006-01-02")).
			Context("latitude", sc.observer.Latitude).
			Context("longitude", sc.observer.Longitude).
			Build()
	}

	sc.cache.SetDefault(key, times)
	return times, nil
}

func (sc *SunCalc) calculateSunEventTimes(date time.Time) (SunEventTimes, error) {
	loc := date.Location()
	// astral works on the calendar date; anchor it at local noon so the
	// UTC conversion never lands on a neighbouring day.
	y, m, d := date.Date()
	day := time.Date(y, m, d, 12, 0, 0, 0, loc)

	sunrise, err := astral.Sunrise(sc.observer, day)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate sunrise: %w", err)
	}
	sunset, err := astral.Sunset(sc.observer, day)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate sunset: %w", err)
	}

	return SunEventTimes{
		Sunrise: sunrise.In(loc).Truncate(time.Second),
		Sunset:  sunset.In(loc).Truncate(time.Second),
	}, nil
}
