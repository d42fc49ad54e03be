// Package weather synthesizes the weather snapshot attached to a capture.
// Values are plausible for the local time of day, not physically modelled.
package weather

import (
	"strings"
	"time"

	"github.com/tphakala/mediaseed/internal/catalog"
	"github.com/tphakala/mediaseed/internal/numeric"
	"github.com/tphakala/mediaseed/internal/randomness"
)

// Source is the provider name stamped on every snapshot.
const Source = "openweathermap"

// Conditions is the OpenWeatherMap-style condition block.
type Conditions struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Snapshot is the weather observation for one capture. Sunrise and Sunset
// are consumed verbatim by the astronomy synthesizer.
type Snapshot struct {
	Timestamp        time.Time  `json:"timestamp"`
	Temperature      float64    `json:"temperature"`
	FeelsLike        float64    `json:"feels_like"`
	Humidity         int        `json:"humidity"`
	DewPoint         float64    `json:"dew_point"`
	Pressure         int        `json:"pressure"`
	WindSpeed        float64    `json:"wind_speed"`
	WindGust         float64    `json:"wind_gust"`
	WindDirection    int        `json:"wind_direction"`
	Clouds           int        `json:"clouds"`
	Visibility       int        `json:"visibility"`
	UVI              float64    `json:"uvi"`
	Conditions       Conditions `json:"conditions"`
	Sunrise          time.Time  `json:"sunrise"`
	Sunset           time.Time  `json:"sunset"`
	Source           string     `json:"source"`
	RequestTimestamp time.Time  `json:"request_timestamp"`
}

// Synthesizer produces weather snapshots.
type Synthesizer struct {
	conditions []catalog.WeatherCondition
	rnd        *randomness.Source
	sun        SunTimeSource
}

// NewSynthesizer returns a Synthesizer drawing from rnd. A nil sun source
// selects the banded sunrise and sunset times.
func NewSynthesizer(cat *catalog.Catalog, rnd *randomness.Source, sun SunTimeSource) *Synthesizer {
	if sun == nil {
		sun = NewBandedSunTimes(rnd)
	}
	return &Synthesizer{conditions: cat.WeatherConditions, rnd: rnd, sun: sun}
}

// IsDaytime reports whether the local hour uses day icons.
func IsDaytime(hour int) bool {
	return hour >= 6 && hour < 20
}

// BaseTemperature is the diurnal curve in °F before noise is added.
func BaseTemperature(hour int) float64 {
	base := 70.0
	switch {
	case hour < 6:
		base -= 10
	case hour < 12:
		base -= 5 + float64(hour-6)
	case hour < 18:
		base += 5 - float64(hour-12)*0.5
	default:
		base -= float64(hour - 18)
	}
	return base
}

// FeelsLike applies the apparent temperature adjustment.
func FeelsLike(temp float64, humidity int, wind float64) float64 {
	switch {
	case temp > 70:
		return temp - 0.7*(1-float64(humidity)/100)
	case temp < 50:
		return temp + 0.5*wind
	default:
		return temp
	}
}

// DewPoint is the linear approximation temp - (100 - humidity) / 5.
func DewPoint(temp float64, humidity int) float64 {
	return temp - float64(100-humidity)/5
}

// Synthesize builds a snapshot for a capture at local, taken by a device at
// (lat, lon). local must already be in the property's timezone.
func (s *Synthesizer) Synthesize(local time.Time, lat, lon float64) (Snapshot, error) {
	condition := randomness.Choice(s.rnd, s.conditions)
	icon := condition.Icon
	if !IsDaytime(local.Hour()) {
		icon = strings.TrimSuffix(icon, "d") + "n"
	}

	temp := BaseTemperature(local.Hour()) + s.rnd.Uniform(-5, 5)
	humidity := s.rnd.IntRange(30, 80)
	pressure := s.rnd.IntRange(1000, 1020)

	windSpeed := s.rnd.Uniform(0, 15)
	var windGust float64
	if windSpeed > 5 {
		windGust = windSpeed + s.rnd.Uniform(0, 5)
	}
	windDirection := s.rnd.IntRange(0, 359)

	observed := local.Add(s.rnd.Seconds(5, 30))

	sunrise, sunset, err := s.sun.SunTimes(local, lat, lon)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Timestamp:     observed,
		Temperature:   numeric.Round(temp, 2),
		FeelsLike:     numeric.Round(FeelsLike(temp, humidity, windSpeed), 2),
		Humidity:      humidity,
		DewPoint:      numeric.Round(DewPoint(temp, humidity), 2),
		Pressure:      pressure,
		WindSpeed:     numeric.Round(windSpeed, 2),
		WindGust:      numeric.Round(windGust, 2),
		WindDirection: windDirection,
		Clouds:        s.rnd.IntRange(0, 100),
		Visibility:    s.rnd.IntRange(5000, 10000),
		UVI:           numeric.Round(s.rnd.Uniform(0, 10), 2),
		Conditions: Conditions{
			ID:          condition.ID,
			Main:        condition.Main,
			Description: condition.Description,
			Icon:        icon,
		},
		Sunrise: sunrise,
		Sunset:  sunset,
		Source:  Source,
	}
	snap.RequestTimestamp = observed.Add(s.rnd.Seconds(5, 20))
	return snap, nil
}
