// Package temporal samples capture timestamps inside the generation window
// and derives the upload and processing times that follow them.
package temporal

import (
	"fmt"
	"time"

	"github.com/tphakala/mediaseed/internal/errors"
	"github.com/tphakala/mediaseed/internal/randomness"
)

// Jitter bounds, in seconds, applied after capture.
const (
	MaxUploadDelay     = 20
	MaxProcessingDelay = 60
)

// Window is the closed interval capture timestamps are drawn from.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow returns the window of daysBack days ending at ref.
func NewWindow(ref time.Time, daysBack int) Window {
	end := ref.UTC().Truncate(time.Second)
	return Window{Start: end.AddDate(0, 0, -daysBack), End: end}
}

// Seconds returns the window length in whole seconds.
func (w Window) Seconds() int {
	return int(w.End.Sub(w.Start) / time.Second)
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Times is the timestamp triple of one capture. Capture <= Upload <= Processing.
type Times struct {
	Capture    time.Time
	Upload     time.Time
	Processing time.Time
}

// Sampler draws Times from a Window.
type Sampler struct {
	window Window
	rnd    *randomness.Source
}

// NewSampler returns a Sampler over w.
func NewSampler(w Window, rnd *randomness.Source) *Sampler {
	return &Sampler{window: w, rnd: rnd}
}

// Window returns the sampling window.
func (s *Sampler) Window() Window { return s.window }

// Sample draws a capture time uniformly at second resolution, then the
// upload and processing delays.
func (s *Sampler) Sample() Times {
	capture := s.window.Start.Add(s.rnd.Seconds(0, s.window.Seconds()))
	upload := capture.Add(s.rnd.Seconds(0, MaxUploadDelay))
	processing := upload.Add(s.rnd.Seconds(0, MaxProcessingDelay))
	return Times{Capture: capture, Upload: upload, Processing: processing}
}

// In returns the triple expressed in loc.
func (t Times) In(loc *time.Location) Times {
	return Times{Capture: t.Capture.In(loc), Upload: t.Upload.In(loc), Processing: t.Processing.In(loc)}
}

// LoadZone resolves an IANA timezone name. An empty name means UTC.
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.New(fmt.Errorf("unknown timezone %q: %w", name, err)).
			Component("temporal").
			Category(errors.CategoryValidation).
			Context("timezone", name).
			Build()
	}
	return loc, nil
}

// OnDate returns hh:mm:ss on the calendar date of day, in day's location.
func OnDate(day time.Time, hour, minute, second int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, minute, second, 0, day.Location())
}

// Filename returns the capture file name "<NN>_<yyyymmddHHMMSS>000.<ext>".
func Filename(capture time.Time, index int, ext string) string {
	return fmt.Sprintf("%02d_%s000.%s", index, capture.Format("20060102150405"), ext)
}
