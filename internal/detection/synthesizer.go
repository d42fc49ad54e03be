// Package detection synthesizes object-detection results for captured media.
//
// A Synthesizer routes each capture to an empty frame or to a primary
// category (wildlife, person, vehicle) using a distribution normalized once at
// construction, then assembles one Object per detected subject with a
// category-specific attribute variant, an optional identification and, for
// video, a tracking block. The per-object results are aggregated into a
// Summary, an optional Event and a Processing block.
//
// The package performs no I/O. The only failure is an unknown resolution key,
// reported as a validation error.
package detection

import (
	"fmt"
	"strings"
	"time"

	"github.com/tphakala/mediaseed/internal/astronomy"
	"github.com/tphakala/mediaseed/internal/catalog"
	"github.com/tphakala/mediaseed/internal/errors"
	"github.com/tphakala/mediaseed/internal/numeric"
	"github.com/tphakala/mediaseed/internal/randomness"
)

// Probabilities are the relative category weights. They need not sum to 1.
type Probabilities struct {
	Wildlife float64
	People   float64
	Vehicle  float64
	Empty    float64
}

// mixProbability is the chance that an object after the first is redrawn
// from the mixed-category distribution.
const mixProbability = 0.3

var mixedCategories = randomness.MustDistribution(
	randomness.Outcome[Category]{Value: Wildlife, Weight: 0.6},
	randomness.Outcome[Category]{Value: Person, Weight: 0.3},
	randomness.Outcome[Category]{Value: Vehicle, Weight: 0.1},
)

// Input describes the capture being analysed.
type Input struct {
	MediaType     string
	ResolutionKey string
	Capture       time.Time // property-local
	SunPosition   string
	Longitude     float64
	Latitude      float64
}

// IsVideo reports whether the capture is a video.
func (in Input) IsVideo() bool { return in.MediaType == MediaVideo }

// Synthesizer produces detection results.
type Synthesizer struct {
	cat        *catalog.Catalog
	rnd        *randomness.Source
	categories *randomness.Distribution[Category]
	reference  time.Time
}

// NewSynthesizer normalizes p once. reference anchors identification
// first/last-seen dates. All-zero or negative weights are rejected.
func NewSynthesizer(cat *catalog.Catalog, rnd *randomness.Source, p Probabilities, reference time.Time) (*Synthesizer, error) {
	categories, err := randomness.NewDistribution(
		randomness.Outcome[Category]{Value: Wildlife, Weight: p.Wildlife},
		randomness.Outcome[Category]{Value: Person, Weight: p.People},
		randomness.Outcome[Category]{Value: Vehicle, Weight: p.Vehicle},
		randomness.Outcome[Category]{Value: none, Weight: p.Empty},
	)
	if err != nil {
		return nil, errors.New(fmt.Errorf("invalid detection probabilities: %w", err)).
			Component("detection").
			Category(errors.CategoryValidation).
			Build()
	}
	return &Synthesizer{cat: cat, rnd: rnd, categories: categories, reference: reference}, nil
}

// Probabilities returns the normalized wildlife, people, vehicle and empty
// probabilities. They sum to 1.
func (s *Synthesizer) Probabilities() Probabilities {
	p := s.categories.Probabilities()
	return Probabilities{Wildlife: p[0], People: p[1], Vehicle: p[2], Empty: p[3]}
}

// Synthesize generates the detection result for one capture.
func (s *Synthesizer) Synthesize(in Input) (Result, error) {
	res, err := s.cat.Resolution(in.ResolutionKey)
	if err != nil {
		return Result{}, errors.New(err).
			Component("detection").
			Category(errors.CategoryValidation).
			Context("resolution", in.ResolutionKey).
			Build()
	}

	primary := s.categories.Sample(s.rnd)
	summary := s.newSummary(in.SunPosition)

	if primary == none {
		return Result{
			Objects:    []Object{},
			Summary:    summary,
			Processing: s.processing(in, &summary, numeric.Round(s.rnd.Uniform(150, 300), 0)),
		}, nil
	}

	n := s.objectCount(in)
	objects := make([]Object, 0, n)
	for i := range n {
		category := primary
		if i > 0 && s.rnd.Chance(mixProbability) {
			category = mixedCategories.Sample(s.rnd)
		}
		objects = append(objects, s.object(category, res, in))
	}

	summarize(&summary, objects, in.IsVideo())

	var event *Event
	if in.IsVideo() && s.rnd.Chance(0.3) {
		event = s.event(in.Capture, objects)
	}

	ms := 150 + 75*float64(n) + s.rnd.Uniform(0, 100)
	return Result{
		Objects:    objects,
		Summary:    summary,
		Event:      event,
		Processing: s.processing(in, &summary, numeric.Round(ms, 0)),
	}, nil
}

// objectCount draws 1-3 objects for images and 1-5 for video. Dawn and dusk
// raise the maximum to at least 3.
func (s *Synthesizer) objectCount(in Input) int {
	maxObjects := 3
	if in.IsVideo() {
		maxObjects = 5
	}
	if in.SunPosition == astronomy.Dawn || in.SunPosition == astronomy.Dusk {
		maxObjects = max(3, maxObjects)
	}
	return s.rnd.IntRange(1, maxObjects)
}

func (s *Synthesizer) object(c Category, res catalog.Resolution, in Input) Object {
	switch c {
	case Person:
		return s.person(res, in)
	case Vehicle:
		return s.vehicle(res, in)
	default:
		return s.wildlife(res, in)
	}
}

// box places a box of the given fractional size inside the frame.
func (s *Synthesizer) box(res catalog.Resolution, wLo, wHi, hLo, hHi float64) BoundingBox {
	w := int(float64(res.Width) * s.rnd.Uniform(wLo, wHi))
	h := int(float64(res.Height) * s.rnd.Uniform(hLo, hHi))
	return BoundingBox{
		X:      int(s.rnd.Uniform(0.1, 0.9) * float64(res.Width-w)),
		Y:      int(s.rnd.Uniform(0.1, 0.9) * float64(res.Height-h)),
		Width:  w,
		Height: h,
	}
}

// occlusionAndBlur draws the partial visibility values shared by all categories.
func (s *Synthesizer) occlusionAndBlur() (occlusion, blur float64) {
	if s.rnd.Chance(0.3) {
		occlusion = numeric.Round(s.rnd.Uniform(0, 0.4), 3)
	}
	if s.rnd.Chance(0.2) {
		blur = numeric.Round(s.rnd.Uniform(0, 0.3), 3)
	}
	return occlusion, blur
}

func (s *Synthesizer) shortID(prefix string, n int) string {
	return prefix + "-" + s.rnd.Hex(n)
}

// tracking builds the video tracking block. speed is the upper bound of the
// motion speed; stationary forces is_stationary.
func (s *Synthesizer) tracking(in Input, speed float64, stationary bool) *Tracking {
	appearance := in.Capture.Add(-s.rnd.Seconds(10, 30))
	visible := time.Duration(s.rnd.Uniform(3, 15) * float64(time.Second)).Truncate(time.Millisecond)
	return &Tracking{
		TrackingID:     s.shortID("track", 6),
		DetectionID:    s.shortID("det", 8),
		Appearance:     appearance,
		Disappearance:  appearance.Add(visible),
		DurationMillis: visible.Milliseconds(),
		Motion: Motion{
			Direction:    randomness.Choice(s.rnd, s.cat.Scene.MotionDirections),
			Speed:        numeric.Round(s.rnd.Uniform(0, speed), 2),
			IsStationary: stationary,
			Path: [][2]float64{{
				numeric.Round(in.Longitude+s.rnd.Uniform(-0.005, 0.005), 6),
				numeric.Round(in.Latitude+s.rnd.Uniform(-0.005, 0.005), 6),
			}},
		},
	}
}

// identification builds an Identification anchored at the reference time.
func (s *Synthesizer) identification(name, id, notes string, matchLo, matchHi int) *Identification {
	matches := make([]string, s.rnd.IntRange(1, 3))
	for i := range matches {
		matches[i] = s.shortID("media", 6)
	}
	return &Identification{
		Name:              name,
		ID:                id,
		Confidence:        numeric.Round(s.rnd.Uniform(0.7, 0.9), 2),
		FirstSeen:         s.reference.AddDate(0, 0, -s.rnd.IntRange(10, 100)),
		LastSeen:          s.reference.AddDate(0, 0, -s.rnd.IntRange(1, 9)),
		HistoricalMatches: s.rnd.IntRange(matchLo, matchHi),
		MatchMediaIDs:     matches,
		Notes:             notes,
	}
}

func (s *Synthesizer) event(capture time.Time, objects []Object) *Event {
	eventType := randomness.Choice(s.rnd, s.cat.Scene.EventTypes)
	start := capture.Add(-s.rnd.Seconds(1, 10))
	end := capture.Add(s.rnd.Seconds(5, 30))
	e := &Event{
		Type:             eventType,
		Confidence:       numeric.Round(s.rnd.Uniform(0.7, 0.95), 2),
		Start:            start,
		End:              end,
		DurationMillis:   end.Sub(start).Milliseconds(),
		PrimaryObjects:   []string{},
		SecondaryObjects: []string{},
		Description:      strings.ToUpper(eventType[:1]) + eventType[1:] + " event detected",
		Significance:     randomness.Choice(s.rnd, s.cat.Scene.Significance),
	}
	for i, o := range objects {
		if i == 0 {
			e.PrimaryObjects = append(e.PrimaryObjects, o.Class)
		} else {
			e.SecondaryObjects = append(e.SecondaryObjects, o.Class)
		}
	}
	return e
}

func (s *Synthesizer) processing(in Input, summary *Summary, ms float64) Processing {
	p := Processing{
		Model:               DefaultModelName,
		Version:             DefaultModelVersion,
		ProcessingTimeMS:    int(ms),
		Timestamp:           in.Capture.Add(s.rnd.Seconds(30, 60)),
		ConfidenceThreshold: ConfidenceThreshold,
		ProcessorID:         s.shortID("proc", 8),
		BatchID:             s.shortID("batch", 8),
		ModelsUsed:          modelsUsed(summary),
		IsReprocessed:       s.rnd.Chance(0.05),
		Parameters: Parameters{
			MinConfidence:   ConfidenceThreshold,
			IncludeTracking: in.IsVideo(),
		},
	}
	if !summary.EmptyFrame {
		enabled := true
		p.Parameters.DetectWildlife = &enabled
		p.Parameters.DetectPeople = &enabled
		p.Parameters.DetectVehicles = &enabled
	}
	return p
}
