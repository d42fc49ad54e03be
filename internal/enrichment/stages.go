package enrichment

import (
	"github.com/tphakala/mediaseed/internal/randomness"
)

type stage struct {
	processType string
	idPrefix    string
	minSeconds  float64
	maxSeconds  float64
	outcomes    *randomness.Distribution[Status]
	errors      map[Status]string
	version     string
	model       string
	service     string
	priority    string
	input       func(*Builder, Input) InputParameters
	output      func(*Builder, Input) *OutputSummary
}

func outcomes(weights map[Status]float64, order ...Status) *randomness.Distribution[Status] {
	o := make([]randomness.Outcome[Status], 0, len(order))
	for _, s := range order {
		o = append(o, randomness.Outcome[Status]{Value: s, Weight: weights[s]})
	}
	return randomness.MustDistribution(o...)
}

func ptr[T any](v T) *T { return &v }

// stages is the pipeline in execution order.
var stages = []stage{
	{
		processType: TypeWeather,
		idPrefix:    "weather",
		minSeconds:  0.5,
		maxSeconds:  2.0,
		outcomes:    outcomes(map[Status]float64{StatusSuccess: 0.95, StatusFailed: 0.05}, StatusSuccess, StatusFailed),
		errors:      map[Status]string{StatusFailed: "API connection timeout"},
		version:     "1.2.3",
		service:     "openweathermap",
		priority:    "high",
		input: func(b *Builder, in Input) InputParameters {
			return InputParameters{MediaID: in.MediaID, Coordinates: coordinates(b, in)}
		},
	},
	{
		processType: TypeAstronomical,
		idPrefix:    "astro",
		minSeconds:  0.3,
		maxSeconds:  1.5,
		outcomes:    outcomes(map[Status]float64{StatusSuccess: 0.98, StatusFailed: 0.02}, StatusSuccess, StatusFailed),
		errors:      map[Status]string{StatusFailed: "Calculation error for moon position"},
		version:     "1.1.5",
		service:     "skyfield",
		priority:    "medium",
		input: func(_ *Builder, in Input) InputParameters {
			return InputParameters{MediaID: in.MediaID, CaptureTimestamp: ptr(in.Capture)}
		},
	},
	{
		processType: TypeDetection,
		idPrefix:    "detect",
		minSeconds:  1.2,
		maxSeconds:  4.0,
		outcomes: outcomes(map[Status]float64{StatusSuccess: 0.94, StatusPartial: 0.04, StatusFailed: 0.02},
			StatusSuccess, StatusPartial, StatusFailed),
		errors: map[Status]string{
			StatusPartial: "Low confidence on some detections",
			StatusFailed:  "Model loading error",
		},
		version:  "3.2.1",
		model:    "wildlife-detector-v3",
		service:  "AI-detection-service",
		priority: "high",
		input: func(_ *Builder, in Input) InputParameters {
			return InputParameters{MediaID: in.MediaID, ConfidenceThreshold: ptr(0.6), UseEnhancedModel: ptr(true)}
		},
		output: func(_ *Builder, in Input) *OutputSummary {
			out := &OutputSummary{ObjectsDetected: ptr(0)}
			if in.Detection != nil {
				out.ObjectsDetected = ptr(len(in.Detection.Objects))
				out.PrimaryClass = in.Detection.Summary.ClassDistribution.PrimaryClass
			}
			return out
		},
	},
	{
		processType: TypeVideo,
		idPrefix:    "video",
		minSeconds:  3.0,
		maxSeconds:  8.0,
		outcomes:    outcomes(map[Status]float64{StatusSuccess: 0.9, StatusFailed: 0.1}, StatusSuccess, StatusFailed),
		errors:      map[Status]string{StatusFailed: "Video codec not supported"},
		version:     "2.0.4",
		model:       "motion-tracker-v2",
		service:     "video-analysis-service",
		priority:    "low",
		input: func(_ *Builder, in Input) InputParameters {
			return InputParameters{MediaID: in.MediaID, ExtractFrames: ptr(true), TrackObjects: ptr(true)}
		},
		output: func(b *Builder, _ Input) *OutputSummary {
			return &OutputSummary{FramesProcessed: ptr(b.rnd.IntRange(50, 200)), TrackingSuccess: ptr(true)}
		},
	},
}
