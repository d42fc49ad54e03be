// Package enrichment builds the strictly sequential enrichment-process
// timeline attached to every record: weather, then astronomy, then object
// detection, then optionally video processing.
package enrichment

import (
	"time"

	"github.com/tphakala/mediaseed/internal/detection"
	"github.com/tphakala/mediaseed/internal/numeric"
	"github.com/tphakala/mediaseed/internal/randomness"
)

// Process types.
const (
	TypeWeather      = "weather"
	TypeAstronomical = "astronomical"
	TypeDetection    = "object-detection"
	TypeVideo        = "video-processing"
	TypeLicensePlate = "license-plate-reading"
)

// Status is the outcome of a process.
type Status string

// Process outcomes.
const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusPartial Status = "partial"
	StatusSkipped Status = "skipped"
)

// videoProbability is the chance a video gets a video-processing stage.
const videoProbability = 0.2

// InputParameters echoes what a process was called with. Only the fields
// relevant to the process type are set.
type InputParameters struct {
	MediaID             string      `json:"media_id"`
	Coordinates         *[2]float64 `json:"coordinates,omitempty"`
	CaptureTimestamp    *time.Time  `json:"capture_timestamp,omitempty"`
	ConfidenceThreshold *float64    `json:"confidence_threshold,omitempty"`
	UseEnhancedModel    *bool       `json:"use_enhanced_model,omitempty"`
	ExtractFrames       *bool       `json:"extract_frames,omitempty"`
	TrackObjects        *bool       `json:"track_objects,omitempty"`
}

// OutputSummary is what a successful detection or video process reports.
type OutputSummary struct {
	ObjectsDetected *int    `json:"objects_detected,omitempty"`
	PrimaryClass    *string `json:"primary_class,omitempty"`
	FramesProcessed *int    `json:"frames_processed,omitempty"`
	TrackingSuccess *bool   `json:"tracking_success,omitempty"`
}

// Process is one stage of the timeline. Completed is never before Started.
type Process struct {
	ProcessID       string          `json:"process_id"`
	Type            string          `json:"type"`
	Status          Status          `json:"status"`
	Started         time.Time       `json:"started_timestamp"`
	Completed       time.Time       `json:"completed_timestamp"`
	DurationMillis  int64           `json:"duration_ms"`
	Version         string          `json:"version"`
	Model           *string         `json:"model"`
	Service         string          `json:"service"`
	Priority        string          `json:"priority"`
	Errors          *string         `json:"errors"`
	InputParameters InputParameters `json:"input_parameters"`
	OutputSummary   *OutputSummary  `json:"output_summary"`
}

// Input describes the record being enriched.
type Input struct {
	MediaID   string
	MediaType string
	Capture   time.Time
	Longitude float64
	Latitude  float64
	Detection *detection.Result
}

// Builder produces enrichment timelines.
type Builder struct {
	rnd *randomness.Source
}

// NewBuilder returns a Builder drawing from rnd.
func NewBuilder(rnd *randomness.Source) *Builder {
	return &Builder{rnd: rnd}
}

// Build returns the ordered timeline for one record.
func (b *Builder) Build(in Input) []Process {
	chain := NewChain(b.rnd, in.Capture.Add(b.rnd.Seconds(10, 30)))

	processes := make([]Process, 0, len(stages))
	for i := range stages {
		st := &stages[i]
		if st.processType == TypeVideo && (in.MediaType != detection.MediaVideo || !b.rnd.Chance(videoProbability)) {
			continue
		}
		processes = append(processes, b.run(chain, st, in))
	}
	return processes
}

func (b *Builder) run(chain *Chain, st *stage, in Input) Process {
	d := time.Duration(b.rnd.Uniform(st.minSeconds, st.maxSeconds) * float64(time.Second)).Truncate(time.Millisecond)
	start, completed := chain.Next(d)

	p := Process{
		ProcessID:       st.idPrefix + "-" + b.rnd.Hex(8),
		Type:            st.processType,
		Status:          st.outcomes.Sample(b.rnd),
		Started:         start,
		Completed:       completed,
		DurationMillis:  completed.Sub(start).Milliseconds(),
		Version:         st.version,
		Service:         st.service,
		Priority:        st.priority,
		InputParameters: st.input(b, in),
	}
	if st.model != "" {
		model := st.model
		p.Model = &model
	}
	if msg, ok := st.errors[p.Status]; ok {
		p.Errors = &msg
	}
	if st.output != nil && p.Status != StatusFailed {
		p.OutputSummary = st.output(b, in)
	}
	return p
}

func coordinates(b *Builder, in Input) *[2]float64 {
	return &[2]float64{
		numeric.Round(in.Longitude+b.rnd.Uniform(-0.1, 0.1), 6),
		numeric.Round(in.Latitude+b.rnd.Uniform(-0.1, 0.1), 6),
	}
}
