package record

import (
	"context"
	"fmt"
	"time"

	"github.com/tphakala/mediaseed/internal/catalog"
	"github.com/tphakala/mediaseed/internal/conf"
	"github.com/tphakala/mediaseed/internal/detection"
	"github.com/tphakala/mediaseed/internal/errors"
	"github.com/tphakala/mediaseed/internal/logger"
	"github.com/tphakala/mediaseed/internal/observability/metrics"
	"github.com/tphakala/mediaseed/internal/randomness"
	"github.com/tphakala/mediaseed/internal/temporal"
)

// Legacy mode defaults, used when no tenants are configured.
const (
	LegacyTenantID      = "tenant-001"
	LegacyTenantName    = "Default Tenant"
	LegacyPropertyID    = "prop-123456"
	LegacyPropertyName  = "Default Property"
	LegacyTimezone      = "America/Chicago"
	LegacyBoundaryID    = "bound-001"
	LegacyLongitude     = -99.607781
	LegacyLatitude      = 30.990075
	firstFallbackSerial = 10001
)

// Operation names reported to the metrics recorder.
const (
	OpGenerate  = "record_generate"
	StatusEmpty = "empty"
	StatusError = "error"
)

// Result summarizes a generation run.
type Result struct {
	Records   []*MediaRecord
	Requested int
	Failed    int
	Seed      uint64
	Reference time.Time
	Duration  time.Duration
}

// Generated returns the number of records produced.
func (r *Result) Generated() int { return len(r.Records) }

// Generator runs the record pipeline over the configured devices. It owns the
// randomness stream, the run-wide record index and the fallback serial
// counter. Generation is sequential.
type Generator struct {
	settings  *conf.Settings
	cat       *catalog.Catalog
	rnd       *randomness.Source
	recorder  metrics.Recorder
	now       func() time.Time
	log       logger.Logger
	nextIndex int
	serial    int
}

// Option configures a Generator.
type Option func(*Generator)

// WithRecorder reports per-record outcomes to r.
func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) { g.recorder = r }
}

// WithClock sets the clock used when no reference time is configured.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator returns a Generator for settings. A zero seed draws a random
// seed, which is reported in the Result so the run can be replayed.
func NewGenerator(settings *conf.Settings, opts ...Option) (*Generator, error) {
	g := &Generator{
		settings:  settings,
		now:       time.Now,
		log:       GetLogger(),
		nextIndex: 1,
		serial:    firstFallbackSerial,
	}
	for _, opt := range opts {
		opt(g)
	}
	cat, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	g.cat = cat
	if seed := settings.Generation.Seed; seed != 0 {
		g.rnd = randomness.New(seed)
	} else {
		g.rnd = randomness.NewUnseeded()
	}
	return g, nil
}

// LegacyTenants builds the single-tenant hierarchy used when none is
// configured: count devices named "Camera N", one record each.
func LegacyTenants(count int) []conf.Tenant {
	devices := make([]conf.Device, count)
	for i := range devices {
		devices[i] = conf.Device{
			ID:         fmt.Sprintf("device-%03d", i),
			Name:       fmt.Sprintf("Camera %d", i),
			Make:       DefaultMake,
			Model:      DefaultModel,
			Location:   []float64{LegacyLongitude, LegacyLatitude},
			BoundaryID: LegacyBoundaryID,
		}
	}
	return []conf.Tenant{{
		ID:   LegacyTenantID,
		Name: LegacyTenantName,
		Properties: []conf.Property{{
			ID:       LegacyPropertyID,
			Name:     LegacyPropertyName,
			Timezone: LegacyTimezone,
			Devices:  devices,
		}},
	}}
}

func (g *Generator) fallbackSerial() string {
	s := fmt.Sprintf("SN%05d", g.serial)
	g.serial++
	return s
}

// mediaCount returns how many records a device gets.
func (g *Generator) mediaCount(legacy bool) int {
	if legacy {
		return 1
	}
	mc := g.settings.MediaCountPerDevice
	if mc.IsFixed() {
		return mc.Min
	}
	return g.rnd.IntRange(mc.Min, mc.Max)
}

// Run generates every record. When no tenants are configured, legacyCount
// devices of the default property get one record each. A record that fails
// is logged and skipped; the record index still advances. Run stops early,
// returning the records so far, when ctx is cancelled.
func (g *Generator) Run(ctx context.Context, legacyCount int) (*Result, error) {
	started := time.Now()
	ref, err := g.settings.ReferenceTime(g.now())
	if err != nil {
		return nil, err
	}

	assembler, err := NewAssembler(g.cat, g.rnd, AssemblerConfig{
		Window: temporal.NewWindow(ref, g.settings.DateRange.DaysBack),
		Probabilities: detection.Probabilities{
			Wildlife: g.settings.Detection.WildlifeProbability,
			People:   g.settings.Detection.PeopleProbability,
			Vehicle:  g.settings.Detection.VehicleProbability,
			Empty:    g.settings.Detection.EmptyProbability,
		},
		SunTimes: g.settings.Weather.SunTimes,
	})
	if err != nil {
		return nil, err
	}

	tenants := g.settings.Tenants
	legacy := len(tenants) == 0
	if legacy {
		tenants = LegacyTenants(legacyCount)
		g.log.Info("no tenants configured, generating legacy records",
			logger.Int("count", legacyCount))
	}

	result := &Result{Records: []*MediaRecord{}, Seed: g.rnd.Seed(), Reference: ref}
	g.log.Info("generation started",
		logger.Uint64("seed", result.Seed),
		logger.Time("reference_time", ref),
		logger.Int("tenants", len(tenants)))

	for ti := range tenants {
		tenant := &tenants[ti]
		g.log.Info("generating records for tenant", logger.String("tenant_id", tenant.ID))
		for pi := range tenant.Properties {
			property := &tenant.Properties[pi]
			loc, zoneErr := temporal.LoadZone(property.Timezone)
			seen := make(map[string]bool, len(property.Devices))
			for di := range property.Devices {
				device := &property.Devices[di]
				if seen[device.ID] {
					g.log.Warn("duplicate device id in property",
						logger.String("property_id", property.ID),
						logger.String("device_id", device.ID))
				}
				seen[device.ID] = true
				target := Target{Tenant: tenant, Property: property, Device: device, Location: loc}
				deviceErr := conf.CheckDevice(device)
				if device.SerialNumber == "" {
					target.SerialNumber = g.fallbackSerial()
				}

				count := g.mediaCount(legacy)
				result.Requested += count
				g.log.Debug("generating device records",
					logger.String("property_id", property.ID),
					logger.String("device_id", device.ID),
					logger.Int("count", count))

				for range count {
					if err := ctx.Err(); err != nil {
						result.Duration = time.Since(started)
						return result, errors.New(err).
							Component("record").
							Category(errors.CategoryCancellation).
							Context("generated", result.Generated()).
							Build()
					}
					index := g.nextIndex
					g.nextIndex++

					rec, err := g.generateOne(assembler, target, index, deviceErr, zoneErr)
					if err != nil {
						result.Failed++
						g.record(StatusError, err)
						g.log.Error("record generation failed, skipping",
							logger.Error(err),
							logger.String("tenant_id", tenant.ID),
							logger.String("property_id", property.ID),
							logger.String("device_id", device.ID),
							logger.Int("record_index", index))
						continue
					}
					g.record(primaryCategory(&rec.Detection), nil)
					result.Records = append(result.Records, rec)
				}
			}
		}
	}

	result.Duration = time.Since(started)
	g.log.Info("generation finished",
		logger.Int("generated", result.Generated()),
		logger.Int("requested", result.Requested),
		logger.Int("failed", result.Failed),
		logger.Duration("duration", result.Duration))
	return result, nil
}

// generateOne assembles one record, converting a panic into a generation error.
func (g *Generator) generateOne(a *Assembler, t Target, index int, deviceErr, zoneErr error) (rec *MediaRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = errors.Newf("panic while generating record: %v", r).
				Component("record").
				Category(errors.CategoryGeneration).
				Context("record_index", index).
				Build()
		}
	}()
	if deviceErr != nil {
		return nil, a.fail(deviceErr, t, index, "device")
	}
	if zoneErr != nil {
		return nil, a.fail(zoneErr, t, index, "timezone")
	}
	start := time.Now()
	rec, err = a.Assemble(t, index)
	if g.recorder != nil {
		g.recorder.RecordDuration(OpGenerate, time.Since(start).Seconds())
	}
	return rec, err
}

func (g *Generator) record(status string, err error) {
	if g.recorder == nil {
		return
	}
	g.recorder.RecordOperation(OpGenerate, status)
	if err != nil {
		category := string(errors.CategoryGeneration)
		var ee *errors.EnhancedError
		if errors.As(err, &ee) {
			category = ee.GetCategory()
			if stage, ok := ee.GetContext()["stage"].(string); ok {
				category = stage
			}
		}
		g.recorder.RecordError(OpGenerate, category)
	}
}

// primaryCategory labels a record by its first detected object.
func primaryCategory(r *detection.Result) string {
	if r.IsEmpty() {
		return StatusEmpty
	}
	return string(r.Objects[0].Category)
}
