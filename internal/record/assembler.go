package record

import (
	"fmt"
	"strings"
	"time"

	"github.com/tphakala/mediaseed/internal/astronomy"
	"github.com/tphakala/mediaseed/internal/catalog"
	"github.com/tphakala/mediaseed/internal/conf"
	"github.com/tphakala/mediaseed/internal/detection"
	"github.com/tphakala/mediaseed/internal/enrichment"
	"github.com/tphakala/mediaseed/internal/errors"
	"github.com/tphakala/mediaseed/internal/numeric"
	"github.com/tphakala/mediaseed/internal/randomness"
	"github.com/tphakala/mediaseed/internal/rating"
	"github.com/tphakala/mediaseed/internal/tagging"
	"github.com/tphakala/mediaseed/internal/temporal"
	"github.com/tphakala/mediaseed/internal/weather"
)

// Fixed record values.
const (
	StorageHost       = "https://storage.wisr.com"
	EmailDomain       = "camera.wisr.com"
	MailExchange      = "mx.example.com"
	DefaultBoundaryID = "bound-unknown"
	DefaultMake       = "Generic"
	DefaultModel      = "Trail Camera"

	imageProbability   = 0.9
	relatedProbability = 0.8
	locationJitter     = 0.002
	systemActor        = "system"
	initialVersion     = 1
)

// Target is the device a record is generated for, with its resolved zone.
type Target struct {
	Tenant   *conf.Tenant
	Property *conf.Property
	Device   *conf.Device
	Location *time.Location
	// SerialNumber is used when the device has none configured.
	SerialNumber string
}

// AssemblerConfig holds the run-wide inputs of an Assembler.
type AssemblerConfig struct {
	Window        temporal.Window
	Probabilities detection.Probabilities
	SunTimes      string
}

// Assembler composes every synthesizer into one MediaRecord per call. It owns
// the media-id uniqueness set and is not safe for concurrent use.
type Assembler struct {
	cat        *catalog.Catalog
	rnd        *randomness.Source
	sampler    *temporal.Sampler
	weather    *weather.Synthesizer
	astronomy  *astronomy.Synthesizer
	detection  *detection.Synthesizer
	enrichment *enrichment.Builder
	tags       *tagging.Deriver
	rating     *rating.Engine
	mediaIDs   map[string]struct{}
}

// NewAssembler wires the synthesizers around a shared randomness stream.
func NewAssembler(cat *catalog.Catalog, rnd *randomness.Source, cfg AssemblerConfig) (*Assembler, error) {
	sun, err := weather.NewSunTimeSource(cfg.SunTimes, rnd)
	if err != nil {
		return nil, err
	}
	det, err := detection.NewSynthesizer(cat, rnd, cfg.Probabilities, cfg.Window.End)
	if err != nil {
		return nil, err
	}
	return &Assembler{
		cat:        cat,
		rnd:        rnd,
		sampler:    temporal.NewSampler(cfg.Window, rnd),
		weather:    weather.NewSynthesizer(cat, rnd, sun),
		astronomy:  astronomy.NewSynthesizer(cat, rnd),
		detection:  det,
		enrichment: enrichment.NewBuilder(rnd),
		tags:       tagging.NewDeriver(cat, rnd),
		rating:     rating.NewEngine(cat, rnd, cfg.Window.End),
		mediaIDs:   make(map[string]struct{}),
	}, nil
}

// Detection returns the detection synthesizer.
func (a *Assembler) Detection() *detection.Synthesizer {
	return a.detection
}

// newMediaID draws "media-" plus 6 hex characters, unique within the run.
func (a *Assembler) newMediaID() string {
	for {
		id := "media-" + a.rnd.Hex(6)
		if _, dup := a.mediaIDs[id]; !dup {
			a.mediaIDs[id] = struct{}{}
			return id
		}
	}
}

func (a *Assembler) fail(err error, t Target, index int, stage string) error {
	return errors.New(err).
		Component("record").
		Category(errors.CategoryGeneration).
		Context("tenant_id", t.Tenant.ID).
		Context("property_id", t.Property.ID).
		Context("device_id", t.Device.ID).
		Context("record_index", index).
		Context("stage", stage).
		Build()
}

// Assemble builds the record with the given run-wide index.
func (a *Assembler) Assemble(t Target, index int) (*MediaRecord, error) {
	loc := t.Location
	if loc == nil {
		var err error
		if loc, err = temporal.LoadZone(t.Property.Timezone); err != nil {
			return nil, a.fail(err, t, index, "timezone")
		}
	}
	dev := t.Device

	mediaID := a.newMediaID()
	assetID := dev.AssetID
	if assetID == "" {
		assetID = fmt.Sprintf("asset-%03d", a.rnd.IntRange(1, 999))
	}

	times := a.sampler.Sample()
	local := times.In(loc)

	mediaType := detection.MediaImage
	if !a.rnd.Chance(imageProbability) {
		mediaType = detection.MediaVideo
	}
	res := randomness.Choice(a.rnd, a.cat.Media.Resolutions)
	file := a.file(mediaType, res)
	name := temporal.Filename(local.Capture, index, file.Format)
	storage := a.storage(t, times.Capture, mediaID, file.Format)
	location := a.location(dev)
	device := a.device(t, assetID, res.Key)
	trigger := a.trigger()
	ingestion := a.ingestion(dev, times, local)
	related := a.related(mediaType, times.Capture)

	w, err := a.weather.Synthesize(local.Capture, dev.Latitude(), dev.Longitude())
	if err != nil {
		return nil, a.fail(err, t, index, "weather")
	}
	astro := a.astronomy.Synthesize(local.Capture, w)

	det, err := a.detection.Synthesize(detection.Input{
		MediaType:     mediaType,
		ResolutionKey: res.Key,
		Capture:       local.Capture,
		SunPosition:   astro.Sun.Position,
		Longitude:     dev.Longitude(),
		Latitude:      dev.Latitude(),
	})
	if err != nil {
		return nil, a.fail(err, t, index, "detection")
	}

	processes := a.enrichment.Build(enrichment.Input{
		MediaID:   mediaID,
		MediaType: mediaType,
		Capture:   times.Capture,
		Longitude: dev.Longitude(),
		Latitude:  dev.Latitude(),
		Detection: &det,
	})
	tags := a.tags.Derive(tagging.Input{
		MediaType:   mediaType,
		SunPosition: astro.Sun.Position,
		Weather:     &w,
		Detection:   &det,
	})
	user := a.rating.Rate(&det, tags.User)

	return &MediaRecord{
		Timestamp: times.Capture,
		TenantID:  t.Tenant.ID,
		Property: Property{
			ID:       t.Property.ID,
			Name:     t.Property.Name,
			Timezone: loc.String(),
		},
		Media: Media{
			ID:                    mediaID,
			Name:                  name,
			Title:                 "Motion Detection at " + dev.Name,
			Description:           fmt.Sprintf("Detected: Motion from %s at %s", dev.Name, local.Capture.Format(time.RFC3339)),
			Type:                  mediaType,
			CaptureTimestamp:      times.Capture,
			CaptureTimestampLocal: local.Capture,
			UploadTimestamp:       times.Upload,
			UploadTimestampLocal:  local.Upload,
			UploadDelayMillis:     times.Upload.Sub(times.Capture).Milliseconds(),
			Status:                "processed",
		},
		File:                file,
		Storage:             storage,
		Location:            location,
		Device:              device,
		Trigger:             trigger,
		Ingestion:           ingestion,
		Related:             related,
		Weather:             w,
		Astronomical:        astro,
		Detection:           det,
		EnrichmentProcesses: processes,
		UserMetadata:        user,
		Tags:                tags,
		Access: Access{
			Visibility:  "private",
			SharedWith:  []string{},
			SharedLinks: []string{},
		},
		System: a.system(times, processes, user),
	}, nil
}

func (a *Assembler) file(mediaType string, res catalog.Resolution) File {
	f := File{
		Size:       a.rnd.IntRange(800_000, 10_000_000),
		Width:      res.Width,
		Height:     res.Height,
		Megapixels: res.Megapixels,
	}
	if mediaType == detection.MediaImage {
		f.Format = randomness.Choice(a.rnd, a.cat.Media.ImageFormats)
		f.MimeType = a.cat.Media.MimeTypes[f.Format]
		return f
	}
	f.Format = randomness.Choice(a.rnd, a.cat.Media.VideoFormats)
	f.MimeType = a.cat.Media.MimeTypes[f.Format]
	duration := numeric.Round(a.rnd.Uniform(5, 30), 2)
	fps := 30
	codec := randomness.Choice(a.rnd, a.cat.Media.VideoCodecs)
	bitrate := a.rnd.IntRange(8000, 16000)
	f.Duration, f.FPS, f.Codec, f.Bitrate = &duration, &fps, &codec, &bitrate
	return f
}

// storage lays out renditions under tenant/property/device/YYYY/MM/DD.
func (a *Assembler) storage(t Target, capture time.Time, mediaID, format string) Storage {
	base := strings.Join([]string{t.Tenant.ID, t.Property.ID, t.Device.ID, capture.UTC().Format("2006/01/02")}, "/")
	return Storage{
		Original:  fmt.Sprintf("%s/%s.%s", base, mediaID, format),
		Thumbnail: fmt.Sprintf("%s/thumbnails/%s.jpg", base, mediaID),
		Medium:    fmt.Sprintf("%s/medium/%s.%s", base, mediaID, format),
		Processed: fmt.Sprintf("%s/processed/%s.%s", base, mediaID, format),
		URL:       fmt.Sprintf("%s/%s?token=%s", StorageHost, mediaID, a.rnd.Hex(8)),
	}
}

func (a *Assembler) location(dev *conf.Device) Location {
	boundary := dev.BoundaryID
	if boundary == "" {
		boundary = DefaultBoundaryID
	}
	return Location{
		Coordinates: [2]float64{
			numeric.Round(dev.Longitude()+a.rnd.Uniform(-locationJitter, locationJitter), 6),
			numeric.Round(dev.Latitude()+a.rnd.Uniform(-locationJitter, locationJitter), 6),
		},
		Accuracy:   "high",
		Source:     "device",
		BoundaryID: boundary,
	}
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func (a *Assembler) device(t Target, assetID, resolution string) Device {
	media := &a.cat.Media
	dev := t.Device
	return Device{
		ID:           dev.ID,
		Name:         dev.Name,
		Make:         orDefault(dev.Make, DefaultMake),
		Model:        orDefault(dev.Model, DefaultModel),
		SerialNumber: orDefault(dev.SerialNumber, t.SerialNumber),
		AssetID:      assetID,
		Status: DeviceStatus{
			BatteryLevel:     a.rnd.IntRange(55, 95),
			SignalStrength:   randomness.Choice(a.rnd, media.SignalStrengths),
			Temperature:      a.rnd.IntRange(65, 75),
			StorageRemaining: fmt.Sprintf("%dGB", a.rnd.IntRange(8, 32)),
		},
		Settings: DeviceSettings{
			Mode:        randomness.Choice(a.rnd, media.TriggerTypes),
			Sensitivity: randomness.Choice(a.rnd, media.Sensitivities),
			Resolution:  resolution,
		},
	}
}

func (a *Assembler) trigger() Trigger {
	return Trigger{
		Type:           "motion",
		Confidence:     numeric.Round(a.rnd.Uniform(0.75, 0.95), 2),
		Zone:           randomness.Choice(a.rnd, a.cat.Media.TriggerZones),
		DetectionClass: "motion",
	}
}

func (a *Assembler) userID() string {
	return fmt.Sprintf("user-%d", a.rnd.IntRange(100, 999))
}

func (a *Assembler) ingestion(dev *conf.Device, times, local temporal.Times) Ingestion {
	in := Ingestion{
		Method:           randomness.Choice(a.rnd, a.cat.Media.IngestionMethods),
		Timestamp:        times.Upload,
		BatchID:          "batch-" + a.rnd.Hex(8),
		UploadedBy:       systemActor,
		ProcessingTimeMS: a.rnd.IntRange(15, 120),
	}

	switch in.Method {
	case "email":
		messageID := strings.ReplaceAll(a.rnd.UUID(), "-", "")
		in.Source.Email = &EmailSource{
			From:              fmt.Sprintf("%s@%s", dev.ID, EmailDomain),
			MessageID:         fmt.Sprintf("<%s.%s@%s>", messageID, a.rnd.Hex(12), MailExchange),
			SentTimestamp:     times.Upload.Add(-a.rnd.Seconds(3, 10)),
			ReceivedTimestamp: times.Upload,
			Subject:           fmt.Sprintf("Motion Detected from %s at %s", dev.Name, local.Capture.Format("2006/01/02 15:04:05")),
			ReceptionDelaySec: a.rnd.IntRange(1, 10),
		}
	case "manual":
		in.UploadedBy = a.userID()
		in.Source.Manual = &ManualSource{UploadedBy: in.UploadedBy}
	}
	return in
}

// related links a video to one of its frames.
func (a *Assembler) related(mediaType string, capture time.Time) []RelatedMedia {
	related := []RelatedMedia{}
	if mediaType != detection.MediaVideo || !a.rnd.Chance(relatedProbability) {
		return related
	}
	return append(related, RelatedMedia{
		MediaID:          a.newMediaID(),
		MediaType:        detection.MediaImage,
		Relationship:     "frame-of",
		CaptureTimestamp: capture,
	})
}

func stageStatus(processes []enrichment.Process, processType string) enrichment.Status {
	for i := range processes {
		if processes[i].Type == processType {
			return processes[i].Status
		}
	}
	return enrichment.StatusSkipped
}

// system records creation at upload and the user's later update, which bumps
// the version. The update time never precedes processing.
func (a *Assembler) system(times temporal.Times, processes []enrichment.Process, user rating.UserMetadata) System {
	updated := times.Processing
	if user.LastViewed.After(updated) {
		updated = user.LastViewed
	}
	return System{
		CreatedTimestamp: times.Upload,
		CreatedBy:        systemActor,
		UpdatedTimestamp: updated,
		UpdatedBy:        a.userID(),
		Version:          initialVersion + 1,
		ProcessingStatus: "complete",
		EnrichmentStatus: EnrichmentStatus{
			Weather:      stageStatus(processes, enrichment.TypeWeather),
			Astronomical: stageStatus(processes, enrichment.TypeAstronomical),
			Detection:    stageStatus(processes, enrichment.TypeDetection),
		},
	}
}
