// Package catalog exposes the immutable, versioned vocabularies used to
// synthesize capture records: wildlife species, person and vehicle
// descriptors, weather conditions, moon phases, media formats, tag pools and
// note phrases. The tables are embedded and parsed once per process.
//
// The *Catalog returned by Default is shared; callers must treat it as
// read-only.
package catalog

import (
	_ "embed"
	"fmt"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/tphakala/mediaseed/internal/errors"
)

// SupportedVersion is the catalog schema version this build understands.
const SupportedVersion = 1

//go:embed catalog.yaml
var embeddedCatalog []byte

// Species describes one wildlife class/subclass pair.
type Species struct {
	Class     string              `yaml:"class"`
	Subclass  string              `yaml:"subclass"`
	Taxonomic []string            `yaml:"taxonomic"`
	Sexes     []string            `yaml:"sexes"` // "" = undetermined
	Ages      []string            `yaml:"ages"`
	Actions   []string            `yaml:"actions"`
	Colors    []string            `yaml:"colors"`
	Sizes     []string            `yaml:"sizes"`
	Names     map[string][]string `yaml:"names"` // keyed by sex
}

// DeerTraits holds attributes that only apply to deer bucks.
type DeerTraits struct {
	MatureAges          []string `yaml:"mature_ages"`
	BodyConditions      []string `yaml:"body_conditions"`
	DistinctiveFeatures []string `yaml:"distinctive_features"`
}

// PersonVocabulary lists person descriptors. Empty strings mean "none".
type PersonVocabulary struct {
	Subclasses  []string `yaml:"subclasses"`
	Genders     []string `yaml:"genders"`
	AgeRanges   []string `yaml:"age_ranges"`
	Actions     []string `yaml:"actions"`
	UpperBody   []string `yaml:"upper_body"`
	LowerBody   []string `yaml:"lower_body"`
	Headwear    []string `yaml:"headwear"`
	Colors      []string `yaml:"colors"`
	Postures    []string `yaml:"postures"`
	Builds      []string `yaml:"builds"`
	Heights     []string `yaml:"heights"`
	Accessories []string `yaml:"accessories"`
	Carrying    []string `yaml:"carrying"`
}

// VehicleMake is a manufacturer and its model line.
type VehicleMake struct {
	Name   string   `yaml:"name"`
	Models []string `yaml:"models"`
}

// VehicleVocabulary lists vehicle descriptors.
type VehicleVocabulary struct {
	Types            []string      `yaml:"types"`
	Makes            []VehicleMake `yaml:"makes"`
	Colors           []string      `yaml:"colors"`
	YearRanges       []string      `yaml:"year_ranges"`
	Actions          []string      `yaml:"actions"`
	DistinctiveMarks []string      `yaml:"distinctive_marks"`
	Wheels           []int         `yaml:"wheels"`
	Doors            []int         `yaml:"doors"`
	PlateLetters     string        `yaml:"plate_letters"`
	PlateStates      []string      `yaml:"plate_states"`
	TravelDirections []string      `yaml:"travel_directions"`
}

// WeatherCondition is an OpenWeatherMap-style condition code.
type WeatherCondition struct {
	ID          int    `yaml:"id"`
	Main        string `yaml:"main"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
}

// MoonPhase carries the sampling bands for one named phase.
type MoonPhase struct {
	Name         string     `yaml:"name"`
	Illumination [2]float64 `yaml:"illumination"`
	DaysSinceNew [2]float64 `yaml:"days_since_new"`
}

// Resolution is a named frame size.
type Resolution struct {
	Key        string  `yaml:"key"`
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Megapixels float64 `yaml:"megapixels"`
}

// MediaVocabulary lists file, device and ingestion enumerations.
type MediaVocabulary struct {
	Resolutions      []Resolution      `yaml:"resolutions"`
	ImageFormats     []string          `yaml:"image_formats"`
	VideoFormats     []string          `yaml:"video_formats"`
	MimeTypes        map[string]string `yaml:"mime_types"`
	VideoCodecs      []string          `yaml:"video_codecs"`
	TriggerTypes     []string          `yaml:"trigger_types"`
	TriggerZones     []string          `yaml:"trigger_zones"`
	IngestionMethods []string          `yaml:"ingestion_methods"`
	SignalStrengths  []string          `yaml:"signal_strengths"`
	Sensitivities    []string          `yaml:"sensitivities"`
}

// SceneVocabulary lists scene context and motion descriptors.
type SceneVocabulary struct {
	Positions        []string `yaml:"positions"`
	WeatherApparent  []string `yaml:"weather_apparent"`
	Terrains         []string `yaml:"terrains"`
	Habitats         []string `yaml:"habitats"`
	MotionDirections []string `yaml:"motion_directions"`
	EventTypes       []string `yaml:"event_types"`
	Significance     []string `yaml:"significance"`
}

// TagPools lists user tag vocabularies.
type TagPools struct {
	Location        []string `yaml:"location"`
	Quality         []string `yaml:"quality"`
	Positive        []string `yaml:"positive"`
	Negative        []string `yaml:"negative"`
	LocationMarkers []string `yaml:"location_markers"`
}

// NotePools holds note phrase templates keyed by content and rating.
type NotePools struct {
	Empty        []string `yaml:"empty"`
	WildlifeHigh []string `yaml:"wildlife_high"`
	WildlifeLow  []string `yaml:"wildlife_low"`
	PersonHigh   []string `yaml:"person_high"`
	PersonLow    []string `yaml:"person_low"`
	Vehicle      []string `yaml:"vehicle"`
	Generic      []string `yaml:"generic"`
}

// Catalog is the root of the embedded tables.
type Catalog struct {
	Version           int                `yaml:"version"`
	Wildlife          []Species          `yaml:"wildlife"`
	Deer              DeerTraits         `yaml:"deer"`
	Relations         []string           `yaml:"relations"`
	Person            PersonVocabulary   `yaml:"person"`
	Vehicle           VehicleVocabulary  `yaml:"vehicle"`
	WeatherConditions []WeatherCondition `yaml:"weather_conditions"`
	MoonPhases        []MoonPhase        `yaml:"moon_phases"`
	Media             MediaVocabulary    `yaml:"media"`
	Scene             SceneVocabulary    `yaml:"scene"`
	Tags              TagPools           `yaml:"tags"`
	Notes             NotePools          `yaml:"notes"`

	wildlifeClasses []string
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalog, parsing it on first use.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(embeddedCatalog)
	})
	return defaultCatalog, defaultErr
}

// MustDefault is Default for callers that cannot proceed without the tables.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.New(fmt.Errorf("decode catalog: %w", err)).
			Component("catalog").
			Category(errors.CategoryCatalog).
			Build()
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	for _, s := range c.Wildlife {
		if !slices.Contains(c.wildlifeClasses, s.Class) {
			c.wildlifeClasses = append(c.wildlifeClasses, s.Class)
		}
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	fail := func(format string, args ...any) error {
		return errors.Newf(format, args...).
			Component("catalog").
			Category(errors.CategoryCatalog).
			Context("version", c.Version).
			Build()
	}

	if c.Version != SupportedVersion {
		return fail("unsupported catalog version %d, want %d", c.Version, SupportedVersion)
	}
	if len(c.Wildlife) == 0 {
		return fail("catalog has no wildlife species")
	}
	for i := range c.Wildlife {
		s := &c.Wildlife[i]
		if s.Class == "" || len(s.Sexes) == 0 || len(s.Ages) == 0 || len(s.Actions) == 0 ||
			len(s.Colors) == 0 || len(s.Sizes) == 0 {
			return fail("wildlife entry %d (%q) is incomplete", i, s.Class)
		}
	}
	if len(c.WeatherConditions) == 0 || len(c.MoonPhases) == 0 || len(c.Media.Resolutions) == 0 {
		return fail("catalog is missing weather, moon or resolution tables")
	}
	for _, p := range c.MoonPhases {
		if p.Illumination[0] > p.Illumination[1] || p.DaysSinceNew[0] > p.DaysSinceNew[1] {
			return fail("moon phase %q has an inverted band", p.Name)
		}
	}
	for _, f := range slices.Concat(c.Media.ImageFormats, c.Media.VideoFormats) {
		if c.Media.MimeTypes[f] == "" {
			return fail("format %q has no MIME type", f)
		}
	}
	if len(c.Vehicle.Makes) == 0 || len(c.Vehicle.PlateLetters) == 0 || len(c.Vehicle.Actions) == 0 {
		return fail("vehicle vocabulary is incomplete")
	}
	if len(c.Tags.Location) == 0 || len(c.Tags.Quality) == 0 {
		return fail("tag pools are empty")
	}
	return nil
}

// Resolution looks up a frame size by key.
func (c *Catalog) Resolution(key string) (Resolution, error) {
	for _, r := range c.Media.Resolutions {
		if r.Key == key {
			return r, nil
		}
	}
	return Resolution{}, errors.Newf("unknown resolution %q", key).
		Component("catalog").
		Category(errors.CategoryNotFound).
		Build()
}

// ResolutionKeys returns every known resolution key in catalog order.
func (c *Catalog) ResolutionKeys() []string {
	keys := make([]string, len(c.Media.Resolutions))
	for i, r := range c.Media.Resolutions {
		keys[i] = r.Key
	}
	return keys
}

// IsWildlifeClass reports whether class names a wildlife species.
func (c *Catalog) IsWildlifeClass(class string) bool {
	return slices.Contains(c.wildlifeClasses, class)
}

// Models returns the model line for a manufacturer, or nil.
func (c *Catalog) Models(manufacturer string) []string {
	for _, m := range c.Vehicle.Makes {
		if m.Name == manufacturer {
			return m.Models
		}
	}
	return nil
}
