package detection

import (
	"encoding/json"
	"time"
)

// Category is the broad kind of a detected object.
type Category string

// Object categories.
const (
	Wildlife Category = "wildlife"
	Person   Category = "person"
	Vehicle  Category = "vehicle"

	// none is the empty-frame outcome of the category router.
	none Category = ""
)

// Media types.
const (
	MediaImage = "image"
	MediaVideo = "video"
)

// BoundingBox is a pixel rectangle inside the frame.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// WildlifeAttributes describes an animal. Deer-only fields are nil unless the
// animal qualifies for them.
type WildlifeAttributes struct {
	Sex                 *string  `json:"sex"`
	Age                 string   `json:"age"`
	Action              string   `json:"action"`
	Color               string   `json:"color"`
	Size                string   `json:"size"`
	Position            string   `json:"position"`
	Occlusion           float64  `json:"occlusion"`
	Blur                float64  `json:"blur"`
	AntlerPoints        *int     `json:"antler_points,omitempty"`
	AntlerSpread        *float64 `json:"antler_spread,omitempty"`
	BodyCondition       string   `json:"body_condition,omitempty"`
	DistinctiveFeatures string   `json:"distinctive_features,omitempty"`
	GroupSize           *int     `json:"group_size,omitempty"`
	WithYoung           bool     `json:"with_young,omitempty"`
}

// SexValue returns the sex, or "" when undetermined.
func (a *WildlifeAttributes) SexValue() string {
	if a.Sex == nil {
		return ""
	}
	return *a.Sex
}

// Clothing is what a person is wearing.
type Clothing struct {
	UpperBody string   `json:"upper_body"`
	LowerBody string   `json:"lower_body"`
	Headwear  *string  `json:"headwear"`
	Colors    []string `json:"colors"`
}

// PersonAttributes describes a person.
type PersonAttributes struct {
	Gender      *string  `json:"gender"`
	AgeRange    string   `json:"age_range"`
	Action      string   `json:"action"`
	Posture     string   `json:"posture"`
	Height      string   `json:"height"`
	Build       string   `json:"build"`
	Clothing    Clothing `json:"clothing"`
	Position    string   `json:"position"`
	Occlusion   float64  `json:"occlusion"`
	Blur        float64  `json:"blur"`
	Accessories string   `json:"accessories,omitempty"`
	Carrying    string   `json:"carrying,omitempty"`
}

// VehicleAttributes describes a vehicle.
type VehicleAttributes struct {
	VehicleType       string  `json:"vehicle_type"`
	Make              string  `json:"make"`
	Model             string  `json:"model"`
	Color             string  `json:"color"`
	YearRange         string  `json:"year_range"`
	Position          string  `json:"position"`
	Occlusion         float64 `json:"occlusion"`
	Blur              float64 `json:"blur"`
	Wheels            int     `json:"wheels"`
	Doors             int     `json:"doors"`
	IsMoving          bool    `json:"is_moving"`
	LightsOn          bool    `json:"lights_on"`
	LicensePlate      string  `json:"license_plate,omitempty"`
	State             string  `json:"state,omitempty"`
	DistinctiveMarks  string  `json:"distinctive_marks,omitempty"`
	Occupants         *int    `json:"occupants,omitempty"`
	DirectionOfTravel string  `json:"direction_of_travel,omitempty"`
}

// Attributes is a tagged variant: exactly one field is set, matching the
// object's category. It serializes as the set variant.
type Attributes struct {
	Wildlife *WildlifeAttributes
	Person   *PersonAttributes
	Vehicle  *VehicleAttributes
}

// MarshalJSON implements json.Marshaler.
func (a Attributes) MarshalJSON() ([]byte, error) {
	switch {
	case a.Wildlife != nil:
		return json.Marshal(a.Wildlife)
	case a.Person != nil:
		return json.Marshal(a.Person)
	case a.Vehicle != nil:
		return json.Marshal(a.Vehicle)
	default:
		return []byte("{}"), nil
	}
}

// Identification links an object to a known individual.
type Identification struct {
	Name              string    `json:"name"`
	ID                string    `json:"id"`
	Confidence        float64   `json:"confidence"`
	FirstSeen         time.Time `json:"first_seen"`
	LastSeen          time.Time `json:"last_seen"`
	HistoricalMatches int       `json:"historical_matches"`
	MatchMediaIDs     []string  `json:"match_media_ids"`
	Notes             string    `json:"notes"`
}

// Motion is the per-object movement observed in a video.
type Motion struct {
	Direction    string       `json:"direction"`
	Speed        float64      `json:"speed"`
	IsStationary bool         `json:"is_stationary"`
	Path         [][2]float64 `json:"path"`
}

// Tracking is present on objects detected in video.
// Disappearance is always after Appearance.
type Tracking struct {
	TrackingID     string    `json:"tracking_id"`
	DetectionID    string    `json:"detection_id"`
	Appearance     time.Time `json:"appearance_timestamp"`
	Disappearance  time.Time `json:"disappearance_timestamp"`
	DurationMillis int64     `json:"duration_ms"`
	Motion         Motion    `json:"motion"`
}

// Relation links an animal to another detection.
type Relation struct {
	RelatedTo    string  `json:"related_to"`
	RelationType string  `json:"relation_type"`
	Confidence   float64 `json:"confidence"`
}

// Object is one detected subject. Tracking fields are inlined at the top
// level of the serialized object.
type Object struct {
	Category       Category        `json:"category"`
	Class          string          `json:"class"`
	Subclass       string          `json:"subclass,omitempty"`
	Confidence     float64         `json:"confidence"`
	Count          int             `json:"count"`
	BoundingBox    BoundingBox     `json:"bounding_box"`
	Attributes     Attributes      `json:"attributes"`
	Taxonomic      []string        `json:"taxonomic,omitempty"`
	*Tracking                      // video only
	Identification *Identification `json:"identification,omitempty"`
	Relations      []Relation      `json:"relations,omitempty"`
}

// ObjectCounts counts objects per category.
type ObjectCounts struct {
	Wildlife int `json:"wildlife"`
	People   int `json:"people"`
	Vehicles int `json:"vehicles"`
	Other    int `json:"other"`
}

// ClassDistribution summarizes classes across objects. Primary fields are
// nil for an empty frame.
type ClassDistribution struct {
	PrimaryClass      *string        `json:"primary_class"`
	PrimaryConfidence *float64       `json:"primary_confidence"`
	Classes           []string       `json:"classes"`
	Subclasses        []string       `json:"subclasses"`
	ClassCounts       map[string]int `json:"class_counts"`
}

// MotionSummary aggregates video motion.
type MotionSummary struct {
	PredominantDirection *string  `json:"predominant_direction"`
	ActivityLevel        string   `json:"activity_level"`
	EntryPoints          []string `json:"entry_points"`
	ExitPoints           []string `json:"exit_points"`
}

// SceneContext describes the scene. Its flags are drawn independently of the
// detected objects.
type SceneContext struct {
	TimeOfDay          string `json:"time_of_day"`
	LightingConditions string `json:"lighting_conditions"`
	WeatherApparent    string `json:"weather_apparent"`
	Terrain            string `json:"terrain"`
	Habitat            string `json:"habitat"`
	IsFeedingArea      bool   `json:"is_feeding_area"`
	IsWaterSource      bool   `json:"is_water_source"`
	IsTrail            bool   `json:"is_trail"`
	IsRoad             bool   `json:"is_road"`
	IsBoundary         bool   `json:"is_boundary"`
}

// Summary aggregates a result. TotalObjects == len(objects) and
// EmptyFrame == (TotalObjects == 0).
type Summary struct {
	TotalObjects             int               `json:"total_objects"`
	EmptyFrame               bool              `json:"empty_frame"`
	ContainsWildlife         bool              `json:"contains_wildlife"`
	ContainsPeople           bool              `json:"contains_people"`
	ContainsVehicles         bool              `json:"contains_vehicles"`
	ContainsOther            bool              `json:"contains_other"`
	ContainsKnownIndividuals bool              `json:"contains_known_individuals"`
	NamedIndividuals         []string          `json:"named_individuals"`
	ObjectCounts             ObjectCounts      `json:"object_counts"`
	ClassDistribution        ClassDistribution `json:"class_distribution"`
	MotionSummary            MotionSummary     `json:"motion_summary"`
	SceneContext             SceneContext      `json:"scene_context"`
}

// Event is a higher-level activity recognized in a video.
type Event struct {
	Type             string    `json:"type"`
	Confidence       float64   `json:"confidence"`
	Start            time.Time `json:"start_timestamp"`
	End              time.Time `json:"end_timestamp"`
	DurationMillis   int64     `json:"duration_ms"`
	PrimaryObjects   []string  `json:"primary_objects"`
	SecondaryObjects []string  `json:"secondary_objects"`
	Description      string    `json:"description"`
	Significance     string    `json:"significance"`
}

// Parameters records the detector settings.
type Parameters struct {
	MinConfidence   float64 `json:"min_confidence"`
	IncludeTracking bool    `json:"include_tracking"`
	DetectWildlife  *bool   `json:"detect_wildlife,omitempty"`
	DetectPeople    *bool   `json:"detect_people,omitempty"`
	DetectVehicles  *bool   `json:"detect_vehicles,omitempty"`
}

// Processing describes the detector run.
type Processing struct {
	Model               string     `json:"model"`
	Version             string     `json:"version"`
	ProcessingTimeMS    int        `json:"processing_time_ms"`
	Timestamp           time.Time  `json:"timestamp"`
	ConfidenceThreshold float64    `json:"confidence_threshold"`
	ProcessorID         string     `json:"processor_id"`
	BatchID             string     `json:"batch_id"`
	ModelsUsed          []string   `json:"models_used"`
	IsReprocessed       bool       `json:"is_reprocessed"`
	Parameters          Parameters `json:"parameters"`
}

// Result is the detection block of a record.
type Result struct {
	Objects    []Object   `json:"objects"`
	Summary    Summary    `json:"summary"`
	Event      *Event     `json:"event"`
	Processing Processing `json:"processing"`
}

// IsEmpty reports whether nothing was detected.
func (r *Result) IsEmpty() bool {
	return len(r.Objects) == 0
}

// PrimaryClass returns the primary class, or "" for an empty frame.
func (r *Result) PrimaryClass() string {
	if r.Summary.ClassDistribution.PrimaryClass == nil {
		return ""
	}
	return *r.Summary.ClassDistribution.PrimaryClass
}

// PrimaryConfidence returns the primary confidence, or 0 for an empty frame.
func (r *Result) PrimaryConfidence() float64 {
	if r.Summary.ClassDistribution.PrimaryConfidence == nil {
		return 0
	}
	return *r.Summary.ClassDistribution.PrimaryConfidence
}
