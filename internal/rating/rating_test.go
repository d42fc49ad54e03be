package rating

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tphakala/mediaseed/internal/catalog"
	"github.com/tphakala/mediaseed/internal/detection"
	"github.com/tphakala/mediaseed/internal/randomness"
)

var reference = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func emptyResult() *detection.Result {
	return &detection.Result{Objects: []detection.Object{}, Summary: detection.Summary{EmptyFrame: true}}
}

func deerResult(n int, confidence float64) *detection.Result {
	objects := make([]detection.Object, n)
	for i := range objects {
		objects[i] = detection.Object{
			Category:   detection.Wildlife,
			Class:      "deer",
			Confidence: confidence,
			Attributes: detection.Attributes{Wildlife: &detection.WildlifeAttributes{Sex: ptr("doe")}},
		}
	}
	return &detection.Result{
		Objects: objects,
		Summary: detection.Summary{
			TotalObjects:     n,
			ContainsWildlife: true,
			ClassDistribution: detection.ClassDistribution{
				PrimaryClass:      ptr("deer"),
				PrimaryConfidence: ptr(confidence),
				Classes:           []string{"deer"},
				ClassCounts:       map[string]int{"deer": n},
			},
		},
	}
}

func TestScore(t *testing.T) {
	t.Parallel()

	pools := &catalog.MustDefault().Tags
	known := deerResult(2, 0.95)
	known.Summary.ContainsKnownIndividuals = true
	known.Summary.ContainsPeople = true

	tests := []struct {
		name string
		det  *detection.Result
		user []string
		want int
	}{
		{"empty frame", emptyResult(), nil, 2},
		{"empty frame with negative tags clamps", emptyResult(), []string{"too-dark", "blurry", "bad-quality"}, MinRating},
		{"single low confidence", deerResult(1, 0.8), nil, 3},
		{"multiple high confidence", deerResult(2, 0.95), nil, 5},
		{"everything clamps", known, []string{"good-photo", "favorite"}, MaxRating},
		{"mixed user tags cancel", deerResult(1, 0.8), []string{"good-light", "too-dark", "north-field"}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Score(tt.det, tt.user, pools))
		})
	}
}

func TestRateBounds(t *testing.T) {
	t.Parallel()

	e := NewEngine(catalog.MustDefault(), randomness.New(5), reference)
	for range 200 {
		for _, det := range []*detection.Result{emptyResult(), deerResult(1, 0.7), deerResult(3, 0.99)} {
			md := e.Rate(det, []string{"good-photo"})
			assert.GreaterOrEqual(t, md.Rating, MinRating)
			assert.LessOrEqual(t, md.Rating, MaxRating)
			if md.IsFavorite {
				assert.GreaterOrEqual(t, md.Rating, HighRating)
			}
			assert.False(t, md.LastViewed.After(reference))
			assert.True(t, md.LastViewed.After(reference.AddDate(0, 0, -9)))
			assert.NotEmpty(t, md.Notes)
		}
	}
}

func TestNoteLocation(t *testing.T) {
	t.Parallel()

	e := NewEngine(catalog.MustDefault(), randomness.New(1), reference)
	assert.Equal(t, "east feeder", e.location([]string{"good-photo", "east-feeder", "north-field"}))
	assert.Equal(t, "camera location", e.location([]string{"pond"}))
	assert.Equal(t, "camera location", e.location(nil))
}

func TestNoteClauses(t *testing.T) {
	t.Parallel()

	det := deerResult(2, 0.8)
	det.Objects[0].Attributes.Wildlife = &detection.WildlifeAttributes{Sex: ptr("buck"), AntlerPoints: ptr(8)}
	det.Objects = append(det.Objects, detection.Object{
		Category:       detection.Person,
		Class:          detection.PersonClass,
		Attributes:     detection.Attributes{Person: &detection.PersonAttributes{}},
		Identification: &detection.Identification{Name: "Person 7"},
	}, detection.Object{
		Category:   detection.Vehicle,
		Class:      detection.VehicleClass,
		Attributes: detection.Attributes{Vehicle: &detection.VehicleAttributes{Make: "Ford", Model: "F-150"}},
	})
	det.Summary.ClassDistribution.Classes = []string{"deer", detection.PersonClass, detection.VehicleClass}
	det.Summary.ClassDistribution.ClassCounts = map[string]int{"deer": 2, detection.PersonClass: 1, detection.VehicleClass: 1}

	assert.Equal(t,
		[]string{"Group of 2 deers", "1 person", "1 vehicle", "8-point buck", "Person 7", "Ford F-150"},
		detectionClauses(det))
	assert.Equal(t, []string{"Single deer"}, detectionClauses(deerResult(1, 0.8)))
	assert.Nil(t, detectionClauses(emptyResult()))
}

func TestFill(t *testing.T) {
	t.Parallel()

	e := NewEngine(catalog.MustDefault(), randomness.New(1), reference)
	assert.Equal(t, "Great deer shot!", e.fill("Great {class} shot!", "deer"))
	assert.Equal(t, "Turkey sighting at ", e.fill("{Class} sighting at ", "turkey"))
	assert.Equal(t, "Utility Vehicle at ", e.fill("{Type} at ", "utility vehicle"))
}

func TestRateEmptyNote(t *testing.T) {
	t.Parallel()

	pool := catalog.MustDefault().Notes.Empty
	e := NewEngine(catalog.MustDefault(), randomness.New(8), reference)
	for range 50 {
		md := e.Rate(emptyResult(), nil)
		matched := false
		for _, phrase := range pool {
			if strings.HasPrefix(md.Notes, phrase) {
				matched = true
			}
		}
		assert.True(t, matched, md.Notes)
	}
}
