package tagging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/mediaseed/internal/astronomy"
	"github.com/tphakala/mediaseed/internal/catalog"
	"github.com/tphakala/mediaseed/internal/detection"
	"github.com/tphakala/mediaseed/internal/randomness"
	"github.com/tphakala/mediaseed/internal/weather"
)

func ptr[T any](v T) *T { return &v }

func TestTagSet(t *testing.T) {
	t.Parallel()

	s := NewTagSet()
	assert.NotNil(t, s.Items())
	s.Add("deer", "", "day", "deer")
	s.Add("day")
	assert.Equal(t, []string{"deer", "day"}, s.Items())
	assert.True(t, s.Contains("day"))
	assert.Equal(t, 2, s.Len())
}

func TestSlug(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "big-eight", Slug("Big Eight"))
	assert.Equal(t, "person-12", Slug("Person 12"))
}

func emptyResult() *detection.Result {
	return &detection.Result{Objects: []detection.Object{}, Summary: detection.Summary{EmptyFrame: true}}
}

func TestDeriveEmptyFrame(t *testing.T) {
	t.Parallel()

	d := NewDeriver(catalog.MustDefault(), randomness.New(1))
	w := &weather.Snapshot{Temperature: 45, Humidity: 80, Conditions: weather.Conditions{Main: "Rain"}}
	tags := d.Derive(Input{MediaType: detection.MediaImage, SunPosition: astronomy.Night, Weather: w, Detection: emptyResult()})

	assert.Equal(t, []string{"image", "night", "rain-weather", "cold", "humid", "motion", "empty"}, tags.System)
	assert.Empty(t, tags.User)
	assert.NotNil(t, tags.User)
	assert.Empty(t, tags.AI)
}

func mixedResult() *detection.Result {
	deer := detection.Object{
		Category: detection.Wildlife,
		Class:    "deer",
		Subclass: "whitetail",
		Attributes: detection.Attributes{Wildlife: &detection.WildlifeAttributes{
			Sex: ptr("buck"), Age: "mature", Action: "feeding",
			AntlerPoints: ptr(10), DistinctiveFeatures: "drop tine", GroupSize: ptr(3),
		}},
		Identification: &detection.Identification{Name: "Big Eight"},
	}
	hunter := detection.Object{
		Category: detection.Person,
		Class:    detection.PersonClass,
		Subclass: "hunter",
		Attributes: detection.Attributes{Person: &detection.PersonAttributes{
			Gender: ptr("male"), AgeRange: "adult", Action: "walking",
			Clothing: detection.Clothing{UpperBody: "jacket", LowerBody: "pants", Headwear: ptr("cap")},
		}},
	}
	truck := detection.Object{
		Category: detection.Vehicle,
		Class:    detection.VehicleClass,
		Subclass: "truck",
		Attributes: detection.Attributes{Vehicle: &detection.VehicleAttributes{
			VehicleType: "truck", Make: "Ford", Color: "white",
		}},
	}
	primary := "deer"
	return &detection.Result{
		Objects: []detection.Object{deer, hunter, truck},
		Summary: detection.Summary{
			TotalObjects:     3,
			ContainsWildlife: true,
			ContainsPeople:   true,
			ContainsVehicles: true,
			ObjectCounts:     detection.ObjectCounts{Wildlife: 1, People: 1, Vehicles: 1},
			ClassDistribution: detection.ClassDistribution{
				PrimaryClass: &primary,
				Classes:      []string{"deer", detection.PersonClass, detection.VehicleClass},
			},
			SceneContext: detection.SceneContext{Habitat: "woodland", IsFeedingArea: true, IsTrail: true},
		},
	}
}

func TestDeriveMixed(t *testing.T) {
	t.Parallel()

	d := NewDeriver(catalog.MustDefault(), randomness.New(9))
	w := &weather.Snapshot{Temperature: 85, Humidity: 40, Conditions: weather.Conditions{Main: "Clear"}}
	tags := d.Derive(Input{MediaType: detection.MediaVideo, SunPosition: astronomy.Day, Weather: w, Detection: mixedResult()})

	assert.Equal(t, []string{
		"video", "day", "clear-weather", "hot", "motion",
		"deer", "person", "vehicle",
		"multiple", "wildlife-human", "wildlife-vehicle", "human-vehicle",
	}, tags.System)
	assert.Equal(t, []string{
		"whitetail", "buck", "mature", "feeding", "10-point", "drop tine", "group", "big-eight",
		"hunter", "male", "adult", "walking", "cap", "jacket", "pants",
		"truck", "ford", "white", "stationary-vehicle",
		"woodland", "feeding-area", "trail",
	}, tags.AI)
}

func TestUserTags(t *testing.T) {
	t.Parallel()

	cat := catalog.MustDefault()
	d := NewDeriver(cat, randomness.New(21))
	det := mixedResult()
	withUser := 0
	for range 500 {
		tags := d.Derive(Input{MediaType: detection.MediaImage, SunPosition: astronomy.Day, Detection: det})
		if len(tags.User) == 0 {
			continue
		}
		withUser++
		require.LessOrEqual(t, len(tags.User), maxUserTags)
		assert.Contains(t, cat.Tags.Location, tags.User[0])

		seen := map[string]bool{}
		for _, tag := range tags.User {
			assert.False(t, seen[tag], "duplicate user tag %q", tag)
			seen[tag] = true
		}
	}
	assert.InDelta(t, 350, withUser, 60)
}

func TestCandidates(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"deer", "buck", "antlers", "person", "hunter", "vehicle", "truck"}, candidates(mixedResult()))
}
