package detection

import (
	"slices"

	"github.com/tphakala/mediaseed/internal/astronomy"
	"github.com/tphakala/mediaseed/internal/randomness"
)

// Activity levels reported in the motion summary.
const (
	ActivityNone   = "none"
	ActivityLow    = "low"
	ActivityMedium = "medium"
	ActivityHigh   = "high"
)

func lighting(sunPosition string) string {
	switch sunPosition {
	case astronomy.Day:
		return "good"
	case astronomy.Dawn, astronomy.Dusk:
		return "low"
	default:
		return "poor"
	}
}

// newSummary returns the empty-frame summary with a freshly drawn scene.
func (s *Synthesizer) newSummary(sunPosition string) Summary {
	scene := &s.cat.Scene
	return Summary{
		EmptyFrame:       true,
		NamedIndividuals: []string{},
		ClassDistribution: ClassDistribution{
			Classes:     []string{},
			Subclasses:  []string{},
			ClassCounts: map[string]int{},
		},
		MotionSummary: MotionSummary{
			ActivityLevel: ActivityNone,
			EntryPoints:   []string{},
			ExitPoints:    []string{},
		},
		SceneContext: SceneContext{
			TimeOfDay:          sunPosition,
			LightingConditions: lighting(sunPosition),
			WeatherApparent:    randomness.Choice(s.rnd, scene.WeatherApparent),
			Terrain:            randomness.Choice(s.rnd, scene.Terrains),
			Habitat:            randomness.Choice(s.rnd, scene.Habitats),
			IsFeedingArea:      s.rnd.Chance(0.3),
			IsWaterSource:      s.rnd.Chance(0.2),
			IsTrail:            s.rnd.Chance(0.4),
			IsRoad:             s.rnd.Chance(0.2),
			IsBoundary:         s.rnd.Chance(0.15),
		},
	}
}

// counter tallies keys and remembers first-insertion order so that ties
// resolve to the earliest key.
type counter struct {
	keys   []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: map[string]int{}}
}

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.counts[key]++
}

func (c *counter) top() string {
	best := ""
	for _, k := range c.keys {
		if best == "" || c.counts[k] > c.counts[best] {
			best = k
		}
	}
	return best
}

// summarize folds objects into a summary created by newSummary.
func summarize(summary *Summary, objects []Object, isVideo bool) {
	summary.TotalObjects = len(objects)
	summary.EmptyFrame = len(objects) == 0
	if summary.EmptyFrame {
		return
	}

	classes := newCounter()
	var subclasses []string
	for i := range objects {
		o := &objects[i]
		switch o.Category {
		case Wildlife:
			summary.ContainsWildlife = true
			summary.ObjectCounts.Wildlife++
		case Person:
			summary.ContainsPeople = true
			summary.ObjectCounts.People++
		case Vehicle:
			summary.ContainsVehicles = true
			summary.ObjectCounts.Vehicles++
		}
		if o.Identification != nil {
			summary.ContainsKnownIndividuals = true
			if !slices.Contains(summary.NamedIndividuals, o.Identification.Name) {
				summary.NamedIndividuals = append(summary.NamedIndividuals, o.Identification.Name)
			}
		}
		classes.add(o.Class)
		if o.Subclass != "" && !slices.Contains(subclasses, o.Subclass) {
			subclasses = append(subclasses, o.Subclass)
		}
	}

	primary := classes.top()
	confidence := 0.0
	for i := range objects {
		if objects[i].Class == primary {
			confidence = max(confidence, objects[i].Confidence)
		}
	}
	dist := &summary.ClassDistribution
	dist.PrimaryClass = &primary
	dist.PrimaryConfidence = &confidence
	dist.Classes = slices.Clone(classes.keys)
	if subclasses != nil {
		dist.Subclasses = subclasses
	}
	dist.ClassCounts = classes.counts

	if isVideo {
		summarizeMotion(&summary.MotionSummary, objects)
	}
}

func summarizeMotion(m *MotionSummary, objects []Object) {
	directions := newCounter()
	for i := range objects {
		if objects[i].Tracking != nil {
			directions.add(objects[i].Tracking.Motion.Direction)
		}
	}
	if len(directions.keys) == 0 {
		return
	}

	predominant := directions.top()
	m.PredominantDirection = &predominant
	switch n := len(objects); {
	case n > 2:
		m.ActivityLevel = ActivityHigh
	case n > 1:
		m.ActivityLevel = ActivityMedium
	default:
		m.ActivityLevel = ActivityLow
	}

	seen := func(d string) bool { return directions.counts[d] > 0 }
	if seen("towards") {
		m.EntryPoints = append(m.EntryPoints, "front")
	}
	if seen("away") {
		m.ExitPoints = append(m.ExitPoints, "back")
	}
	if seen("left") {
		m.EntryPoints = append(m.EntryPoints, "right")
		m.ExitPoints = append(m.ExitPoints, "left")
	}
	if seen("right") {
		m.EntryPoints = append(m.EntryPoints, "left")
		m.ExitPoints = append(m.ExitPoints, "right")
	}
}
