package detection

import (
	"fmt"
	"slices"

	"github.com/tphakala/mediaseed/internal/catalog"
	"github.com/tphakala/mediaseed/internal/numeric"
	"github.com/tphakala/mediaseed/internal/randomness"
)

const deerClass = "deer"

// IsBuck reports whether an animal is a male deer.
func IsBuck(class, sex string) bool {
	return class == deerClass && (sex == "buck" || sex == "stag")
}

// IsDoe reports whether an animal is a female deer.
func IsDoe(class, sex string) bool {
	return class == deerClass && (sex == "doe" || sex == "hind")
}

func (s *Synthesizer) wildlife(res catalog.Resolution, in Input) Object {
	species := randomness.Choice(s.rnd, s.cat.Wildlife)
	box := s.box(res, 0.15, 0.3, 0.15, 0.4)
	attrs := s.wildlifeAttributes(&species)
	confidence := numeric.Round(s.rnd.Uniform(0.7, 0.98), 2)

	obj := Object{
		Category:    Wildlife,
		Class:       species.Class,
		Subclass:    species.Subclass,
		Confidence:  confidence,
		Count:       1,
		BoundingBox: box,
		Attributes:  Attributes{Wildlife: attrs},
		Taxonomic:   slices.Clone(species.Taxonomic),
	}

	sex := attrs.SexValue()
	if s.rnd.Chance(0.2) && sex != "" && len(species.Names[sex]) > 0 {
		name := randomness.Choice(s.rnd, species.Names[sex])
		obj.Identification = s.identification(name,
			fmt.Sprintf("%s-%03d", species.Class, s.rnd.IntRange(1, 999)),
			fmt.Sprintf("Regular %s in the area", species.Class), 3, 15)
	}

	if in.IsVideo() {
		obj.Tracking = s.tracking(in, 5, s.rnd.Chance(0.3))
	}

	if s.rnd.Chance(0.1) {
		obj.Relations = []Relation{{
			RelatedTo:    s.shortID("det", 8),
			RelationType: randomness.Choice(s.rnd, s.cat.Relations),
			Confidence:   numeric.Round(s.rnd.Uniform(0.6, 0.9), 2),
		}}
	}
	return obj
}

// wildlifeAttributes assembles the full attribute set for one animal,
// including the deer-only fields when they apply.
func (s *Synthesizer) wildlifeAttributes(species *catalog.Species) *WildlifeAttributes {
	a := &WildlifeAttributes{
		Age:    randomness.Choice(s.rnd, species.Ages),
		Action: randomness.Choice(s.rnd, species.Actions),
		Color:  randomness.Choice(s.rnd, species.Colors),
		Size:   randomness.Choice(s.rnd, species.Sizes),
	}
	if sex := randomness.Choice(s.rnd, species.Sexes); sex != "" {
		a.Sex = &sex
	}
	a.Position = randomness.Choice(s.rnd, s.cat.Scene.Positions)
	a.Occlusion, a.Blur = s.occlusionAndBlur()

	sex := a.SexValue()
	if IsBuck(species.Class, sex) && slices.Contains(s.cat.Deer.MatureAges, a.Age) {
		points := s.rnd.IntRange(6, 12)
		spread := numeric.Round(s.rnd.Uniform(15, 22), 1)
		a.AntlerPoints = &points
		a.AntlerSpread = &spread
		a.BodyCondition = randomness.Choice(s.rnd, s.cat.Deer.BodyConditions)
		if s.rnd.Chance(0.3) {
			a.DistinctiveFeatures = randomness.Choice(s.rnd, s.cat.Deer.DistinctiveFeatures)
		}
	}
	if species.Class == deerClass && s.rnd.Chance(0.4) {
		group := s.rnd.IntRange(2, 8)
		a.GroupSize = &group
		if IsDoe(species.Class, sex) && s.rnd.Chance(0.6) {
			a.WithYoung = true
		}
	}
	return a
}
