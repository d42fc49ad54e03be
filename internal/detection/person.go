package detection

import (
	"fmt"

	"github.com/tphakala/mediaseed/internal/catalog"
	"github.com/tphakala/mediaseed/internal/numeric"
	"github.com/tphakala/mediaseed/internal/randomness"
)

// PersonClass is the class of every person object; the role is the subclass.
const PersonClass = "person"

func (s *Synthesizer) person(res catalog.Resolution, in Input) Object {
	attrs := s.personAttributes()
	box := s.box(res, 0.08, 0.25, 0.2, 0.8)

	obj := Object{
		Category:    Person,
		Class:       PersonClass,
		Subclass:    randomness.Choice(s.rnd, s.cat.Person.Subclasses),
		Confidence:  numeric.Round(s.rnd.Uniform(0.7, 0.95), 2),
		Count:       1,
		BoundingBox: box,
		Attributes:  Attributes{Person: attrs},
	}

	if in.IsVideo() {
		obj.Tracking = s.tracking(in, 3, s.rnd.Chance(0.4))
	}

	if s.rnd.Chance(0.05) {
		obj.Identification = s.identification(
			fmt.Sprintf("Person %d", s.rnd.IntRange(1, 100)),
			fmt.Sprintf("person-%03d", s.rnd.IntRange(1, 999)),
			"Regular visitor to the property", 1, 8)
	}
	return obj
}

func (s *Synthesizer) personAttributes() *PersonAttributes {
	v := &s.cat.Person
	a := &PersonAttributes{
		AgeRange: randomness.Choice(s.rnd, v.AgeRanges),
		Action:   randomness.Choice(s.rnd, v.Actions),
		Posture:  randomness.Choice(s.rnd, v.Postures),
		Build:    randomness.Choice(s.rnd, v.Builds),
		Height:   randomness.Choice(s.rnd, v.Heights),
		Clothing: Clothing{
			UpperBody: randomness.Choice(s.rnd, v.UpperBody),
			LowerBody: randomness.Choice(s.rnd, v.LowerBody),
			Colors:    []string{randomness.Choice(s.rnd, v.Colors), randomness.Choice(s.rnd, v.Colors)},
		},
		Position:    randomness.Choice(s.rnd, s.cat.Scene.Positions),
		Accessories: randomness.Choice(s.rnd, v.Accessories),
		Carrying:    randomness.Choice(s.rnd, v.Carrying),
	}
	if g := randomness.Choice(s.rnd, v.Genders); g != "" {
		a.Gender = &g
	}
	if h := randomness.Choice(s.rnd, v.Headwear); h != "" {
		a.Clothing.Headwear = &h
	}
	a.Occlusion, a.Blur = s.occlusionAndBlur()
	return a
}
