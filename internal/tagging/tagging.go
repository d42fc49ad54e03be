// Package tagging derives the system, ai and user tag buckets of a record
// from its detection, weather and astronomy blocks.
package tagging

import (
	"fmt"
	"strings"

	"github.com/tphakala/mediaseed/internal/catalog"
	"github.com/tphakala/mediaseed/internal/detection"
	"github.com/tphakala/mediaseed/internal/randomness"
	"github.com/tphakala/mediaseed/internal/weather"
)

// Temperature and humidity thresholds for system tags.
const (
	ColdBelow    = 50.0
	HotAbove     = 80.0
	HumidAbove   = 70
	userTagsRate = 0.7
	candidateHit = 0.6
	maxUserTags  = 4
)

// Tags is the tags block of a record. No bucket holds duplicates.
type Tags struct {
	System []string `json:"system"`
	User   []string `json:"user"`
	AI     []string `json:"ai"`
}

// Input is everything tags are derived from.
type Input struct {
	MediaType   string
	SunPosition string
	Weather     *weather.Snapshot
	Detection   *detection.Result
}

// Deriver produces tags.
type Deriver struct {
	cat *catalog.Catalog
	rnd *randomness.Source
}

// NewDeriver returns a Deriver drawing user tags from rnd.
func NewDeriver(cat *catalog.Catalog, rnd *randomness.Source) *Deriver {
	return &Deriver{cat: cat, rnd: rnd}
}

// Derive builds the three tag buckets. An empty frame gets only system tags.
func (d *Deriver) Derive(in Input) Tags {
	system, ai := NewTagSet(), NewTagSet()

	system.Add(in.MediaType, in.SunPosition)
	if w := in.Weather; w != nil {
		system.Add(strings.ToLower(w.Conditions.Main) + "-weather")
		switch {
		case w.Temperature < ColdBelow:
			system.Add("cold")
		case w.Temperature > HotAbove:
			system.Add("hot")
		}
		if w.Humidity > HumidAbove {
			system.Add("humid")
		}
	}
	system.Add("motion")

	det := in.Detection
	if det == nil || det.Summary.EmptyFrame {
		system.Add("empty")
		return Tags{System: system.Items(), User: []string{}, AI: ai.Items()}
	}

	sum := &det.Summary
	system.Add(det.PrimaryClass())
	system.Add(sum.ClassDistribution.Classes...)

	for i := range det.Objects {
		objectTags(ai, &det.Objects[i])
	}

	if sum.TotalObjects > 1 {
		system.Add("multiple")
		if sum.ContainsWildlife && sum.ContainsPeople {
			system.Add("wildlife-human")
		}
		if sum.ContainsWildlife && sum.ContainsVehicles {
			system.Add("wildlife-vehicle")
		}
		if sum.ContainsPeople && sum.ContainsVehicles {
			system.Add("human-vehicle")
		}
	}

	scene := &sum.SceneContext
	ai.Add(scene.Habitat)
	if scene.IsFeedingArea {
		ai.Add("feeding-area")
	}
	if scene.IsWaterSource {
		ai.Add("water-source")
	}
	if scene.IsTrail {
		ai.Add("trail")
	}
	if scene.IsRoad {
		ai.Add("road")
	}

	user := []string{}
	if d.rnd.Chance(userTagsRate) {
		user = d.userTags(det)
	}
	return Tags{System: system.Items(), User: user, AI: ai.Items()}
}

// Slug lowercases a name and joins its words with dashes.
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

func objectTags(ai *TagSet, o *detection.Object) {
	ai.Add(o.Subclass)

	switch o.Category {
	case detection.Wildlife:
		a := o.Attributes.Wildlife
		if a == nil {
			break
		}
		ai.Add(a.SexValue(), a.Age, a.Action)
		if a.AntlerPoints != nil {
			ai.Add(fmt.Sprintf("%d-point", *a.AntlerPoints))
		}
		ai.Add(a.DistinctiveFeatures)
		if a.GroupSize != nil && *a.GroupSize > 1 {
			ai.Add("group")
		}
		if a.WithYoung {
			ai.Add("with-young")
		}
	case detection.Person:
		a := o.Attributes.Person
		if a == nil {
			break
		}
		if a.Gender != nil {
			ai.Add(*a.Gender)
		}
		ai.Add(a.AgeRange, a.Action)
		if a.Clothing.Headwear != nil {
			ai.Add(*a.Clothing.Headwear)
		}
		ai.Add(a.Clothing.UpperBody, a.Clothing.LowerBody)
	case detection.Vehicle:
		a := o.Attributes.Vehicle
		if a == nil {
			break
		}
		ai.Add(a.VehicleType, strings.ToLower(a.Make), a.Color)
		if a.IsMoving {
			ai.Add("moving-vehicle")
		} else {
			ai.Add("stationary-vehicle")
		}
	}

	if o.Identification != nil {
		ai.Add(Slug(o.Identification.Name))
	}
}

// candidates lists detection-derived user tags in priority order.
func candidates(det *detection.Result) []string {
	c := NewTagSet()
	sum := &det.Summary
	if sum.ContainsWildlife {
		for i := range det.Objects {
			o := &det.Objects[i]
			if o.Category != detection.Wildlife {
				continue
			}
			c.Add(o.Class)
			if a := o.Attributes.Wildlife; a != nil {
				switch {
				case detection.IsBuck(o.Class, a.SexValue()):
					c.Add("buck", "antlers")
				case detection.IsDoe(o.Class, a.SexValue()):
					c.Add("doe")
				}
			}
		}
	}
	if sum.ContainsPeople {
		c.Add("person")
		if sum.ObjectCounts.People > 1 {
			c.Add("people")
		}
		for i := range det.Objects {
			if det.Objects[i].Category == detection.Person && det.Objects[i].Subclass == "hunter" {
				c.Add("hunter")
			}
		}
	}
	if sum.ContainsVehicles {
		c.Add("vehicle")
		for i := range det.Objects {
			if a := det.Objects[i].Attributes.Vehicle; a != nil {
				c.Add(a.VehicleType)
			}
		}
	}
	return c.Items()
}

func (d *Deriver) userTags(det *detection.Result) []string {
	quota := d.rnd.IntRange(1, maxUserTags)
	pools := &d.cat.Tags

	user := NewTagSet()
	user.Add(randomness.Choice(d.rnd, pools.Location))
	for _, tag := range candidates(det) {
		if d.rnd.Chance(candidateHit) && user.Len() < quota {
			user.Add(tag)
		}
	}
	for user.Len() < quota {
		var remaining []string
		for _, q := range pools.Quality {
			if !user.Contains(q) {
				remaining = append(remaining, q)
			}
		}
		if len(remaining) == 0 {
			break
		}
		user.Add(randomness.Choice(d.rnd, remaining))
	}
	return user.Items()
}
