// Package rating scores a record from its detections and user tags and
// writes the matching user note.
package rating

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tphakala/mediaseed/internal/catalog"
	"github.com/tphakala/mediaseed/internal/detection"
	"github.com/tphakala/mediaseed/internal/numeric"
	"github.com/tphakala/mediaseed/internal/randomness"
)

// Rating bounds.
const (
	MinRating  = 1
	MaxRating  = 5
	baseRating = 3

	// HighRating selects the enthusiastic note pools and enables favorites.
	HighRating = 4

	favoriteProbability = 0.7
	defaultLocation     = "camera location"
)

// UserMetadata is the user_metadata block of a record.
type UserMetadata struct {
	Notes      string    `json:"notes"`
	Rating     int       `json:"rating"`
	IsFavorite bool      `json:"is_favorite"`
	IsHidden   bool      `json:"is_hidden"`
	IsArchived bool      `json:"is_archived"`
	LastViewed time.Time `json:"last_viewed_timestamp"`
}

// Score computes the clamped 1-5 rating.
func Score(det *detection.Result, userTags []string, pools *catalog.TagPools) int {
	score := baseRating
	sum := &det.Summary
	if sum.TotalObjects > 0 {
		if sum.TotalObjects > 1 {
			score++
		}
		if det.PrimaryConfidence() > 0.9 {
			score++
		}
		if sum.ContainsKnownIndividuals {
			score++
		}
		if sum.ContainsWildlife && sum.ContainsPeople {
			score++
		}
	} else {
		score--
	}

	for _, tag := range userTags {
		switch {
		case slices.Contains(pools.Positive, tag):
			score++
		case slices.Contains(pools.Negative, tag):
			score--
		}
	}
	return numeric.Clamp(score, MinRating, MaxRating)
}

// Engine rates records. It is not safe for concurrent use.
type Engine struct {
	cat       *catalog.Catalog
	rnd       *randomness.Source
	reference time.Time
	title     cases.Caser
}

// NewEngine returns an Engine. reference anchors last-viewed timestamps.
func NewEngine(cat *catalog.Catalog, rnd *randomness.Source, reference time.Time) *Engine {
	return &Engine{
		cat:       cat,
		rnd:       rnd,
		reference: reference,
		title:     cases.Title(language.English),
	}
}

// Rate produces the user metadata for a record.
func (e *Engine) Rate(det *detection.Result, userTags []string) UserMetadata {
	score := Score(det, userTags, &e.cat.Tags)
	notes := e.note(det, score, userTags)

	lastViewed := e.reference.
		AddDate(0, 0, -e.rnd.IntRange(0, 7)).
		Add(-time.Duration(e.rnd.IntRange(0, 23)) * time.Hour).
		Add(-time.Duration(e.rnd.IntRange(0, 59)) * time.Minute)

	return UserMetadata{
		Notes:      notes,
		Rating:     score,
		IsFavorite: score >= HighRating && e.rnd.Chance(favoriteProbability),
		LastViewed: lastViewed,
	}
}

func (e *Engine) note(det *detection.Result, score int, userTags []string) string {
	pools := &e.cat.Notes
	sum := &det.Summary
	high := score >= HighRating

	var phrase string
	switch {
	case sum.EmptyFrame:
		phrase = randomness.Choice(e.rnd, pools.Empty)
	case sum.ContainsWildlife:
		class := firstClass(det, detection.Wildlife, "wildlife")
		pool := pools.WildlifeLow
		if high {
			pool = pools.WildlifeHigh
		}
		phrase = e.fill(randomness.Choice(e.rnd, pool), class)
	case sum.ContainsPeople:
		pool := pools.PersonLow
		if high {
			pool = pools.PersonHigh
		}
		phrase = randomness.Choice(e.rnd, pool)
	case sum.ContainsVehicles:
		vehicleType := "vehicle"
		for i := range det.Objects {
			if det.Objects[i].Category == detection.Vehicle && det.Objects[i].Subclass != "" {
				vehicleType = det.Objects[i].Subclass
				break
			}
		}
		phrase = e.fill(randomness.Choice(e.rnd, pools.Vehicle), vehicleType)
	default:
		phrase = randomness.Choice(e.rnd, pools.Generic)
	}

	var b strings.Builder
	b.WriteString(phrase)
	if strings.HasSuffix(phrase, " ") {
		b.WriteString(e.location(userTags))
	}
	if clauses := detectionClauses(det); len(clauses) > 0 {
		b.WriteString(" - ")
		b.WriteString(strings.Join(clauses, ", "))
	}
	return b.String()
}

// fill expands the {class}, {Class} and {Type} placeholders.
func (e *Engine) fill(phrase, name string) string {
	title := e.title.String(name)
	return strings.NewReplacer("{class}", name, "{Class}", title, "{Type}", title).Replace(phrase)
}

// location returns the first user tag naming a place on the property.
func (e *Engine) location(userTags []string) string {
	for _, tag := range userTags {
		for _, marker := range e.cat.Tags.LocationMarkers {
			if strings.Contains(tag, marker) {
				return strings.ReplaceAll(tag, "-", " ")
			}
		}
	}
	return defaultLocation
}

func firstClass(det *detection.Result, c detection.Category, fallback string) string {
	for i := range det.Objects {
		if det.Objects[i].Category == c {
			return det.Objects[i].Class
		}
	}
	return fallback
}

func plural(class string, n int) string {
	switch {
	case n == 1:
		return class
	case class == detection.PersonClass:
		return "people"
	default:
		return class + "s"
	}
}

// detectionClauses summarizes the objects: the primary class with its count,
// the other class counts, then per-object highlights.
func detectionClauses(det *detection.Result) []string {
	if det.IsEmpty() {
		return nil
	}
	dist := &det.Summary.ClassDistribution
	var clauses []string

	primary := det.PrimaryClass()
	if primary != "" {
		if n := dist.ClassCounts[primary]; n > 1 {
			clauses = append(clauses, fmt.Sprintf("Group of %d %s", n, plural(primary, n)))
		} else {
			clauses = append(clauses, "Single "+primary)
		}
	}
	if len(dist.Classes) > 1 {
		for _, class := range dist.Classes {
			if class == primary {
				continue
			}
			n := dist.ClassCounts[class]
			clauses = append(clauses, fmt.Sprintf("%d %s", n, plural(class, n)))
		}
	}

	for i := range det.Objects {
		o := &det.Objects[i]
		switch {
		case o.Attributes.Wildlife != nil && o.Attributes.Wildlife.AntlerPoints != nil &&
			detection.IsBuck(o.Class, o.Attributes.Wildlife.SexValue()):
			clauses = append(clauses, fmt.Sprintf("%d-point buck", *o.Attributes.Wildlife.AntlerPoints))
		case o.Identification != nil:
			clauses = append(clauses, o.Identification.Name)
		case o.Attributes.Vehicle != nil && o.Attributes.Vehicle.Make != "" && o.Attributes.Vehicle.Model != "":
			clauses = append(clauses, o.Attributes.Vehicle.Make+" "+o.Attributes.Vehicle.Model)
		}
	}
	return clauses
}
