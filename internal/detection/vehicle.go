package detection

import (
	"fmt"
	"strings"

	"github.com/tphakala/mediaseed/internal/catalog"
	"github.com/tphakala/mediaseed/internal/numeric"
	"github.com/tphakala/mediaseed/internal/randomness"
)

// VehicleClass is the class of every vehicle object; the type is the subclass.
const VehicleClass = "vehicle"

const actionMoving = "moving"

func (s *Synthesizer) vehicle(res catalog.Resolution, in Input) Object {
	attrs := s.vehicleAttributes()
	box := s.box(res, 0.15, 0.4, 0.15, 0.3)

	obj := Object{
		Category:    Vehicle,
		Class:       VehicleClass,
		Subclass:    attrs.VehicleType,
		Confidence:  numeric.Round(s.rnd.Uniform(0.7, 0.95), 2),
		Count:       1,
		BoundingBox: box,
		Attributes:  Attributes{Vehicle: attrs},
	}

	if in.IsVideo() {
		speed := 0.0
		if attrs.IsMoving {
			speed = 15
		}
		obj.Tracking = s.tracking(in, speed, !attrs.IsMoving)
	}
	return obj
}

// wheelsAndDoors fixes the counts for open vehicles and draws the rest.
func (s *Synthesizer) wheelsAndDoors(vehicleType string) (wheels, doors int) {
	switch vehicleType {
	case "motorcycle":
		return 2, 0
	case "atv", "utility vehicle":
		return 4, 0
	default:
		return randomness.Choice(s.rnd, s.cat.Vehicle.Wheels), randomness.Choice(s.rnd, s.cat.Vehicle.Doors)
	}
}

func (s *Synthesizer) plate() string {
	letters := s.cat.Vehicle.PlateLetters
	var b strings.Builder
	for range 2 {
		b.WriteByte(letters[s.rnd.IntRange(0, len(letters)-1)])
	}
	fmt.Fprintf(&b, "%d%d%d%d", s.rnd.IntRange(0, 9), s.rnd.IntRange(0, 9), s.rnd.IntRange(0, 9), s.rnd.IntRange(0, 9))
	return b.String()
}

func (s *Synthesizer) vehicleAttributes() *VehicleAttributes {
	v := &s.cat.Vehicle
	vehicleType := randomness.Choice(s.rnd, v.Types)
	manufacturer := randomness.Choice(s.rnd, v.Makes)
	model := "Unknown"
	if len(manufacturer.Models) > 0 {
		model = randomness.Choice(s.rnd, manufacturer.Models)
	}
	action := randomness.Choice(s.rnd, v.Actions)
	wheels, doors := s.wheelsAndDoors(vehicleType)

	a := &VehicleAttributes{
		VehicleType:      vehicleType,
		Make:             manufacturer.Name,
		Model:            model,
		Color:            randomness.Choice(s.rnd, v.Colors),
		YearRange:        randomness.Choice(s.rnd, v.YearRanges),
		Position:         randomness.Choice(s.rnd, s.cat.Scene.Positions),
		Wheels:           wheels,
		Doors:            doors,
		IsMoving:         action == actionMoving,
		LightsOn:         s.rnd.Chance(0.3),
		DistinctiveMarks: randomness.Choice(s.rnd, v.DistinctiveMarks),
	}
	a.Occlusion, a.Blur = s.occlusionAndBlur()

	if s.rnd.Chance(0.2) {
		a.LicensePlate = s.plate()
		a.State = randomness.Choice(s.rnd, v.PlateStates)
	}
	if vehicleType != "motorcycle" && vehicleType != "atv" && s.rnd.Chance(0.6) {
		occupants := s.rnd.IntRange(1, 5)
		a.Occupants = &occupants
	}
	if a.IsMoving {
		a.DirectionOfTravel = randomness.Choice(s.rnd, v.TravelDirections)
	}
	return a
}
