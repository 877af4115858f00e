package simulation

import (
	"math"

	"github.com/yegors/airtraffic/internal/physics"
)

// Landing zone geometry
const (
	DefaultZoneRadius     = 50.0
	LandingAngleTolerance = 0.5 // radians either side of the approach heading
)

// LandingZone is a static runway or helipad. Zones are never mutated after
// construction and may be read from any goroutine.
type LandingZone struct {
	ID     int      `json:"id" toml:"id"`
	Type   ZoneType `json:"type" toml:"type"`
	X      float64  `json:"x" toml:"x"`
	Y      float64  `json:"y" toml:"y"`
	Angle  float64  `json:"angle" toml:"angle"`
	Radius float64  `json:"radius" toml:"radius"`
}

// NewLandingZone creates a zone with the default acceptance radius
func NewLandingZone(id int, typ ZoneType, x, y, angle float64) LandingZone {
	return LandingZone{
		ID:     id,
		Type:   typ,
		X:      x,
		Y:      y,
		Angle:  angle,
		Radius: DefaultZoneRadius,
	}
}

// DefaultZones returns the standard airfield: two runways facing east and a helipad
func DefaultZones() []LandingZone {
	return []LandingZone{
		NewLandingZone(0, RunwayRed, 600, 200, 0),
		NewLandingZone(1, RunwayBlue, 600, 500, 0),
		NewLandingZone(2, Helipad, 150, 450, 0),
	}
}

// Position returns the zone centre
func (z LandingZone) Position() physics.Vector2D {
	return physics.Vector2D{X: z.X, Y: z.Y}
}

// ValidateLanding reports whether the aircraft is inside the zone, of a type the
// zone serves, and (for runways) aligned with the approach heading. Speed is
// not considered here.
func (z LandingZone) ValidateLanding(a *Aircraft) bool {
	if physics.Distance(z.X, z.Y, a.X, a.Y) > z.Radius {
		return false
	}

	if !z.Type.Serves(a.Type) {
		return false
	}

	if z.Type == Helipad {
		return true
	}

	diff := physics.AngleDiff(a.Heading, z.Angle)
	return math.Abs(diff) < LandingAngleTolerance
}
