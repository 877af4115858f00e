package simulation

import (
	"math"

	"github.com/yegors/airtraffic/internal/physics"
)

// Per-aircraft kinematic limits
const (
	MinSpeed          = 1.0
	MaxSpeed          = 5.0
	AccelRate         = 0.1
	LandingSpeedLimit = 2.5
)

// Aircraft is a single controllable agent. Heading is kept in (-π, π] and
// speed in [MinSpeed, MaxSpeed]; once Active is false the aircraft is inert.
type Aircraft struct {
	ID            int
	Type          AircraftType
	DestinationID int

	X       float64
	Y       float64
	Heading float64
	Speed   float64
	Active  bool

	MinSpeed          float64
	MaxSpeed          float64
	AccelRate         float64
	TurnRate          float64
	LandingSpeedLimit float64
}

// NewAircraft creates an active aircraft with the standard limits for its type
func NewAircraft(id int, typ AircraftType, x, y, speed, heading float64, destinationID int) *Aircraft {
	return &Aircraft{
		ID:                id,
		Type:              typ,
		DestinationID:     destinationID,
		X:                 x,
		Y:                 y,
		Heading:           physics.WrapAngle(heading),
		Speed:             physics.Clamp(speed, MinSpeed, MaxSpeed),
		Active:            true,
		MinSpeed:          MinSpeed,
		MaxSpeed:          MaxSpeed,
		AccelRate:         AccelRate,
		TurnRate:          typ.TurnRate(),
		LandingSpeedLimit: LandingSpeedLimit,
	}
}

// ChangeHeading turns toward target by at most TurnRate along the shorter arc
func (a *Aircraft) ChangeHeading(target float64) {
	diff := physics.AngleDiff(target, a.Heading)
	step := physics.Clamp(diff, -a.TurnRate, a.TurnRate)
	a.Heading = physics.WrapAngle(a.Heading + step)
}

// ChangeSpeed applies throttle*AccelRate and clamps to [MinSpeed, MaxSpeed]
func (a *Aircraft) ChangeSpeed(throttle float64) {
	a.Speed = physics.Clamp(a.Speed+throttle*a.AccelRate, a.MinSpeed, a.MaxSpeed)
}

// Move advances one tick along the heading and adds the wind drift unscaled
func (a *Aircraft) Move(wind physics.Vector2D) {
	a.X += a.Speed*math.Cos(a.Heading) + wind.X
	a.Y += a.Speed*math.Sin(a.Heading) + wind.Y
}

// Position returns the aircraft position as a vector
func (a *Aircraft) Position() physics.Vector2D {
	return physics.Vector2D{X: a.X, Y: a.Y}
}

// State returns a read-only copy of the aircraft for snapshots
func (a *Aircraft) State() AircraftState {
	return AircraftState{
		ID:            a.ID,
		Type:          a.Type,
		DestinationID: a.DestinationID,
		X:             a.X,
		Y:             a.Y,
		Heading:       a.Heading,
		Speed:         a.Speed,
		MinSpeed:      a.MinSpeed,
		MaxSpeed:      a.MaxSpeed,
	}
}
