package simulation

import (
	"math"

	"github.com/yegors/airtraffic/internal/physics"
)

// Command is the per-aircraft control input for one tick
type Command struct {
	Heading  float64 `json:"heading"`  // target heading in radians
	Throttle float64 `json:"throttle"` // expected in [-1, 1]
}

// ClampCommand limits a command to the action box: heading in [-π, π],
// throttle in [-1, 1]. Non-finite values become zero.
func ClampCommand(c Command) Command {
	return Command{
		Heading:  physics.Clamp(finiteOrZero(c.Heading), -math.Pi, math.Pi),
		Throttle: physics.Clamp(finiteOrZero(c.Throttle), -1, 1),
	}
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// apply runs the actuator sequence: heading, then speed, then movement
func (c Command) apply(a *Aircraft, wind physics.Vector2D) {
	if !math.IsNaN(c.Heading) && !math.IsInf(c.Heading, 0) {
		a.ChangeHeading(c.Heading)
	}
	if !math.IsNaN(c.Throttle) {
		a.ChangeSpeed(c.Throttle)
	}
	a.Move(wind)
}
