//go:build debug

package simulation

import (
	"fmt"
	"math"
)

// assertInvariants panics when the world leaves its valid state space.
// Only compiled with -tags debug.
func assertInvariants(w *World) {
	if len(w.roster) > w.cfg.MaxPlanes {
		panic(fmt.Sprintf("roster holds %d aircraft, limit %d", len(w.roster), w.cfg.MaxPlanes))
	}
	if speed := w.wind.Speed(); speed > w.wind.MaxSpeed+1e-9 {
		panic(fmt.Sprintf("wind speed %f exceeds %f", speed, w.wind.MaxSpeed))
	}
	for _, a := range w.roster {
		if a.Speed < a.MinSpeed || a.Speed > a.MaxSpeed {
			panic(fmt.Sprintf("aircraft %d speed %f outside [%f, %f]", a.ID, a.Speed, a.MinSpeed, a.MaxSpeed))
		}
		if !(a.Heading > -math.Pi && a.Heading <= math.Pi) {
			panic(fmt.Sprintf("aircraft %d heading %f not in (-pi, pi]", a.ID, a.Heading))
		}
	}
}
