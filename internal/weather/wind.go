package weather

import (
	"math"

	"github.com/yegors/airtraffic/internal/physics"
)

// Default wind parameters
const (
	DefaultMaxWindSpeed   = 1.0
	DefaultWindChangeRate = 0.05
)

// Source is a uniform random source over [0, 1)
type Source interface {
	Float64() float64
}

// WindField is a single airspace-wide wind vector that drifts by a bounded
// random walk every tick. Its magnitude never exceeds MaxSpeed.
type WindField struct {
	Vector     physics.Vector2D `json:"vector"`
	MaxSpeed   float64          `json:"max_speed"`
	ChangeRate float64          `json:"change_rate"`
}

// NewWindField creates a calm wind field with the given limits
func NewWindField(maxSpeed, changeRate float64) *WindField {
	return &WindField{
		MaxSpeed:   maxSpeed,
		ChangeRate: changeRate,
	}
}

// Randomize draws a fresh wind: direction uniform in [0, 2π), then magnitude
// uniform in [0, MaxSpeed]
func (w *WindField) Randomize(rng Source) {
	angle := uniform(rng, 0, 2*math.Pi)
	strength := uniform(rng, 0, w.MaxSpeed)
	w.Vector = physics.HeadingToVector(angle, strength)
}

// Update perturbs each axis by uniform(-ChangeRate, ChangeRate), X first, and
// rescales the result onto the MaxSpeed circle when it overshoots
func (w *WindField) Update(rng Source) {
	dx := uniform(rng, -w.ChangeRate, w.ChangeRate)
	dy := uniform(rng, -w.ChangeRate, w.ChangeRate)
	w.Vector = w.Vector.Add(physics.Vector2D{X: dx, Y: dy}).ClampLength(w.MaxSpeed)
}

// Speed returns the current wind magnitude
func (w *WindField) Speed() float64 {
	return w.Vector.Length()
}

// Normalized returns the wind vector divided by MaxSpeed
func (w *WindField) Normalized() physics.Vector2D {
	if w.MaxSpeed == 0 {
		return physics.Vector2D{}
	}
	return w.Vector.Scale(1 / w.MaxSpeed)
}

func uniform(rng Source, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}
