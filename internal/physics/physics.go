package physics

import "math"

// TwoPi is a full turn in radians
const TwoPi = 2 * math.Pi

// ------------------------------------------------------------------------------------------------
// VECTORS
// ------------------------------------------------------------------------------------------------

// Vector2D represents a 2D vector in world units
type Vector2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o
func (v Vector2D) Add(o Vector2D) Vector2D {
	return Vector2D{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o
func (v Vector2D) Sub(o Vector2D) Vector2D {
	return Vector2D{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v multiplied by s
func (v Vector2D) Scale(s float64) Vector2D {
	return Vector2D{X: v.X * s, Y: v.Y * s}
}

// Length returns the Euclidean norm of v
func (v Vector2D) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// DistanceTo returns the Euclidean distance between v and o
func (v Vector2D) DistanceTo(o Vector2D) float64 {
	return Distance(v.X, v.Y, o.X, o.Y)
}

// ClampLength rescales v to maxLen when it is longer, preserving direction
func (v Vector2D) ClampLength(maxLen float64) Vector2D {
	l := v.Length()
	if l <= maxLen || l == 0 {
		return v
	}
	return v.Scale(1 / l).Scale(maxLen)
}

// HeadingToVector converts a heading (radians, 0 = +X, counter-clockwise toward +Y)
// and magnitude to X/Y components
func HeadingToVector(heading float64, magnitude float64) Vector2D {
	return Vector2D{
		X: magnitude * math.Cos(heading),
		Y: magnitude * math.Sin(heading),
	}
}

// Distance returns the Euclidean distance between two points
func Distance(x1, y1, x2, y2 float64) float64 {
	dx := x1 - x2
	dy := y1 - y2
	return math.Sqrt(dx*dx + dy*dy)
}

// ------------------------------------------------------------------------------------------------
// ANGLES
// ------------------------------------------------------------------------------------------------

// WrapAngle normalizes an angle into (-π, π]
func WrapAngle(a float64) float64 {
	w := math.Mod(a+math.Pi, TwoPi)
	if w < 0 {
		w += TwoPi
	}
	w -= math.Pi
	if w <= -math.Pi {
		w += TwoPi
	}
	return w
}

// AngleDiff returns the signed shortest rotation from `from` to `to`, in (-π, π]
func AngleDiff(to, from float64) float64 {
	return WrapAngle(to - from)
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
