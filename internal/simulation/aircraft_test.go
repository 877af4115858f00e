package simulation

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yegors/airtraffic/internal/physics"
)

func TestNewAircraft(t *testing.T) {
	a := NewAircraft(3, JetBlue, 10, 20, 9, 3*math.Pi/2, 1)

	assert.True(t, a.Active)
	assert.Equal(t, MaxSpeed, a.Speed)
	assert.InDelta(t, -math.Pi/2, a.Heading, 1e-12)
	assert.Equal(t, 0.05, a.TurnRate)
	assert.Equal(t, LandingSpeedLimit, a.LandingSpeedLimit)
}

func TestChangeHeadingIsRateLimited(t *testing.T) {
	a := NewAircraft(0, JetRed, 0, 0, 2, 0, 0)
	a.ChangeHeading(math.Pi / 2)
	assert.InDelta(t, 0.05, a.Heading, 1e-12)

	a.ChangeHeading(0.06)
	assert.InDelta(t, 0.06, a.Heading, 1e-12)

	h := NewAircraft(1, Helicopter, 0, 0, 2, 0, 2)
	h.ChangeHeading(-1)
	assert.InDelta(t, -0.08, h.Heading, 1e-12)
}

func TestChangeHeadingTakesShorterArc(t *testing.T) {
	a := NewAircraft(0, JetRed, 0, 0, 2, 3.0, 0)
	a.ChangeHeading(-3.1)
	assert.InDelta(t, 3.05, a.Heading, 1e-12)

	h := NewAircraft(1, Helicopter, 0, 0, 2, 3.1, 2)
	h.ChangeHeading(-3.1)
	assert.InDelta(t, 3.18-2*math.Pi, h.Heading, 1e-12)
}

func TestHeadingAndSpeedStayInRange(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	for _, typ := range []AircraftType{JetRed, JetBlue, Helicopter} {
		a := NewAircraft(0, typ, 0, 0, 2, 0, 0)
		for i := 0; i < 5000; i++ {
			before := a.Heading
			target := rng.Float64()*20 - 10
			a.ChangeHeading(target)
			a.ChangeSpeed(rng.Float64()*4 - 2)

			assert.LessOrEqual(t, math.Abs(physics.AngleDiff(a.Heading, before)), a.TurnRate+1e-9)
			assert.LessOrEqual(t,
				math.Abs(physics.AngleDiff(target, a.Heading)),
				math.Abs(physics.AngleDiff(target, before))+1e-9)
			assert.Greater(t, a.Heading, -math.Pi)
			assert.LessOrEqual(t, a.Heading, math.Pi)
			assert.GreaterOrEqual(t, a.Speed, a.MinSpeed)
			assert.LessOrEqual(t, a.Speed, a.MaxSpeed)
		}
	}
}

func TestChangeSpeed(t *testing.T) {
	a := NewAircraft(0, JetRed, 0, 0, 2.5, 0, 0)
	a.ChangeSpeed(1)
	assert.InDelta(t, 2.6, a.Speed, 1e-12)

	a.ChangeSpeed(-100)
	assert.Equal(t, MinSpeed, a.Speed)
}

func TestMove(t *testing.T) {
	a := NewAircraft(0, JetRed, 100, 100, 2, 0, 0)
	a.Move(physics.Vector2D{})
	assert.Equal(t, 102.0, a.X)
	assert.Equal(t, 100.0, a.Y)

	a.Move(physics.Vector2D{X: 0.5, Y: -0.25})
	assert.Equal(t, 104.5, a.X)
	assert.Equal(t, 99.75, a.Y)

	b := NewAircraft(1, JetRed, 0, 0, 3, math.Pi/2, 0)
	b.Move(physics.Vector2D{})
	assert.InDelta(t, 0, b.X, 1e-12)
	assert.InDelta(t, 3, b.Y, 1e-12)
}

func TestCommandApply(t *testing.T) {
	a := NewAircraft(0, JetRed, 0, 0, 2, 0, 0)
	Command{Heading: math.Pi / 2, Throttle: 1}.apply(a, physics.Vector2D{})

	assert.InDelta(t, 0.05, a.Heading, 1e-12)
	assert.InDelta(t, 2.1, a.Speed, 1e-12)
	assert.InDelta(t, 2.1*math.Cos(0.05), a.X, 1e-12)
	assert.InDelta(t, 2.1*math.Sin(0.05), a.Y, 1e-12)
}

func TestCommandApplyNonFinite(t *testing.T) {
	a := NewAircraft(0, JetRed, 0, 0, 2, 0, 0)
	Command{Heading: math.NaN(), Throttle: math.NaN()}.apply(a, physics.Vector2D{})

	assert.Equal(t, 0.0, a.Heading)
	assert.Equal(t, 2.0, a.Speed)
	assert.Equal(t, 2.0, a.X)

	Command{Heading: 0, Throttle: math.Inf(1)}.apply(a, physics.Vector2D{})
	assert.Equal(t, MaxSpeed, a.Speed)
}

func TestClampCommand(t *testing.T) {
	c := ClampCommand(Command{Heading: 7, Throttle: -3})
	assert.Equal(t, math.Pi, c.Heading)
	assert.Equal(t, -1.0, c.Throttle)

	c = ClampCommand(Command{Heading: math.NaN(), Throttle: math.Inf(1)})
	assert.Equal(t, Command{}, c)
}
