package simulation

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/yegors/airtraffic/internal/physics"
	"github.com/yegors/airtraffic/internal/weather"
)

// Spawn side order used by the side draw
const (
	sideTop = iota
	sideBottom
	sideLeft
	sideRight
)

// WorldConfig holds the static parameters of a World
type WorldConfig struct {
	Width          float64       `json:"width"`
	Height         float64       `json:"height"`
	MaxPlanes      int           `json:"max_planes"`
	SpawnRate      float64       `json:"spawn_rate"`
	MaxSteps       int           `json:"max_steps"`
	MaxWindSpeed   float64       `json:"max_wind_speed"`
	WindChangeRate float64       `json:"wind_change_rate"`
	Zones          []LandingZone `json:"zones"`
}

// DefaultWorldConfig returns the standard 800x600 airspace
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		Width:          800,
		Height:         600,
		MaxPlanes:      10,
		SpawnRate:      0.05,
		MaxSteps:       1000,
		MaxWindSpeed:   weather.DefaultMaxWindSpeed,
		WindChangeRate: weather.DefaultWindChangeRate,
		Zones:          DefaultZones(),
	}
}

// Validate checks the configuration for values the World cannot run with
func (c WorldConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid world size %gx%g", c.Width, c.Height)
	}
	if c.MaxPlanes < 1 {
		return fmt.Errorf("invalid max planes: %d", c.MaxPlanes)
	}
	if c.SpawnRate < 0 || c.SpawnRate > 1 {
		return fmt.Errorf("invalid spawn rate: %g (must be within [0, 1])", c.SpawnRate)
	}
	if c.MaxSteps < 1 {
		return fmt.Errorf("invalid max steps: %d", c.MaxSteps)
	}
	if c.MaxWindSpeed < 0 || c.WindChangeRate < 0 {
		return errors.New("wind limits must be non-negative")
	}

	seen := make(map[int]bool, len(c.Zones))
	for _, z := range c.Zones {
		if seen[z.ID] {
			return fmt.Errorf("duplicate zone id %d", z.ID)
		}
		seen[z.ID] = true
		if _, ok := zoneTypeNames[z.Type]; !ok {
			return fmt.Errorf("zone %d has unknown type %d", z.ID, int(z.Type))
		}
		if z.Radius <= 0 {
			return fmt.Errorf("zone %d has invalid radius %g", z.ID, z.Radius)
		}
	}
	return nil
}

// StepResult is everything one tick produces
type StepResult struct {
	Tick       int      `json:"tick"`
	Reward     float64  `json:"reward"`
	Terminated bool     `json:"terminated"`
	Truncated  bool     `json:"truncated"`
	PlaneCount int      `json:"plane_count"`
	Events     []Event  `json:"events"`
	Snapshot   Snapshot `json:"snapshot"`
}

// World owns the aircraft roster, the landing zones, the wind and the random
// source, and advances them one tick at a time. A World is not safe for
// concurrent use.
type World struct {
	cfg    WorldConfig
	zones  []LandingZone
	zoneAt map[int]int
	wind   *weather.WindField
	rng    RandomSource

	roster []*Aircraft
	tick   int
	nextID int
}

// NewWorld creates a world with a calm wind and an empty roster. Call Reset
// to seed it before an episode.
func NewWorld(cfg WorldConfig) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	zones := slices.Clone(cfg.Zones)
	zoneAt := make(map[int]int, len(zones))
	for i, z := range zones {
		zoneAt[z.ID] = i
	}
	cfg.Zones = zones

	return &World{
		cfg:    cfg,
		zones:  zones,
		zoneAt: zoneAt,
		wind:   weather.NewWindField(cfg.MaxWindSpeed, cfg.WindChangeRate),
		rng:    NewRandomSource(0),
		roster: make([]*Aircraft, 0, cfg.MaxPlanes),
	}, nil
}

// Config returns the world configuration
func (w *World) Config() WorldConfig {
	cfg := w.cfg
	cfg.Zones = slices.Clone(w.zones)
	return cfg
}

// Reset seeds a fresh generator and starts a new episode
func (w *World) Reset(seed uint64) Snapshot {
	return w.ResetWithSource(NewRandomSource(seed))
}

// ResetWithSource starts a new episode drawing from rng: empty roster, tick 0,
// and a freshly randomized wind
func (w *World) ResetWithSource(rng RandomSource) Snapshot {
	w.rng = rng
	w.roster = w.roster[:0]
	w.tick = 0
	w.nextID = 0
	w.wind.Randomize(w.rng)
	return w.Snapshot()
}

// Step advances the world exactly one tick. commands[i] drives the aircraft at
// roster index i; missing commands leave that aircraft untouched this tick.
func (w *World) Step(commands []Command) StepResult {
	w.tick++

	res := StepResult{
		Tick:   w.tick,
		Reward: TimePenalty,
	}

	if w.tick >= w.cfg.MaxSteps {
		res.Truncated = true
	}

	w.wind.Update(w.rng)

	if a := w.spawn(); a != nil {
		res.Events = append(res.Events, newEvent(w.tick, EventSpawned, a, 0))
	}

	w.actuate(commands)

	res.Reward += w.detectCollisions(&res.Events)
	res.Reward += w.resolveLandings(&res.Events)
	res.Reward += w.checkBounds(&res.Events)

	if res.Reward <= TerminationThreshold {
		res.Terminated = true
	}

	w.pruneInactive()
	assertInvariants(w)

	res.PlaneCount = len(w.roster)
	res.Snapshot = w.Snapshot()
	return res
}

// spawn adds at most one aircraft at a random border, heading inward
func (w *World) spawn() *Aircraft {
	if len(w.roster) >= w.cfg.MaxPlanes {
		return nil
	}
	if w.rng.Float64() >= w.cfg.SpawnRate {
		return nil
	}

	var x, y, heading float64
	switch min(int(w.rng.Float64()*4), sideRight) {
	case sideTop:
		x, y, heading = uniform(w.rng, 0, w.cfg.Width), 0, math.Pi/2
	case sideBottom:
		x, y, heading = uniform(w.rng, 0, w.cfg.Width), w.cfg.Height, -math.Pi/2
	case sideLeft:
		x, y, heading = 0, uniform(w.rng, 0, w.cfg.Height), 0
	default:
		x, y, heading = w.cfg.Width, uniform(w.rng, 0, w.cfg.Height), math.Pi
	}

	var typ AircraftType
	switch r := w.rng.Float64(); {
	case r < 0.45:
		typ = JetRed
	case r < 0.9:
		typ = JetBlue
	default:
		typ = Helicopter
	}

	a := NewAircraft(w.nextID, typ, x, y, typ.SpawnSpeed(), heading, w.destinationFor(typ))
	w.nextID++
	w.roster = append(w.roster, a)
	return a
}

// destinationFor returns the id of the first zone serving typ, or NoZone
func (w *World) destinationFor(typ AircraftType) int {
	for _, z := range w.zones {
		if z.Type.Serves(typ) {
			return z.ID
		}
	}
	return NoZone
}

func (w *World) actuate(commands []Command) {
	for i, a := range w.roster {
		if i >= len(commands) || !a.Active {
			continue
		}
		commands[i].apply(a, w.wind.Vector)
	}
}

// detectCollisions penalizes every active pair closer than CollisionDistance.
// Pairs are enumerated once each over the active subset, with no early exit.
func (w *World) detectCollisions(events *[]Event) float64 {
	active := make([]*Aircraft, 0, len(w.roster))
	for _, a := range w.roster {
		if a.Active {
			active = append(active, a)
		}
	}

	var reward float64
	for i := 0; i < len(active); i++ {
		for j := i + 1; j < len(active); j++ {
			p1, p2 := active[i], active[j]
			if physics.Distance(p1.X, p1.Y, p2.X, p2.Y) < CollisionDistance {
				reward += CollisionPenalty
				p1.Active = false
				p2.Active = false

				ev := newEvent(w.tick, EventCollision, p1, CollisionPenalty)
				ev.OtherAircraftID = p2.ID
				*events = append(*events, ev)
			}
		}
	}
	return reward
}

// resolveLandings checks each active aircraft against its own destination zone
func (w *World) resolveLandings(events *[]Event) float64 {
	var reward float64
	for _, a := range w.roster {
		if !a.Active {
			continue
		}

		idx, ok := w.zoneAt[a.DestinationID]
		if !ok || !w.zones[idx].ValidateLanding(a) {
			continue
		}

		a.Active = false
		if a.Speed <= a.LandingSpeedLimit {
			reward += LandingReward
			*events = append(*events, newEvent(w.tick, EventLanded, a, LandingReward))
		} else {
			reward += CrashLandingPenalty
			*events = append(*events, newEvent(w.tick, EventCrashLanded, a, CrashLandingPenalty))
		}
	}
	return reward
}

// checkBounds retires active aircraft that left the padded airspace
func (w *World) checkBounds(events *[]Event) float64 {
	var reward float64
	for _, a := range w.roster {
		if !a.Active {
			continue
		}
		if a.X < -BoundsMargin || a.X > w.cfg.Width+BoundsMargin ||
			a.Y < -BoundsMargin || a.Y > w.cfg.Height+BoundsMargin {
			reward += OutOfBoundsPenalty
			a.Active = false
			*events = append(*events, newEvent(w.tick, EventOutOfBounds, a, OutOfBoundsPenalty))
		}
	}
	return reward
}

// pruneInactive compacts the roster in place, keeping spawn order
func (w *World) pruneInactive() {
	kept := w.roster[:0]
	for _, a := range w.roster {
		if a.Active {
			kept = append(kept, a)
		}
	}
	clear(w.roster[len(kept):])
	w.roster = kept
}

// Snapshot returns a copy of the current state
func (w *World) Snapshot() Snapshot {
	states := make([]AircraftState, len(w.roster))
	for i, a := range w.roster {
		states[i] = a.State()
	}

	return Snapshot{
		Tick:         w.tick,
		Width:        w.cfg.Width,
		Height:       w.cfg.Height,
		MaxPlanes:    w.cfg.MaxPlanes,
		Aircraft:     states,
		Zones:        slices.Clone(w.zones),
		Wind:         w.wind.Vector,
		MaxWindSpeed: w.wind.MaxSpeed,
	}
}

// Tick returns the number of ticks since the last reset
func (w *World) Tick() int {
	return w.tick
}

// Wind returns the current wind vector
func (w *World) Wind() physics.Vector2D {
	return w.wind.Vector
}

// PlaneCount returns the current roster size
func (w *World) PlaneCount() int {
	return len(w.roster)
}
