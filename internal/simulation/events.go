package simulation

// EventKind identifies an aircraft lifecycle transition within a tick
type EventKind string

const (
	EventSpawned     EventKind = "spawned"
	EventCollision   EventKind = "collision"
	EventLanded      EventKind = "landed"
	EventCrashLanded EventKind = "crash_landed"
	EventOutOfBounds EventKind = "out_of_bounds"
)

// Sentinel ids
const (
	NoAircraft = -1 // unused aircraft id field
	NoZone     = -1 // aircraft type with no serving zone
)

// Event records one lifecycle transition and the reward it contributed.
// Collision events name both aircraft of the pair.
type Event struct {
	Tick            int          `json:"tick"`
	Kind            EventKind    `json:"kind"`
	AircraftID      int          `json:"aircraft_id"`
	OtherAircraftID int          `json:"other_aircraft_id"`
	AircraftType    AircraftType `json:"aircraft_type"`
	X               float64      `json:"x"`
	Y               float64      `json:"y"`
	Reward          float64      `json:"reward"`
}

func newEvent(tick int, kind EventKind, a *Aircraft, reward float64) Event {
	return Event{
		Tick:            tick,
		Kind:            kind,
		AircraftID:      a.ID,
		OtherAircraftID: NoAircraft,
		AircraftType:    a.Type,
		X:               a.X,
		Y:               a.Y,
		Reward:          reward,
	}
}
