package simulation

import "fmt"

// AircraftType is the closed set of aircraft categories
type AircraftType int

const (
	JetRed AircraftType = iota
	JetBlue
	Helicopter
)

var aircraftTypeNames = map[AircraftType]string{
	JetRed:     "jet_red",
	JetBlue:    "jet_blue",
	Helicopter: "helicopter",
}

func (t AircraftType) String() string {
	if name, ok := aircraftTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("aircraft_type(%d)", int(t))
}

// MarshalText implements encoding.TextMarshaler
func (t AircraftType) MarshalText() ([]byte, error) {
	if _, ok := aircraftTypeNames[t]; !ok {
		return nil, fmt.Errorf("unknown aircraft type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *AircraftType) UnmarshalText(text []byte) error {
	parsed, err := ParseAircraftType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseAircraftType parses the wire name of an aircraft type
func ParseAircraftType(s string) (AircraftType, error) {
	for t, name := range aircraftTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown aircraft type %q", s)
}

// TurnRate is the maximum heading change per tick in radians
func (t AircraftType) TurnRate() float64 {
	switch t {
	case JetRed, JetBlue:
		return 0.05
	default:
		return 0.08
	}
}

// SpawnSpeed is the initial speed of a freshly spawned aircraft
func (t AircraftType) SpawnSpeed() float64 {
	switch t {
	case JetRed, JetBlue:
		return 2.5
	default:
		return 1.5
	}
}

// ObservationCode is the categorical value used in the observation vector
func (t AircraftType) ObservationCode() float32 {
	switch t {
	case JetRed:
		return 0.0
	case JetBlue:
		return 0.5
	default:
		return 1.0
	}
}

// ZoneType is the closed set of landing zone categories
type ZoneType int

const (
	RunwayRed ZoneType = iota
	RunwayBlue
	Helipad
)

var zoneTypeNames = map[ZoneType]string{
	RunwayRed:  "runway_red",
	RunwayBlue: "runway_blue",
	Helipad:    "helipad",
}

func (z ZoneType) String() string {
	if name, ok := zoneTypeNames[z]; ok {
		return name
	}
	return fmt.Sprintf("zone_type(%d)", int(z))
}

// MarshalText implements encoding.TextMarshaler
func (z ZoneType) MarshalText() ([]byte, error) {
	if _, ok := zoneTypeNames[z]; !ok {
		return nil, fmt.Errorf("unknown zone type %d", int(z))
	}
	return []byte(z.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (z *ZoneType) UnmarshalText(text []byte) error {
	parsed, err := ParseZoneType(string(text))
	if err != nil {
		return err
	}
	*z = parsed
	return nil
}

// ParseZoneType parses the wire name of a zone type
func ParseZoneType(s string) (ZoneType, error) {
	for z, name := range zoneTypeNames {
		if name == s {
			return z, nil
		}
	}
	return 0, fmt.Errorf("unknown zone type %q", s)
}

// Serves reports whether aircraft of type t may land on a zone of type z.
// Each aircraft type is served by exactly one zone type.
func (z ZoneType) Serves(t AircraftType) bool {
	switch z {
	case RunwayRed:
		return t == JetRed
	case RunwayBlue:
		return t == JetBlue
	case Helipad:
		return t == Helicopter
	default:
		return false
	}
}
