package simulation

import (
	"math"

	"github.com/yegors/airtraffic/internal/physics"
)

// ObservationFeatures is the width of one observation row
const ObservationFeatures = 11

// ObservationRow is the encoded state of one aircraft slot
type ObservationRow [ObservationFeatures]float32

// AircraftState is a read-only copy of an aircraft taken after a tick
type AircraftState struct {
	ID            int          `json:"id"`
	Type          AircraftType `json:"type"`
	DestinationID int          `json:"destination_id"`
	X             float64      `json:"x"`
	Y             float64      `json:"y"`
	Heading       float64      `json:"heading"`
	Speed         float64      `json:"speed"`
	MinSpeed      float64      `json:"min_speed"`
	MaxSpeed      float64      `json:"max_speed"`
}

// Snapshot is the post-tick view of the world handed to adapters and renderers
type Snapshot struct {
	Tick         int              `json:"tick"`
	Width        float64          `json:"width"`
	Height       float64          `json:"height"`
	MaxPlanes    int              `json:"max_planes"`
	Aircraft     []AircraftState  `json:"aircraft"`
	Zones        []LandingZone    `json:"zones"`
	Wind         physics.Vector2D `json:"wind"`
	MaxWindSpeed float64          `json:"max_wind_speed"`
}

// Zone returns the zone with the given id
func (s Snapshot) Zone(id int) (LandingZone, bool) {
	for _, z := range s.Zones {
		if z.ID == id {
			return z, true
		}
	}
	return LandingZone{}, false
}

// Observation encodes the snapshot as MaxPlanes fixed-width rows. Rows beyond
// the roster are all zero. Features per aircraft:
//
//	x/width, y/height, normalized speed, cos(heading), sin(heading),
//	dest x/width, dest y/height, type code, wind x/max, wind y/max, present
func (s Snapshot) Observation() []ObservationRow {
	obs := make([]ObservationRow, s.MaxPlanes)

	var wx, wy float64
	if s.MaxWindSpeed != 0 {
		wx = s.Wind.X / s.MaxWindSpeed
		wy = s.Wind.Y / s.MaxWindSpeed
	}

	for i, a := range s.Aircraft {
		if i >= s.MaxPlanes {
			break
		}

		var tx, ty float64
		if z, ok := s.Zone(a.DestinationID); ok {
			tx, ty = z.X, z.Y
		}

		obs[i] = ObservationRow{
			float32(a.X / s.Width),
			float32(a.Y / s.Height),
			float32((a.Speed - a.MinSpeed) / (a.MaxSpeed - a.MinSpeed)),
			float32(math.Cos(a.Heading)),
			float32(math.Sin(a.Heading)),
			float32(tx / s.Width),
			float32(ty / s.Height),
			a.Type.ObservationCode(),
			float32(wx),
			float32(wy),
			1.0,
		}
	}

	return obs
}
