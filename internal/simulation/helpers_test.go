package simulation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptedSource replays fixed draws and counts how many were taken
type scriptedSource struct {
	values []float64
	draws  int
}

func (s *scriptedSource) Float64() float64 {
	if s.draws >= len(s.values) {
		s.draws++
		return 0
	}
	v := s.values[s.draws]
	s.draws++
	return v
}

// calmConfig is the default airspace with no wind and no spawning
func calmConfig() WorldConfig {
	cfg := DefaultWorldConfig()
	cfg.SpawnRate = 0
	cfg.MaxWindSpeed = 0
	cfg.WindChangeRate = 0
	return cfg
}

func newCalmWorld(t *testing.T) *World {
	t.Helper()
	w, err := NewWorld(calmConfig())
	require.NoError(t, err)
	w.Reset(1)
	return w
}

func place(w *World, aircraft ...*Aircraft) {
	w.roster = append(w.roster, aircraft...)
	for _, a := range aircraft {
		if a.ID >= w.nextID {
			w.nextID = a.ID + 1
		}
	}
}
