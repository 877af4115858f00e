package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yegors/airtraffic/internal/physics"
	"github.com/yegors/airtraffic/internal/simulation"
	"github.com/yegors/airtraffic/pkg/logger"
)

func newTestStorage(t *testing.T, recordTicks bool) *EpisodeStorage {
	t.Helper()
	s, err := NewEpisodeStorage(filepath.Join(t.TempDir(), "test.db"), recordTicks, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTick(tick int, events ...simulation.Event) *simulation.StepResult {
	return &simulation.StepResult{
		Tick:       tick,
		Reward:     -1,
		PlaneCount: 2,
		Events:     events,
		Snapshot: simulation.Snapshot{
			Wind: physics.Vector2D{X: 0.25, Y: -0.5},
		},
	}
}

func TestEpisodeRoundTrip(t *testing.T) {
	s := newTestStorage(t, true)
	cfg := simulation.DefaultWorldConfig()
	seed := uint64(1<<63 + 5)

	id, err := s.StartEpisode(seed, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	running, err := s.GetEpisode(id)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRunning, running.Outcome)
	assert.Nil(t, running.EndedAt)

	require.NoError(t, s.RecordTick(id, sampleTick(1)))
	require.NoError(t, s.RecordTick(id, sampleTick(2,
		simulation.Event{Tick: 2, Kind: simulation.EventCollision, AircraftID: 3, OtherAircraftID: 4, AircraftType: simulation.JetBlue, X: 10, Y: 20, Reward: -100},
		simulation.Event{Tick: 2, Kind: simulation.EventLanded, AircraftID: 1, OtherAircraftID: simulation.NoAircraft, AircraftType: simulation.Helicopter, X: 150, Y: 450, Reward: 100},
	)))

	endedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.EndEpisode(id, simulation.EpisodeSummary{
		Ticks:       2,
		TotalReward: -2,
		Outcome:     simulation.OutcomeTruncated,
		EndedAt:     endedAt,
	}))

	episode, err := s.GetEpisode(id)
	require.NoError(t, err)
	assert.Equal(t, seed, episode.Seed)
	assert.Equal(t, 2, episode.Ticks)
	assert.Equal(t, -2.0, episode.TotalReward)
	assert.Equal(t, simulation.OutcomeTruncated, episode.Outcome)
	require.NotNil(t, episode.EndedAt)
	assert.True(t, endedAt.Equal(*episode.EndedAt))
	assert.Equal(t, cfg, episode.Config)

	events, err := s.GetEvents(id)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "collision", events[0].Kind)
	assert.Equal(t, "jet_blue", events[0].AircraftType)
	assert.Equal(t, 4, events[0].OtherAircraftID)
	assert.Equal(t, "landed", events[1].Kind)
	assert.Equal(t, simulation.NoAircraft, events[1].OtherAircraftID)

	ticks, err := s.GetTicks(id, 10, 0)
	require.NoError(t, err)
	require.Len(t, ticks, 2)
	assert.Equal(t, 1, ticks[0].Tick)
	assert.Equal(t, 0.25, ticks[1].WindX)
	assert.False(t, ticks[1].Terminated)
}

func TestRecordTicksDisabled(t *testing.T) {
	s := newTestStorage(t, false)

	id, err := s.StartEpisode(1, simulation.DefaultWorldConfig())
	require.NoError(t, err)

	require.NoError(t, s.RecordTick(id, sampleTick(1)))
	require.NoError(t, s.RecordTick(id, sampleTick(2,
		simulation.Event{Tick: 2, Kind: simulation.EventOutOfBounds, AircraftID: 0, AircraftType: simulation.JetRed, Reward: -10},
	)))

	ticks, err := s.GetTicks(id, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, ticks)

	events, err := s.GetEvents(id)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestMissingEpisode(t *testing.T) {
	s := newTestStorage(t, true)

	_, err := s.GetEpisode("nope")
	assert.ErrorIs(t, err, ErrEpisodeNotFound)

	_, err = s.GetEvents("nope")
	assert.ErrorIs(t, err, ErrEpisodeNotFound)

	_, err = s.GetTicks("nope", 10, 0)
	assert.ErrorIs(t, err, ErrEpisodeNotFound)

	err = s.EndEpisode("nope", simulation.EpisodeSummary{Outcome: simulation.OutcomeAbandoned, EndedAt: time.Now()})
	assert.ErrorIs(t, err, ErrEpisodeNotFound)
}

func TestListEpisodes(t *testing.T) {
	s := newTestStorage(t, false)

	var ids []string
	for seed := uint64(1); seed <= 3; seed++ {
		id, err := s.StartEpisode(seed, simulation.DefaultWorldConfig())
		require.NoError(t, err)
		ids = append(ids, id)
	}

	page, err := s.ListEpisodes(2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID)
	assert.Equal(t, ids[1], page[1].ID)

	page, err = s.ListEpisodes(2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, uint64(1), page[0].Seed)
}

func TestServiceRecordsIntoStorage(t *testing.T) {
	s := newTestStorage(t, true)

	cfg := simulation.DefaultWorldConfig()
	cfg.MaxSteps = 25
	cfg.SpawnRate = 0.5
	svc, err := simulation.NewService(cfg, logger.NewNop(), simulation.WithRecorder(s))
	require.NoError(t, err)

	svc.Reset(11)
	spawned := 0
	for {
		res, err := svc.Step(nil)
		require.NoError(t, err)
		for _, ev := range res.Events {
			if ev.Kind == simulation.EventSpawned {
				spawned++
			}
		}
		if res.Terminated || res.Truncated {
			break
		}
	}

	status := svc.Status()
	episode, err := s.GetEpisode(status.EpisodeID)
	require.NoError(t, err)
	assert.Equal(t, simulation.OutcomeTruncated, episode.Outcome)
	assert.Equal(t, 25, episode.Ticks)
	assert.Equal(t, uint64(11), episode.Seed)
	assert.InDelta(t, status.EpisodeReward, episode.TotalReward, 1e-9)

	ticks, err := s.GetTicks(status.EpisodeID, 100, 0)
	require.NoError(t, err)
	assert.Len(t, ticks, 25)

	events, err := s.GetEvents(status.EpisodeID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(events), spawned)
}

func TestDailyPath(t *testing.T) {
	day := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, filepath.Join("data", "airtraffic-2026-10-15.db"), DailyPath("data", day))
}
