package simulation

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yegors/airtraffic/pkg/logger"
)

// ErrNotReset is returned when stepping or observing before the first reset
var ErrNotReset = errors.New("simulation has not been reset")

// Episode outcomes
const (
	OutcomeTerminated = "terminated"
	OutcomeTruncated  = "truncated"
	OutcomeAbandoned  = "abandoned"
)

// Broadcast message types
const (
	MessageTypeEpisodeReset = "episode_reset"
	MessageTypeTick         = "tick"
	MessageTypeEpisodeEnd   = "episode_end"
)

// EpisodeSummary describes a finished episode
type EpisodeSummary struct {
	Ticks       int       `json:"ticks"`
	TotalReward float64   `json:"total_reward"`
	Outcome     string    `json:"outcome"`
	EndedAt     time.Time `json:"ended_at"`
}

// Recorder persists episodes as they run
type Recorder interface {
	StartEpisode(seed uint64, cfg WorldConfig) (string, error)
	RecordTick(episodeID string, result *StepResult) error
	EndEpisode(episodeID string, summary EpisodeSummary) error
}

// Broadcaster pushes live updates to connected viewers
type Broadcaster interface {
	Publish(messageType string, data map[string]any)
}

// Status is a point-in-time view of the service
type Status struct {
	Ready         bool    `json:"ready"`
	EpisodeID     string  `json:"episode_id,omitempty"`
	Seed          uint64  `json:"seed"`
	Tick          int     `json:"tick"`
	PlaneCount    int     `json:"plane_count"`
	EpisodeReward float64 `json:"episode_reward"`
	Done          bool    `json:"done"`
	Episodes      int     `json:"episodes"`
}

// Service serializes access to a single World and fans each tick out to the
// optional recorder and broadcaster
type Service struct {
	world       *World
	recorder    Recorder
	broadcaster Broadcaster
	mutex       sync.Mutex
	logger      *logger.Logger

	ready         bool
	done          bool
	seed          uint64
	episodeID     string
	episodeReward float64
	episodes      int
}

// Option configures a Service
type Option func(*Service)

// WithRecorder persists every episode through r
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithBroadcaster publishes resets, ticks and episode ends through b
func WithBroadcaster(b Broadcaster) Option {
	return func(s *Service) { s.broadcaster = b }
}

// NewService creates a new simulation service
func NewService(cfg WorldConfig, log *logger.Logger, opts ...Option) (*Service, error) {
	world, err := NewWorld(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create world: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}

	s := &Service{
		world:  world,
		logger: log.Named("simulation"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Episode identifies the episode a reset started
type Episode struct {
	ID       string   `json:"episode_id"`
	Seed     uint64   `json:"seed"`
	Snapshot Snapshot `json:"snapshot"`
}

// Reset starts a new episode with the given seed. An unfinished episode is
// closed as abandoned first.
func (s *Service) Reset(seed uint64) Episode {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.reset(seed)
}

// ResetNext starts a new episode seeded with base plus the number of episodes
// started so far
func (s *Service) ResetNext(base uint64) Episode {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.reset(base + uint64(s.episodes))
}

// reset must be called with the mutex held
func (s *Service) reset(seed uint64) Episode {
	if s.ready && !s.done {
		s.endEpisode(OutcomeAbandoned)
	}

	snapshot := s.world.Reset(seed)
	s.ready = true
	s.done = false
	s.seed = seed
	s.episodeReward = 0
	s.episodeID = ""
	s.episodes++

	if s.recorder != nil {
		id, err := s.recorder.StartEpisode(seed, s.world.Config())
		if err != nil {
			s.logger.Error("Failed to record episode start", logger.Error(err), logger.Uint64("seed", seed))
		} else {
			s.episodeID = id
		}
	}

	s.logger.Info("Episode reset",
		logger.Uint64("seed", seed),
		logger.String("episode_id", s.episodeID),
		logger.Float64("wind_x", snapshot.Wind.X),
		logger.Float64("wind_y", snapshot.Wind.Y))

	s.publish(MessageTypeEpisodeReset, map[string]any{
		"episode_id": s.episodeID,
		"seed":       seed,
		"snapshot":   snapshot,
	})

	return Episode{ID: s.episodeID, Seed: seed, Snapshot: snapshot}
}

// Step advances the world one tick. Stepping past the end of an episode keeps
// producing valid states but nothing more is recorded for it.
func (s *Service) Step(commands []Command) (*StepResult, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.ready {
		return nil, ErrNotReset
	}

	result := s.world.Step(commands)

	for _, ev := range result.Events {
		s.logger.Debug("Aircraft event",
			logger.Int("tick", ev.Tick),
			logger.String("kind", string(ev.Kind)),
			logger.Int("aircraft_id", ev.AircraftID),
			logger.String("aircraft_type", ev.AircraftType.String()),
			logger.Float64("reward", ev.Reward))
	}

	if s.done {
		return &result, nil
	}

	s.episodeReward += result.Reward

	if s.recorder != nil && s.episodeID != "" {
		if err := s.recorder.RecordTick(s.episodeID, &result); err != nil {
			s.logger.Error("Failed to record tick", logger.Error(err), logger.Int("tick", result.Tick))
		}
	}

	s.publish(MessageTypeTick, map[string]any{
		"episode_id":  s.episodeID,
		"tick":        result.Tick,
		"event_count": len(result.Events),
		"result":      result,
	})

	switch {
	case result.Terminated:
		s.endEpisode(OutcomeTerminated)
	case result.Truncated:
		s.endEpisode(OutcomeTruncated)
	}

	return &result, nil
}

// endEpisode must be called with the mutex held
func (s *Service) endEpisode(outcome string) {
	s.done = true
	summary := EpisodeSummary{
		Ticks:       s.world.Tick(),
		TotalReward: s.episodeReward,
		Outcome:     outcome,
		EndedAt:     time.Now().UTC(),
	}

	if s.recorder != nil && s.episodeID != "" {
		if err := s.recorder.EndEpisode(s.episodeID, summary); err != nil {
			s.logger.Error("Failed to record episode end", logger.Error(err), logger.String("episode_id", s.episodeID))
		}
	}

	s.logger.Info("Episode finished",
		logger.String("episode_id", s.episodeID),
		logger.String("outcome", outcome),
		logger.Int("ticks", summary.Ticks),
		logger.Float64("total_reward", summary.TotalReward))

	s.publish(MessageTypeEpisodeEnd, map[string]any{
		"episode_id": s.episodeID,
		"summary":    summary,
	})
}

func (s *Service) publish(messageType string, data map[string]any) {
	if s.broadcaster != nil {
		s.broadcaster.Publish(messageType, data)
	}
}

// Snapshot returns the current world state
func (s *Service) Snapshot() (Snapshot, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.ready {
		return Snapshot{}, ErrNotReset
	}
	return s.world.Snapshot(), nil
}

// Observation returns the fixed-shape observation for the current state
func (s *Service) Observation() ([]ObservationRow, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return snapshot.Observation(), nil
}

// Config returns the world configuration
func (s *Service) Config() WorldConfig {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.world.Config()
}

// Status returns the current episode status
func (s *Service) Status() Status {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return Status{
		Ready:         s.ready,
		EpisodeID:     s.episodeID,
		Seed:          s.seed,
		Tick:          s.world.Tick(),
		PlaneCount:    s.world.PlaneCount(),
		EpisodeReward: s.episodeReward,
		Done:          s.done,
		Episodes:      s.episodes,
	}
}

// Close ends a running episode as abandoned
func (s *Service) Close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.ready && !s.done {
		s.endEpisode(OutcomeAbandoned)
	}
}
