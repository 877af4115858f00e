package sqlite

import (
	"fmt"

	"github.com/yegors/airtraffic/internal/simulation"
	"github.com/yegors/airtraffic/pkg/logger"
)

// EventRecord represents a stored aircraft event
type EventRecord struct {
	ID              int64   `json:"id"`
	EpisodeID       string  `json:"episode_id"`
	Tick            int     `json:"tick"`
	AircraftID      int     `json:"aircraft_id"`
	OtherAircraftID int     `json:"other_aircraft_id"`
	Kind            string  `json:"kind"`
	AircraftType    string  `json:"aircraft_type"`
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	Reward          float64 `json:"reward"`
}

// TickRecord represents a stored tick summary
type TickRecord struct {
	EpisodeID  string  `json:"episode_id"`
	Tick       int     `json:"tick"`
	Reward     float64 `json:"reward"`
	Terminated bool    `json:"terminated"`
	Truncated  bool    `json:"truncated"`
	PlaneCount int     `json:"plane_count"`
	WindX      float64 `json:"wind_x"`
	WindY      float64 `json:"wind_y"`
}

// RecordTick stores the tick summary (when enabled) and its events in one transaction
func (s *EpisodeStorage) RecordTick(episodeID string, result *simulation.StepResult) error {
	if !s.recordTicks && len(result.Events) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if s.recordTicks {
		_, err = tx.Exec(
			`INSERT INTO ticks (episode_id, tick, reward, terminated, truncated, plane_count, wind_x, wind_y)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			episodeID,
			result.Tick,
			result.Reward,
			boolToInt(result.Terminated),
			boolToInt(result.Truncated),
			result.PlaneCount,
			result.Snapshot.Wind.X,
			result.Snapshot.Wind.Y,
		)
		if err != nil {
			return fmt.Errorf("failed to insert tick: %w", err)
		}
	}

	for _, ev := range result.Events {
		_, err = tx.Exec(
			`INSERT INTO events (episode_id, tick, aircraft_id, other_aircraft_id, kind, aircraft_type, x, y, reward)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			episodeID,
			ev.Tick,
			ev.AircraftID,
			ev.OtherAircraftID,
			string(ev.Kind),
			ev.AircraftType.String(),
			ev.X,
			ev.Y,
			ev.Reward,
		)
		if err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tick: %w", err)
	}

	if len(result.Events) > 0 {
		s.logger.Debug("Stored tick events",
			logger.String("episode_id", episodeID),
			logger.Int("tick", result.Tick),
			logger.Int("events", len(result.Events)))
	}
	return nil
}

// GetEvents returns all events of an episode in tick order
func (s *EpisodeStorage) GetEvents(episodeID string) ([]*EventRecord, error) {
	if _, err := s.GetEpisode(episodeID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT id, episode_id, tick, aircraft_id, other_aircraft_id, kind, aircraft_type, x, y, reward
		FROM events WHERE episode_id = ? ORDER BY tick ASC, id ASC`,
		episodeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*EventRecord
	for rows.Next() {
		var record EventRecord
		if err := rows.Scan(
			&record.ID,
			&record.EpisodeID,
			&record.Tick,
			&record.AircraftID,
			&record.OtherAircraftID,
			&record.Kind,
			&record.AircraftType,
			&record.X,
			&record.Y,
			&record.Reward,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return events, nil
}

// GetTicks returns tick summaries of an episode in order
func (s *EpisodeStorage) GetTicks(episodeID string, limit, offset int) ([]*TickRecord, error) {
	if _, err := s.GetEpisode(episodeID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT episode_id, tick, reward, terminated, truncated, plane_count, wind_x, wind_y
		FROM ticks WHERE episode_id = ? ORDER BY tick ASC LIMIT ? OFFSET ?`,
		episodeID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticks: %w", err)
	}
	defer rows.Close()

	var ticks []*TickRecord
	for rows.Next() {
		var (
			record                TickRecord
			terminated, truncated int
		)
		if err := rows.Scan(
			&record.EpisodeID,
			&record.Tick,
			&record.Reward,
			&terminated,
			&truncated,
			&record.PlaneCount,
			&record.WindX,
			&record.WindY,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tick row: %w", err)
		}
		record.Terminated = terminated != 0
		record.Truncated = truncated != 0
		ticks = append(ticks, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tick rows: %w", err)
	}

	return ticks, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
