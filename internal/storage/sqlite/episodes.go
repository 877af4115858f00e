package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/yegors/airtraffic/internal/simulation"
	"github.com/yegors/airtraffic/pkg/logger"
)

// ErrEpisodeNotFound is returned when an episode id has no row
var ErrEpisodeNotFound = errors.New("episode not found")

// OutcomeRunning marks an episode that has not ended yet
const OutcomeRunning = "running"

// timeFormat is fixed width so stored timestamps sort lexically
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// EpisodeRecord represents an episode row
type EpisodeRecord struct {
	ID          string                 `json:"id"`
	Seed        uint64                 `json:"seed"`
	StartedAt   time.Time              `json:"started_at"`
	EndedAt     *time.Time             `json:"ended_at,omitempty"`
	Ticks       int                    `json:"ticks"`
	TotalReward float64                `json:"total_reward"`
	Outcome     string                 `json:"outcome"`
	Config      simulation.WorldConfig `json:"config"`
}

// EpisodeStorage is a SQLite-based recorder for simulation episodes
type EpisodeStorage struct {
	db          *sql.DB
	logger      *logger.Logger
	recordTicks bool
}

// DailyPath returns the database file for the given day under basePath
func DailyPath(basePath string, day time.Time) string {
	return filepath.Join(basePath, fmt.Sprintf("airtraffic-%s.db", day.Format("2006-01-02")))
}

// NewEpisodeStorage opens (or creates) the database at dbPath. When
// recordTicks is false only episode summaries and events are stored.
func NewEpisodeStorage(dbPath string, recordTicks bool, log *logger.Logger) (*EpisodeStorage, error) {
	storageLogger := log.Named("sqlite")

	storageLogger.Info("Initializing SQLite storage",
		logger.String("path", dbPath),
		logger.Bool("record_ticks", recordTicks))

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []struct{ stmt, what string }{
		{"PRAGMA journal_mode=WAL", "journal mode"},
		{"PRAGMA synchronous=NORMAL", "synchronous mode"},
		{"PRAGMA busy_timeout=5000", "busy timeout"},
		{"PRAGMA foreign_keys=ON", "foreign keys"},
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p.stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set %s: %w", p.what, err)
		}
	}

	if err := initDatabase(db, storageLogger); err != nil {
		db.Close()
		return nil, err
	}

	return newEpisodeStorage(db, recordTicks, storageLogger), nil
}

func newEpisodeStorage(db *sql.DB, recordTicks bool, log *logger.Logger) *EpisodeStorage {
	return &EpisodeStorage{
		db:          db,
		logger:      log,
		recordTicks: recordTicks,
	}
}

// Close closes the database connection
func (s *EpisodeStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetDB returns the database connection
func (s *EpisodeStorage) GetDB() *sql.DB {
	return s.db
}

// initDatabase initializes the database schema
func initDatabase(db *sql.DB, log *logger.Logger) error {
	log.Info("Initializing database schema")

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS episodes (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,       -- bit pattern of the uint64 seed
			started_at TEXT NOT NULL,
			ended_at TEXT,
			ticks INTEGER NOT NULL DEFAULT 0,
			total_reward REAL NOT NULL DEFAULT 0,
			outcome TEXT NOT NULL,
			config TEXT NOT NULL         -- JSON world config
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create episodes table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS ticks (
			episode_id TEXT NOT NULL REFERENCES episodes(id) ON DELETE CASCADE,
			tick INTEGER NOT NULL,
			reward REAL NOT NULL,
			terminated INTEGER NOT NULL,
			truncated INTEGER NOT NULL,
			plane_count INTEGER NOT NULL,
			wind_x REAL NOT NULL,
			wind_y REAL NOT NULL,
			PRIMARY KEY (episode_id, tick)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create ticks table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			episode_id TEXT NOT NULL REFERENCES episodes(id) ON DELETE CASCADE,
			tick INTEGER NOT NULL,
			aircraft_id INTEGER NOT NULL,
			other_aircraft_id INTEGER NOT NULL,
			kind TEXT NOT NULL,
			aircraft_type TEXT NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			reward REAL NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create events table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_episodes_started_at ON episodes(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_events_episode_tick ON events(episode_id, tick)`,
		`CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind)`,
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// StartEpisode inserts a running episode and returns its id
func (s *EpisodeStorage) StartEpisode(seed uint64, cfg simulation.WorldConfig) (string, error) {
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal world config: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO episodes (id, seed, started_at, outcome, config) VALUES (?, ?, ?, ?, ?)`,
		id,
		int64(seed),
		time.Now().UTC().Format(timeFormat),
		OutcomeRunning,
		string(configJSON),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert episode: %w", err)
	}

	s.logger.Debug("Episode started", logger.String("episode_id", id), logger.Uint64("seed", seed))
	return id, nil
}

// EndEpisode stores the final summary of an episode
func (s *EpisodeStorage) EndEpisode(episodeID string, summary simulation.EpisodeSummary) error {
	result, err := s.db.Exec(
		`UPDATE episodes SET ended_at = ?, ticks = ?, total_reward = ?, outcome = ? WHERE id = ?`,
		summary.EndedAt.UTC().Format(timeFormat),
		summary.Ticks,
		summary.TotalReward,
		summary.Outcome,
		episodeID,
	)
	if err != nil {
		return fmt.Errorf("failed to update episode: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrEpisodeNotFound
	}
	return nil
}

const episodeColumns = `id, seed, started_at, ended_at, ticks, total_reward, outcome, config`

// ListEpisodes returns episodes, newest first
func (s *EpisodeStorage) ListEpisodes(limit, offset int) ([]*EpisodeRecord, error) {
	rows, err := s.db.Query(
		`SELECT `+episodeColumns+` FROM episodes ORDER BY started_at DESC, rowid DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query episodes: %w", err)
	}
	defer rows.Close()

	var episodes []*EpisodeRecord
	for rows.Next() {
		record, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating episode rows: %w", err)
	}

	return episodes, nil
}

// GetEpisode returns a single episode
func (s *EpisodeStorage) GetEpisode(episodeID string) (*EpisodeRecord, error) {
	row := s.db.QueryRow(`SELECT `+episodeColumns+` FROM episodes WHERE id = ?`, episodeID)

	record, err := scanEpisode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEpisodeNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEpisode(row scanner) (*EpisodeRecord, error) {
	var (
		record     EpisodeRecord
		seed       int64
		startedAt  string
		endedAt    sql.NullString
		configJSON string
	)

	err := row.Scan(&record.ID, &seed, &startedAt, &endedAt, &record.Ticks, &record.TotalReward, &record.Outcome, &configJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan episode row: %w", err)
	}

	record.Seed = uint64(seed)

	record.StartedAt, err = time.Parse(timeFormat, startedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse started_at: %w", err)
	}
	if endedAt.Valid {
		t, err := time.Parse(timeFormat, endedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ended_at: %w", err)
		}
		record.EndedAt = &t
	}

	if err := json.Unmarshal([]byte(configJSON), &record.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal episode config: %w", err)
	}

	return &record, nil
}
