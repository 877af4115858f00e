package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/yegors/airtraffic/internal/simulation"
)

// EnvConfigPath names the environment variable holding the config file path
const EnvConfigPath = "AIRTRAFFIC_CONFIG"

// ErrConfigNotFound is returned by LoadWithFallback when no search path exists
var ErrConfigNotFound = errors.New("config file not found")

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Server     ServerConfig     `toml:"server"`     // HTTP server settings
	Logging    LoggingConfig    `toml:"logging"`    // Application logging settings
	Storage    StorageConfig    `toml:"storage"`    // Episode recording settings
	Simulation SimulationConfig `toml:"simulation"` // Airspace and episode settings
	Wind       WindConfig       `toml:"wind"`       // Wind random walk settings
	Zones      []ZoneConfig     `toml:"zones"`      // Landing zones
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port               int      `toml:"port"`                  // HTTP port for the server
	Host               string   `toml:"host"`                  // Host address to bind to (e.g., 127.0.0.1 for localhost only, 0.0.0.0 for all interfaces)
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`  // List of origins allowed for CORS requests (use ["*"] for all origins)
	ReadTimeoutSecs    int      `toml:"read_timeout_seconds"`  // Maximum duration for reading the entire request (0 = no timeout)
	WriteTimeoutSecs   int      `toml:"write_timeout_seconds"` // Maximum duration for writing the response (0 = no timeout, recommended for streaming)
	IdleTimeoutSecs    int      `toml:"idle_timeout_seconds"`  // Maximum duration to wait for the next request when keep-alives are enabled
	StaticFilesDir     string   `toml:"static_files_dir"`      // Optional directory with a browser viewer (empty = API only)
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`  // Log level: "debug", "info", "warn", or "error"
	Format string `toml:"format"` // Log format: "json" (structured) or "console" (human-readable)
}

// StorageConfig contains episode recording configuration
type StorageConfig struct {
	Enabled        bool   `toml:"enabled"`          // Record episodes to SQLite
	SQLiteBasePath string `toml:"sqlite_base_path"` // Directory for database files (filename is generated as airtraffic-YYYY-MM-DD.db)
	RecordTicks    bool   `toml:"record_ticks"`     // Store a row per tick in addition to events and summaries
}

// SimulationConfig contains the static world parameters
type SimulationConfig struct {
	Width     float64 `toml:"width"`      // Airspace width in world units
	Height    float64 `toml:"height"`     // Airspace height in world units
	MaxPlanes int     `toml:"max_planes"` // Roster capacity and observation row count
	SpawnRate float64 `toml:"spawn_rate"` // Per-tick spawn probability
	MaxSteps  int     `toml:"max_steps"`  // Episode length before truncation
	Seed      uint64  `toml:"seed"`       // Seed used for the first reset
}

// WindConfig contains wind configuration
type WindConfig struct {
	MaxSpeed   float64 `toml:"max_speed"`   // Maximum wind magnitude
	ChangeRate float64 `toml:"change_rate"` // Maximum per-axis change per tick
}

// ZoneConfig describes one landing zone
type ZoneConfig struct {
	ID     int                 `toml:"id"`
	Type   simulation.ZoneType `toml:"type"`   // "runway_red", "runway_blue" or "helipad"
	X      float64             `toml:"x"`      // Centre X
	Y      float64             `toml:"y"`      // Centre Y
	Angle  float64             `toml:"angle"`  // Approach heading in radians (ignored for helipads)
	Radius float64             `toml:"radius"` // Acceptance radius (0 = default)
}

// Default returns the standard configuration
func Default() *Config {
	world := simulation.DefaultWorldConfig()

	zones := make([]ZoneConfig, 0, len(world.Zones))
	for _, z := range world.Zones {
		zones = append(zones, ZoneConfig{ID: z.ID, Type: z.Type, X: z.X, Y: z.Y, Angle: z.Angle, Radius: z.Radius})
	}

	return &Config{
		Server: ServerConfig{
			Port:               8080,
			Host:               "127.0.0.1",
			CORSAllowedOrigins: []string{"*"},
			ReadTimeoutSecs:    15,
			IdleTimeoutSecs:    60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Storage: StorageConfig{
			SQLiteBasePath: "data",
		},
		Simulation: SimulationConfig{
			Width:     world.Width,
			Height:    world.Height,
			MaxPlanes: world.MaxPlanes,
			SpawnRate: world.SpawnRate,
			MaxSteps:  world.MaxSteps,
		},
		Wind: WindConfig{
			MaxSpeed:   world.MaxWindSpeed,
			ChangeRate: world.WindChangeRate,
		},
		Zones: zones,
	}
}

// Load loads the configuration from the specified file path. Keys missing
// from the file keep their default values; a [[zones]] list replaces the
// default airfield entirely.
func Load(path string) (*Config, error) {
	config := Default()
	defaultZones := config.Zones
	config.Zones = nil

	// Check if the file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	md, err := toml.DecodeFile(path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	if !md.IsDefined("zones") {
		config.Zones = defaultZones
	}
	for i := range config.Zones {
		if config.Zones[i].Radius == 0 {
			config.Zones[i].Radius = simulation.DefaultZoneRadius
		}
	}

	return config, nil
}

// LoadWithFallback loads the configuration by checking multiple locations in order of preference
func LoadWithFallback(preferredPath string) (*Config, error) {
	// List of paths to check in order of preference
	searchPaths := []string{
		preferredPath,            // User-specified path (if provided)
		os.Getenv(EnvConfigPath), // Environment override
		"configs/config.toml",    // configs/ folder
		"config.toml",            // Root directory
	}

	// Remove duplicates while preserving order
	uniquePaths := make([]string, 0, len(searchPaths))
	seen := make(map[string]bool)
	for _, path := range searchPaths {
		if path != "" && !seen[path] {
			uniquePaths = append(uniquePaths, path)
			seen[path] = true
		}
	}

	for _, path := range uniquePaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		// An existing file that fails to load ends the search
		config, err := Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
		return config, nil
	}

	return nil, fmt.Errorf("%w in any of the expected locations: %v", ErrConfigNotFound, uniquePaths)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeoutSecs < 0 || c.Server.WriteTimeoutSecs < 0 || c.Server.IdleTimeoutSecs < 0 {
		return fmt.Errorf("server timeouts must be >= 0")
	}
	if c.Server.StaticFilesDir != "" {
		if _, err := os.Stat(c.Server.StaticFilesDir); os.IsNotExist(err) {
			return fmt.Errorf("static files directory does not exist: %s", c.Server.StaticFilesDir)
		}
	}

	// Validate logging config
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logging.Format)
	}

	// Validate storage config
	if c.Storage.Enabled && c.Storage.SQLiteBasePath == "" {
		return fmt.Errorf("sqlite_base_path is required when storage is enabled")
	}

	// Validate wind config
	if c.Wind.MaxSpeed <= 0 {
		return fmt.Errorf("invalid wind max_speed: %g (must be > 0)", c.Wind.MaxSpeed)
	}

	if err := c.ToWorldConfig().Validate(); err != nil {
		return fmt.Errorf("invalid simulation config: %w", err)
	}

	return nil
}

// ToWorldConfig converts the file configuration into the simulation's static parameters
func (c *Config) ToWorldConfig() simulation.WorldConfig {
	zones := make([]simulation.LandingZone, 0, len(c.Zones))
	for _, z := range c.Zones {
		zone := simulation.NewLandingZone(z.ID, z.Type, z.X, z.Y, z.Angle)
		if z.Radius != 0 {
			zone.Radius = z.Radius
		}
		zones = append(zones, zone)
	}

	return simulation.WorldConfig{
		Width:          c.Simulation.Width,
		Height:         c.Simulation.Height,
		MaxPlanes:      c.Simulation.MaxPlanes,
		SpawnRate:      c.Simulation.SpawnRate,
		MaxSteps:       c.Simulation.MaxSteps,
		MaxWindSpeed:   c.Wind.MaxSpeed,
		WindChangeRate: c.Wind.ChangeRate,
		Zones:          zones,
	}
}
