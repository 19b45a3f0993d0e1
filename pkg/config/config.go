package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/picogrid/brightfleet/pkg/fleet"
	"github.com/picogrid/brightfleet/pkg/steering"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "FLEET_"

// FleetConfig is the complete configuration file
type FleetConfig struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Physics    steering.Params  `yaml:"physics"`
	Policy     fleet.Policy     `yaml:"policy"`
	Backend    BackendConfig    `yaml:"backend"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SimulationConfig controls the tick loop
type SimulationConfig struct {
	TickRate       int           `yaml:"tick_rate" env:"TICK_RATE"`
	FrameEvery     int           `yaml:"frame_every" env:"FRAME_EVERY"`
	FramesAddr     string        `yaml:"frames_addr" env:"FRAMES_ADDR"`
	StatusInterval time.Duration `yaml:"status_interval" env:"STATUS_INTERVAL"`
	Seed           int64         `yaml:"seed" env:"SEED"`
}

// BackendConfig names the persistence backend the CLI talks to
type BackendConfig struct {
	// URL of a brightfleet server; empty uses the local database directly.
	URL    string `yaml:"url" env:"BACKEND_URL"`
	APIKey string `yaml:"api_key,omitempty" env:"API_KEY"`
	// Database is the SQLite file used when URL is empty and by serve.
	Database    string        `yaml:"database" env:"DATABASE"`
	SaveTimeout time.Duration `yaml:"save_timeout" env:"SAVE_TIMEOUT"`
}

// ServerConfig configures the serve command
type ServerConfig struct {
	Addr      string `yaml:"addr" env:"ADDR"`
	StaticDir string `yaml:"static_dir,omitempty" env:"STATIC_DIR"`
}

// LoggingConfig configures the logger and the event journal
type LoggingConfig struct {
	Level       string `yaml:"level" env:"LOG_LEVEL"`
	NoColor     bool   `yaml:"no_color" env:"NO_COLOR"`
	QuietEvents bool   `yaml:"quiet_events" env:"QUIET_EVENTS"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *FleetConfig {
	return &FleetConfig{
		Simulation: SimulationConfig{
			TickRate:       60,
			FrameEvery:     2,
			StatusInterval: 10 * time.Second,
		},
		Physics: steering.DefaultParams(),
		Policy:  fleet.DefaultPolicy(),
		Backend: BackendConfig{
			Database:    filepath.Join(ConfigDir(), "fleet.db"),
			SaveTimeout: 10 * time.Second,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ConfigDir returns $HOME/.brightfleet, or .brightfleet when there is no home
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".brightfleet"
	}
	return filepath.Join(home, ".brightfleet")
}

// LoadConfig reads path over the defaults and applies environment overrides
func LoadConfig(path string) (*FleetConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadConfigOrDefault loads path when it exists and falls back to the defaults
// (with environment overrides) otherwise
func LoadConfigOrDefault(path string) (*FleetConfig, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return LoadConfig(path)
		}
	}

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(nil); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes cfg to path, creating the directory if needed
func SaveConfig(path string, cfg *FleetConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from FLEET_* variables. A nil environment reads
// the process environment.
func (c *FleetConfig) ApplyEnv(environment map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environment != nil {
		opts.Environment = environment
	}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}

// Validate checks the configuration for consistency
func (c *FleetConfig) Validate() error {
	if c.Simulation.TickRate < 1 || c.Simulation.TickRate > 1000 {
		return fmt.Errorf("simulation.tick_rate must be between 1 and 1000")
	}
	if c.Simulation.FrameEvery < 1 {
		return fmt.Errorf("simulation.frame_every must be at least 1")
	}
	if c.Simulation.StatusInterval < 0 {
		return fmt.Errorf("simulation.status_interval must not be negative")
	}
	if err := c.Physics.Validate(); err != nil {
		return fmt.Errorf("physics: %w", err)
	}
	if c.Backend.URL == "" && c.Backend.Database == "" {
		return fmt.Errorf("backend needs either a url or a database")
	}
	if c.Backend.SaveTimeout < 0 {
		return fmt.Errorf("backend.save_timeout must not be negative")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}
	return nil
}
