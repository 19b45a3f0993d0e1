package fleetops

import (
	"fmt"
	"time"

	"github.com/picogrid/brightfleet/pkg/simulation"
)

// Config holds the configuration for the fleet operations simulation
type Config struct {
	TickRate       int
	FrameEvery     int
	FramesAddr     string
	StatusInterval time.Duration
	Duration       time.Duration
	Seed           int64
}

// ValidateAndParse validates and parses the raw parameters into a Config
func ValidateAndParse(params map[string]interface{}) (*Config, error) {
	config := &Config{}
	var err error

	if config.TickRate, err = simulation.IntParam(params, "tick_rate", 60); err != nil {
		return nil, err
	}
	if config.TickRate < 1 || config.TickRate > 240 {
		return nil, fmt.Errorf("tick_rate must be between 1 and 240")
	}

	if config.FrameEvery, err = simulation.IntParam(params, "frame_every", 2); err != nil {
		return nil, err
	}
	if config.FrameEvery < 1 || config.FrameEvery > 60 {
		return nil, fmt.Errorf("frame_every must be between 1 and 60")
	}

	config.FramesAddr = simulation.StringParam(params, "frames_addr", ":8765")

	if config.StatusInterval, err = simulation.DurationParam(params, "status_interval", 10*time.Second); err != nil {
		return nil, err
	}
	if config.StatusInterval < 0 {
		return nil, fmt.Errorf("status_interval must not be negative")
	}

	// Zero runs until interrupted
	if config.Duration, err = simulation.DurationParam(params, "duration", 0); err != nil {
		return nil, err
	}
	if config.Duration < 0 {
		return nil, fmt.Errorf("duration must not be negative")
	}

	seed, err := simulation.IntParam(params, "seed", 0)
	if err != nil {
		return nil, err
	}
	config.Seed = int64(seed)

	return config, nil
}

// SessionConfig converts the parsed parameters into session settings
func (c *Config) SessionConfig() simulation.SessionConfig {
	return simulation.SessionConfig{
		Runner: simulation.RunnerConfig{
			TickRate:       c.TickRate,
			FrameEvery:     c.FrameEvery,
			StatusInterval: c.StatusInterval,
			Duration:       c.Duration,
		},
		Seed:       c.Seed,
		FramesAddr: c.FramesAddr,
	}
}
