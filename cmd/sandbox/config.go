package sandbox

import (
	"fmt"
	"time"

	"github.com/picogrid/brightfleet/pkg/simulation"
)

// Config holds the configuration for the sandbox simulation
type Config struct {
	TickRate       int
	FrameEvery     int
	FramesAddr     string
	ActionInterval time.Duration
	RecallChance   float64
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

	if config.ActionInterval, err = simulation.DurationParam(params, "action_interval", 3*time.Second); err != nil {
		return nil, err
	}
	if config.ActionInterval < 10*time.Millisecond {
		return nil, fmt.Errorf("action_interval must be at least 10ms")
	}

	if config.RecallChance, err = simulation.FloatParam(params, "recall_chance", 0.3); err != nil {
		return nil, err
	}
	if config.RecallChance < 0 || config.RecallChance > 1 {
		return nil, fmt.Errorf("recall_chance must be between 0 and 1")
	}

	if config.Duration, err = simulation.DurationParam(params, "duration", 2*time.Minute); err != nil {
		return nil, err
	}
	if config.Duration <= 0 {
		return nil, fmt.Errorf("duration must be positive")
	}

	seed, err := simulation.IntParam(params, "seed", 0)
	if err != nil {
		return nil, err
	}
	config.Seed = int64(seed)

	return config, nil
}
