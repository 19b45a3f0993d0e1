package simulation

import (
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// SimulationConfig represents the configuration structure for a simulation,
// embedded next to it as simulation.yaml
type SimulationConfig struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Version     string      `yaml:"version"`
	Category    string      `yaml:"category"`
	Parameters  []Parameter `yaml:"parameters"`
}

// Parameter defines a configurable parameter for a simulation
type Parameter struct {
	Name        string      `yaml:"name"`
	Type        string      `yaml:"type"` // integer, float, string, duration, boolean
	Description string      `yaml:"description"`
	Default     interface{} `yaml:"default"`
	Required    bool        `yaml:"required"`
	Min         interface{} `yaml:"min,omitempty"`
	Max         interface{} `yaml:"max,omitempty"`
	Options     []string    `yaml:"options,omitempty"` // For string enums
}

// ParseConfig parses a simulation.yaml document
func ParseConfig(data []byte) (SimulationConfig, error) {
	var cfg SimulationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SimulationConfig{}, fmt.Errorf("failed to parse simulation config: %w", err)
	}
	if cfg.Name == "" {
		return SimulationConfig{}, fmt.Errorf("simulation config has no name")
	}
	return cfg, nil
}

// MustParseConfig is ParseConfig for embedded files known to be valid
func MustParseConfig(data []byte) SimulationConfig {
	cfg, err := ParseConfig(data)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Defaults returns every parameter's default value keyed by name
func (c SimulationConfig) Defaults() map[string]interface{} {
	params := make(map[string]interface{}, len(c.Parameters))
	for _, p := range c.Parameters {
		if p.Default != nil {
			params[p.Name] = p.Default
		}
	}
	return params
}

// IntParam reads an integer parameter, accepting the shapes YAML files and prompts produce.
func IntParam(params map[string]interface{}, name string, def int) (int, error) {
	v, ok := params[name]
	if !ok || v == nil {
		return def, nil
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		return int(val), nil
	case string:
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer", name)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%s must be an integer", name)
	}
}

// FloatParam reads a float parameter
func FloatParam(params map[string]interface{}, name string, def float64) (float64, error) {
	v, ok := params[name]
	if !ok || v == nil {
		return def, nil
	}
	switch val := v.(type) {
	case float64:
		return val, nil
	case int:
		return float64(val), nil
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number", name)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%s must be a number", name)
	}
}

// DurationParam reads a duration parameter given as a duration, a string like "5m", or seconds
func DurationParam(params map[string]interface{}, name string, def time.Duration) (time.Duration, error) {
	v, ok := params[name]
	if !ok || v == nil {
		return def, nil
	}
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case int:
		return time.Duration(val) * time.Second, nil
	case float64:
		return time.Duration(val * float64(time.Second)), nil
	case string:
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, fmt.Errorf("invalid %s format: %w", name, err)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("%s must be a duration", name)
	}
}

// StringParam reads a string parameter
func StringParam(params map[string]interface{}, name string, def string) string {
	v, ok := params[name]
	if !ok || v == nil {
		return def
	}
	return fmt.Sprintf("%v", v)
}
