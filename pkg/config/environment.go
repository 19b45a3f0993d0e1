package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment represents a brightfleet backend the CLI can talk to
type Environment struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	// APIKey names the environment variable holding the key, never the key itself
	APIKey string `yaml:"api_key,omitempty"`
}

// Environments holds the environment configurations
type Environments struct {
	Environments []Environment `yaml:"environments"`
	Selected     string        `yaml:"selected,omitempty"`
}

// Find returns the environment called name
func (e *Environments) Find(name string) (*Environment, bool) {
	for i := range e.Environments {
		if e.Environments[i].Name == name {
			return &e.Environments[i], true
		}
	}
	return nil, false
}

// Add appends env, rejecting duplicate names
func (e *Environments) Add(env Environment) error {
	if env.Name == "" || env.URL == "" {
		return fmt.Errorf("environment needs a name and a url")
	}
	if _, exists := e.Find(env.Name); exists {
		return fmt.Errorf("environment %s already exists", env.Name)
	}
	e.Environments = append(e.Environments, env)
	return nil
}

// Remove deletes the environment called name
func (e *Environments) Remove(name string) error {
	kept := make([]Environment, 0, len(e.Environments))
	for _, env := range e.Environments {
		if env.Name != name {
			kept = append(kept, env)
		}
	}
	if len(kept) == len(e.Environments) {
		return fmt.Errorf("environment %s not found", name)
	}
	e.Environments = kept
	if e.Selected == name {
		e.Selected = ""
	}
	return nil
}

// EnvironmentsPath returns the default environments file
func EnvironmentsPath() string {
	return filepath.Join(ConfigDir(), "environments.yaml")
}

// LoadEnvironments loads environment configurations from the default location
func LoadEnvironments() (*Environments, error) {
	return LoadEnvironmentsFromFile(EnvironmentsPath())
}

// LoadEnvironmentsFromFile loads environment configurations from a specific file
func LoadEnvironmentsFromFile(path string) (*Environments, error) {
	// If file doesn't exist, return default config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return getDefaultEnvironments(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read environments file: %w", err)
	}

	var envs Environments
	if err := yaml.Unmarshal(data, &envs); err != nil {
		return nil, fmt.Errorf("failed to parse environments file: %w", err)
	}

	return &envs, nil
}

// SaveEnvironments saves the environment configuration to the default location
func SaveEnvironments(envs *Environments) error {
	return SaveEnvironmentsToFile(EnvironmentsPath(), envs)
}

// SaveEnvironmentsToFile saves the environment configuration to path
func SaveEnvironmentsToFile(path string, envs *Environments) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(envs)
	if err != nil {
		return fmt.Errorf("failed to marshal environments: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write environments file: %w", err)
	}

	return nil
}

// getDefaultEnvironments returns the environments known out of the box
func getDefaultEnvironments() *Environments {
	return &Environments{
		Environments: []Environment{
			{
				Name: "Local",
				URL:  "http://localhost:8080",
			},
		},
	}
}
