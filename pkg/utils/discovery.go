package utils

import (
	"fmt"

	"github.com/picogrid/brightfleet/pkg/simulation"
)

// SimulationInfo contains information about a registered simulation
type SimulationInfo struct {
	Name   string
	Config simulation.SimulationConfig
}

// DiscoverSimulations describes every simulation in reg, sorted by name
func DiscoverSimulations(reg *simulation.Registry) ([]SimulationInfo, error) {
	names := reg.List()
	simulations := make([]SimulationInfo, 0, len(names))

	for _, name := range names {
		sim, err := reg.Get(name)
		if err != nil {
			return nil, fmt.Errorf("failed to load simulation %s: %w", name, err)
		}
		simulations = append(simulations, SimulationInfo{
			Name:   name,
			Config: sim.Config(),
		})
	}

	return simulations, nil
}
