package simulation

import (
	"context"

	"github.com/picogrid/brightfleet/pkg/fleet"
	"github.com/picogrid/brightfleet/pkg/steering"
	"github.com/picogrid/brightfleet/pkg/store"
)

// Environment is what the CLI hands a simulation to run against.
type Environment struct {
	// Store the fleet document is loaded from and autosaved to.
	Store store.Store
	// Physics constants for the steering engine.
	Physics steering.Params
	// Policy for capacity and recall confirmation.
	Policy fleet.Policy
	// Observer receives fleet events; usually the event journal.
	Observer fleet.Observer
	// Confirmer is asked before recalls when the policy requires it. Optional.
	Confirmer fleet.Confirmer
}

// Simulation defines the interface that all simulations must implement
type Simulation interface {
	// Name returns the name of the simulation
	Name() string

	// Description returns a brief description of what the simulation does
	Description() string

	// Config describes the simulation and its parameters
	Config() SimulationConfig

	// Configure sets up the simulation with the provided parameters
	Configure(params map[string]interface{}) error

	// Run executes the simulation against env until ctx is done, the
	// configured duration elapses or Stop is called
	Run(ctx context.Context, env *Environment) error

	// Stop gracefully shuts down the simulation
	Stop() error
}
