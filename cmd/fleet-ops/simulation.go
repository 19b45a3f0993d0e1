package fleetops

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"github.com/picogrid/brightfleet/pkg/logger"
	"github.com/picogrid/brightfleet/pkg/simulation"
)

//go:embed simulation.yaml
var configYAML []byte

var simConfig = simulation.MustParseConfig(configYAML)

func init() {
	if err := simulation.DefaultRegistry.Register(simConfig.Name, NewFleetOpsSimulation); err != nil {
		panic(err)
	}
}

// FleetOpsSimulation runs the live fleet against the configured backend
type FleetOpsSimulation struct {
	config  *Config
	mu      sync.Mutex
	session *simulation.Session
	stopped bool
}

// NewFleetOpsSimulation creates a new instance of the fleet operations simulation
func NewFleetOpsSimulation() simulation.Simulation {
	return &FleetOpsSimulation{}
}

// Name returns the simulation name
func (s *FleetOpsSimulation) Name() string {
	return simConfig.Name
}

// Description returns the simulation description
func (s *FleetOpsSimulation) Description() string {
	return simConfig.Description
}

// Config returns the embedded simulation description
func (s *FleetOpsSimulation) Config() simulation.SimulationConfig {
	return simConfig
}

// Configure sets up the simulation with provided parameters
func (s *FleetOpsSimulation) Configure(params map[string]interface{}) error {
	config, err := ValidateAndParse(params)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	s.config = config
	return nil
}

// Run loads the fleet from env.Store and ticks it until stopped
func (s *FleetOpsSimulation) Run(ctx context.Context, env *simulation.Environment) error {
	if s.config == nil {
		return fmt.Errorf("simulation is not configured")
	}

	session, err := simulation.NewSession(s.config.SessionConfig(), env)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.session = session
	s.mu.Unlock()

	logger.Infof("Starting %s at %d Hz", s.Name(), s.config.TickRate)
	if s.config.FramesAddr != "" {
		logger.Networkf("Live frames on ws://%s/ws", s.config.FramesAddr)
	}

	err = session.Run(ctx)
	logSummary(session)
	return err
}

// Stop gracefully shuts down the simulation
func (s *FleetOpsSimulation) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.session != nil {
		s.session.Stop()
	}
	return nil
}

func logSummary(session *simulation.Session) {
	totals := session.Runner.Totals()
	saves := session.Saver.Stats()

	logger.LogSection("Run Summary")
	logger.LogKeyValue("Ticks", totals.Ticks)
	logger.LogKeyValue("Frames", totals.Frames)
	logger.LogKeyValue("Arrivals", totals.Docked)
	logger.LogKeyValue("Returns", totals.Returned)
	logger.LogKeyValue("Saves", fmt.Sprintf("%d written, %d failed", saves.Written, saves.Failed))
}
