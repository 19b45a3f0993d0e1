package sandbox

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/picogrid/brightfleet/pkg/fleet"
	"github.com/picogrid/brightfleet/pkg/logger"
	"github.com/picogrid/brightfleet/pkg/models"
	"github.com/picogrid/brightfleet/pkg/simulation"
	"github.com/picogrid/brightfleet/pkg/store"
)

//go:embed simulation.yaml
var configYAML []byte

var simConfig = simulation.MustParseConfig(configYAML)

// errFleetFull is returned when no team has a ship left to deploy
var errFleetFull = errors.New("every team is fully deployed")

func init() {
	if err := simulation.DefaultRegistry.Register(simConfig.Name, NewSandboxSimulation); err != nil {
		panic(err)
	}
}

// SandboxSimulation runs the demo board in memory and issues random orders
type SandboxSimulation struct {
	config  *Config
	mu      sync.Mutex
	session *simulation.Session
	stopped bool

	deployed int
	recalled int
}

// NewSandboxSimulation creates a new instance of the sandbox simulation
func NewSandboxSimulation() simulation.Simulation {
	return &SandboxSimulation{}
}

// Name returns the simulation name
func (s *SandboxSimulation) Name() string {
	return simConfig.Name
}

// Description returns the simulation description
func (s *SandboxSimulation) Description() string {
	return simConfig.Description
}

// Config returns the embedded simulation description
func (s *SandboxSimulation) Config() simulation.SimulationConfig {
	return simConfig
}

// Configure sets up the simulation with provided parameters
func (s *SandboxSimulation) Configure(params map[string]interface{}) error {
	config, err := ValidateAndParse(params)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	s.config = config
	return nil
}

// Run executes the simulation. The configured store is never touched; the
// sandbox always starts from the demo board.
func (s *SandboxSimulation) Run(ctx context.Context, env *simulation.Environment) error {
	if s.config == nil {
		return fmt.Errorf("simulation is not configured")
	}

	sandboxEnv := *env
	sandboxEnv.Store = store.NewMemory(models.DemoDocument())
	sandboxEnv.Policy.ConfirmRecall = false
	sandboxEnv.Confirmer = nil

	session, err := simulation.NewSession(simulation.SessionConfig{
		Runner: simulation.RunnerConfig{
			TickRate:       s.config.TickRate,
			FrameEvery:     s.config.FrameEvery,
			StatusInterval: 15 * time.Second,
			Duration:       s.config.Duration,
		},
		Seed:       s.config.Seed,
		FramesAddr: s.config.FramesAddr,
	}, &sandboxEnv)
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

	logger.Infof("Starting %s for %s, one order every %s", s.Name(), s.config.Duration, s.config.ActionInterval)
	if s.config.FramesAddr != "" {
		logger.Networkf("Live frames on ws://%s/ws", s.config.FramesAddr)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return session.Run(gctx)
	})
	g.Go(func() error {
		s.issueOrders(gctx, session.Runner)
		return nil
	})
	err = g.Wait()

	s.logSummary(session)
	return err
}

// Stop gracefully shuts down the simulation
func (s *SandboxSimulation) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.session != nil {
		s.session.Stop()
	}
	return nil
}

func (s *SandboxSimulation) issueOrders(ctx context.Context, runner *simulation.Runner) {
	ticker := time.NewTicker(s.config.ActionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := runner.Do(ctx, s.order)
			switch {
			case err == nil:
				deployed, recalled := s.counts()
				logger.Progressf("Orders so far: %d deployments, %d recalls", deployed, recalled)
			case errors.Is(err, simulation.ErrRunnerStopped), errors.Is(err, context.Canceled):
				return
			case errors.Is(err, errFleetFull):
				logger.Debug("Every team is at sea, waiting for a recall")
			default:
				logger.Warnf("Order failed: %v", err)
			}
		}
	}
}

// order recalls a random docked ship or deploys a random team. It runs on
// the simulation goroutine.
func (s *SandboxSimulation) order(f *fleet.Fleet) error {
	rng := f.Rand()
	if rng.Float64() < s.config.RecallChance {
		if ship := pickDocked(f, rng); ship != nil {
			if err := f.Recall(ship); err != nil {
				return err
			}
			s.count(false)
			return nil
		}
	}
	if err := deployRandom(f, rng); err != nil {
		return err
	}
	s.count(true)
	return nil
}

func (s *SandboxSimulation) count(deployed bool) {
	s.mu.Lock()
	if deployed {
		s.deployed++
	} else {
		s.recalled++
	}
	s.mu.Unlock()
}

func (s *SandboxSimulation) counts() (deployed, recalled int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deployed, s.recalled
}

func pickDocked(f *fleet.Fleet, rng *rand.Rand) *fleet.Ship {
	var docked []*fleet.Ship
	for _, ship := range f.Ships().Ships() {
		if ship.State == fleet.Docked {
			docked = append(docked, ship)
		}
	}
	if len(docked) == 0 {
		return nil
	}
	return docked[rng.Intn(len(docked))]
}

// deployRandom sends a team with spare capacity to a random island, scoped to
// a random subset of that island's KPIs.
func deployRandom(f *fleet.Fleet, rng *rand.Rand) error {
	doc := f.Document()
	if len(doc.Islands) == 0 {
		return fmt.Errorf("no islands to deploy to")
	}

	var candidates []*models.Team
	for _, team := range doc.Teams {
		if len(team.Deployed) < team.TotalShips {
			candidates = append(candidates, team)
		}
	}
	if len(candidates) == 0 {
		return errFleetFull
	}

	team := candidates[rng.Intn(len(candidates))]
	island := doc.Islands[rng.Intn(len(doc.Islands))]
	var kpis []string
	for _, kpi := range island.KPIs {
		if rng.Intn(2) == 0 {
			kpis = append(kpis, kpi.ID)
		}
	}

	_, err := f.Assign(team.ID, island.ID, kpis)
	return err
}

func (s *SandboxSimulation) logSummary(session *simulation.Session) {
	totals := session.Runner.Totals()
	deployed, recalled := s.counts()

	logger.LogSection("Sandbox Summary")
	logger.LogKeyValue("Ticks", totals.Ticks)
	logger.LogKeyValue("Orders", fmt.Sprintf("%d deployments, %d recalls", deployed, recalled))
	logger.LogKeyValue("Arrivals", totals.Docked)
	logger.LogKeyValue("Returns", totals.Returned)
}
