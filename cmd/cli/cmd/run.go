package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/picogrid/brightfleet/pkg/logger"
	"github.com/picogrid/brightfleet/pkg/reconcile"
	"github.com/picogrid/brightfleet/pkg/simulation"
	"github.com/picogrid/brightfleet/pkg/utils"

	// Import simulations to register them
	_ "github.com/picogrid/brightfleet/cmd/fleet-ops"
	_ "github.com/picogrid/brightfleet/cmd/sandbox"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation",
	Long:  `Run a simulation interactively or with specified parameters`,
	RunE:  runSimulation,
}

func init() {
	runCmd.Flags().StringP("simulation", "s", "", "simulation name to run")
	runCmd.Flags().StringP("params", "p", "", "parameters file (YAML)")
	runCmd.Flags().String("frames", "", "serve live frames on this address (overrides frames_addr)")
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	simName, err := selectSimulation(cmd)
	if err != nil {
		return fmt.Errorf("failed to select simulation: %w", err)
	}

	sim, err := simulation.DefaultRegistry.Get(simName)
	if err != nil {
		return fmt.Errorf("failed to get simulation: %w", err)
	}

	params, err := simulationParams(cmd, sim.Config())
	if err != nil {
		return fmt.Errorf("failed to get parameters: %w", err)
	}

	if err := sim.Configure(params); err != nil {
		return fmt.Errorf("failed to configure simulation: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Warnf("Failed to close backend: %v", err)
		}
	}()
	logger.Success("Using backend ", b.Description)

	journal := newJournal()
	if doc, err := b.Load(ctx); err == nil {
		journal.RegisterTeams(reconcile.Normalize(doc).Teams)
	}

	// Recalls arrive from render clients, which confirm on their side
	env := &simulation.Environment{
		Store:    b,
		Physics:  fleetCfg.Physics,
		Policy:   fleetCfg.Policy,
		Observer: journal,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
		case <-ctx.Done():
			return
		}
		logger.Warn("Received interrupt signal, stopping simulation...")
		if err := sim.Stop(); err != nil {
			logger.Errorf("Failed to stop simulation: %v", err)
			cancel()
		}
	}()

	logger.LogSection(fmt.Sprintf("Starting %s", sim.Name()))
	if err := sim.Run(ctx, env); err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	journal.PrintSummary()
	logger.Success("Simulation completed successfully")
	return nil
}

// simulationParams starts from the simulation's defaults, applies the
// --params file, prompts for the rest and finally applies --frames.
func simulationParams(cmd *cobra.Command, simConfig simulation.SimulationConfig) (map[string]interface{}, error) {
	params := simConfig.Defaults()

	if path, _ := cmd.Flags().GetString("params"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read parameters file: %w", err)
		}
		var fromFile map[string]interface{}
		if err := yaml.Unmarshal(data, &fromFile); err != nil {
			return nil, fmt.Errorf("failed to parse parameters file: %w", err)
		}
		for k, v := range fromFile {
			params[k] = v
		}
	} else {
		prompted, err := utils.PromptForParameters(simConfig.Parameters)
		if err != nil {
			return nil, err
		}
		for k, v := range prompted {
			params[k] = v
		}
	}

	if cmd.Flags().Changed("frames") {
		params["frames_addr"], _ = cmd.Flags().GetString("frames")
	}
	return params, nil
}

func selectSimulation(cmd *cobra.Command) (string, error) {
	// Check if simulation is specified via flag
	simName, _ := cmd.Flags().GetString("simulation")
	if simName != "" {
		return simName, nil
	}

	simInfos, err := utils.DiscoverSimulations(simulation.DefaultRegistry)
	if err != nil {
		return "", err
	}

	if len(simInfos) == 0 {
		return "", fmt.Errorf("no simulations found")
	}
	if err := requireInteractive("--simulation"); err != nil {
		return "", err
	}

	// Build options for selection
	options := make([]string, len(simInfos))
	descriptions := make(map[string]string)

	for i, info := range simInfos {
		options[i] = info.Name
		descriptions[info.Name] = info.Config.Description
	}

	// Interactive selection
	var selected string
	prompt := &survey.Select{
		Message: "Select simulation:",
		Options: options,
		Description: func(value string, index int) string {
			return descriptions[value]
		},
	}

	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}

	return selected, nil
}
