package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/picogrid/brightfleet/pkg/fleet"
	"github.com/picogrid/brightfleet/pkg/logger"
	"github.com/picogrid/brightfleet/pkg/reconcile"
	"github.com/picogrid/brightfleet/pkg/utils"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy a team's ship to an objective",
	Long: `Deploy one more ship of a team to an island, optionally scoped to some
of the island's KPIs. Missing flags are asked for interactively.`,
	RunE: deploy,
}

var recallCmd = &cobra.Command{
	Use:   "recall",
	Short: "Recall a deployed ship to HQ",
	Long: `Recall exactly one deployment, leaving the team's other deployments to
the same objective in place.`,
	RunE: recall,
}

func init() {
	deployCmd.Flags().StringP("team", "t", "", "team id")
	deployCmd.Flags().StringP("island", "i", "", "island id")
	deployCmd.Flags().StringSliceP("kpis", "k", nil, "KPI ids to target (comma separated)")

	recallCmd.Flags().StringP("deployment", "d", "", "deployment id")
}

func deploy(cmd *cobra.Command, _ []string) error {
	teamID, _ := cmd.Flags().GetString("team")
	islandID, _ := cmd.Flags().GetString("island")
	kpiIDs, _ := cmd.Flags().GetStringSlice("kpis")
	askKPIs := !cmd.Flags().Changed("kpis")

	return oneShot(context.Background(), func(f *fleet.Fleet, _ *reconcile.Loader) error {
		doc := f.Document()

		if teamID == "" {
			if err := requireInteractive("--team"); err != nil {
				return err
			}
			team, err := utils.SelectTeam(doc)
			if err != nil {
				return err
			}
			teamID = team.ID
		}
		if islandID == "" {
			if err := requireInteractive("--island"); err != nil {
				return err
			}
			island, err := utils.SelectIsland(doc)
			if err != nil {
				return err
			}
			islandID = island.ID
		}
		if askKPIs && utils.Interactive() {
			if island := doc.FindIsland(islandID); island != nil {
				ids, err := utils.SelectKPIs(island)
				if err != nil {
					return err
				}
				kpiIDs = ids
			}
		}

		d, err := f.Assign(teamID, islandID, kpiIDs)
		if err != nil {
			if errors.Is(err, fleet.ErrCapacityExceeded) {
				return fmt.Errorf("%w; recall a ship first", err)
			}
			return fmt.Errorf("failed to deploy: %w", err)
		}
		logger.Successf("Deployment %s created", d.DeploymentID)
		return nil
	})
}

func recall(cmd *cobra.Command, _ []string) error {
	deploymentID, _ := cmd.Flags().GetString("deployment")

	return oneShot(context.Background(), func(f *fleet.Fleet, _ *reconcile.Loader) error {
		if deploymentID == "" {
			if err := requireInteractive("--deployment"); err != nil {
				return err
			}
			id, err := utils.SelectDeployment(f.Document())
			if err != nil {
				return err
			}
			deploymentID = id
		}

		if err := f.RecallDeployment(deploymentID); err != nil {
			if errors.Is(err, fleet.ErrRecallDeclined) {
				logger.Info("Recall cancelled")
				return nil
			}
			return fmt.Errorf("failed to recall: %w", err)
		}
		logger.Successf("Deployment %s recalled", deploymentID)
		return nil
	})
}
