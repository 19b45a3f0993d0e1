package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/picogrid/brightfleet/pkg/fleet"
	"github.com/picogrid/brightfleet/pkg/logger"
	"github.com/picogrid/brightfleet/pkg/reconcile"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show each team's deployments",
	RunE:  showStatus,
}

func showStatus(_ *cobra.Command, _ []string) error {
	return oneShot(context.Background(), func(f *fleet.Fleet, _ *reconcile.Loader) error {
		status := f.Status()
		if len(status) == 0 {
			logger.Info("No teams configured")
			return nil
		}

		table := logger.NewTable("TEAM", "DEPLOYED", "AVAILABLE", "SAILING", "DOCKED", "RETURNING")
		for _, team := range status {
			available := team.TotalShips - team.Deployed
			if available < 0 {
				available = 0
			}
			table.AddRow(
				team.TeamName,
				fmt.Sprintf("%d/%d", team.Deployed, team.TotalShips),
				fmt.Sprint(available),
				fmt.Sprint(team.Ships[fleet.Sailing]),
				fmt.Sprint(team.Ships[fleet.Docked]),
				fmt.Sprint(team.Ships[fleet.Returning]),
			)
		}
		table.Print()
		return nil
	})
}
