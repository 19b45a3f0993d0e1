package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/picogrid/brightfleet/pkg/fleet"
	"github.com/picogrid/brightfleet/pkg/logger"
	"github.com/picogrid/brightfleet/pkg/models"
	"github.com/picogrid/brightfleet/pkg/reconcile"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the fleet document as JSON",
	RunE:  exportFleet,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the fleet document with a JSON file",
	Long: `Import a previously exported document. Older schema versions are upgraded
on the way in; a file that cannot be parsed leaves the fleet unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: importFleet,
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "output file (default fleet_config_<date>.json)")
}

func exportFileName(now time.Time) string {
	return fmt.Sprintf("fleet_config_%s.json", now.Format("2006-01-02"))
}

func exportFleet(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		path = exportFileName(time.Now())
	}

	// Loading through the fleet gives legacy deployments their ids and saves
	// them, so the file and the store agree on what to recall.
	return oneShot(context.Background(), func(f *fleet.Fleet, _ *reconcile.Loader) error {
		if err := writeExport(path, f.Document()); err != nil {
			return err
		}
		logger.Successf("Exported fleet to %s", path)
		return nil
	})
}

func writeExport(path string, doc *models.Document) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := reconcile.Encode(out, doc); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func importFleet(_ *cobra.Command, args []string) error {
	path := args[0]
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer in.Close()

	// An unreadable store must not block replacing it
	return runOneShot(context.Background(), true, func(_ *fleet.Fleet, loader *reconcile.Loader) error {
		if err := loader.Import(in); err != nil {
			return fmt.Errorf("failed to import %s: %w", path, err)
		}
		logger.Successf("Imported fleet from %s", path)
		return nil
	})
}
