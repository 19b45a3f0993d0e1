package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/picogrid/brightfleet/pkg/hub"
	"github.com/picogrid/brightfleet/pkg/logger"
	"github.com/picogrid/brightfleet/pkg/models"
	"github.com/picogrid/brightfleet/pkg/server"
	"github.com/picogrid/brightfleet/pkg/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the persistence API",
	Long: `Serve GET /api/load and POST /api/save over a local SQLite database,
seeded with the demo fleet on first run, plus a WebSocket at /ws that
announces every save.`,
	RunE: serve,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().String("static", "", "directory of client files to serve at /")
}

func serve(cmd *cobra.Command, _ []string) error {
	cfg := server.Config{
		Addr:      fleetCfg.Server.Addr,
		APIKey:    fleetCfg.Backend.APIKey,
		StaticDir: fleetCfg.Server.StaticDir,
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Addr = addr
	}
	if static, _ := cmd.Flags().GetString("static"); static != "" {
		cfg.StaticDir = static
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.OpenSQLite(ctx, fleetCfg.Backend.Database, models.DemoDocument())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warnf("Failed to close database: %v", err)
		}
	}()

	logger.LogSection("BrightFleet Server")
	logger.LogKeyValue("Database", fleetCfg.Backend.Database)
	logger.LogKeyValue("Address", cfg.Addr)
	if cfg.APIKey != "" {
		logger.LogKeyValue("Auth", "API key required")
	}

	notices := hub.New(nil)
	srv := server.New(cfg, db, notices)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		notices.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return srv.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Success("Server stopped")
	return nil
}
