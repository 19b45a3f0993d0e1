package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/picogrid/brightfleet/pkg/config"
	"github.com/picogrid/brightfleet/pkg/logger"
)

var (
	cfgFile  string
	envName  string
	envURL   string
	dbPath   string
	logLevel string
	noColor  bool

	// fleetCfg is loaded before any command runs
	fleetCfg *config.FleetConfig
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "brightfleet",
	Short: "Fleet deployment simulation CLI",
	Long: `BrightFleet deploys teams as ships toward objectives, simulates their
movement with steering forces and keeps the fleet document in sync with
a persistence backend.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.brightfleet/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "backend environment name to use")
	rootCmd.PersistentFlags().StringVar(&envURL, "url", "", "backend URL (overrides environment)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "local SQLite database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Add commands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(recallCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(envCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig finds the config file with viper, loads it over the defaults,
// applies FLEET_* overrides and finally the command line flags.
func loadConfig(cmd *cobra.Command, _ []string) error {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in home directory
		viper.AddConfigPath(config.ConfigDir())
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}
	viper.SetEnvPrefix("FLEET")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	path := filepath.Join(config.ConfigDir(), "config.yaml")
	if err := viper.ReadInConfig(); err == nil {
		path = viper.ConfigFileUsed()
	} else if cfgFile != "" {
		return fmt.Errorf("failed to read config %s: %w", cfgFile, err)
	}

	cfg, err := config.LoadConfigOrDefault(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("no-color") {
		cfg.Logging.NoColor = noColor
	}
	if flags.Changed("db") {
		cfg.Backend.Database = dbPath
	}
	// FLEET_URL is the short form of FLEET_BACKEND_URL
	if envURL == "" {
		envURL = viper.GetString("url")
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetNoColor(cfg.Logging.NoColor)

	fleetCfg = cfg
	return nil
}
