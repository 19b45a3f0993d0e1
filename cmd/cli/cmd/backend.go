package cmd

import (
	"context"
	"fmt"

	"github.com/AlecAivazis/survey/v2"

	"github.com/picogrid/brightfleet/pkg/client"
	"github.com/picogrid/brightfleet/pkg/config"
	"github.com/picogrid/brightfleet/pkg/fleet"
	"github.com/picogrid/brightfleet/pkg/logger"
	"github.com/picogrid/brightfleet/pkg/models"
	"github.com/picogrid/brightfleet/pkg/reconcile"
	"github.com/picogrid/brightfleet/pkg/reporting"
	"github.com/picogrid/brightfleet/pkg/store"
	"github.com/picogrid/brightfleet/pkg/utils"
)

// backend is an opened persistence store
type backend struct {
	store.Store
	Description string
	close       func() error
}

func (b *backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// openBackend resolves where the fleet document lives: --url, --env, the
// selected environment, backend.url from the config, and finally the local
// SQLite database.
func openBackend(ctx context.Context) (*backend, error) {
	env, apiKey, err := selectEnvironment()
	if err != nil {
		return nil, fmt.Errorf("failed to select environment: %w", err)
	}

	if env != nil {
		fleetClient, err := client.NewFleetClient(env.URL, apiKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create fleet client: %w", err)
		}

		err = logger.WithSpinner(fmt.Sprintf("Connecting to %s", env.URL), func() error {
			return fleetClient.ValidateConnection(ctx)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", env.Name, err)
		}
		return &backend{Store: fleetClient, Description: fmt.Sprintf("%s (%s)", env.Name, env.URL)}, nil
	}

	db, err := store.OpenSQLite(ctx, fleetCfg.Backend.Database, models.DemoDocument())
	if err != nil {
		return nil, err
	}
	return &backend{Store: db, Description: fleetCfg.Backend.Database, close: db.Close}, nil
}

// selectEnvironment returns nil when the local database should be used
func selectEnvironment() (*config.Environment, string, error) {
	// Check if URL is provided via flag or environment variable
	if envURL != "" {
		return &config.Environment{Name: "Custom", URL: envURL}, fleetCfg.Backend.APIKey, nil
	}

	envs, err := config.LoadEnvironments()
	if err != nil {
		return nil, "", err
	}

	name := envName
	if name == "" {
		name = envs.Selected
	}
	if name != "" {
		env, ok := envs.Find(name)
		if !ok {
			return nil, "", fmt.Errorf("environment %s not found", name)
		}
		apiKey := client.GetAPIKey(env.APIKey)
		if apiKey == "" && env.APIKey != "" && utils.Interactive() {
			// Prompt for API key if env var is not set
			keyPrompt := &survey.Password{
				Message: fmt.Sprintf("Enter API key for %s:", env.Name),
			}
			if err := survey.AskOne(keyPrompt, &apiKey); err != nil {
				return nil, "", err
			}
		}
		return env, apiKey, nil
	}

	if fleetCfg.Backend.URL != "" {
		return &config.Environment{Name: "Configured", URL: fleetCfg.Backend.URL}, fleetCfg.Backend.APIKey, nil
	}
	return nil, "", nil
}

// newJournal creates the event journal configured by logging.quiet_events
func newJournal() *reporting.Journal {
	journal := reporting.NewJournal(nil)
	journal.SetQuiet(fleetCfg.Logging.QuietEvents)
	return journal
}

// confirmer returns the terminal confirmer when prompts are possible
func confirmer() fleet.Confirmer {
	if utils.Interactive() {
		return utils.SurveyConfirmer{}
	}
	return nil
}

// oneShot loads the fleet from the backend, runs fn on it and waits for the
// resulting saves. A backend that cannot be loaded aborts before fn runs so
// the stored document is never overwritten with an empty one.
func oneShot(ctx context.Context, fn func(f *fleet.Fleet, loader *reconcile.Loader) error) error {
	return runOneShot(ctx, false, fn)
}

// runOneShot is oneShot; when lenient is set an unreadable document is
// replaced by the empty one so fn can still write a good one.
func runOneShot(ctx context.Context, lenient bool, fn func(f *fleet.Fleet, loader *reconcile.Loader) error) error {
	b, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Warnf("Failed to close backend: %v", err)
		}
	}()
	logger.Debugf("Using backend %s", b.Description)

	doc, err := b.Load(ctx)
	if err != nil {
		if !lenient {
			return fmt.Errorf("failed to load fleet: %w", err)
		}
		logger.Warnf("Failed to load fleet, starting from an empty one: %v", err)
		doc = models.EmptyDocument()
	}

	journal := newJournal()
	saver := store.NewAutoSaver(b, fleetCfg.Backend.SaveTimeout)
	saver.Start(ctx)

	f := fleet.New(fleet.Options{
		Policy:    fleetCfg.Policy,
		Observer:  journal,
		Saver:     saver,
		Confirmer: confirmer(),
	})
	loader := reconcile.NewLoader(f)
	journal.SetQuiet(true)
	upgraded := loader.Load(doc)
	journal.SetQuiet(fleetCfg.Logging.QuietEvents)
	journal.RegisterTeams(f.Document().Teams)
	if upgraded > 0 {
		logger.Infof("Assigned ids to %d legacy deployments", upgraded)
		f.Persist()
	}

	fnErr := fn(f, loader)

	saver.Stop()
	if err := saver.Flush(ctx); err != nil {
		return fmt.Errorf("failed to save fleet: %w", err)
	}
	return fnErr
}

// requireInteractive fails commands that need an answer nobody can give
func requireInteractive(what string) error {
	if utils.Interactive() {
		return nil
	}
	return fmt.Errorf("%s must be given as a flag when not running in a terminal", what)
}
