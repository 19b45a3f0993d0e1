package simulation

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/picogrid/brightfleet/pkg/fleet"
	"github.com/picogrid/brightfleet/pkg/hub"
	"github.com/picogrid/brightfleet/pkg/logger"
	"github.com/picogrid/brightfleet/pkg/reconcile"
	"github.com/picogrid/brightfleet/pkg/server"
	"github.com/picogrid/brightfleet/pkg/steering"
	"github.com/picogrid/brightfleet/pkg/store"
)

// SessionConfig configures a Session
type SessionConfig struct {
	Runner RunnerConfig
	// Seed for the shared random source; zero seeds from the clock.
	Seed int64
	// FramesAddr serves frames over websocket at /ws when set.
	FramesAddr string
	// SaveTimeout bounds each autosave write.
	SaveTimeout time.Duration
}

// Session wires a fleet, its physics, the autosaver and the frame hub into
// one runnable unit.
type Session struct {
	Fleet  *fleet.Fleet
	Engine *steering.Engine
	Loader *reconcile.Loader
	Saver  *store.AutoSaver
	Runner *Runner
	Hub    *hub.Hub

	cfg   SessionConfig
	store store.Store
	log   logger.Logger
}

// NewSession builds a session for env
func NewSession(cfg SessionConfig, env *Environment) (*Session, error) {
	if env == nil || env.Store == nil {
		return nil, fmt.Errorf("environment has no store")
	}
	if err := env.Physics.Validate(); err != nil {
		return nil, fmt.Errorf("invalid physics: %w", err)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	saver := store.NewAutoSaver(env.Store, cfg.SaveTimeout)
	f := fleet.New(fleet.Options{
		Policy:    env.Policy,
		Rand:      rand.New(rand.NewSource(seed)),
		Observer:  env.Observer,
		Saver:     saver,
		Confirmer: env.Confirmer,
	})
	engine := steering.NewEngine(env.Physics, nil)
	runner := NewRunner(cfg.Runner, f, engine)

	s := &Session{
		Fleet:  f,
		Engine: engine,
		Loader: reconcile.NewLoader(f),
		Saver:  saver,
		Runner: runner,
		cfg:    cfg,
		store:  env.Store,
		log:    logger.WithPrefix("session"),
	}
	if cfg.FramesAddr != "" {
		s.Hub = hub.New(runner.HandleMessage)
		runner.WithPublisher(s.Hub)
	}
	return s, nil
}

// Run loads the document and runs the tick loop until ctx is done or the
// runner stops, then flushes pending saves.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	saverCtx, stopSaver := context.WithCancel(context.Background())
	defer stopSaver()
	s.Saver.Start(saverCtx)

	if err := s.Loader.LoadFrom(ctx, s.store); err != nil {
		s.log.Warn("Starting from an empty fleet")
	}

	g, gctx := errgroup.WithContext(ctx)
	if s.Hub != nil {
		g.Go(func() error {
			s.Hub.Run(gctx)
			return nil
		})
		srv := server.New(server.Config{Addr: s.cfg.FramesAddr}, nil, s.Hub)
		g.Go(func() error {
			return srv.Run(gctx)
		})
	}
	g.Go(func() error {
		defer cancel()
		return s.Runner.Run(gctx)
	})
	err := g.Wait()

	s.Saver.Stop()
	flushCtx, flushCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer flushCancel()
	if ferr := s.Saver.Flush(flushCtx); ferr != nil {
		s.log.Errorf("Final save failed: %v", ferr)
		if err == nil {
			err = ferr
		}
	}
	return err
}

// Stop ends the tick loop; Run then returns after flushing
func (s *Session) Stop() {
	s.Runner.Stop()
}
