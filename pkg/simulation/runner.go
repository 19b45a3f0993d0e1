package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/picogrid/brightfleet/pkg/fleet"
	"github.com/picogrid/brightfleet/pkg/logger"
	"github.com/picogrid/brightfleet/pkg/steering"
)

// ErrRunnerStopped is returned by Do once the tick loop has exited.
var ErrRunnerStopped = errors.New("runner stopped")

// RunnerConfig controls the tick loop
type RunnerConfig struct {
	// TickRate is the number of physics ticks per second.
	TickRate int `yaml:"tick_rate"`
	// FrameEvery publishes a frame every N ticks.
	FrameEvery int `yaml:"frame_every"`
	// StatusInterval between status log lines; zero disables them.
	StatusInterval time.Duration `yaml:"status_interval"`
	// Duration stops the loop after this long; zero runs until cancelled.
	Duration time.Duration `yaml:"duration"`
}

// DefaultRunnerConfig runs at 60 ticks per second and publishes every other tick
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		TickRate:       60,
		FrameEvery:     2,
		StatusInterval: 10 * time.Second,
	}
}

// Validate checks the loop settings
func (c RunnerConfig) Validate() error {
	if c.TickRate < 1 || c.TickRate > 1000 {
		return fmt.Errorf("tick_rate must be between 1 and 1000")
	}
	if c.FrameEvery < 1 {
		return fmt.Errorf("frame_every must be at least 1")
	}
	if c.StatusInterval < 0 || c.Duration < 0 {
		return fmt.Errorf("intervals must not be negative")
	}
	return nil
}

// Publisher receives frames; the websocket hub implements it.
type Publisher interface {
	Broadcast(v interface{}) error
}

// Totals accumulates tick statistics over a run
type Totals struct {
	Ticks    uint64
	Docked   int
	Returned int
	Purged   int
	Frames   int
}

type action struct {
	fn   func(*fleet.Fleet) error
	done chan error
}

// Runner owns the fleet and advances it on a fixed tick. Every mutation from
// other goroutines goes through Do so the fleet stays single-threaded.
type Runner struct {
	cfg     RunnerConfig
	fleet   *fleet.Fleet
	engine  *steering.Engine
	pub     Publisher
	actions chan action
	log     logger.Logger

	stopChan chan struct{}
	stopOnce sync.Once
	exited   chan struct{}

	mu     sync.RWMutex
	totals Totals
}

// NewRunner creates a runner over f. Zero config fields take their defaults.
func NewRunner(cfg RunnerConfig, f *fleet.Fleet, engine *steering.Engine) *Runner {
	def := DefaultRunnerConfig()
	if cfg.TickRate == 0 {
		cfg.TickRate = def.TickRate
	}
	if cfg.FrameEvery == 0 {
		cfg.FrameEvery = def.FrameEvery
	}
	return &Runner{
		cfg:      cfg,
		fleet:    f,
		engine:   engine,
		actions:  make(chan action, 64),
		log:      logger.WithPrefix("runner"),
		stopChan: make(chan struct{}),
		exited:   make(chan struct{}),
	}
}

// WithPublisher sets where frames go
func (r *Runner) WithPublisher(pub Publisher) *Runner {
	r.pub = pub
	return r
}

// Fleet returns the fleet. Only safe to touch from inside Do.
func (r *Runner) Fleet() *fleet.Fleet { return r.fleet }

// Totals returns the statistics gathered so far
func (r *Runner) Totals() Totals {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.totals
}

// Run ticks until ctx is done, Stop is called or the configured duration elapses
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.exited)

	if r.cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Duration)
		defer cancel()
	}

	ticker := time.NewTicker(time.Second / time.Duration(r.cfg.TickRate))
	defer ticker.Stop()

	var statusC <-chan time.Time
	if r.cfg.StatusInterval > 0 {
		status := time.NewTicker(r.cfg.StatusInterval)
		defer status.Stop()
		statusC = status.C
	}

	r.log.Debugf("Ticking at %d Hz", r.cfg.TickRate)
	for {
		select {
		case <-ctx.Done():
			r.drain()
			return nil
		case <-r.stopChan:
			r.drain()
			return nil
		case a := <-r.actions:
			a.done <- a.fn(r.fleet)
		case <-ticker.C:
			r.Tick()
		case <-statusC:
			r.logStatus()
		}
	}
}

// Tick runs queued actions, advances the physics one step and publishes a
// frame when due. Run calls it; tests may call it directly instead of Run.
func (r *Runner) Tick() steering.Stats {
	r.runQueued()
	stats := r.engine.Step(r.fleet)

	r.mu.Lock()
	r.totals.Ticks = stats.Tick
	r.totals.Docked += stats.Docked
	r.totals.Returned += stats.Returned
	r.totals.Purged += stats.Purged
	r.mu.Unlock()

	if r.pub != nil && stats.Tick%uint64(r.cfg.FrameEvery) == 0 {
		if err := r.pub.Broadcast(Snapshot(r.fleet, stats.Tick)); err != nil {
			r.log.Warnf("Failed to publish frame: %v", err)
		} else {
			r.mu.Lock()
			r.totals.Frames++
			r.mu.Unlock()
		}
	}
	return stats
}

func (r *Runner) runQueued() {
	for {
		select {
		case a := <-r.actions:
			a.done <- a.fn(r.fleet)
		default:
			return
		}
	}
}

// drain fails whatever is still queued so callers of Do are not left waiting
func (r *Runner) drain() {
	for {
		select {
		case a := <-r.actions:
			a.done <- ErrRunnerStopped
		default:
			return
		}
	}
}

// Do runs fn on the simulation goroutine and returns its error
func (r *Runner) Do(ctx context.Context, fn func(*fleet.Fleet) error) error {
	a := action{fn: fn, done: make(chan error, 1)}
	select {
	case r.actions <- a:
	case <-r.exited:
		return ErrRunnerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-a.done:
		return err
	case <-r.exited:
		// Run may have answered just before exiting.
		select {
		case err := <-a.done:
			return err
		default:
			return ErrRunnerStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop ends the tick loop
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stopChan) })
}

func (r *Runner) logStatus() {
	counts := r.fleet.Ships().CountByState()
	r.log.WithFields(map[string]interface{}{
		"tick":      r.engine.Tick(),
		"sailing":   counts[fleet.Sailing],
		"docked":    counts[fleet.Docked],
		"returning": counts[fleet.Returning],
	}).Infof("%d ships at sea", r.fleet.Ships().Len())
}
