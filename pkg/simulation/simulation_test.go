package simulation

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/picogrid/brightfleet/pkg/fleet"
	"github.com/picogrid/brightfleet/pkg/models"
	"github.com/picogrid/brightfleet/pkg/reconcile"
	"github.com/picogrid/brightfleet/pkg/steering"
	"github.com/picogrid/brightfleet/pkg/store"
)

type recordingPublisher struct {
	mu       sync.Mutex
	frames   []Frame
	errors   []ErrorMessage
	failNext bool
}

func (p *recordingPublisher) Broadcast(v interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failNext {
		p.failNext = false
		return errors.New("no listeners")
	}
	switch msg := v.(type) {
	case Frame:
		p.frames = append(p.frames, msg)
	case ErrorMessage:
		p.errors = append(p.errors, msg)
	}
	return nil
}

func (p *recordingPublisher) errorCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.errors)
}

func newDemoRunner(t *testing.T, cfg RunnerConfig) (*Runner, *recordingPublisher) {
	t.Helper()
	f := fleet.New(fleet.Options{Policy: fleet.DefaultPolicy(), Rand: rand.New(rand.NewSource(7))})
	reconcile.NewLoader(f).Load(models.DemoDocument())
	pub := &recordingPublisher{}
	r := NewRunner(cfg, f, steering.NewEngine(steering.DefaultParams(), nil)).WithPublisher(pub)
	return r, pub
}

func startRunner(t *testing.T, r *Runner) func() {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()
	return func() {
		r.Stop()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run returned %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("Runner did not stop")
		}
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	factory := func() Simulation { return nil }

	if err := reg.Register("Zulu", factory); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := reg.Register("Alpha", factory); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := reg.Register("Alpha", factory); err == nil {
		t.Error("Expected duplicate registration to fail")
	}
	if _, err := reg.Get("Missing"); err == nil {
		t.Error("Expected unknown simulation to fail")
	}

	names := reg.List()
	if len(names) != 2 || names[0] != "Alpha" || names[1] != "Zulu" {
		t.Errorf("Expected sorted names, got %v", names)
	}
}

func TestParseConfig(t *testing.T) {
	data := []byte(`
name: "Fleet Test"
description: "test"
version: "1.0.0"
parameters:
  - name: tick_rate
    type: integer
    default: 30
  - name: duration
    type: duration
    default: "2m"
  - name: frames_addr
    type: string
`)
	cfg, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	if cfg.Name != "Fleet Test" || len(cfg.Parameters) != 3 {
		t.Fatalf("Unexpected config: %+v", cfg)
	}

	defaults := cfg.Defaults()
	if _, ok := defaults["frames_addr"]; ok {
		t.Error("Parameters without defaults must be left out")
	}
	rate, err := IntParam(defaults, "tick_rate", 60)
	if err != nil || rate != 30 {
		t.Errorf("tick_rate = %d, %v", rate, err)
	}
	d, err := DurationParam(defaults, "duration", 0)
	if err != nil || d != 2*time.Minute {
		t.Errorf("duration = %v, %v", d, err)
	}

	if _, err := ParseConfig([]byte("description: nameless")); err == nil {
		t.Error("Expected config without a name to fail")
	}
}

func TestParamHelpers(t *testing.T) {
	params := map[string]interface{}{
		"int_str":   "12",
		"float":     2.5,
		"seconds":   3,
		"bad_int":   "twelve",
		"bad_dur":   "soon",
		"dur_value": 90 * time.Second,
	}

	tests := []struct {
		name string
		run  func() (interface{}, error)
		want interface{}
		err  bool
	}{
		{"int from string", func() (interface{}, error) { return IntParam(params, "int_str", 0) }, 12, false},
		{"int default", func() (interface{}, error) { return IntParam(params, "missing", 5) }, 5, false},
		{"int invalid", func() (interface{}, error) { return IntParam(params, "bad_int", 0) }, 0, true},
		{"float", func() (interface{}, error) { return FloatParam(params, "float", 0) }, 2.5, false},
		{"float from int", func() (interface{}, error) { return FloatParam(params, "seconds", 0) }, 3.0, false},
		{"duration from seconds", func() (interface{}, error) { return DurationParam(params, "seconds", 0) }, 3 * time.Second, false},
		{"duration value", func() (interface{}, error) { return DurationParam(params, "dur_value", 0) }, 90 * time.Second, false},
		{"duration invalid", func() (interface{}, error) { return DurationParam(params, "bad_dur", 0) }, time.Duration(0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.run()
			if tt.err {
				if err == nil {
					t.Errorf("Expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Got %v, want %v", got, tt.want)
			}
		})
	}

	if s := StringParam(params, "float", ""); s != "2.5" {
		t.Errorf("StringParam = %q", s)
	}
}

func TestRunnerConfigValidate(t *testing.T) {
	if err := DefaultRunnerConfig().Validate(); err != nil {
		t.Errorf("Default config invalid: %v", err)
	}
	bad := []RunnerConfig{
		{TickRate: 0, FrameEvery: 1},
		{TickRate: 5000, FrameEvery: 1},
		{TickRate: 60, FrameEvery: 0},
		{TickRate: 60, FrameEvery: 1, Duration: -time.Second},
	}
	for _, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Errorf("Expected %+v to be rejected", cfg)
		}
	}
}

func TestRunnerTickPublishesFrames(t *testing.T) {
	r, pub := newDemoRunner(t, RunnerConfig{TickRate: 60, FrameEvery: 2})

	for i := 0; i < 4; i++ {
		r.Tick()
	}

	if len(pub.frames) != 2 {
		t.Fatalf("Expected 2 frames, got %d", len(pub.frames))
	}
	frame := pub.frames[1]
	if frame.Type != FrameType || frame.Tick != 4 {
		t.Errorf("Unexpected frame header: %s tick %d", frame.Type, frame.Tick)
	}
	if len(frame.Ships) != 4 {
		t.Fatalf("Expected the 4 demo deployments, got %d ships", len(frame.Ships))
	}
	for _, s := range frame.Ships {
		if s.State != fleet.Docked || s.DeploymentID == "" {
			t.Errorf("Rebuilt ship should be docked with an id: %+v", s)
		}
	}

	totals := r.Totals()
	if totals.Ticks != 4 || totals.Frames != 2 {
		t.Errorf("Unexpected totals: %+v", totals)
	}
}

func TestRunnerPublishFailureIsNotCounted(t *testing.T) {
	r, pub := newDemoRunner(t, RunnerConfig{TickRate: 60, FrameEvery: 1})
	pub.failNext = true

	r.Tick()
	r.Tick()

	if got := r.Totals().Frames; got != 1 {
		t.Errorf("Expected 1 published frame, got %d", got)
	}
}

func TestRunnerDo(t *testing.T) {
	r, _ := newDemoRunner(t, RunnerConfig{TickRate: 1, FrameEvery: 1})
	stop := startRunner(t, r)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var ships int
	err := r.Do(ctx, func(f *fleet.Fleet) error {
		if _, err := f.Assign("t3", "p2", []string{"k2_1"}); err != nil {
			return err
		}
		ships = f.Ships().Len()
		return nil
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if ships != 5 {
		t.Errorf("Expected 5 ships after deploy, got %d", ships)
	}

	wantErr := errors.New("boom")
	if err := r.Do(ctx, func(*fleet.Fleet) error { return wantErr }); !errors.Is(err, wantErr) {
		t.Errorf("Expected action error, got %v", err)
	}

	stop()
	if err := r.Do(ctx, func(*fleet.Fleet) error { return nil }); !errors.Is(err, ErrRunnerStopped) {
		t.Errorf("Expected ErrRunnerStopped after stop, got %v", err)
	}
}

func TestRunnerStopsAfterDuration(t *testing.T) {
	r, _ := newDemoRunner(t, RunnerConfig{TickRate: 200, FrameEvery: 1, Duration: 50 * time.Millisecond})

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Runner ignored its duration")
	}
	if r.Totals().Ticks == 0 {
		t.Error("Expected at least one tick")
	}
}

func TestHandleMessage(t *testing.T) {
	r, pub := newDemoRunner(t, RunnerConfig{TickRate: 1, FrameEvery: 1000})
	stop := startRunner(t, r)
	defer stop()

	r.HandleMessage([]byte(`{"type":"deploy","teamId":"t3","islandId":"p3","kpiIds":["k3_2"]}`))
	r.HandleMessage([]byte(`{"type":"recall","deploymentId":"dep_t1_1"}`))
	r.HandleMessage([]byte(`{"type":"viewport","x":500,"y":0,"zoom":2,"width":800,"height":600}`))
	r.HandleMessage([]byte(`{"type":"warp"}`))
	r.HandleMessage([]byte(`{"type":"recall","deploymentId":"missing"}`))
	r.HandleMessage([]byte(`not json`))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var deployed, returning int
	var view fleet.Viewport
	err := r.Do(ctx, func(f *fleet.Fleet) error {
		deployed = len(f.Document().FindTeam("t3").Deployed)
		returning = f.Ships().CountByState()[fleet.Returning]
		view = f.Viewport()
		return nil
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	if deployed != 1 {
		t.Errorf("Expected deploy message to create a deployment, got %d", deployed)
	}
	if returning != 1 {
		t.Errorf("Expected recall message to turn one ship around, got %d", returning)
	}
	if view.X != 500 || view.Zoom != 2 {
		t.Errorf("Viewport not applied: %+v", view)
	}
	if got := pub.errorCount(); got != 2 {
		t.Errorf("Expected 2 error replies, got %d", got)
	}
}

func TestSessionRunFlushesOnStop(t *testing.T) {
	mem := store.NewMemory(models.DemoDocument())
	env := &Environment{
		Store:   mem,
		Physics: steering.DefaultParams(),
		Policy:  fleet.DefaultPolicy(),
	}
	s, err := NewSession(SessionConfig{Runner: RunnerConfig{TickRate: 200, FrameEvery: 1}, Seed: 3}, env)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	go func() {
		err := s.Runner.Do(ctx, func(f *fleet.Fleet) error {
			_, err := f.Assign("t6", "p4", nil)
			return err
		})
		if err != nil {
			t.Errorf("Deploy failed: %v", err)
		}
		s.Stop()
	}()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	doc, err := mem.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	team := doc.FindTeam("t6")
	if team == nil || len(team.Deployed) != 1 || team.Deployed[0].IslandID != "p4" {
		t.Errorf("Deployment was not saved: %+v", team)
	}
}

func TestNewSessionValidates(t *testing.T) {
	if _, err := NewSession(SessionConfig{}, &Environment{Physics: steering.DefaultParams()}); err == nil {
		t.Error("Expected missing store to fail")
	}
	bad := steering.DefaultParams()
	bad.Damping = 0
	if _, err := NewSession(SessionConfig{}, &Environment{Store: store.NewMemory(nil), Physics: bad}); err == nil {
		t.Error("Expected invalid physics to fail")
	}
}
