package steering

import (
	"math"
	"math/rand"
	"testing"

	"github.com/picogrid/brightfleet/pkg/fleet"
	"github.com/picogrid/brightfleet/pkg/geom"
	"github.com/picogrid/brightfleet/pkg/models"
)

func newWorld(t *testing.T, seed int64, islands ...*models.Island) (*fleet.Fleet, *[]fleet.Event) {
	t.Helper()
	events := &[]fleet.Event{}
	f := fleet.New(fleet.Options{
		Rand:     rand.New(rand.NewSource(seed)),
		Observer: fleet.ObserverFunc(func(e fleet.Event) { *events = append(*events, e) }),
	})
	doc := models.EmptyDocument()
	doc.Islands = islands
	f.SetDocument(doc)
	return f, events
}

func TestOrbitConvergence(t *testing.T) {
	f, _ := newWorld(t, 1, &models.Island{ID: "i1", X: 0, Y: 0})
	ship := &fleet.Ship{TeamID: "t1", TargetID: "i1", Position: geom.Vec2{X: 50, Y: 0}, State: fleet.Docked}
	f.Ships().Add(ship)

	params := DefaultParams()
	engine := NewEngine(params, nil)
	// The constant tangential push settles the orbit against the outer edge,
	// up to about one unit beyond MaxOrbit.
	const overshoot = 1.0
	for i := 0; i < 4000; i++ {
		engine.Step(f)
		if i < 2000 {
			continue
		}
		d := ship.Position.Magnitude()
		if d < params.MinOrbit || d > params.MaxOrbit+overshoot {
			t.Fatalf("tick %d: orbit distance %.2f outside [%.0f, %.0f]", i, d, params.MinOrbit, params.MaxOrbit+overshoot)
		}
	}
	if ship.State != fleet.Docked {
		t.Errorf("Expected ship to stay DOCKED, got %s", ship.State)
	}
}

func TestSailingShipDocks(t *testing.T) {
	f, events := newWorld(t, 2, &models.Island{ID: "i1", X: 0, Y: 0})
	ship := &fleet.Ship{TeamID: "t1", TeamName: "Ops", TargetID: "i1", Position: geom.Vec2{X: -400, Y: 30}, State: fleet.Sailing}
	f.Ships().Add(ship)

	engine := NewEngine(DefaultParams(), nil)
	for i := 0; i < 2000 && ship.State == fleet.Sailing; i++ {
		engine.Step(f)
	}
	if ship.State != fleet.Docked {
		t.Fatalf("Expected DOCKED, got %s", ship.State)
	}
	if d := ship.Position.Magnitude(); d > 105+engine.MaxSpeed(fleet.Docked) {
		t.Errorf("Docked too far out: %.2f", d)
	}
	if ship.Speed() > DefaultParams().DockedSpeed+1e-9 {
		t.Errorf("Docked ship exceeds docked speed: %.3f", ship.Speed())
	}
	if len(*events) != 1 || (*events)[0].Type != fleet.EventArrived {
		t.Errorf("Expected one arrived event, got %+v", *events)
	}
}

func TestReturningShipRemovedThenPurged(t *testing.T) {
	f, events := newWorld(t, 3)
	hq := f.HQ(50, DefaultParams().HQOffset)
	ship := &fleet.Ship{TeamID: "t1", Position: geom.Vec2{X: hq.X + 7, Y: 50}, State: fleet.Returning}
	f.Ships().Add(ship)

	engine := NewEngine(DefaultParams(), nil)
	stats := engine.Step(f)
	if ship.State != fleet.Removed {
		t.Fatalf("Expected REMOVED, got %s", ship.State)
	}
	if stats.Returned != 1 {
		t.Errorf("Expected 1 returned, got %d", stats.Returned)
	}
	if f.Ships().Len() != 1 {
		t.Errorf("Removed ship should stay until the next tick")
	}

	stats = engine.Step(f)
	if stats.Purged != 1 || f.Ships().Len() != 0 {
		t.Errorf("Expected ship purged, got %d purged, %d left", stats.Purged, f.Ships().Len())
	}
	if len(*events) != 1 || (*events)[0].Type != fleet.EventReturned {
		t.Errorf("Expected one returned event, got %+v", *events)
	}
}

func TestReturningShipHeadsLeft(t *testing.T) {
	f, _ := newWorld(t, 4)
	ship := &fleet.Ship{TeamID: "t1", Position: geom.Vec2{X: 300, Y: 0}, State: fleet.Returning}
	f.Ships().Add(ship)

	engine := NewEngine(DefaultParams(), nil)
	for i := 0; i < 10; i++ {
		engine.Step(f)
	}
	if ship.Position.X >= 300 || !ship.FacingLeft {
		t.Errorf("Expected ship moving left, at %.1f facingLeft=%v", ship.Position.X, ship.FacingLeft)
	}
	if ship.Position.Y != 0 {
		t.Errorf("HQ is level with the ship, y drifted to %.3f", ship.Position.Y)
	}
}

func TestSpeedClampEveryTick(t *testing.T) {
	f, _ := newWorld(t, 5,
		&models.Island{ID: "i1", X: 0, Y: 0},
		&models.Island{ID: "i2", X: 150, Y: 40},
	)
	f.Document().MainGoals = []*models.MainGoal{{ID: "mg1", X: 60, Y: -60}}

	rng := rand.New(rand.NewSource(9))
	states := []fleet.State{fleet.Sailing, fleet.Docked, fleet.Returning}
	for i := 0; i < 30; i++ {
		f.Ships().Add(&fleet.Ship{
			TeamID:   "t1",
			TargetID: []string{"i1", "i2"}[i%2],
			Position: geom.Vec2{X: rng.Float64()*200 - 50, Y: rng.Float64()*200 - 100},
			Velocity: geom.Vec2{X: rng.Float64()*40 - 20, Y: rng.Float64()*40 - 20},
			State:    states[i%len(states)],
		})
	}

	engine := NewEngine(DefaultParams(), nil)
	for tick := 0; tick < 300; tick++ {
		engine.Step(f)
		for _, s := range f.Ships().Ships() {
			if limit := engine.MaxSpeed(s.State); s.Speed() > limit+1e-9 {
				t.Fatalf("tick %d: %s ship speed %.3f exceeds %.1f", tick, s.State, s.Speed(), limit)
			}
		}
	}
}

func TestFacingDeadzone(t *testing.T) {
	f, _ := newWorld(t, 6)
	ship := &fleet.Ship{Velocity: geom.Vec2{X: -1}, State: fleet.Docked}
	f.Ships().Add(ship)

	engine := NewEngine(DefaultParams(), nil).WithBehaviors()
	engine.Step(f)
	if !ship.FacingLeft {
		t.Fatal("Expected ship facing left")
	}

	ship.Velocity = geom.Vec2{X: 0.04}
	engine.Step(f)
	if !ship.FacingLeft {
		t.Error("Facing must not flip inside the deadzone")
	}

	ship.Velocity = geom.Vec2{X: 1}
	engine.Step(f)
	if ship.FacingLeft {
		t.Error("Expected ship facing right")
	}
}

func TestSeparationPushesApart(t *testing.T) {
	f, _ := newWorld(t, 7)
	a := &fleet.Ship{Position: geom.Vec2{X: 0}, State: fleet.Docked}
	b := &fleet.Ship{Position: geom.Vec2{X: 10}, State: fleet.Docked}
	f.Ships().Add(a)
	f.Ships().Add(b)

	engine := NewEngine(DefaultParams(), nil).WithBehaviors(SeparationBehavior{})
	engine.Step(f)
	if d := a.Position.DistanceTo(b.Position); d <= 10 {
		t.Errorf("Expected ships to separate, distance %.2f", d)
	}
	if a.Position.X >= 0 || b.Position.X <= 10 {
		t.Errorf("Ships pushed the wrong way: a=%.2f b=%.2f", a.Position.X, b.Position.X)
	}
}

func TestIslandAvoidance(t *testing.T) {
	f, _ := newWorld(t, 8, &models.Island{ID: "i1", X: 0, Y: 0})
	ctx := &Context{Fleet: f, Params: DefaultParams(), Rand: f.Rand(), Stats: &Stats{}}

	sailing := &fleet.Ship{TargetID: "i1", Position: geom.Vec2{X: 50}, State: fleet.Sailing}
	if force := (IslandAvoidBehavior{}).Force(ctx, sailing); force != (geom.Vec2{}) {
		t.Errorf("Sailing ship must approach its own island freely, got %+v", force)
	}

	passing := &fleet.Ship{TargetID: "other", Position: geom.Vec2{X: 50}, State: fleet.Sailing}
	force := (IslandAvoidBehavior{}).Force(ctx, passing)
	if math.Abs(force.X-(85-50)*0.25) > 1e-9 || force.Y != 0 {
		t.Errorf("Unexpected avoidance force %+v", force)
	}

	centered := &fleet.Ship{TargetID: "other", State: fleet.Returning}
	if force := (IslandAvoidBehavior{}).Force(ctx, centered); force != (geom.Vec2{}) {
		t.Errorf("Expected no force at the exact center, got %+v", force)
	}
}

func TestSeekMissingIsland(t *testing.T) {
	f, _ := newWorld(t, 9)
	ship := &fleet.Ship{TargetID: "gone", Position: geom.Vec2{X: 10, Y: 10}, State: fleet.Sailing}
	f.Ships().Add(ship)

	NewEngine(DefaultParams(), nil).Step(f)
	if ship.State != fleet.Sailing || ship.Position != (geom.Vec2{X: 10, Y: 10}) {
		t.Errorf("Ship with a missing target should idle, got %s at %+v", ship.State, ship.Position)
	}
}

func TestParamsValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("Default params invalid: %v", err)
	}

	bad := DefaultParams()
	bad.MaxOrbit = 90
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for inverted orbit band")
	}

	bad = DefaultParams()
	bad.Damping = 1.5
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for damping above 1")
	}
}
