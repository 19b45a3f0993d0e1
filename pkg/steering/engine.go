// Package steering moves ships with summed steering forces: seek, orbit banding,
// separation and obstacle avoidance, integrated with damping and a speed limit.
package steering

import (
	"math"
	"math/rand"

	"github.com/picogrid/brightfleet/pkg/fleet"
	"github.com/picogrid/brightfleet/pkg/geom"
)

// Stats describes what happened during one tick.
type Stats struct {
	Tick     uint64
	Ships    int
	Purged   int
	Docked   int
	Returned int
}

// Engine advances a fleet one tick at a time.
type Engine struct {
	params    Params
	behaviors []Behavior
	rng       *rand.Rand
	tick      uint64
}

// NewEngine creates an engine with the default behaviors. A nil rng makes the
// engine share the fleet's random source, so one seed drives the whole run.
func NewEngine(params Params, rng *rand.Rand) *Engine {
	return &Engine{
		params:    params,
		behaviors: DefaultBehaviors(),
		rng:       rng,
	}
}

// WithBehaviors replaces the behavior list.
func (e *Engine) WithBehaviors(behaviors ...Behavior) *Engine {
	e.behaviors = behaviors
	return e
}

func (e *Engine) Params() Params { return e.params }
func (e *Engine) Tick() uint64   { return e.tick }

// Step purges removed ships and then updates every remaining ship in registry
// order. Each ship sees the positions already written earlier in the same tick.
func (e *Engine) Step(f *fleet.Fleet) Stats {
	e.tick++
	stats := Stats{Tick: e.tick}
	stats.Purged = f.Ships().Purge()

	rng := e.rng
	if rng == nil {
		rng = f.Rand()
	}
	ctx := &Context{Fleet: f, Params: e.params, Rand: rng, Stats: &stats}

	ships := f.Ships().Ships()
	stats.Ships = len(ships)
	for _, ship := range ships {
		ctx.StartState = ship.State

		var force geom.Vec2
		for _, b := range e.behaviors {
			force = force.Add(b.Force(ctx, ship))
		}
		e.integrate(ship, force)
	}
	return stats
}

func (e *Engine) integrate(ship *fleet.Ship, force geom.Vec2) {
	ship.Velocity = ship.Velocity.Add(force).Scale(e.params.Damping)
	ship.Velocity = ship.Velocity.ClampMagnitude(e.MaxSpeed(ship.State))
	ship.Position = ship.Position.Add(ship.Velocity)

	if math.Abs(ship.Velocity.X) > e.params.FacingDeadzone {
		ship.FacingLeft = ship.Velocity.X < 0
	}
}

// MaxSpeed is the speed limit for a ship in state.
func (e *Engine) MaxSpeed(state fleet.State) float64 {
	if state.Moving() {
		return e.params.MaxSpeed
	}
	return e.params.DockedSpeed
}
