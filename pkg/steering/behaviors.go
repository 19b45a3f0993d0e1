package steering

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/picogrid/brightfleet/pkg/fleet"
	"github.com/picogrid/brightfleet/pkg/geom"
)

// Context is what a behavior can see while computing a ship's force.
type Context struct {
	Fleet  *fleet.Fleet
	Params Params
	Rand   *rand.Rand
	Stats  *Stats
	// StartState is the steered ship's state before this tick's behaviors ran.
	StartState fleet.State
}

// Behavior contributes one steering force to a ship for the current tick.
type Behavior interface {
	Name() string
	Force(ctx *Context, ship *fleet.Ship) geom.Vec2
}

// DefaultBehaviors returns the behaviors in the order their forces are summed.
func DefaultBehaviors() []Behavior {
	return []Behavior{
		SeekBehavior{},
		OrbitBehavior{},
		SeparationBehavior{},
		IslandAvoidBehavior{},
		GoalAvoidBehavior{},
	}
}

// SeekBehavior pulls sailing ships to their island and returning ships to HQ.
// It also performs the arrival transitions, so it may change ship.State.
type SeekBehavior struct{}

func (SeekBehavior) Name() string { return "seek" }

func (SeekBehavior) Force(ctx *Context, ship *fleet.Ship) geom.Vec2 {
	if !ship.State.Moving() {
		return geom.Vec2{}
	}

	p := ctx.Params
	var target geom.Vec2
	threshold := p.HQArrival
	if ship.State == fleet.Returning {
		target = ctx.Fleet.HQ(ship.Position.Y, p.HQOffset)
	} else {
		island := ctx.Fleet.Document().FindIsland(ship.TargetID)
		if island == nil {
			return geom.Vec2{}
		}
		target = geom.Vec2{X: island.X, Y: island.Y}
		threshold = p.DockThreshold()
	}

	delta := target.Subtract(ship.Position)
	dist := delta.Magnitude()
	if dist < threshold {
		arrive(ctx, ship)
		return geom.Vec2{}
	}
	if dist > 0.1 {
		return delta.Scale(p.SeekForce / dist)
	}
	return geom.Vec2{}
}

func arrive(ctx *Context, ship *fleet.Ship) {
	if ship.State == fleet.Returning {
		if ship.Transition(fleet.Removed) == nil {
			ctx.Stats.Returned++
			ctx.Fleet.Emit(fleet.Event{
				Type:         fleet.EventReturned,
				TeamID:       ship.TeamID,
				TeamName:     ship.TeamName,
				IslandID:     ship.TargetID,
				DeploymentID: ship.DeploymentID,
				Message:      fmt.Sprintf("%s returned to HQ", ship.TeamName),
			})
		}
		return
	}
	if ship.Transition(fleet.Docked) == nil {
		ship.Velocity = ship.Velocity.Scale(ctx.Params.DockDamp)
		ctx.Stats.Docked++
		ctx.Fleet.Emit(fleet.Event{
			Type:         fleet.EventArrived,
			TeamID:       ship.TeamID,
			TeamName:     ship.TeamName,
			IslandID:     ship.TargetID,
			DeploymentID: ship.DeploymentID,
			Message:      fmt.Sprintf("%s arrived at objective", ship.TeamName),
		})
	}
}

// OrbitBehavior keeps docked ships circling clockwise inside the orbit band.
type OrbitBehavior struct{}

func (OrbitBehavior) Name() string { return "orbit" }

func (OrbitBehavior) Force(ctx *Context, ship *fleet.Ship) geom.Vec2 {
	if ctx.StartState != fleet.Docked || ship.State != fleet.Docked {
		return geom.Vec2{}
	}
	island := ctx.Fleet.Document().FindIsland(ship.TargetID)
	if island == nil {
		return geom.Vec2{}
	}

	p := ctx.Params
	offset := ship.Position.Subtract(geom.Vec2{X: island.X, Y: island.Y})
	dist := offset.Magnitude()

	var force geom.Vec2
	if dist > 0.1 {
		radial := offset.Scale(1 / dist)
		switch {
		case dist < p.MinOrbit:
			force = force.Add(radial.Scale((p.MinOrbit - dist) * p.OrbitOutK))
		case dist > p.MaxOrbit:
			force = force.Subtract(radial.Scale((dist - p.MaxOrbit) * p.OrbitInK))
		}
		force = force.Add(geom.Vec2{X: -radial.Y, Y: radial.X}.Scale(p.TangentialK))
	} else {
		// sitting on the anchor: kick it off in a random direction
		force = force.Add(jitter(ctx.Rand, p.Impulse))
	}
	return force.Add(jitter(ctx.Rand, p.Wander))
}

// jitter returns a vector with each axis uniform in [-amp/2, amp/2).
func jitter(rng *rand.Rand, amp float64) geom.Vec2 {
	return geom.Vec2{X: (rng.Float64() - 0.5) * amp, Y: (rng.Float64() - 0.5) * amp}
}

// SeparationBehavior pushes ships apart when they crowd within SeparationRadius.
type SeparationBehavior struct{}

func (SeparationBehavior) Name() string { return "separation" }

func (SeparationBehavior) Force(ctx *Context, ship *fleet.Ship) geom.Vec2 {
	p := ctx.Params
	var force geom.Vec2
	for _, other := range ctx.Fleet.Ships().Ships() {
		if other == ship {
			continue
		}
		offset := ship.Position.Subtract(other.Position)
		distSq := offset.LengthSq()
		if distSq <= 0.1 || distSq >= p.SeparationRadius*p.SeparationRadius {
			continue
		}
		force = force.Add(repel(offset, distSq, p.SeparationRadius, p.SeparationK))
	}
	return force
}

// IslandAvoidBehavior steers ships around islands, except the one a sailing ship is heading for.
type IslandAvoidBehavior struct{}

func (IslandAvoidBehavior) Name() string { return "island_avoid" }

func (IslandAvoidBehavior) Force(ctx *Context, ship *fleet.Ship) geom.Vec2 {
	p := ctx.Params
	var force geom.Vec2
	for _, island := range ctx.Fleet.Document().Islands {
		if ship.State == fleet.Sailing && island.ID == ship.TargetID {
			continue
		}
		offset := ship.Position.Subtract(geom.Vec2{X: island.X, Y: island.Y})
		distSq := offset.LengthSq()
		if distSq == 0 || distSq >= p.IslandAvoidRad*p.IslandAvoidRad {
			continue
		}
		force = force.Add(repel(offset, distSq, p.IslandAvoidRad, p.IslandAvoidK))
	}
	return force
}

// GoalAvoidBehavior steers ships around main goals.
type GoalAvoidBehavior struct{}

func (GoalAvoidBehavior) Name() string { return "goal_avoid" }

func (GoalAvoidBehavior) Force(ctx *Context, ship *fleet.Ship) geom.Vec2 {
	p := ctx.Params
	var force geom.Vec2
	for _, goal := range ctx.Fleet.Document().MainGoals {
		offset := ship.Position.Subtract(geom.Vec2{X: goal.X, Y: goal.Y})
		distSq := offset.LengthSq()
		if distSq == 0 || distSq >= p.GoalAvoidRad*p.GoalAvoidRad {
			continue
		}
		force = force.Add(repel(offset, distSq, p.GoalAvoidRad, p.GoalAvoidK))
	}
	return force
}

// repel is a linear falloff push along offset, strongest at the center.
func repel(offset geom.Vec2, distSq, radius, k float64) geom.Vec2 {
	dist := math.Sqrt(distSq)
	return offset.Scale((radius - dist) * k / dist)
}
