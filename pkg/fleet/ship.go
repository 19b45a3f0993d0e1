package fleet

import (
	"fmt"

	"github.com/picogrid/brightfleet/pkg/geom"
)

// Ship is the simulation-only representation of one deployment.
// Ships are derived from team deployments and never persisted.
type Ship struct {
	TeamID   string
	TeamName string
	// Island the ship sails to or orbits.
	TargetID     string
	TargetKPIIDs []string
	// Empty only for transient legacy ships; otherwise matches exactly one Deployment.
	DeploymentID string

	Position   geom.Vec2
	Velocity   geom.Vec2
	State      State
	FacingLeft bool

	Color string
	Icon  string
}

// Transition moves the ship to the next lifecycle state, rejecting illegal edges.
func (s *Ship) Transition(to State) error {
	if !CanTransition(s.State, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.State, to)
	}
	s.State = to
	return nil
}

// Speed returns the magnitude of the ship's velocity.
func (s *Ship) Speed() float64 {
	return s.Velocity.Magnitude()
}
