package simulation

import (
	"github.com/picogrid/brightfleet/pkg/fleet"
)

// FrameType is the envelope type of published frames
const FrameType = "frame"

// ShipView is the render-facing view of one ship
type ShipView struct {
	DeploymentID string      `json:"deploymentId,omitempty"`
	TeamID       string      `json:"teamId"`
	TeamName     string      `json:"teamName"`
	TargetID     string      `json:"targetId"`
	X            float64     `json:"x"`
	Y            float64     `json:"y"`
	VX           float64     `json:"vx"`
	VY           float64     `json:"vy"`
	State        fleet.State `json:"state"`
	FacingLeft   bool        `json:"facingLeft"`
	Color        string      `json:"color"`
	Icon         string      `json:"icon"`
}

// Frame is one published snapshot of the ship registry
type Frame struct {
	Type     string         `json:"type"`
	Tick     uint64         `json:"tick"`
	Viewport fleet.Viewport `json:"viewport"`
	Ships    []ShipView     `json:"ships"`
}

// Snapshot copies the registry into a frame that is safe to hand to other goroutines
func Snapshot(f *fleet.Fleet, tick uint64) Frame {
	ships := f.Ships().Ships()
	frame := Frame{
		Type:     FrameType,
		Tick:     tick,
		Viewport: f.Viewport(),
		Ships:    make([]ShipView, 0, len(ships)),
	}
	for _, s := range ships {
		frame.Ships = append(frame.Ships, ShipView{
			DeploymentID: s.DeploymentID,
			TeamID:       s.TeamID,
			TeamName:     s.TeamName,
			TargetID:     s.TargetID,
			X:            s.Position.X,
			Y:            s.Position.Y,
			VX:           s.Velocity.X,
			VY:           s.Velocity.Y,
			State:        s.State,
			FacingLeft:   s.FacingLeft,
			Color:        s.Color,
			Icon:         s.Icon,
		})
	}
	return frame
}
