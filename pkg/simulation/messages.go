package simulation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/picogrid/brightfleet/pkg/fleet"
)

// Inbound message types accepted from render clients
const (
	MsgDeploy         = "deploy"
	MsgRecall         = "recall"
	MsgViewport       = "viewport"
	MsgDeleteTeam     = "delete_team"
	MsgDeleteIsland   = "delete_island"
	MsgDeleteMainGoal = "delete_main_goal"
)

const messageTimeout = 5 * time.Second

// Message is the union of every inbound command
type Message struct {
	Type         string   `json:"type"`
	TeamID       string   `json:"teamId,omitempty"`
	IslandID     string   `json:"islandId,omitempty"`
	KPIIDs       []string `json:"kpiIds,omitempty"`
	DeploymentID string   `json:"deploymentId,omitempty"`
	ID           string   `json:"id,omitempty"`

	// Viewport fields
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Zoom   float64 `json:"zoom,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// ErrorMessage is broadcast when an inbound command fails
type ErrorMessage struct {
	Type    string `json:"type"`
	Request string `json:"request"`
	Message string `json:"message"`
}

// Apply performs the command against f
func (m Message) Apply(f *fleet.Fleet) error {
	switch m.Type {
	case MsgDeploy:
		_, err := f.Assign(m.TeamID, m.IslandID, m.KPIIDs)
		return err
	case MsgRecall:
		return f.RecallDeployment(m.DeploymentID)
	case MsgViewport:
		if m.Width <= 0 || m.Height <= 0 {
			return fmt.Errorf("viewport must have a positive size")
		}
		f.SetViewport(fleet.Viewport{X: m.X, Y: m.Y, Zoom: m.Zoom, Width: m.Width, Height: m.Height})
		return nil
	case MsgDeleteTeam:
		return f.DeleteTeam(m.ID)
	case MsgDeleteIsland:
		return f.DeleteIsland(m.ID)
	case MsgDeleteMainGoal:
		return f.DeleteMainGoal(m.ID)
	default:
		return fmt.Errorf("unknown message type %q", m.Type)
	}
}

// HandleMessage decodes one inbound websocket message and applies it on the
// simulation goroutine. Failures are logged and reported back to clients.
func (r *Runner) HandleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		r.log.Warnf("Ignoring malformed message: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), messageTimeout)
	defer cancel()

	err := r.Do(ctx, msg.Apply)
	if err == nil {
		r.log.Debugf("Applied %s message", msg.Type)
		return
	}
	r.log.Warnf("%s failed: %v", msg.Type, err)
	if r.pub != nil {
		_ = r.pub.Broadcast(ErrorMessage{Type: "error", Request: msg.Type, Message: err.Error()})
	}
}
