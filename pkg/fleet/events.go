package fleet

import "github.com/picogrid/brightfleet/pkg/models"

// EventType names a user-visible fleet event.
type EventType string

const (
	EventDeployed EventType = "deployed"
	EventArrived  EventType = "arrived"
	EventRecalled EventType = "recalled"
	EventReturned EventType = "returned"
	EventRejected EventType = "rejected"
	EventLoaded   EventType = "loaded"
)

// Event is what the UI collaborator used to show as a toast.
type Event struct {
	Type         EventType
	TeamID       string
	TeamName     string
	IslandID     string
	DeploymentID string
	Message      string
}

// Observer receives fleet events on the simulation goroutine.
type Observer interface {
	OnFleetEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnFleetEvent(e Event) { f(e) }

// Saver persists the document. Implementations must take their own snapshot
// before returning and must not block on I/O.
type Saver interface {
	Save(doc *models.Document)
}

// Confirmer asks the user whether a ship should really be recalled.
type Confirmer interface {
	ConfirmRecall(ship *Ship) bool
}

type nopObserver struct{}

func (nopObserver) OnFleetEvent(Event) {}

type nopSaver struct{}

func (nopSaver) Save(*models.Document) {}

func shipEvent(t EventType, s *Ship, msg string) Event {
	return Event{
		Type:         t,
		TeamID:       s.TeamID,
		TeamName:     s.TeamName,
		IslandID:     s.TargetID,
		DeploymentID: s.DeploymentID,
		Message:      msg,
	}
}
