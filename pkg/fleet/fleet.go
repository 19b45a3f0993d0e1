// Package fleet owns the deployment lifecycle: which team ships exist, where they
// are headed, and how deployment records and ships stay paired across recall and reload.
package fleet

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/picogrid/brightfleet/pkg/geom"
	"github.com/picogrid/brightfleet/pkg/models"
)

const (
	// spawnOffset is how far left of the visible map new ships appear.
	spawnOffset = 100.0
	// spawnSpread is the vertical jitter band around the target island.
	spawnSpread = 100.0
	// dockJitter keeps rebuilt ships off the exact island center.
	dockJitter = 2.0
)

// Policy holds the behaviors the two historical engines disagreed on.
type Policy struct {
	// EnforceCapacity rejects deployments beyond Team.TotalShips.
	EnforceCapacity bool `yaml:"enforce_capacity" env:"ENFORCE_CAPACITY"`
	// ConfirmRecall asks the Confirmer before recalling.
	ConfirmRecall bool `yaml:"confirm_recall" env:"CONFIRM_RECALL"`
}

// DefaultPolicy keeps the capacity invariant and recalls without asking.
func DefaultPolicy() Policy {
	return Policy{EnforceCapacity: true, ConfirmRecall: false}
}

// Viewport is the camera the UI collaborator is looking through.
// New ships spawn just left of it and returning ships head further left.
type Viewport struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Zoom   float64 `json:"zoom"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultViewport is a 1024x768 view centered on the origin.
func DefaultViewport() Viewport {
	return Viewport{Zoom: 1, Width: 1024, Height: 768}
}

// LeftEdge returns the world x coordinate of the left border of the view.
func (v Viewport) LeftEdge() float64 {
	zoom := v.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return v.X - v.Width/2/zoom
}

// Options configures a Fleet
type Options struct {
	Policy    Policy
	Viewport  Viewport
	Rand      *rand.Rand
	Observer  Observer
	Saver     Saver
	Confirmer Confirmer
}

// Fleet binds the persisted document to the live ship registry.
// All methods must be called from the simulation goroutine.
type Fleet struct {
	doc       *models.Document
	ships     *Registry
	policy    Policy
	viewport  Viewport
	rng       *rand.Rand
	observer  Observer
	saver     Saver
	confirmer Confirmer
}

// New creates a fleet over an empty document
func New(opts Options) *Fleet {
	f := &Fleet{
		doc:       models.EmptyDocument(),
		ships:     NewRegistry(),
		policy:    opts.Policy,
		viewport:  opts.Viewport,
		rng:       opts.Rand,
		observer:  opts.Observer,
		saver:     opts.Saver,
		confirmer: opts.Confirmer,
	}
	if f.viewport.Zoom == 0 && f.viewport.Width == 0 {
		f.viewport = DefaultViewport()
	}
	if f.rng == nil {
		f.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if f.observer == nil {
		f.observer = nopObserver{}
	}
	if f.saver == nil {
		f.saver = nopSaver{}
	}
	return f
}

func (f *Fleet) Document() *models.Document { return f.doc }
func (f *Fleet) Ships() *Registry            { return f.ships }
func (f *Fleet) Viewport() Viewport          { return f.viewport }
func (f *Fleet) Rand() *rand.Rand            { return f.rng }
func (f *Fleet) Policy() Policy              { return f.policy }

// SetViewport updates the camera used for spawn and HQ positions.
func (f *Fleet) SetViewport(v Viewport) {
	f.viewport = v
}

// SetDocument replaces the document without touching ships. Callers follow up with RebuildShips.
func (f *Fleet) SetDocument(doc *models.Document) {
	f.doc = doc
}

// Emit forwards an event to the observer.
func (f *Fleet) Emit(e Event) {
	f.observer.OnFleetEvent(e)
}

// HQ returns the off-screen point returning ships head for, at the given height.
func (f *Fleet) HQ(y float64, offset float64) geom.Vec2 {
	return geom.Vec2{X: f.viewport.LeftEdge() - offset, Y: y}
}

// Assign deploys one more ship of team to island, scoped to kpiIDs.
func (f *Fleet) Assign(teamID, islandID string, kpiIDs []string) (*models.Deployment, error) {
	team := f.doc.FindTeam(teamID)
	if team == nil {
		return nil, fmt.Errorf("%w: %s", ErrTeamNotFound, teamID)
	}
	island := f.doc.FindIsland(islandID)
	if island == nil {
		return nil, fmt.Errorf("%w: %s", ErrIslandNotFound, islandID)
	}
	if f.policy.EnforceCapacity && len(team.Deployed) >= team.TotalShips {
		f.Emit(Event{
			Type:     EventRejected,
			TeamID:   team.ID,
			TeamName: team.Name,
			IslandID: island.ID,
			Message:  "Maximum resources already deployed for this team",
		})
		return nil, fmt.Errorf("%w: %s (%d/%d)", ErrCapacityExceeded, team.Name, len(team.Deployed), team.TotalShips)
	}

	kpis := make([]string, len(kpiIDs))
	copy(kpis, kpiIDs)

	deployment := &models.Deployment{
		DeploymentID: models.NewID(models.DeploymentPrefix),
		IslandID:     island.ID,
		KPIIDs:       kpis,
	}
	team.Deployed = append(team.Deployed, deployment)

	start := geom.Vec2{
		X: f.viewport.LeftEdge() - spawnOffset,
		Y: island.Y + (f.rng.Float64()-0.5)*spawnSpread,
	}
	ship := f.spawn(team, deployment, start, Sailing)

	f.Emit(shipEvent(EventDeployed, ship, fmt.Sprintf("%s deployed to %s", team.Name, island.Title)))
	f.autoSave()
	return deployment, nil
}

// Recall sends ship back to HQ and releases exactly one of its team's deployments.
func (f *Fleet) Recall(ship *Ship) error {
	if f.policy.ConfirmRecall && f.confirmer != nil && !f.confirmer.ConfirmRecall(ship) {
		return ErrRecallDeclined
	}
	if err := f.recall(ship); err != nil {
		return err
	}
	f.autoSave()
	return nil
}

// RecallDeployment recalls the ship bound to deploymentID.
func (f *Fleet) RecallDeployment(deploymentID string) error {
	ship := f.ships.FindByDeployment(deploymentID)
	if ship == nil {
		return fmt.Errorf("%w: deployment %s", ErrShipNotFound, deploymentID)
	}
	return f.Recall(ship)
}

func (f *Fleet) recall(ship *Ship) error {
	if err := ship.Transition(Returning); err != nil {
		return err
	}
	f.Emit(shipEvent(EventRecalled, ship, fmt.Sprintf("%s is returning to HQ", ship.TeamName)))

	team := f.doc.FindTeam(ship.TeamID)
	if team == nil {
		return nil
	}
	if idx := matchDeployment(team.Deployed, ship); idx >= 0 {
		team.Deployed = append(team.Deployed[:idx:idx], team.Deployed[idx+1:]...)
	}
	return nil
}

// matchDeployment finds the one deployment a ship stands for: by id when the
// ship has one, else the first deployment with the same island and KPI set.
func matchDeployment(deployed []*models.Deployment, ship *Ship) int {
	if ship.DeploymentID != "" {
		for i, d := range deployed {
			if d.DeploymentID == ship.DeploymentID {
				return i
			}
		}
		return -1
	}
	for i, d := range deployed {
		if d.MatchesTarget(ship.TargetID, ship.TargetKPIIDs) {
			return i
		}
	}
	return -1
}

// RebuildShips recreates the registry from the document after a full load
// and returns how many deployments it gave an id. Deployments without an id
// are upgraded in place; deployments to missing islands are skipped.
func (f *Fleet) RebuildShips() int {
	f.ships.Clear()
	upgraded := 0
	for _, team := range f.doc.Teams {
		for _, d := range team.Deployed {
			if d.DeploymentID == "" {
				d.DeploymentID = models.NewID(models.DeploymentPrefix)
				upgraded++
			}
			if d.KPIIDs == nil {
				d.KPIIDs = []string{}
			}

			island := f.doc.FindIsland(d.IslandID)
			if island == nil {
				continue
			}
			pos := geom.Vec2{
				X: island.X + (f.rng.Float64()-0.5)*dockJitter,
				Y: island.Y + (f.rng.Float64()-0.5)*dockJitter,
			}
			f.spawn(team, d, pos, Docked)
		}
	}
	return upgraded
}

func (f *Fleet) spawn(team *models.Team, d *models.Deployment, pos geom.Vec2, state State) *Ship {
	kpis := make([]string, len(d.KPIIDs))
	copy(kpis, d.KPIIDs)

	ship := &Ship{
		TeamID:       team.ID,
		TeamName:     team.Name,
		TargetID:     d.IslandID,
		TargetKPIIDs: kpis,
		DeploymentID: d.DeploymentID,
		Position:     pos,
		State:        state,
		Color:        team.Color,
		Icon:         team.Icon,
	}
	f.ships.Add(ship)
	return ship
}

// DeleteTeam removes a team and its ships without a return trip.
func (f *Fleet) DeleteTeam(teamID string) error {
	idx := -1
	for i, t := range f.doc.Teams {
		if t.ID == teamID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrTeamNotFound, teamID)
	}
	f.doc.Teams = append(f.doc.Teams[:idx:idx], f.doc.Teams[idx+1:]...)
	f.ships.RemoveWhere(func(s *Ship) bool { return s.TeamID == teamID })
	f.autoSave()
	return nil
}

// DeleteIsland removes an island, recalls the ships heading to it and drops
// the deployments that still point at it.
func (f *Fleet) DeleteIsland(islandID string) error {
	idx := -1
	for i, isl := range f.doc.Islands {
		if isl.ID == islandID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrIslandNotFound, islandID)
	}
	f.doc.Islands = append(f.doc.Islands[:idx:idx], f.doc.Islands[idx+1:]...)

	for _, s := range f.ships.Ships() {
		if s.TargetID == islandID && CanTransition(s.State, Returning) {
			_ = f.recall(s)
		}
	}
	for _, team := range f.doc.Teams {
		kept := make([]*models.Deployment, 0, len(team.Deployed))
		for _, d := range team.Deployed {
			if d.IslandID != islandID {
				kept = append(kept, d)
			}
		}
		team.Deployed = kept
	}
	f.autoSave()
	return nil
}

// DeleteMainGoal removes a main goal and unlinks it from every island.
func (f *Fleet) DeleteMainGoal(goalID string) error {
	idx := -1
	for i, g := range f.doc.MainGoals {
		if g.ID == goalID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrMainGoalNotFound, goalID)
	}
	f.doc.MainGoals = append(f.doc.MainGoals[:idx:idx], f.doc.MainGoals[idx+1:]...)

	for _, isl := range f.doc.Islands {
		kept := make([]string, 0, len(isl.MainGoalIDs))
		for _, id := range isl.MainGoalIDs {
			if id != goalID {
				kept = append(kept, id)
			}
		}
		isl.MainGoalIDs = kept
	}
	f.autoSave()
	return nil
}

// TeamStatus summarizes one team's allocation.
type TeamStatus struct {
	TeamID     string
	TeamName   string
	Color      string
	TotalShips int
	Deployed   int
	Ships      map[State]int
}

// Status returns per-team allocation and ship counts, in document order.
func (f *Fleet) Status() []TeamStatus {
	out := make([]TeamStatus, 0, len(f.doc.Teams))
	for _, team := range f.doc.Teams {
		out = append(out, TeamStatus{
			TeamID:     team.ID,
			TeamName:   team.Name,
			Color:      team.Color,
			TotalShips: team.TotalShips,
			Deployed:   len(team.Deployed),
			Ships:      make(map[State]int),
		})
	}
	for _, s := range f.ships.Ships() {
		for i := range out {
			if out[i].TeamID == s.TeamID {
				out[i].Ships[s.State]++
			}
		}
	}
	return out
}

// Persist hands the current document to the saver.
func (f *Fleet) Persist() {
	f.autoSave()
}

func (f *Fleet) autoSave() {
	f.saver.Save(f.doc)
}
