package models

import (
	"encoding/json"
	"fmt"
)

// Document is the full persisted fleet state exchanged with the persistence backend.
// Ships are never part of it; they are derived from Teams on load.
type Document struct {
	// Free-form board title carried through load/save untouched.
	ProjectTitle string `json:"projectTitle,omitempty"`
	// Teams and their deployments.
	Teams []*Team `json:"teams"`
	// Objectives ships are deployed to.
	Islands []*Island `json:"islands"`
	// Top-level objectives islands link to.
	MainGoals []*MainGoal `json:"mainGoals"`
}

// Team owns a ship capacity and the deployments using it.
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
	// Hex color used by render adapters.
	Color string `json:"color"`
	// Maximum number of concurrent deployments.
	TotalShips int `json:"totalShips"`
	// Ordered deployments, one ship each.
	Deployed []*Deployment `json:"deployed"`
}

// Island is a strategic objective on the map.
type Island struct {
	ID          string  `json:"id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Title       string  `json:"title"`
	Icon        string  `json:"icon"`
	Description string  `json:"desc"`
	// Ordered KPIs owned by this island.
	KPIs []*KPI `json:"kpis"`
	// Weak references to MainGoal ids.
	MainGoalIDs []string `json:"mainGoalIds"`
	// Presentation-only expansion flag.
	Expanded bool `json:"expanded"`

	// MainGoalID is the legacy singular goal link, migrated by reconciliation.
	MainGoalID string `json:"mainGoalId,omitempty"`
	// LegacyKPIText holds a bare-string kpis value until reconciliation turns it into a KPI.
	LegacyKPIText string `json:"-"`
}

// KPI is a measurable result owned by exactly one island.
type KPI struct {
	ID          string `json:"id"`
	Description string `json:"desc"`
	// Date string (YYYY-MM-DD) or empty.
	Deadline  string `json:"deadline"`
	Completed bool   `json:"completed"`
}

// MainGoal is a top-level objective islands can link to.
type MainGoal struct {
	ID          string  `json:"id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Title       string  `json:"title"`
	Icon        string  `json:"icon"`
	Description string  `json:"desc"`
}

// EmptyDocument returns the state used when nothing could be loaded.
func EmptyDocument() *Document {
	return &Document{
		Teams:     []*Team{},
		Islands:   []*Island{},
		MainGoals: []*MainGoal{},
	}
}

// UnmarshalJSON accepts both the canonical kpis array and the legacy bare string.
func (i *Island) UnmarshalJSON(data []byte) error {
	type islandAlias Island
	aux := struct {
		*islandAlias
		KPIs json.RawMessage `json:"kpis"`
	}{islandAlias: (*islandAlias)(i)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	i.KPIs = nil
	i.LegacyKPIText = ""
	if len(aux.KPIs) == 0 || string(aux.KPIs) == "null" {
		return nil
	}

	switch aux.KPIs[0] {
	case '"':
		var text string
		if err := json.Unmarshal(aux.KPIs, &text); err != nil {
			return fmt.Errorf("island %s: invalid kpis text: %w", i.ID, err)
		}
		i.LegacyKPIText = text
	case '[':
		if err := json.Unmarshal(aux.KPIs, &i.KPIs); err != nil {
			return fmt.Errorf("island %s: invalid kpis: %w", i.ID, err)
		}
	default:
		return fmt.Errorf("island %s: kpis must be an array or a string", i.ID)
	}
	return nil
}

// FindTeam returns the team with the given id, or nil.
func (d *Document) FindTeam(id string) *Team {
	for _, t := range d.Teams {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// FindIsland returns the island with the given id, or nil.
func (d *Document) FindIsland(id string) *Island {
	for _, i := range d.Islands {
		if i.ID == id {
			return i
		}
	}
	return nil
}

// FindMainGoal returns the main goal with the given id, or nil.
func (d *Document) FindMainGoal(id string) *MainGoal {
	for _, g := range d.MainGoals {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// Clone returns a deep copy suitable for handing to another goroutine.
func (d *Document) Clone() (*Document, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	var out Document
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return &out, nil
}
