// Package reconcile turns whatever the persistence layer or an import file
// hands back into the canonical document and rebuilds the ship registry from it.
package reconcile

import (
	"github.com/picogrid/brightfleet/pkg/models"
)

// Normalize upgrades doc to the canonical schema in place and returns it.
// Running it on an already canonical document changes nothing.
func Normalize(doc *models.Document) *models.Document {
	if doc == nil {
		return models.EmptyDocument()
	}
	if doc.Teams == nil {
		doc.Teams = []*models.Team{}
	}
	if doc.Islands == nil {
		doc.Islands = []*models.Island{}
	}
	if doc.MainGoals == nil {
		doc.MainGoals = []*models.MainGoal{}
	}

	doc.Islands = dropNil(doc.Islands)
	doc.Teams = dropNil(doc.Teams)
	doc.MainGoals = dropNil(doc.MainGoals)

	for _, island := range doc.Islands {
		normalizeIsland(island)
	}
	for _, team := range doc.Teams {
		normalizeTeam(team)
	}
	return doc
}

func normalizeIsland(island *models.Island) {
	if island.LegacyKPIText != "" {
		island.KPIs = []*models.KPI{{
			ID:          models.NewID(models.KPIPrefix),
			Description: island.LegacyKPIText,
			Deadline:    "",
		}}
		island.LegacyKPIText = ""
	}
	if island.KPIs == nil {
		island.KPIs = []*models.KPI{}
	}
	island.KPIs = dropNil(island.KPIs)

	if island.MainGoalID != "" && island.MainGoalIDs == nil {
		island.MainGoalIDs = []string{island.MainGoalID}
	}
	island.MainGoalID = ""
	if island.MainGoalIDs == nil {
		island.MainGoalIDs = []string{}
	}
}

func normalizeTeam(team *models.Team) {
	if team.Deployed == nil {
		team.Deployed = []*models.Deployment{}
	}
	team.Deployed = dropNil(team.Deployed)
	for _, d := range team.Deployed {
		if d.KPIIDs == nil {
			d.KPIIDs = []string{}
		}
	}
}

// dropNil removes null entries left by hand-edited files.
func dropNil[T any](items []*T) []*T {
	kept := make([]*T, 0, len(items))
	for _, item := range items {
		if item != nil {
			kept = append(kept, item)
		}
	}
	return kept
}
