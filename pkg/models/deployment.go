package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Deployment commits one of a team's ships to an island, optionally scoped to KPIs.
type Deployment struct {
	// Stable identity correlating this record with its in-flight ship.
	DeploymentID string `json:"deploymentId,omitempty"`
	// Target island id.
	IslandID string `json:"islandId"`
	// KPI subset of the island this deployment works on.
	KPIIDs []string `json:"kpiIds"`
}

// UnmarshalJSON accepts every shape ever persisted in Team.deployed:
// a bare island id string, an object with a singular kpiId, and the current object.
func (d *Deployment) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var islandID string
		if err := json.Unmarshal(data, &islandID); err != nil {
			return fmt.Errorf("invalid legacy deployment: %w", err)
		}
		*d = Deployment{IslandID: islandID, KPIIDs: []string{}}
		return nil
	}

	var wire struct {
		DeploymentID string   `json:"deploymentId"`
		IslandID     string   `json:"islandId"`
		KPIIDs       []string `json:"kpiIds"`
		KPIID        string   `json:"kpiId"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("invalid deployment: %w", err)
	}

	*d = Deployment{
		DeploymentID: wire.DeploymentID,
		IslandID:     wire.IslandID,
		KPIIDs:       wire.KPIIDs,
	}
	if d.KPIIDs == nil && wire.KPIID != "" {
		d.KPIIDs = []string{wire.KPIID}
	}
	return nil
}

// MatchesTarget reports whether the deployment targets island with exactly the given KPI set.
// Order and duplicates are ignored.
func (d *Deployment) MatchesTarget(islandID string, kpiIDs []string) bool {
	if d.IslandID != islandID {
		return false
	}
	return sameSet(d.KPIIDs, kpiIDs)
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]struct{}, len(b))
	for _, id := range b {
		seen[id] = struct{}{}
	}
	for _, id := range a {
		if _, ok := seen[id]; !ok {
			return false
		}
	}
	return true
}

// CountOn returns how many of the team's deployments target the island.
func (t *Team) CountOn(islandID string) int {
	n := 0
	for _, d := range t.Deployed {
		if d.IslandID == islandID {
			n++
		}
	}
	return n
}

// Available returns the number of ships the team can still deploy.
func (t *Team) Available() int {
	if free := t.TotalShips - len(t.Deployed); free > 0 {
		return free
	}
	return 0
}
