package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestDeploymentUnmarshalLegacyShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Deployment
	}{
		{
			name: "bare island id",
			raw:  `"p1"`,
			want: Deployment{IslandID: "p1", KPIIDs: []string{}},
		},
		{
			name: "singular kpiId",
			raw:  `{"islandId":"p2","kpiId":"k2_1"}`,
			want: Deployment{IslandID: "p2", KPIIDs: []string{"k2_1"}},
		},
		{
			name: "object without id",
			raw:  `{"islandId":"p3","kpiIds":["k3_1","k3_2"]}`,
			want: Deployment{IslandID: "p3", KPIIDs: []string{"k3_1", "k3_2"}},
		},
		{
			name: "current shape",
			raw:  `{"deploymentId":"dep_1","islandId":"p4","kpiIds":[]}`,
			want: Deployment{DeploymentID: "dep_1", IslandID: "p4", KPIIDs: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Deployment
			if err := json.Unmarshal([]byte(tt.raw), &got); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestTeamDeployedMixedShapes(t *testing.T) {
	raw := `{"id":"t1","name":"Eng","totalShips":3,"deployed":["p1",{"deploymentId":"dep_x","islandId":"p2","kpiIds":["k"]}]}`

	var team Team
	if err := json.Unmarshal([]byte(raw), &team); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(team.Deployed) != 2 {
		t.Fatalf("Expected 2 deployments, got %d", len(team.Deployed))
	}
	if team.Deployed[0].IslandID != "p1" || team.Deployed[0].DeploymentID != "" {
		t.Errorf("Unexpected legacy deployment: %+v", team.Deployed[0])
	}
	if team.Deployed[1].DeploymentID != "dep_x" {
		t.Errorf("Expected dep_x, got %s", team.Deployed[1].DeploymentID)
	}

	out, err := json.Marshal(team.Deployed[0])
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != `{"islandId":"p1","kpiIds":[]}` {
		t.Errorf("Writers must emit the object shape, got %s", out)
	}
}

func TestIslandUnmarshalKPIs(t *testing.T) {
	var legacy Island
	if err := json.Unmarshal([]byte(`{"id":"p1","kpis":"Ship it","mainGoalId":"mg1"}`), &legacy); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if legacy.LegacyKPIText != "Ship it" || legacy.KPIs != nil {
		t.Errorf("Expected legacy KPI text, got %q / %v", legacy.LegacyKPIText, legacy.KPIs)
	}
	if legacy.MainGoalID != "mg1" {
		t.Errorf("Expected legacy main goal mg1, got %q", legacy.MainGoalID)
	}

	var current Island
	if err := json.Unmarshal([]byte(`{"id":"p2","kpis":[{"id":"k1","desc":"a","deadline":"2026-01-01","completed":true}]}`), &current); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(current.KPIs) != 1 || !current.KPIs[0].Completed {
		t.Errorf("Unexpected KPIs: %+v", current.KPIs)
	}

	var bad Island
	if err := json.Unmarshal([]byte(`{"id":"p3","kpis":42}`), &bad); err == nil {
		t.Error("Expected error for numeric kpis")
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	doc := DemoDocument()

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var parsed Document
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(doc, &parsed) {
		t.Errorf("Round trip changed the document:\n%s", data)
	}
}

func TestNewID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID(DeploymentPrefix)
		if !IsGeneratedID(id, DeploymentPrefix) {
			t.Fatalf("Generated id %q does not match the id pattern", id)
		}
		if seen[id] {
			t.Fatalf("Duplicate id %q", id)
		}
		seen[id] = true
	}

	if IsGeneratedID("dep_t1_1", DeploymentPrefix) {
		t.Error("Seeded ids are not generated ids")
	}
	if IsGeneratedID(NewID(KPIPrefix), DeploymentPrefix) {
		t.Error("Prefix must be part of the match")
	}
}

func TestMatchesTarget(t *testing.T) {
	d := &Deployment{IslandID: "p1", KPIIDs: []string{"a", "b"}}

	if !d.MatchesTarget("p1", []string{"b", "a"}) {
		t.Error("Expected order-insensitive match")
	}
	if d.MatchesTarget("p1", []string{"a"}) {
		t.Error("Expected subset not to match")
	}
	if d.MatchesTarget("p2", []string{"a", "b"}) {
		t.Error("Expected island mismatch")
	}
}

func TestTeamAvailable(t *testing.T) {
	team := &Team{TotalShips: 2, Deployed: []*Deployment{{IslandID: "p1"}, {IslandID: "p1"}, {IslandID: "p2"}}}
	if team.Available() != 0 {
		t.Errorf("Expected 0 available, got %d", team.Available())
	}
	if team.CountOn("p1") != 2 {
		t.Errorf("Expected 2 on p1, got %d", team.CountOn("p1"))
	}
}
