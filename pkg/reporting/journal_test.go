package reporting

import (
	"bytes"
	"strings"
	"testing"

	"github.com/picogrid/brightfleet/pkg/fleet"
	"github.com/picogrid/brightfleet/pkg/models"
	"github.com/picogrid/brightfleet/pkg/reconcile"
)

func TestJournalRecordsAndPrints(t *testing.T) {
	var buf bytes.Buffer
	j := NewJournal(&buf)
	j.RegisterTeams([]*models.Team{{ID: "t1", Color: "#FF6B6B"}, {ID: "t2", Color: "teal"}})
	if len(j.teamColors) != 1 {
		t.Errorf("Expected only the valid hex color to register, got %d", len(j.teamColors))
	}

	j.OnFleetEvent(fleet.Event{Type: fleet.EventDeployed, TeamID: "t1", TeamName: "Engineering", Message: "Engineering deployed to Platform"})
	j.OnFleetEvent(fleet.Event{Type: fleet.EventArrived, TeamID: "t1", TeamName: "Engineering", Message: "Engineering arrived at objective"})
	j.OnFleetEvent(fleet.Event{Type: fleet.EventLoaded, Message: "Fleet Command Loaded"})

	out := buf.String()
	for _, want := range []string{"DEPLOYED", "Platform", "ARRIVED", "Fleet Command Loaded"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}

	summary := j.GetSummary()
	if summary.TotalEvents != 3 {
		t.Errorf("Expected 3 events, got %d", summary.TotalEvents)
	}
	if summary.TeamEvents["Engineering"][fleet.EventArrived] != 1 {
		t.Errorf("Unexpected team events: %v", summary.TeamEvents)
	}
	if _, ok := summary.TeamEvents[""]; ok {
		t.Error("Events without a team must not be attributed")
	}
}

func TestRegisterTeamsSkipsNullEntries(t *testing.T) {
	doc, err := reconcile.Decode(strings.NewReader(`{"teams":[null,{"id":"t1","name":"Engineering","color":"#FF6B6B"}]}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	j := NewJournal(&bytes.Buffer{})
	j.RegisterTeams(doc.Teams)
	if _, ok := j.teamColors["t1"]; !ok || len(j.teamColors) != 1 {
		t.Errorf("Expected t1 registered, got %v", j.teamColors)
	}
}

func TestJournalQuiet(t *testing.T) {
	var buf bytes.Buffer
	j := NewJournal(&buf)
	j.SetQuiet(true)
	j.OnFleetEvent(fleet.Event{Type: fleet.EventRecalled, TeamName: "Ops", Message: "Ops is returning to HQ"})

	if buf.Len() != 0 {
		t.Errorf("Quiet journal printed: %q", buf.String())
	}
	if len(j.Entries()) != 1 {
		t.Error("Quiet journal must still record")
	}
}

func TestParseHexColor(t *testing.T) {
	if parseHexColor("#4ECDC4") == nil {
		t.Error("Expected color for valid hex")
	}
	for _, bad := range []string{"", "#FFF", "red", "#GGGGGG"} {
		if parseHexColor(bad) != nil {
			t.Errorf("Expected nil for %q", bad)
		}
	}
}
