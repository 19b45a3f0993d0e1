package reporting

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/picogrid/brightfleet/pkg/fleet"
	"github.com/picogrid/brightfleet/pkg/models"
)

// maxEvents bounds the in-memory history
const maxEvents = 10000

// Entry is one journaled fleet event
type Entry struct {
	Timestamp time.Time
	Event     fleet.Event
}

// Color definitions
var (
	colorInfo    = color.New(color.FgCyan)
	colorWarning = color.New(color.FgYellow)
	colorSuccess = color.New(color.FgGreen)
	colorMuted   = color.New(color.FgHiBlack)
)

// Journal records fleet events and prints them with the team's own color.
// It implements fleet.Observer.
type Journal struct {
	out        io.Writer
	startTime  time.Time
	entries    []Entry
	teamColors map[string]*color.Color
	quiet      bool
	mu         sync.RWMutex
}

// NewJournal creates a journal printing to out. A nil out prints to the color-aware stdout.
func NewJournal(out io.Writer) *Journal {
	if out == nil {
		out = color.Output
	}
	return &Journal{
		out:        out,
		startTime:  time.Now(),
		entries:    make([]Entry, 0),
		teamColors: make(map[string]*color.Color),
	}
}

// SetQuiet keeps recording events without printing them.
func (j *Journal) SetQuiet(quiet bool) {
	j.mu.Lock()
	j.quiet = quiet
	j.mu.Unlock()
}

// RegisterTeam remembers the hex color a team is drawn with.
func (j *Journal) RegisterTeam(teamID, hex string) {
	c := parseHexColor(hex)
	if c == nil {
		return
	}
	j.mu.Lock()
	j.teamColors[teamID] = c
	j.mu.Unlock()
}

// RegisterTeams registers the colors of every team, skipping null entries
func (j *Journal) RegisterTeams(teams []*models.Team) {
	for _, team := range teams {
		if team == nil {
			continue
		}
		j.RegisterTeam(team.ID, team.Color)
	}
}

// OnFleetEvent implements fleet.Observer
func (j *Journal) OnFleetEvent(e fleet.Event) {
	j.mu.Lock()
	j.entries = append(j.entries, Entry{Timestamp: time.Now(), Event: e})
	if len(j.entries) > maxEvents {
		j.entries = j.entries[len(j.entries)-maxEvents:]
	}
	quiet := j.quiet
	teamColor := j.teamColors[e.TeamID]
	j.mu.Unlock()

	if quiet {
		return
	}
	j.print(e, teamColor)
}

func (j *Journal) print(e fleet.Event, teamColor *color.Color) {
	timestamp := time.Now().Format("15:04:05.000")

	label, labelColor := describe(e.Type)
	msg := e.Message
	if e.TeamName != "" && teamColor != nil {
		msg = strings.Replace(msg, e.TeamName, teamColor.Sprint(e.TeamName), 1)
	}

	fmt.Fprintf(j.out, "[%s] %s %s\n", timestamp, labelColor.Sprintf("%-9s", label), msg)
}

func describe(t fleet.EventType) (string, *color.Color) {
	switch t {
	case fleet.EventDeployed:
		return "DEPLOYED", colorInfo
	case fleet.EventArrived:
		return "ARRIVED", colorSuccess
	case fleet.EventRecalled:
		return "RECALLED", colorWarning
	case fleet.EventReturned:
		return "RETURNED", colorMuted
	case fleet.EventRejected:
		return "REJECTED", colorWarning
	case fleet.EventLoaded:
		return "LOADED", colorSuccess
	default:
		return strings.ToUpper(string(t)), colorInfo
	}
}

// Entries returns a copy of the recorded events
func (j *Journal) Entries() []Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]Entry, len(j.entries))
	copy(out, j.entries)
	return out
}

// Summary aggregates the journal
type Summary struct {
	StartTime   time.Time
	Duration    time.Duration
	TotalEvents int
	EventCounts map[fleet.EventType]int
	TeamEvents  map[string]map[fleet.EventType]int
}

// GetSummary returns a summary of everything recorded so far
func (j *Journal) GetSummary() Summary {
	j.mu.RLock()
	defer j.mu.RUnlock()

	summary := Summary{
		StartTime:   j.startTime,
		Duration:    time.Since(j.startTime),
		TotalEvents: len(j.entries),
		EventCounts: make(map[fleet.EventType]int),
		TeamEvents:  make(map[string]map[fleet.EventType]int),
	}
	for _, entry := range j.entries {
		e := entry.Event
		summary.EventCounts[e.Type]++
		if e.TeamName == "" {
			continue
		}
		if summary.TeamEvents[e.TeamName] == nil {
			summary.TeamEvents[e.TeamName] = make(map[fleet.EventType]int)
		}
		summary.TeamEvents[e.TeamName][e.Type]++
	}
	return summary
}

// PrintSummary prints a formatted summary
func (j *Journal) PrintSummary() {
	summary := j.GetSummary()

	colorSuccess.Fprintln(j.out, "\n=== FLEET SUMMARY ===")
	fmt.Fprintf(j.out, "Duration: %v | Total Events: %d\n", summary.Duration.Round(time.Millisecond), summary.TotalEvents)

	fmt.Fprintln(j.out, "\nEvent Distribution:")
	for _, t := range sortedKeys(summary.EventCounts) {
		fmt.Fprintf(j.out, "   %-12s: %d\n", t, summary.EventCounts[t])
	}

	teams := make([]string, 0, len(summary.TeamEvents))
	for team := range summary.TeamEvents {
		teams = append(teams, team)
	}
	sort.Strings(teams)

	fmt.Fprintln(j.out, "\nTeam Activity:")
	for _, team := range teams {
		fmt.Fprintf(j.out, "\n   %s:\n", team)
		events := summary.TeamEvents[team]
		for _, t := range sortedKeys(events) {
			fmt.Fprintf(j.out, "      %-10s: %d\n", t, events[t])
		}
	}
}

func sortedKeys(m map[fleet.EventType]int) []fleet.EventType {
	keys := make([]fleet.EventType, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })
	return keys
}

// parseHexColor turns "#RRGGBB" into a 24-bit terminal color.
func parseHexColor(hex string) *color.Color {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return nil
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil
	}
	return color.RGB(int(v>>16&0xff), int(v>>8&0xff), int(v&0xff)).Add(color.Bold)
}
