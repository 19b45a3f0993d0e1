package fleet

import (
	"fmt"
	"strings"
)

// State is a ship's lifecycle state.
type State int

const (
	Sailing State = iota
	Docked
	Returning
	Removed
)

var stateNames = map[State]string{
	Sailing:   "SAILING",
	Docked:    "DOCKED",
	Returning: "RETURNING",
	Removed:   "REMOVED",
}

// transitions lists every legal edge of the lifecycle.
var transitions = map[State][]State{
	Sailing:   {Docked, Returning},
	Docked:    {Returning},
	Returning: {Removed},
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText renders the state the way render adapters expect it.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name, case-insensitively.
func (s *State) UnmarshalText(text []byte) error {
	state, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = state
	return nil
}

// ParseState parses a state name.
func ParseState(name string) (State, error) {
	for state, n := range stateNames {
		if strings.EqualFold(n, name) {
			return state, nil
		}
	}
	return 0, fmt.Errorf("unknown ship state %q", name)
}

// Moving reports whether the ship is travelling between map and HQ.
func (s State) Moving() bool {
	return s == Sailing || s == Returning
}

// CanTransition reports whether from -> to is a legal lifecycle edge.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
