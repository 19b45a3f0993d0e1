package fleet

// Registry is the ordered set of live ships.
// It is owned by the simulation goroutine and is not safe for concurrent use.
type Registry struct {
	ships []*Ship
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{ships: make([]*Ship, 0)}
}

// Add appends a ship
func (r *Registry) Add(ship *Ship) {
	r.ships = append(r.ships, ship)
}

// Ships returns the live ships in registry order. Callers must not append to the slice.
func (r *Registry) Ships() []*Ship {
	return r.ships
}

// Len returns the number of ships
func (r *Registry) Len() int {
	return len(r.ships)
}

// Clear drops every ship
func (r *Registry) Clear() {
	r.ships = make([]*Ship, 0)
}

// Purge drops REMOVED ships and returns how many were dropped.
func (r *Registry) Purge() int {
	return r.RemoveWhere(func(s *Ship) bool { return s.State == Removed })
}

// RemoveWhere filters ships into a new slice, so iteration over the previous
// slice stays valid.
func (r *Registry) RemoveWhere(drop func(*Ship) bool) int {
	kept := make([]*Ship, 0, len(r.ships))
	for _, s := range r.ships {
		if !drop(s) {
			kept = append(kept, s)
		}
	}
	removed := len(r.ships) - len(kept)
	r.ships = kept
	return removed
}

// FindByDeployment returns the ship bound to deploymentID, or nil.
func (r *Registry) FindByDeployment(deploymentID string) *Ship {
	if deploymentID == "" {
		return nil
	}
	for _, s := range r.ships {
		if s.DeploymentID == deploymentID {
			return s
		}
	}
	return nil
}

// CountByState tallies ships per lifecycle state.
func (r *Registry) CountByState() map[State]int {
	counts := make(map[State]int)
	for _, s := range r.ships {
		counts[s.State]++
	}
	return counts
}
