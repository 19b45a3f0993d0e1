package steering

import "fmt"

// Params are the force constants of the steering model, in world units per tick.
type Params struct {
	SeparationRadius float64 `yaml:"separation_radius"`
	SeparationK      float64 `yaml:"separation_k"`
	IslandAvoidRad   float64 `yaml:"island_avoid_radius"`
	IslandAvoidK     float64 `yaml:"island_avoid_k"`
	GoalAvoidRad     float64 `yaml:"goal_avoid_radius"`
	GoalAvoidK       float64 `yaml:"goal_avoid_k"`
	Damping          float64 `yaml:"damping"`

	MinOrbit    float64 `yaml:"min_orbit"`
	MaxOrbit    float64 `yaml:"max_orbit"`
	OrbitInK    float64 `yaml:"orbit_inward_k"`
	OrbitOutK   float64 `yaml:"orbit_outward_k"`
	TangentialK float64 `yaml:"tangential_k"`
	Wander      float64 `yaml:"wander"`
	Impulse     float64 `yaml:"singular_impulse"`

	SeekForce      float64 `yaml:"seek_force"`
	DockMargin     float64 `yaml:"dock_margin"`
	HQArrival      float64 `yaml:"hq_arrival"`
	HQOffset       float64 `yaml:"hq_offset"`
	DockDamp       float64 `yaml:"dock_damp"`
	MaxSpeed       float64 `yaml:"max_speed"`
	DockedSpeed    float64 `yaml:"docked_speed"`
	FacingDeadzone float64 `yaml:"facing_deadzone"`
}

// DefaultParams returns the tuned constants the map was designed around:
// the orbit band sits between the island art (70) and its KPI ring (140).
func DefaultParams() Params {
	return Params{
		SeparationRadius: 40,
		SeparationK:      0.15,
		IslandAvoidRad:   85,
		IslandAvoidK:     0.25,
		GoalAvoidRad:     100,
		GoalAvoidK:       0.25,
		Damping:          0.94,

		MinOrbit:    95,
		MaxOrbit:    125,
		OrbitInK:    0.03,
		OrbitOutK:   0.08,
		TangentialK: 0.03,
		Wander:      0.05,
		Impulse:     1.0,

		SeekForce:      0.15,
		DockMargin:     10,
		HQArrival:      10,
		HQOffset:       200,
		DockDamp:       0.1,
		MaxSpeed:       5.0,
		DockedSpeed:    2.0,
		FacingDeadzone: 0.05,
	}
}

// DockThreshold is the distance from the island center at which a sailing ship docks.
func (p Params) DockThreshold() float64 {
	return p.MinOrbit + p.DockMargin
}

// Validate checks the parameters describe a stable system.
func (p Params) Validate() error {
	if p.Damping <= 0 || p.Damping > 1 {
		return fmt.Errorf("damping must be in (0, 1], got %.3f", p.Damping)
	}
	if p.MinOrbit <= 0 || p.MaxOrbit <= p.MinOrbit {
		return fmt.Errorf("orbit band must satisfy 0 < min < max, got [%.1f, %.1f]", p.MinOrbit, p.MaxOrbit)
	}
	if p.MaxSpeed <= 0 || p.DockedSpeed <= 0 {
		return fmt.Errorf("speed limits must be positive")
	}
	if p.HQArrival <= 0 {
		return fmt.Errorf("hq_arrival must be positive")
	}
	if p.SeparationRadius < 0 || p.IslandAvoidRad < 0 || p.GoalAvoidRad < 0 {
		return fmt.Errorf("avoidance radii must not be negative")
	}
	if p.DockDamp < 0 || p.DockDamp > 1 {
		return fmt.Errorf("dock_damp must be in [0, 1], got %.3f", p.DockDamp)
	}
	return nil
}
