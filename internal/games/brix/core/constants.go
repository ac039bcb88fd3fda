// Package core implements the deterministic simulation of one brix pit:
// blocks and garbage, the spatial index, match detection and the per-tick
// director pipeline. It has no dependency on rendering, audio or transport.
package core

// TPS is the fixed number of logic ticks per second.
const TPS = 30

// Pit geometry. These values are part of the simulation and never configurable.
const (
	PitCols   = 6   // blocks that fit next to each other
	PitRows   = 10  // visible rows
	RowHeight = 200 // gameplay height of one row; scroll and fall speeds are measured against it
)

// Default timings, in ticks unless noted.
const (
	FallSpeed    = 35 // points per tick that a falling object moves down
	ScrollSpeed  = 1  // points per tick that the pit moves up
	RaiseSpeed   = 15 // pit speed while raising the stack
	IntroTime    = 20
	SwapTime     = 6
	BreakTime    = 30
	DissolveTime = 30
	LandTime     = 20
	RecoveryTime = 50 // scrolling pause after a quality match
	PanicTime    = 90 // grace period while the pit is full
)

// NoOne is the not-a-player id.
const NoOne = -1

// CheckpointInterval is the distance in ticks between journal checkpoints.
const CheckpointInterval = 1 * TPS

// Rules carries the tunable timings of a round. Both peers of a match must
// use identical rules, otherwise their simulations diverge.
type Rules struct {
	FallSpeed    int `yaml:"fall_speed"`
	ScrollSpeed  int `yaml:"scroll_speed"`
	RaiseSpeed   int `yaml:"raise_speed"`
	IntroTime    int `yaml:"intro_time"`
	SwapTime     int `yaml:"swap_time"`
	BreakTime    int `yaml:"break_time"`
	DissolveTime int `yaml:"dissolve_time"`
	LandTime     int `yaml:"land_time"`
	RecoveryTime int `yaml:"recovery_time"`
	PanicTime    int `yaml:"panic_time"`
}

// DefaultRules returns the standard timings.
func DefaultRules() Rules {
	return Rules{
		FallSpeed:    FallSpeed,
		ScrollSpeed:  ScrollSpeed,
		RaiseSpeed:   RaiseSpeed,
		IntroTime:    IntroTime,
		SwapTime:     SwapTime,
		BreakTime:    BreakTime,
		DissolveTime: DissolveTime,
		LandTime:     LandTime,
		RecoveryTime: RecoveryTime,
		PanicTime:    PanicTime,
	}
}

// Validate reports the first non-positive timing, if any.
func (r Rules) Validate() error {
	checks := []struct {
		name  string
		value int
	}{
		{"fall_speed", r.FallSpeed},
		{"scroll_speed", r.ScrollSpeed},
		{"raise_speed", r.RaiseSpeed},
		{"intro_time", r.IntroTime},
		{"swap_time", r.SwapTime},
		{"break_time", r.BreakTime},
		{"dissolve_time", r.DissolveTime},
		{"land_time", r.LandTime},
		{"recovery_time", r.RecoveryTime},
		{"panic_time", r.PanicTime},
	}
	for _, c := range checks {
		if c.value < 1 {
			return &RulesError{Field: c.name, Value: c.value}
		}
	}
	return nil
}
