package config

// DifficultyManager turns the difficulty section into a scroll speed ramp.
// The simulation only sees integers: a start speed, a max speed and the
// ticks between them.
type DifficultyManager struct {
	cfg          DifficultyConfig
	initialLevel float64
}

// NewDifficultyManager creates a new difficulty manager.
func NewDifficultyManager(cfg DifficultyConfig) *DifficultyManager {
	return &DifficultyManager{
		cfg:          cfg,
		initialLevel: clampF(cfg.InitialLevel, 0, 1),
	}
}

// IsEnabled returns whether difficulty progression is active.
func (d *DifficultyManager) IsEnabled() bool {
	return d.cfg.Enabled && d.cfg.Progression.Type == "time" && d.cfg.Progression.MaxAt > 0
}

// Ramp returns the scroll speed at tick zero, the speed reached at the end
// of the ramp and the ramp length in ticks. A disabled progression yields
// a zero length ramp at the base speed.
func (d *DifficultyManager) Ramp(baseSpeed int) (start, top, ticks int) {
	if !d.IsEnabled() || d.cfg.Scaling.MaxScrollSpeed <= baseSpeed {
		return baseSpeed, baseSpeed, 0
	}
	top = d.cfg.Scaling.MaxScrollSpeed
	start = baseSpeed + int(d.initialLevel*float64(top-baseSpeed)+0.5)
	remaining := int((1-d.initialLevel)*float64(d.cfg.Progression.MaxAt) + 0.5)
	if start >= top || remaining <= 0 {
		return top, top, 0
	}
	return start, top, remaining
}

func clampF(val, lo, hi float64) float64 {
	return max(lo, min(hi, val))
}
