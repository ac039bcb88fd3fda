package brix

import (
	"github.com/vovakirdan/tui-brix/internal/config"
	"github.com/vovakirdan/tui-brix/internal/games/brix/round"
)

// SettingsFromConfig builds versus round settings from the loaded
// configuration. The difficulty section turns into a scroll speed ramp.
func SettingsFromConfig(cfg config.BrixConfig, seed uint32) round.Settings {
	s := round.DefaultSettings(seed)
	s.Rules = cfg.Rules
	s.Attacks = cfg.Attacks

	start, top, ticks := config.NewDifficultyManager(cfg.Difficulty).Ramp(cfg.Rules.ScrollSpeed)
	s.Rules.ScrollSpeed = start
	s.MaxScrollSpeed = top
	s.RampTicks = ticks
	return s
}
