package round

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/tui-brix/internal/games/brix/core"
)

// MaxPlayers is the number of pits a round can hold.
const MaxPlayers = 2

// Settings fixes everything a simulation depends on besides the inputs.
// Two peers with equal settings and equal inputs reach equal states.
type Settings struct {
	Players int
	Seed    uint32
	Rules   core.Rules

	// Attacks sends garbage to the opponent for big combos and chains.
	Attacks bool

	// MaxScrollSpeed and RampTicks speed up scrolling linearly from
	// Rules.ScrollSpeed to MaxScrollSpeed over RampTicks ticks. A zero
	// RampTicks keeps the speed fixed.
	MaxScrollSpeed int
	RampTicks      int
}

// DefaultSettings is a two player versus round with attacks and fixed speed.
func DefaultSettings(seed uint32) Settings {
	return Settings{
		Players: MaxPlayers,
		Seed:    seed,
		Rules:   core.DefaultRules(),
		Attacks: true,
	}
}

// Meta returns the meta record of a round with these settings.
func (s Settings) Meta(winner int) GameMeta {
	return GameMeta{Players: s.Players, Seed: s.Seed, Winner: winner}
}

// Validate reports unusable settings.
func (s Settings) Validate() error {
	if s.Players < 1 || s.Players > MaxPlayers {
		return fmt.Errorf("round: players must be 1..%d, got %d", MaxPlayers, s.Players)
	}
	if err := s.Rules.Validate(); err != nil {
		return err
	}
	if s.RampTicks < 0 {
		return errors.New("round: ramp ticks must not be negative")
	}
	if s.RampTicks > 0 && s.MaxScrollSpeed < s.Rules.ScrollSpeed {
		return errors.New("round: max scroll speed below base scroll speed")
	}
	return nil
}

// ScrollSpeedAt returns the normal scroll speed at a game time. Integer
// arithmetic only, so every platform agrees.
func (s Settings) ScrollSpeedAt(gameTime int) int {
	base := s.Rules.ScrollSpeed
	if s.RampTicks <= 0 || s.MaxScrollSpeed <= base {
		return base
	}
	if gameTime >= s.RampTicks {
		return s.MaxScrollSpeed
	}
	return base + (s.MaxScrollSpeed-base)*gameTime/s.RampTicks
}
