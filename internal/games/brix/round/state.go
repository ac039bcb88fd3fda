package round

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/vovakirdan/tui-brix/internal/games/brix/core"
)

// PlayerEvent is a pit event tagged with the player it happened to.
type PlayerEvent struct {
	Player int
	Event  core.Event
}

// GameState is the complete simulation of a round: one pit and director
// per player plus the game time.
type GameState struct {
	settings  Settings
	directors []*core.BlockDirector
	gameTime  int
	events    []PlayerEvent
}

// NewGameState creates the pits. Player p draws colors from a stream
// seeded by seed*(p+1).
func NewGameState(s Settings) (*GameState, error) {
	return NewGameStateWith(s, func(player int) core.ColorSupplier {
		return core.NewRandomColorSupplier(s.Seed, player)
	})
}

// NewGameStateWith creates the pits with custom color suppliers, for
// scripted scenarios.
func NewGameStateWith(s Settings, colors func(player int) core.ColorSupplier) (*GameState, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	g := &GameState{settings: s}
	for p := 0; p < s.Players; p++ {
		pit := core.NewPit(s.Rules, colors(p))
		g.directors = append(g.directors, core.NewBlockDirector(pit))
	}
	return g, nil
}

// Settings returns the settings the state was created with.
func (g *GameState) Settings() Settings { return g.settings }

// GameTime returns the number of ticks simulated so far.
func (g *GameState) GameTime() int { return g.gameTime }

// Players returns the number of pits.
func (g *GameState) Players() int { return len(g.directors) }

// Director returns the director of a player.
func (g *GameState) Director(player int) *core.BlockDirector {
	return g.directors[player]
}

// ApplyInput performs one button edge. Moves, swaps and raise presses act on
// the DOWN edge; releasing RAISE lets the stack stop at the next row.
func (g *GameState) ApplyInput(in GameInput) error {
	if in.Player < 0 || in.Player >= len(g.directors) {
		return fmt.Errorf("round: input for unknown player %d", in.Player)
	}
	d := g.directors[in.Player]

	switch in.Button {
	case ButtonLeft, ButtonRight, ButtonUp, ButtonDown:
		if in.Action == ActionDown {
			d.MoveCursor(in.Button.Dir())
		}
	case ButtonSwap:
		if in.Action == ActionDown {
			if _, err := d.SwapAtCursor(); err != nil {
				return err
			}
		}
	case ButtonRaise:
		d.Pit().SetRaise(in.Action == ActionDown)
	}
	return nil
}

// Update advances every pit by one tick, then delivers the garbage earned
// in this tick to the opponents.
func (g *GameState) Update() error {
	speed := g.settings.ScrollSpeedAt(g.gameTime)
	for p, d := range g.directors {
		d.Pit().SetScrollSpeed(speed)
		if err := d.Update(); err != nil {
			return fmt.Errorf("round: player %d at %d: %w", p, g.gameTime, err)
		}
	}

	var attacks []attack
	for p, d := range g.directors {
		for _, e := range d.Events().Drain() {
			g.events = append(g.events, PlayerEvent{Player: p, Event: e})
			if a, ok := attackFor(e); ok && g.settings.Attacks {
				a.from = p
				attacks = append(attacks, a)
			}
		}
	}
	for _, a := range attacks {
		for p, d := range g.directors {
			if p == a.from || d.Over() {
				continue
			}
			if err := d.DropGarbage(a.columns, a.rows); err != nil {
				return fmt.Errorf("round: garbage for player %d: %w", p, err)
			}
		}
	}

	g.gameTime++
	return nil
}

// Drain returns the events of all ticks since the last drain.
func (g *GameState) Drain() []PlayerEvent {
	out := g.events
	g.events = nil
	return out
}

// Over reports whether any player has lost.
func (g *GameState) Over() bool {
	for _, d := range g.directors {
		if d.Over() {
			return true
		}
	}
	return false
}

// Winner names the player still standing once somebody is over. When every
// pit goes over in the same tick, the first player wins. A single pit has no
// winner.
func (g *GameState) Winner() int {
	if len(g.directors) < 2 || !g.Over() {
		return core.NoOne
	}
	for p, d := range g.directors {
		if !d.Over() {
			return p
		}
	}
	return 0
}

// Clone returns an independent copy. Undrained events are not copied.
func (g *GameState) Clone() *GameState {
	c := &GameState{settings: g.settings, gameTime: g.gameTime}
	for _, d := range g.directors {
		c.directors = append(c.directors, d.Clone())
	}
	return c
}

// Snapshots captures every pit.
func (g *GameState) Snapshots() []core.PitSnapshot {
	out := make([]core.PitSnapshot, len(g.directors))
	for p, d := range g.directors {
		out[p] = d.Snapshot()
	}
	return out
}

// Hash digests the game time and all pits.
func (g *GameState) Hash() uint64 {
	d := xxhash.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(g.gameTime))
	_, _ = d.Write(buf[:])
	for _, s := range g.Snapshots() {
		binary.LittleEndian.PutUint64(buf[:], s.Hash())
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}
