// Package brix puts the brix round behind the platform interfaces: the
// registry game driven by the local Bubble Tea model, the online game
// driven by the server match loop, the screen renderer and the scripted
// demo scenarios.
package brix

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/tui-brix/internal/core"
	sim "github.com/vovakirdan/tui-brix/internal/games/brix/core"
	"github.com/vovakirdan/tui-brix/internal/games/brix/round"
	"github.com/vovakirdan/tui-brix/internal/multiplayer"
	"github.com/vovakirdan/tui-brix/internal/registry"
)

// ID is the registry name of the versus game.
const ID = "brix"

// bannerTicks is how long a combo or chain banner stays up.
const bannerTicks = sim.TPS

var errNotStarted = errors.New("brix: game not started")

// Game is one brix round. The same type runs local versus on one
// keyboard, the demo scenarios and the authoritative server side of an
// online match.
type Game struct {
	id       string
	title    string
	settings round.Settings
	scenario *Scenario
	names    []string

	round   *round.Round
	bots    []*Bot
	banners []banner
	paused  bool
	seed    uint32
	state   core.GameState
}

type banner struct {
	text string
	left int
}

var (
	_ registry.Game            = (*Game)(nil)
	_ multiplayer.OnlineGame   = (*Game)(nil)
	_ multiplayer.GameSnapshot = Snapshot{}
)

// New creates a versus game. Reset starts the round.
func New(settings round.Settings) *Game {
	return &Game{
		id:       ID,
		title:    "Brix Versus",
		settings: settings,
		names:    []string{"P1", "P2"},
	}
}

// ID returns the game identifier.
func (g *Game) ID() string { return g.id }

// Title returns the display name.
func (g *Game) Title() string { return g.title }

// SetNames sets the labels shown above the pits.
func (g *Game) SetNames(names ...string) {
	for i, n := range names {
		if i < len(g.names) && n != "" {
			g.names[i] = n
		}
	}
}

// Names returns the seat labels.
func (g *Game) Names() []string { return append([]string(nil), g.names...) }

// Reset starts a new round. A non-zero cfg.Seed replaces the seed of the
// settings.
func (g *Game) Reset(cfg core.RuntimeConfig) error {
	s := g.settings
	if cfg.Seed != 0 {
		s.Seed = cfg.Seed
	}

	var (
		r   *round.Round
		err error
	)
	if g.scenario != nil {
		r, err = g.scenario.start(s)
	} else {
		r, err = round.NewRound(s)
	}
	if err != nil {
		return fmt.Errorf("brix: cannot start round: %w", err)
	}

	g.round = r
	g.seed = s.Seed
	g.paused = false
	g.banners = make([]banner, s.Players)
	g.bots = nil
	if g.scenario != nil && g.scenario.Bots {
		for p := range s.Players {
			g.bots = append(g.bots, NewBot(s.Seed, p))
		}
	}
	g.updateState()
	return nil
}

// Step advances the round by one tick. Player 1 may pause a round that has
// not ended yet.
func (g *Game) Step(in core.MultiInputFrame) (core.StepResult, error) {
	if g.round == nil {
		return core.StepResult{}, errNotStarted
	}
	if in.Player(core.Player1).Has(core.ActionPause) && g.round.Phase() != round.PhaseResult {
		g.paused = !g.paused
	}
	if g.paused || g.round.Phase() == round.PhaseResult {
		g.updateState()
		return core.StepResult{State: g.state}, nil
	}

	if g.round.Phase() == round.PhasePlay {
		players := g.round.State().Players()
		for p := range players {
			frame := in.Player(core.PlayerID(p))
			if p < len(g.bots) {
				frame = g.bots[p].Next(g.round.State().Director(p).Snapshot())
			}
			for _, gi := range inputsFor(p, frame) {
				if err := g.round.Input(gi); err != nil {
					return core.StepResult{State: g.state}, fmt.Errorf("brix: input %s: %w", gi, err)
				}
			}
		}
	}

	if err := g.round.Tick(); err != nil {
		return core.StepResult{State: g.state}, fmt.Errorf("brix: tick %d: %w", g.round.State().GameTime(), err)
	}
	g.collectEvents()
	g.updateState()
	return core.StepResult{State: g.state}, nil
}

// StepMulti implements multiplayer.OnlineGame.
func (g *Game) StepMulti(in core.MultiInputFrame) (core.StepResult, error) {
	return g.Step(in)
}

// buttons maps platform actions to the buttons of the round, in the order
// they are journaled.
var buttons = []struct {
	action core.Action
	button round.GameButton
}{
	{core.ActionLeft, round.ButtonLeft},
	{core.ActionRight, round.ButtonRight},
	{core.ActionUp, round.ButtonUp},
	{core.ActionDown, round.ButtonDown},
	{core.ActionSwap, round.ButtonSwap},
}

// inputsFor turns one frame into round inputs for the next tick. A
// terminal reports key presses, not releases, so a raise press is a DOWN
// edge followed by an UP edge: the stack rises until the next row spawns.
func inputsFor(player int, frame core.InputFrame) []round.GameInput {
	var out []round.GameInput
	press := func(b round.GameButton, a round.ButtonAction) {
		out = append(out, round.GameInput{GameTime: round.TimeASAP, Player: player, Button: b, Action: a})
	}
	for _, b := range buttons {
		if frame.Has(b.action) {
			press(b.button, round.ActionDown)
		}
	}
	if frame.Has(core.ActionRaise) {
		press(round.ButtonRaise, round.ActionDown)
		press(round.ButtonRaise, round.ActionUp)
	}
	return out
}

func (g *Game) collectEvents() {
	for p := range g.banners {
		if g.banners[p].left > 0 {
			g.banners[p].left--
		}
	}
	for _, pe := range g.round.Drain() {
		switch e := pe.Event.(type) {
		case sim.Match:
			if e.Combo >= 4 {
				g.banners[pe.Player] = banner{text: fmt.Sprintf("COMBO %d", e.Combo), left: bannerTicks}
			}
		case sim.ChainFinished:
			if e.Counter > 0 {
				g.banners[pe.Player] = banner{text: fmt.Sprintf("CHAIN x%d", e.Counter+1), left: bannerTicks}
			}
		}
	}
}

func (g *Game) updateState() {
	best := 0
	for p := range g.round.State().Players() {
		best = max(best, g.round.Stats(p).Score)
	}
	g.state = core.GameState{
		Score:    best,
		GameOver: g.round.Phase() == round.PhaseResult,
		Paused:   g.paused,
		Winner:   g.round.Winner(),
	}
}

// Render draws the pits and the HUD.
func (g *Game) Render(dst *core.Screen) {
	if g.round == nil {
		return
	}
	RenderSnapshot(dst, g.snapshot())
}

// State returns the state after the last tick.
func (g *Game) State() core.GameState { return g.state }

// Round returns the running round, or nil before Reset.
func (g *Game) Round() *round.Round { return g.round }

// Snapshot implements multiplayer.OnlineGame.
func (g *Game) Snapshot() multiplayer.GameSnapshot { return g.snapshot() }

func (g *Game) snapshot() Snapshot {
	state := g.round.State()
	s := Snapshot{
		Title:     g.title,
		Names:     append([]string(nil), g.names[:state.Players()]...),
		Pits:      state.Snapshots(),
		Phase:     g.round.Phase(),
		IntroLeft: g.round.IntroLeft(),
		Winner:    g.round.Winner(),
		GameTime:  state.GameTime(),
		Paused:    g.paused,
	}
	for p := range state.Players() {
		s.Stats = append(s.Stats, g.round.Stats(p))
		text := ""
		if g.banners[p].left > 0 {
			text = g.banners[p].text
		}
		s.Banners = append(s.Banners, text)
	}
	return s
}

// IsGameOver reports whether the round has a result or was aborted.
func (g *Game) IsGameOver() bool {
	return g.round != nil && g.round.Phase() == round.PhaseResult
}

// Winner returns the winning seat, or multiplayer.NoWinner.
func (g *Game) Winner() int {
	if g.round == nil {
		return multiplayer.NoWinner
	}
	return g.round.Winner()
}

// Score1 returns the score of the first seat.
func (g *Game) Score1() int { return g.score(0) }

// Score2 returns the score of the second seat.
func (g *Game) Score2() int { return g.score(1) }

func (g *Game) score(p int) int {
	if g.round == nil || p >= g.round.State().Players() {
		return 0
	}
	return g.round.Stats(p).Score
}

// Abort ends the round without a winner.
func (g *Game) Abort() {
	if g.round != nil {
		g.round.Abort()
		g.updateState()
	}
}

// GameTime returns the simulated ticks of the play phase.
func (g *Game) GameTime() int {
	if g.round == nil {
		return 0
	}
	return g.round.State().GameTime()
}

// Seed returns the seed of the running round.
func (g *Game) Seed() uint32 { return g.seed }

// Journal returns the compressed journal of the round.
func (g *Game) Journal() ([]byte, error) {
	if g.round == nil {
		return nil, errNotStarted
	}
	return g.round.Journal().Marshal()
}
