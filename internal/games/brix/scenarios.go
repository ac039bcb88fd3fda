package brix

import (
	"fmt"

	sim "github.com/vovakirdan/tui-brix/internal/games/brix/core"
	"github.com/vovakirdan/tui-brix/internal/games/brix/round"
	"github.com/vovakirdan/tui-brix/internal/registry"
)

// Scenario is a named demo: a prepared pit that plays out without input,
// or a versus round between two bots.
type Scenario struct {
	ID      string
	Title   string
	Players int
	Bots    bool

	// Setup prepares the pit of the first player before the round starts.
	Setup func(d *sim.BlockDirector) error
}

// NewScenario creates a game that runs sc.
func NewScenario(sc Scenario) *Game {
	s := round.DefaultSettings(0)
	s.Players = sc.Players
	return &Game{
		id:       sc.ID,
		title:    sc.Title,
		settings: s,
		scenario: &sc,
		names:    []string{"BOT 1", "BOT 2"},
	}
}

func (sc *Scenario) start(s round.Settings) (*round.Round, error) {
	if sc.Setup == nil {
		return round.NewRound(s)
	}

	state, err := round.NewGameStateWith(s, func(int) sim.ColorSupplier { return calmColors() })
	if err != nil {
		return nil, err
	}
	if err := sc.Setup(state.Director(0)); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.ID, err)
	}
	r := round.NewRoundWith(state)
	r.SkipIntro()
	return r, nil
}

// calmColors fills new rows so that no row or column of spawned blocks
// lines up three of a kind.
func calmColors() *sim.SequenceColorSupplier {
	colors := make([]sim.Color, sim.PitCols*sim.PlayableColors)
	for i := range colors {
		colors[i] = sim.Color(1 + (i%sim.PitCols+i/sim.PitCols)%sim.PlayableColors)
	}
	return &sim.SequenceColorSupplier{Colors: colors}
}

// Scenarios returns the demos in menu order.
func Scenarios() []Scenario {
	return []Scenario{
		{ID: "land-and-match", Title: "Land and match", Players: 1, Setup: landAndMatch},
		{ID: "horizontal-match", Title: "Horizontal match", Players: 1, Setup: horizontalMatch},
		{ID: "dissolve-garbage", Title: "Dissolve garbage", Players: 1, Setup: dissolveGarbage},
		{ID: "fall-after-shrink", Title: "Fall after shrink", Players: 1, Setup: fallAfterShrink},
		{ID: "chain-garbage", Title: "Chaining garbage", Players: 1, Setup: chainGarbage},
		{ID: "panic", Title: "Panic", Players: 1, Setup: panicPillar},
		{ID: "versus", Title: "Bot versus bot", Players: 2, Bots: true},
	}
}

func init() {
	for _, sc := range Scenarios() {
		registry.Register(sc.ID, func() registry.Game { return NewScenario(sc) })
	}
}

type placement struct {
	r, c  int
	color sim.Color
}

func place(p *sim.Pit, blocks ...placement) error {
	for _, b := range blocks {
		if _, err := p.SpawnBlock(b.color, sim.RC(b.r, b.c), sim.StateRest); err != nil {
			return err
		}
	}
	return nil
}

// commonSetup builds three full rows and a short stack on top, no matches
// anywhere:
//
//	-3:     R Y G
//	-2: B R Y G P O
//	-1: O B R Y G P
//	 0: B R Y G P O
func commonSetup(p *sim.Pit) error {
	rows := map[int][]sim.Color{
		0:  {sim.ColorBlue, sim.ColorRed, sim.ColorYellow, sim.ColorGreen, sim.ColorPurple, sim.ColorOrange},
		-1: {sim.ColorOrange, sim.ColorBlue, sim.ColorRed, sim.ColorYellow, sim.ColorGreen, sim.ColorPurple},
		-2: {sim.ColorBlue, sim.ColorRed, sim.ColorYellow, sim.ColorGreen, sim.ColorPurple, sim.ColorOrange},
	}
	for r := 0; r >= -2; r-- {
		for c, color := range rows[r] {
			if err := place(p, placement{r, c, color}); err != nil {
				return err
			}
		}
	}
	return place(p,
		placement{-3, 2, sim.ColorRed},
		placement{-3, 3, sim.ColorYellow},
		placement{-3, 4, sim.ColorGreen},
	)
}

func swapAt(d *sim.BlockDirector, rc sim.RowCol) error {
	d.Pit().SetCursor(rc)
	ok, err := d.SwapAtCursor()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("swap at %s refused", rc)
	}
	return nil
}

// landAndMatch drops a green onto two greens in column 4.
func landAndMatch(d *sim.BlockDirector) error {
	p := d.Pit()
	if err := commonSetup(p); err != nil {
		return err
	}
	if err := place(p, placement{-4, 4, sim.ColorGreen}); err != nil {
		return err
	}
	h, err := p.SpawnBlock(sim.ColorGreen, sim.RC(-5, 4), sim.StateRest)
	if err != nil {
		return err
	}
	return p.Get(h).SetStateSpeed(sim.StateFall, sim.RowHeight, p.Rules().FallSpeed)
}

// horizontalMatch slides a red off the stack into the gap next to two reds.
func horizontalMatch(d *sim.BlockDirector) error {
	p := d.Pit()
	if err := commonSetup(p); err != nil {
		return err
	}
	if err := place(p, placement{-3, 0, sim.ColorRed}, placement{-4, 2, sim.ColorRed}); err != nil {
		return err
	}
	return swapAt(d, sim.RC(-4, 1))
}

// dissolveGarbage lines up three yellows under a full width brick.
func dissolveGarbage(d *sim.BlockDirector) error {
	p := d.Pit()
	if err := commonSetup(p); err != nil {
		return err
	}
	if _, err := p.SpawnGarbage(sim.RC(-5, 0), sim.PitCols, 2); err != nil {
		return err
	}
	return swapAt(d, sim.RC(-2, 2))
}

// fallAfterShrink matches right under a brick that has a gap below it, so
// the brick falls once it has shrunk.
func fallAfterShrink(d *sim.BlockDirector) error {
	p := d.Pit()
	if err := commonSetup(p); err != nil {
		return err
	}
	if _, err := p.SpawnGarbage(sim.RC(-6, 0), sim.PitCols, 2); err != nil {
		return err
	}
	if err := place(p, placement{-4, 2, sim.ColorYellow}); err != nil {
		return err
	}
	return swapAt(d, sim.RC(-3, 2))
}

// chainGarbage dissolves a three row brick. Its loot lands with the
// chaining flag, one row per dissolve cycle.
func chainGarbage(d *sim.BlockDirector) error {
	p := d.Pit()
	if err := commonSetup(p); err != nil {
		return err
	}
	if _, err := p.SpawnGarbage(sim.RC(-6, 0), sim.PitCols, 3); err != nil {
		return err
	}
	return swapAt(d, sim.RC(-2, 2))
}

// panicPillar stacks a column almost to the top. The pit fills, panics and
// finally goes over.
func panicPillar(d *sim.BlockDirector) error {
	p := d.Pit()
	if err := commonSetup(p); err != nil {
		return err
	}
	return place(p,
		placement{-4, 3, sim.ColorRed},
		placement{-5, 3, sim.ColorYellow},
		placement{-6, 3, sim.ColorGreen},
		placement{-7, 3, sim.ColorPurple},
		placement{-8, 3, sim.ColorOrange},
	)
}
