package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-brix/internal/games/brix/core"
)

// calmColors never produces three of a kind in a row or column when the
// colors fill consecutive rows of six.
func calmColors() *core.SequenceColorSupplier {
	colors := make([]core.Color, 36)
	for i := range colors {
		colors[i] = core.Color(1 + (i%6+i/6)%6)
	}
	return &core.SequenceColorSupplier{Colors: colors}
}

func newPit() *core.Pit {
	return core.NewPit(core.DefaultRules(), calmColors())
}

func spawn(t *testing.T, p *core.Pit, color core.Color, r, c int) core.Handle {
	t.Helper()
	h, err := p.SpawnBlock(color, core.RC(r, c), core.StateRest)
	require.NoError(t, err)
	return h
}

// newFixture builds two full rows, one more row and a short stack on top,
// no matches anywhere:
//
//	-3:     R Y G
//	-2: B R Y G P O
//	-1: O B R Y G P
//	 0: B R Y G P O
func newFixture(t *testing.T) (*core.Pit, *core.BlockDirector) {
	t.Helper()
	p := newPit()
	rows := map[int][]core.Color{
		0:  {core.ColorBlue, core.ColorRed, core.ColorYellow, core.ColorGreen, core.ColorPurple, core.ColorOrange},
		-1: {core.ColorOrange, core.ColorBlue, core.ColorRed, core.ColorYellow, core.ColorGreen, core.ColorPurple},
		-2: {core.ColorBlue, core.ColorRed, core.ColorYellow, core.ColorGreen, core.ColorPurple, core.ColorOrange},
	}
	for r := 0; r >= -2; r-- {
		for c, color := range rows[r] {
			spawn(t, p, color, r, c)
		}
	}
	spawn(t, p, core.ColorRed, -3, 2)
	spawn(t, p, core.ColorYellow, -3, 3)
	spawn(t, p, core.ColorGreen, -3, 4)
	return p, core.NewBlockDirector(p)
}

// spawnFalling puts a block in motion from the given row. A falling block
// already claims the row it is falling into.
func spawnFalling(t *testing.T, p *core.Pit, color core.Color, r, c int) *core.Occupant {
	t.Helper()
	h := spawn(t, p, color, r+1, c)
	o := p.Get(h)
	require.NoError(t, o.SetStateSpeed(core.StateFall, core.RowHeight, core.FallSpeed))
	return o
}

func run(t *testing.T, d *core.BlockDirector, ticks int) {
	t.Helper()
	for i := 0; i < ticks; i++ {
		require.NoError(t, d.Update())
		require.NoError(t, d.Pit().CheckConsistency())
	}
}

// ticksToFall is how many ticks it takes to fall the given number of rows.
func ticksToFall(rows int) int {
	return (rows*core.RowHeight + core.FallSpeed - 1) / core.FallSpeed
}

// recorder keeps every event it is notified of.
type recorder struct {
	events []core.Event
}

func (r *recorder) Notify(e core.Event) { r.events = append(r.events, e) }

func (r *recorder) count(name string) int {
	n := 0
	for _, e := range r.events {
		if e.Name() == name {
			n++
		}
	}
	return n
}

func (r *recorder) lastMatch() (core.Match, bool) {
	for i := len(r.events) - 1; i >= 0; i-- {
		if m, ok := r.events[i].(core.Match); ok {
			return m, true
		}
	}
	return core.Match{}, false
}

func (r *recorder) lastChain() (core.ChainFinished, bool) {
	for i := len(r.events) - 1; i >= 0; i-- {
		if c, ok := r.events[i].(core.ChainFinished); ok {
			return c, true
		}
	}
	return core.ChainFinished{}, false
}

// runRecorded runs ticks and feeds all events through a hub into rec.
func runRecorded(t *testing.T, d *core.BlockDirector, rec *recorder, ticks int) {
	t.Helper()
	hub := &core.Hub{}
	hub.Add(rec)
	for i := 0; i < ticks; i++ {
		require.NoError(t, d.Update())
		hub.Publish(d.Events().Drain())
	}
}
