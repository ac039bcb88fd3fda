package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-brix/internal/games/brix/core"
)

func TestCursorMovedEvent(t *testing.T) {
	d := core.NewBlockDirector(newPit())
	assert.True(t, d.MoveCursor(core.DirRight))
	assert.False(t, d.MoveCursor(core.DirNone))

	events := d.Events().Drain()
	require.Len(t, events, 1)
	assert.Equal(t, core.CursorMoved{To: core.RC(-5, 3)}, events[0])
	assert.Zero(t, d.Events().Len())
}

func TestSwapEvent(t *testing.T) {
	p := newPit()
	d := core.NewBlockDirector(p)
	spawn(t, p, core.ColorBlue, 0, 0)
	spawn(t, p, core.ColorRed, 0, 1)
	rec := &recorder{}
	hub := &core.Hub{}
	hub.Add(rec)

	for _, rc := range []core.RowCol{core.RC(0, 0), core.RC(0, 1), core.RC(-1, 1)} {
		_, err := d.Swap(rc)
		require.NoError(t, err)
	}
	hub.Publish(d.Events().Drain())
	assert.Equal(t, 2, rec.count("swap_started"))
}

// matchSetup lines up B B R B R in the bottom row with R above the middle.
// Swapping the middle pair matches the blues; the red then falls into a
// second match.
func matchSetup(t *testing.T) *core.BlockDirector {
	p := newPit()
	d := core.NewBlockDirector(p)
	spawn(t, p, core.ColorBlue, 0, 0)
	spawn(t, p, core.ColorBlue, 0, 1)
	spawn(t, p, core.ColorRed, 0, 2)
	spawn(t, p, core.ColorBlue, 0, 3)
	spawn(t, p, core.ColorRed, 0, 4)
	spawn(t, p, core.ColorRed, -1, 2)
	ok, err := d.Swap(core.RC(0, 2))
	require.NoError(t, err)
	require.True(t, ok)
	return d
}

func TestMatchEvent(t *testing.T) {
	d := matchSetup(t)
	rec := &recorder{}

	runRecorded(t, d, rec, core.SwapTime)
	m, ok := rec.lastMatch()
	require.True(t, ok)
	assert.Equal(t, core.Match{Combo: 3, Chaining: false}, m)

	runRecorded(t, d, rec, core.BreakTime+ticksToFall(1))
	m, _ = rec.lastMatch()
	assert.Equal(t, core.Match{Combo: 3, Chaining: true}, m)
	assert.Equal(t, 3, rec.count("block_died"))
}

func TestChainEvent(t *testing.T) {
	d := matchSetup(t)
	rec := &recorder{}

	runRecorded(t, d, rec, core.SwapTime+core.BreakTime+ticksToFall(1)+core.BreakTime)
	c, ok := rec.lastChain()
	require.True(t, ok)
	assert.Equal(t, 1, c.Counter)
	assert.Equal(t, 1, rec.count("chain_finished"))
	assert.Zero(t, d.Chain())
}

func TestBlockDiedEvent(t *testing.T) {
	p := newPit()
	d := core.NewBlockDirector(p)
	rec := &recorder{}

	_, err := p.SpawnBlock(core.ColorBlue, core.RC(0, 0), core.StateBreak)
	require.NoError(t, err)
	runRecorded(t, d, rec, core.BreakTime)
	assert.Equal(t, 1, rec.count("block_died"))

	_, err = p.SpawnBlock(core.ColorFake, core.RC(0, 0), core.StateBreak)
	require.NoError(t, err)
	runRecorded(t, d, rec, core.BreakTime)
	assert.Equal(t, 1, rec.count("block_died"), "filler dies silently")
}

func TestGarbageDissolvedEvent(t *testing.T) {
	p := newPit()
	d := core.NewBlockDirector(p)
	spawn(t, p, core.ColorBlue, 0, 0)
	spawn(t, p, core.ColorBlue, 0, 1)
	spawn(t, p, core.ColorBlue, 0, 3)
	_, err := p.SpawnGarbage(core.RC(-1, 2), 3, 1)
	require.NoError(t, err)

	ok, err := d.Swap(core.RC(0, 2))
	require.NoError(t, err)
	require.True(t, ok)

	rec := &recorder{}
	runRecorded(t, d, rec, core.SwapTime+core.DissolveTime)
	assert.Equal(t, 1, rec.count("garbage_dissolved"))
	require.NoError(t, p.CheckConsistency())
	assert.Nil(t, p.GarbageAt(core.RC(-1, 3)))
}

func TestWideGarbageShrinksOneRowPerCycle(t *testing.T) {
	p := newPit()
	d := core.NewBlockDirector(p)
	spawn(t, p, core.ColorBlue, 0, 0)
	spawn(t, p, core.ColorBlue, 0, 1)
	spawn(t, p, core.ColorRed, 0, 2)
	spawn(t, p, core.ColorBlue, 0, 3)
	spawn(t, p, core.ColorGreen, 0, 4)
	spawn(t, p, core.ColorYellow, 0, 5)
	gh, err := p.SpawnGarbage(core.RC(-2, 0), 6, 2)
	require.NoError(t, err)
	loot := append([]core.Color(nil), p.Get(gh).Garbage().Loot[:6]...)

	ok, err := d.Swap(core.RC(0, 2))
	require.NoError(t, err)
	require.True(t, ok)

	rec := &recorder{}
	runRecorded(t, d, rec, core.SwapTime+core.DissolveTime)
	assert.Equal(t, 1, rec.count("garbage_dissolved"))
	assert.Equal(t, 1, p.Get(gh).Rows())

	// one block per column, in loot order, where the lowest row was
	for c, color := range loot {
		b := p.BlockAt(core.RC(-1, c))
		if b == nil {
			// fell into the gap left by the match
			b = p.BlockAt(core.RC(0, c))
		}
		require.NotNil(t, b, "column %d", c)
		assert.Equal(t, color, b.Block().Color, "column %d", c)
		assert.True(t, b.Block().Chaining || b.State() == core.StateRest)
	}
}
