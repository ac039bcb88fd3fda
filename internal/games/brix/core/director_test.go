package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-brix/internal/games/brix/core"
)

func TestLandAndMatch(t *testing.T) {
	p, d := newFixture(t)
	top := spawnFalling(t, p, core.ColorRed, -7, 2)
	mid := spawnFalling(t, p, core.ColorRed, -5, 2)

	run(t, d, ticksToFall(2))
	assert.Equal(t, core.StateBreak, top.State())
	assert.Equal(t, core.StateBreak, mid.State())
	topRC, midRC := top.RC(), mid.RC()

	run(t, d, core.BreakTime)
	assert.Nil(t, p.OccupantAt(topRC))
	assert.Nil(t, p.OccupantAt(midRC))
}

func TestHorizontalMatch(t *testing.T) {
	p, d := newFixture(t)
	spawn(t, p, core.ColorRed, -3, 0)
	block := p.Get(spawn(t, p, core.ColorRed, -4, 2))

	target := core.RC(-4, 1)
	ok, err := d.Swap(target)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, target, block.RC())
	assert.Equal(t, core.StateSwapLeft, block.State())
	assert.InDelta(t, float64(core.SwapTime), block.ETA(), 1e-9)

	run(t, d, core.SwapTime-1)
	assert.Equal(t, target, block.RC())
	assert.Equal(t, core.StateSwapLeft, block.State())
	run(t, d, 1)
	assert.Equal(t, core.RC(-3, 1), block.RC())
	assert.Equal(t, core.StateFall, block.State())

	run(t, d, ticksToFall(1)-1)
	assert.Equal(t, core.StateFall, block.State())
	run(t, d, 1)
	assert.Equal(t, core.StateBreak, block.State())
	assert.InDelta(t, float64(core.BreakTime), block.ETA(), 1e-9)

	run(t, d, core.BreakTime-1)
	assert.InDelta(t, 1.0, block.ETA(), 1e-9)
	run(t, d, 1)
	for c := 0; c <= 2; c++ {
		assert.Nil(t, p.OccupantAt(core.RC(-3, c)), "column %d", c)
	}
}

// swapByHand starts a swap without going through the director.
func swapByHand(t *testing.T, p *core.Pit, l, r core.RowCol) {
	t.Helper()
	lh, ok := p.At(l)
	require.True(t, ok)
	rh, ok := p.At(r)
	require.True(t, ok)
	require.NoError(t, p.Get(lh).SetState(core.StateSwapRight, core.SwapTime))
	require.NoError(t, p.Get(rh).SetState(core.StateSwapLeft, core.SwapTime))
	require.NoError(t, p.Swap(lh, rh))
}

func TestDissolveGarbage(t *testing.T) {
	p, d := newFixture(t)
	gh, err := p.SpawnGarbage(core.RC(-5, 0), 6, 2)
	require.NoError(t, err)
	garbage := p.Get(gh)

	// three yellows in column 3
	swapByHand(t, p, core.RC(-2, 2), core.RC(-2, 3))

	run(t, d, 52)
	assert.Equal(t, 1, garbage.Rows())
	assert.Nil(t, p.GarbageAt(core.RC(-4, 3)), "garbage shrunk")
	assert.NotNil(t, p.BlockAt(core.RC(-4, 2)), "block remains")
	assert.Nil(t, p.BlockAt(core.RC(-4, 0)), "block fell")
	assert.NotNil(t, p.BlockAt(core.RC(-3, 0)), "down to here")
}

func TestDissolveAndFall(t *testing.T) {
	p, d := newFixture(t)
	_, err := p.SpawnGarbage(core.RC(-5, 0), 6, 2)
	require.NoError(t, err)
	swapByHand(t, p, core.RC(-2, 2), core.RC(-2, 3))

	run(t, d, core.SwapTime+core.DissolveTime+2)
	assert.Nil(t, p.OccupantAt(core.RC(-2, 3)), "matched away")
	assert.Nil(t, p.BlockAt(core.RC(-4, 3)), "loot block fell")
	assert.NotNil(t, p.BlockAt(core.RC(-3, 3)))
}

func TestFallAfterShrink(t *testing.T) {
	p, d := newFixture(t)
	gh, err := p.SpawnGarbage(core.RC(-6, 0), 6, 2)
	require.NoError(t, err)
	garbage := p.Get(gh)

	// vertical match right under the garbage
	spawn(t, p, core.ColorYellow, -4, 2)
	swapByHand(t, p, core.RC(-3, 2), core.RC(-3, 3))

	run(t, d, core.SwapTime+core.DissolveTime+2)
	assert.Equal(t, core.StateFall, garbage.State())
	assert.Nil(t, p.GarbageAt(core.RC(-6, 0)))
	assert.Same(t, garbage, p.GarbageAt(core.RC(-5, 3)))
}

func TestFallAfterSwap(t *testing.T) {
	p, d := newFixture(t)
	red := p.Get(spawn(t, p, core.ColorRed, -4, 4))

	fallTime := ticksToFall(1)
	landMoment := max(core.SwapTime, fallTime) + 1
	swapStart := landMoment - core.SwapTime
	spawnMoment := landMoment - fallTime - 1

	var green *core.Occupant
	swapping := false
	for tick := 0; tick < landMoment; tick++ {
		if tick == swapStart {
			ok, err := d.Swap(core.RC(-4, 4))
			require.NoError(t, err)
			swapping = ok
		}
		if tick == spawnMoment {
			green = spawnFalling(t, p, core.ColorGreen, -6, 5)
		}
		if tick == landMoment-1 {
			assert.InDelta(t, 1.0, red.ETA(), 1e-9)
			assert.Equal(t, core.StateSwapRight, red.State())
			assert.Equal(t, core.StateLand, green.State())
		}
		run(t, d, 1)
	}

	require.True(t, swapping)
	require.NotNil(t, green)
	assert.Equal(t, core.RC(-3, 5), red.RC())
	assert.Equal(t, core.StateFall, red.State())
	assert.Equal(t, core.RC(-4, 5), green.RC())
	assert.Equal(t, core.StateFall, green.State())
}

func TestChainingFallBlock(t *testing.T) {
	p, d := newFixture(t)
	red := p.BlockAt(core.RC(-3, 2))
	require.NotNil(t, red)

	ok, err := d.Swap(core.RC(-1, 2)) // yellows line up vertically
	require.NoError(t, err)
	require.True(t, ok)

	run(t, d, core.SwapTime+core.BreakTime)
	assert.Equal(t, core.RC(-2, 2), red.RC())
	assert.Equal(t, core.StateFall, red.State())
	assert.True(t, red.Block().Chaining)

	run(t, d, ticksToFall(3))
	assert.Equal(t, core.RC(0, 2), red.RC())
	assert.Equal(t, core.StateLand, red.State())
	assert.False(t, red.Block().Chaining)
}

func TestChainingGarbageBlock(t *testing.T) {
	p, d := newFixture(t)
	_, err := p.SpawnGarbage(core.RC(-5, 0), 6, 2)
	require.NoError(t, err)
	ok, err := d.Swap(core.RC(-2, 2))
	require.NoError(t, err)
	require.True(t, ok)

	run(t, d, core.SwapTime+core.DissolveTime)

	// loot blocks that settle on something without matching stop chaining
	expect := map[core.RowCol]bool{
		core.RC(-3, 0): true,
		core.RC(-3, 1): true,
		core.RC(-4, 2): false,
		core.RC(-3, 3): true,
		core.RC(-4, 4): false,
		core.RC(-3, 5): true,
	}
	for rc, chaining := range expect {
		b := p.BlockAt(rc)
		require.NotNil(t, b, rc.String())
		assert.Equal(t, chaining, b.Block().Chaining, rc.String())
	}
}

func TestChainingSwapBlock(t *testing.T) {
	p, d := newFixture(t)
	red := p.BlockAt(core.RC(-3, 2))
	require.NotNil(t, red)

	ok, err := d.Swap(core.RC(-1, 2))
	require.NoError(t, err)
	require.True(t, ok)
	run(t, d, core.SwapTime+core.BreakTime)
	require.Equal(t, core.StateFall, red.State())

	run(t, d, ticksToFall(2)+1)
	require.Equal(t, core.RC(0, 2), red.RC())
	require.Equal(t, core.StateFall, red.State())
	assert.True(t, red.Block().Chaining)

	green := p.BlockAt(core.RC(0, 3))
	require.NotNil(t, green)
	ok, err = d.Swap(core.RC(0, 2)) // skill chain
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, red.Block().Chaining)
	assert.True(t, green.Block().Chaining)
}

func TestPanic(t *testing.T) {
	p, d := newFixture(t)
	colors := []core.Color{core.ColorRed, core.ColorYellow, core.ColorGreen, core.ColorPurple, core.ColorOrange}
	for i, color := range colors {
		spawn(t, p, color, -4-i, 3)
	}

	timeToFull := core.RowHeight / core.ScrollSpeed
	run(t, d, timeToFull)
	assert.False(t, d.IsPanic())
	assert.False(t, d.Over())

	run(t, d, 1)
	assert.True(t, d.IsPanic())
	assert.False(t, d.Over())

	run(t, d, core.PanicTime-1)
	assert.True(t, d.IsPanic())
	assert.False(t, d.Over())

	run(t, d, 1)
	assert.True(t, d.IsPanic())
	assert.True(t, d.Over())
}

func TestRecoveryPausesScroll(t *testing.T) {
	p := newPit()
	d := core.NewBlockDirector(p)
	spawn(t, p, core.ColorBlue, 0, 0)
	spawn(t, p, core.ColorBlue, 0, 1)
	spawn(t, p, core.ColorRed, 0, 2)
	spawn(t, p, core.ColorBlue, 0, 3)
	spawn(t, p, core.ColorBlue, -1, 2)
	spawn(t, p, core.ColorBlue, -2, 2)

	// the blue swapped in completes a row and a column: combo 5
	ok, err := d.Swap(core.RC(0, 2))
	require.NoError(t, err)
	require.True(t, ok)
	run(t, d, core.SwapTime)
	assert.Equal(t, core.BreakTime+core.RecoveryTime-1, p.Recovery())

	scroll := p.Scroll()
	run(t, d, 5)
	assert.Equal(t, scroll, p.Scroll())
}

func TestRaiseLastsUntilTheNextRow(t *testing.T) {
	p, d := newFixture(t)
	bottom := p.Bottom()

	// A terminal press: the button goes down and up before the first tick.
	p.SetRaise(true)
	p.SetRaise(false)
	scroll := p.Scroll()
	require.NoError(t, d.Update())
	assert.True(t, p.IsRaising(), "the opening preview row ends no raise")
	assert.Equal(t, scroll+core.RaiseSpeed, p.Scroll())

	ticks := 1
	for p.Bottom() == bottom && ticks <= core.RowHeight/core.RaiseSpeed+1 {
		assert.True(t, p.IsRaising(), "tick %d", ticks)
		require.NoError(t, d.Update())
		ticks++
	}
	assert.Equal(t, bottom+1, p.Bottom())
	assert.False(t, p.IsRaising())
}

func TestPreviewRowKeepsClaimedCells(t *testing.T) {
	p, d := newFixture(t)
	row := p.Bottom() + 1
	h := spawn(t, p, core.ColorBlue, row, 0)

	require.NoError(t, d.Update())
	kept, ok := p.At(core.RC(row, 0))
	require.True(t, ok)
	assert.Equal(t, h, kept)
	assert.Equal(t, core.StateRest, p.Get(h).State())
	for c := 1; c < core.PitCols; c++ {
		o := p.BlockAt(core.RC(row, c))
		require.NotNil(t, o, "column %d", c)
		assert.Equal(t, core.StatePreview, o.State(), "column %d", c)
	}
}

func TestSwapRules(t *testing.T) {
	p, d := newFixture(t)

	ok, err := d.Swap(core.RC(-3, core.PitCols-1))
	require.NoError(t, err)
	assert.False(t, ok, "right edge")

	ok, err = d.Swap(core.RC(-6, 0))
	require.NoError(t, err)
	assert.False(t, ok, "both empty")

	_, err = p.SpawnGarbage(core.RC(-5, 0), 2, 1)
	require.NoError(t, err)
	ok, err = d.Swap(core.RC(-5, 1))
	require.NoError(t, err)
	assert.False(t, ok, "garbage")

	b := p.BlockAt(core.RC(0, 0))
	require.NoError(t, b.SetState(core.StateBreak, core.BreakTime))
	ok, err = d.Swap(core.RC(0, 0))
	require.NoError(t, err)
	assert.False(t, ok, "breaking block")
	assert.Equal(t, core.RC(0, 0), b.RC())
	assert.Zero(t, d.Events().Len())

	ok, err = d.Swap(core.RC(0, 1))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, d.Events().Len())
}

func TestDropGarbageLandsOnStack(t *testing.T) {
	p, d := newFixture(t)
	require.NoError(t, d.DropGarbage(core.PitCols, 1))
	run(t, d, 200)

	var garbage *core.Occupant
	for _, h := range p.Handles() {
		if o := p.Get(h); o.Kind() == core.KindGarbage {
			garbage = o
		}
	}
	require.NotNil(t, garbage)
	assert.Equal(t, core.StateRest, garbage.State())
	assert.Equal(t, core.RC(-4, 0), garbage.RC(), "rests on the short stack")
}

func TestDeterministicRun(t *testing.T) {
	play := func(d *core.BlockDirector, from, to int) []uint64 {
		var hashes []uint64
		for tick := from; tick < to; tick++ {
			if tick%7 == 0 {
				d.MoveCursor([]core.Dir{core.DirLeft, core.DirDown, core.DirRight, core.DirUp}[tick%4])
			}
			if tick%5 == 0 {
				_, err := d.SwapAtCursor()
				require.NoError(t, err)
			}
			if tick == 300 {
				require.NoError(t, d.DropGarbage(3, 2))
			}
			require.NoError(t, d.Update())
			require.NoError(t, d.Pit().CheckConsistency())
			d.Events().Drain()
			hashes = append(hashes, d.Snapshot().Hash())
		}
		return hashes
	}
	newDirector := func() *core.BlockDirector {
		return core.NewBlockDirector(core.NewPit(core.DefaultRules(), core.NewRandomColorSupplier(42, 0)))
	}

	a := play(newDirector(), 0, 900)
	b := newDirector()
	first := play(b, 0, 450)
	fork := b.Clone()
	second := play(b, 450, 900)
	forked := play(fork, 450, 900)

	assert.Equal(t, a, append(first, second...))
	assert.Equal(t, second, forked)
}
