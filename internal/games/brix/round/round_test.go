package round_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-brix/internal/games/brix/core"
	"github.com/vovakirdan/tui-brix/internal/games/brix/round"
)

// busySettings scroll fast enough for several rows to come up in a few
// hundred ticks without topping out.
func busySettings() round.Settings {
	s := round.DefaultSettings(7)
	s.Rules.ScrollSpeed = 4
	return s
}

// script presses a button every nine ticks, alternating players, and stops
// ten ticks before the end.
func script(ticks int) []round.GameInput {
	buttons := []round.GameButton{
		round.ButtonDown, round.ButtonDown, round.ButtonSwap, round.ButtonLeft, round.ButtonSwap,
		round.ButtonDown, round.ButtonRight, round.ButtonRight, round.ButtonSwap, round.ButtonUp,
	}
	var out []round.GameInput
	for i, t := 0, 0; t < ticks-10; i, t = i+1, t+9 {
		out = append(out, press(t, i%2, buttons[i%len(buttons)]))
	}
	return out
}

func playOnTime(t *testing.T, ticks int) *round.Round {
	t.Helper()
	r, err := round.NewRound(busySettings())
	require.NoError(t, err)
	r.SkipIntro()
	for _, in := range script(ticks) {
		require.NoError(t, r.Input(in))
	}
	for i := 0; i < ticks; i++ {
		require.NoError(t, r.Tick())
	}
	require.Equal(t, round.PhasePlay, r.Phase())
	return r
}

func TestIntroPhase(t *testing.T) {
	r, err := round.NewRound(round.DefaultSettings(1))
	require.NoError(t, err)
	assert.Equal(t, round.PhaseIntro, r.Phase())

	for i := 0; i < core.IntroTime-1; i++ {
		require.NoError(t, r.Tick())
	}
	assert.Equal(t, round.PhaseIntro, r.Phase())
	assert.Equal(t, 1, r.IntroLeft())
	assert.Zero(t, r.State().GameTime())

	require.NoError(t, r.Tick())
	assert.Equal(t, round.PhasePlay, r.Phase())
	require.NoError(t, r.Tick())
	assert.Equal(t, 1, r.State().GameTime())
}

func TestInputASAP(t *testing.T) {
	r, err := round.NewRound(round.DefaultSettings(1))
	require.NoError(t, err)
	r.SkipIntro()
	for i := 0; i < 3; i++ {
		require.NoError(t, r.Tick())
	}
	require.NoError(t, r.Input(press(round.TimeASAP, 1, round.ButtonRight)))
	require.NoError(t, r.Tick())

	require.Len(t, r.Journal().Inputs, 1)
	assert.Equal(t, 3, r.Journal().Inputs[0].GameTime)
	assert.Equal(t, core.RC(-5, 3), r.State().Director(1).Pit().Cursor())
	assert.Equal(t, core.RC(-5, 2), r.State().Director(0).Pit().Cursor())

	assert.Error(t, r.Input(press(round.TimeASAP, 2, round.ButtonRight)))
}

func TestLateInputsRewind(t *testing.T) {
	const ticks = 300
	want := playOnTime(t, ticks)

	r, err := round.NewRound(busySettings())
	require.NoError(t, err)
	r.SkipIntro()
	pending := script(ticks)
	for now := 0; now <= ticks; now++ {
		for len(pending) > 0 && pending[0].GameTime+5 <= now {
			require.NoError(t, r.Input(pending[0]))
			pending = pending[1:]
		}
		if now < ticks {
			require.NoError(t, r.Tick())
		}
	}

	assert.Positive(t, r.Rewinds())
	assert.Equal(t, ticks, r.State().GameTime())
	assert.Equal(t, want.Journal().Inputs, r.Journal().Inputs)
	assert.Equal(t, want.State().Hash(), r.State().Hash())
	assert.Equal(t, want.State().Snapshots(), r.State().Snapshots())
	for p := 0; p < 2; p++ {
		assert.Equal(t, want.Stats(p), r.Stats(p), "player %d", p)
	}
}

func TestInputTooLate(t *testing.T) {
	r, err := round.NewRound(round.DefaultSettings(3))
	require.NoError(t, err)
	r.SkipIntro()
	for i := 0; i < (round.RollbackWindow+4)*core.CheckpointInterval; i++ {
		require.NoError(t, r.Tick())
	}
	err = r.Input(press(core.CheckpointInterval, 0, round.ButtonLeft))
	assert.ErrorIs(t, err, round.ErrInputTooLate)
	assert.Empty(t, r.Journal().Inputs)

	recent := r.State().GameTime() - core.CheckpointInterval
	require.NoError(t, r.Input(press(recent, 0, round.ButtonLeft)))
	assert.Equal(t, 1, r.Rewinds())
}

// toppedOut stacks player 0's first column up past the top of the pit.
func toppedOut(t *testing.T) *round.Round {
	t.Helper()
	state, err := round.NewGameState(round.DefaultSettings(5))
	require.NoError(t, err)
	pit := state.Director(0).Pit()
	for r := 0; r >= pit.Top()-1; r-- {
		color := core.ColorBlue
		if r%2 != 0 {
			color = core.ColorRed
		}
		_, err := pit.SpawnBlock(color, core.RC(r, 0), core.StateRest)
		require.NoError(t, err)
	}
	rd := round.NewRoundWith(state)
	rd.SkipIntro()
	return rd
}

func TestWinnerAfterTopOut(t *testing.T) {
	r := toppedOut(t)
	for i := 0; i < core.PanicTime+10 && r.Phase() == round.PhasePlay; i++ {
		require.NoError(t, r.Tick())
	}
	require.Equal(t, round.PhaseResult, r.Phase())
	assert.Equal(t, 1, r.Winner())
	assert.True(t, r.State().Director(0).Over())
	assert.False(t, r.State().Director(1).Over())

	j := r.Journal()
	assert.True(t, j.Finished)
	assert.Equal(t, 1, j.Winner)
	assert.Equal(t, r.State().GameTime(), j.EndTime)

	assert.ErrorIs(t, r.Input(press(round.TimeASAP, 0, round.ButtonSwap)), round.ErrRoundOver)
	require.NoError(t, r.Tick())
	assert.Equal(t, j.EndTime, r.State().GameTime(), "no more simulation after the result")
}

func TestLiveEventsReachListeners(t *testing.T) {
	r := toppedOut(t)
	var got []string
	r.AddListener(0, core.ListenerFunc(func(e core.Event) {
		got = append(got, e.Name())
	}))
	require.NoError(t, r.Tick())
	require.NoError(t, r.Input(press(round.TimeASAP, 0, round.ButtonRight)))
	require.NoError(t, r.Tick())
	assert.Contains(t, got, "cursor_moved")

	drained := r.Drain()
	require.NotEmpty(t, drained)
	assert.Equal(t, 0, drained[0].Player)
	assert.Empty(t, r.Drain())
	assert.True(t, r.State().Director(0).IsPanic())
}

func TestAbort(t *testing.T) {
	r := playOnTime(t, 10)
	r.Abort()
	assert.Equal(t, round.PhaseResult, r.Phase())
	assert.Equal(t, core.NoOne, r.Winner())
	assert.Equal(t, 10, r.Journal().EndTime)
}

// comboSetup lines up a five block combo for player 0: B B R B with two
// more blues stacked over the red.
func comboSetup(t *testing.T, attacks bool) *round.GameState {
	t.Helper()
	s := round.DefaultSettings(11)
	s.Attacks = attacks
	g, err := round.NewGameState(s)
	require.NoError(t, err)
	pit := g.Director(0).Pit()
	for _, b := range []struct {
		color core.Color
		r, c  int
	}{
		{core.ColorBlue, 0, 0}, {core.ColorBlue, 0, 1}, {core.ColorRed, 0, 2},
		{core.ColorBlue, 0, 3}, {core.ColorBlue, -1, 2}, {core.ColorBlue, -2, 2},
	} {
		_, err := pit.SpawnBlock(b.color, core.RC(b.r, b.c), core.StateRest)
		require.NoError(t, err)
	}
	ok, err := g.Director(0).Swap(core.RC(0, 2))
	require.NoError(t, err)
	require.True(t, ok)
	return g
}

func garbageIn(pit *core.Pit) []*core.Garbage {
	var out []*core.Garbage
	for _, h := range pit.Handles() {
		if g := pit.Get(h).Garbage(); g != nil {
			out = append(out, g)
		}
	}
	return out
}

func TestComboSendsGarbage(t *testing.T) {
	g := comboSetup(t, true)
	for i := 0; i < core.SwapTime; i++ {
		require.NoError(t, g.Update())
	}

	var combo int
	for _, pe := range g.Drain() {
		if m, ok := pe.Event.(core.Match); ok {
			assert.Equal(t, 0, pe.Player)
			combo = m.Combo
		}
	}
	require.Equal(t, 5, combo)

	sent := garbageIn(g.Director(1).Pit())
	require.Len(t, sent, 1)
	assert.Equal(t, 4, sent[0].Columns)
	assert.Equal(t, 1, sent[0].Rows)
	assert.Empty(t, garbageIn(g.Director(0).Pit()), "never to the sender")
}

func TestAttacksCanBeDisabled(t *testing.T) {
	g := comboSetup(t, false)
	for i := 0; i < core.SwapTime; i++ {
		require.NoError(t, g.Update())
	}
	assert.Empty(t, garbageIn(g.Director(1).Pit()))
}

func TestGameStateClone(t *testing.T) {
	g := comboSetup(t, true)
	c := g.Clone()
	require.Equal(t, g.Hash(), c.Hash())

	for i := 0; i < 60; i++ {
		require.NoError(t, g.Update())
		require.NoError(t, c.Update())
	}
	assert.Equal(t, g.Hash(), c.Hash())

	require.NoError(t, c.ApplyInput(press(c.GameTime(), 1, round.ButtonDown)))
	assert.NotEqual(t, g.Hash(), c.Hash())
}

func TestStatsScoring(t *testing.T) {
	var s round.Stats
	s.Notify(core.Match{Combo: 3})
	s.Notify(core.Match{Combo: 5, Chaining: true})
	s.Notify(core.ChainFinished{Counter: 2})
	s.Notify(core.BlockDied{Color: core.ColorRed})
	s.Notify(core.GarbageDissolved{Columns: 6, Rows: 1})
	s.Notify(core.CursorMoved{})

	assert.Equal(t, round.Stats{
		Score:     10*3 + 10*5 + 50*2,
		Matches:   2,
		MaxCombo:  5,
		MaxChain:  2,
		Broken:    1,
		Dissolved: 1,
	}, s)
}

func TestReplayReproducesRound(t *testing.T) {
	r := playOnTime(t, 300)
	r.Abort()

	blob, err := r.Journal().Marshal()
	require.NoError(t, err)
	j, err := round.UnmarshalJournal(blob)
	require.NoError(t, err)

	res, err := round.Replay(j)
	require.NoError(t, err)
	assert.Equal(t, 300, res.EndTime)
	assert.Equal(t, core.NoOne, res.Winner)
	assert.Equal(t, r.State().Hash(), res.State.Hash())
	assert.Len(t, res.Hashes, 300/core.CheckpointInterval)
	assert.Equal(t, []round.Stats{r.Stats(0), r.Stats(1)}, res.Stats)

	again, err := round.Replay(j)
	require.NoError(t, err)
	assert.Equal(t, res.Hashes, again.Hashes)
}

func TestReplayDetectsDivergence(t *testing.T) {
	r := playOnTime(t, 60)
	r.Abort()
	j := r.Journal()
	j.Winner = 1

	_, err := round.Replay(j)
	assert.True(t, errors.Is(err, round.ErrReplayDiverged))
}

func TestReplayUnfinishedRunsToLastInput(t *testing.T) {
	j := round.NewJournal(round.DefaultSettings(2))
	j.Add(press(40, 0, round.ButtonLeft))
	res, err := round.Replay(j)
	require.NoError(t, err)
	assert.Equal(t, 41, res.EndTime)
	assert.Equal(t, core.RC(-5, 1), res.State.Director(0).Pit().Cursor())
}
