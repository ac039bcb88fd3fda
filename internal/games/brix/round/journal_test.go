package round_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-brix/internal/games/brix/core"
	"github.com/vovakirdan/tui-brix/internal/games/brix/round"
)

func press(t, player int, b round.GameButton) round.GameInput {
	return round.GameInput{GameTime: t, Player: player, Button: b, Action: round.ActionDown}
}

func TestJournalKeepsTimeOrder(t *testing.T) {
	j := round.NewJournal(round.DefaultSettings(1))
	j.Add(press(5, 0, round.ButtonLeft))
	j.Add(press(2, 1, round.ButtonRight))
	j.Add(press(5, 1, round.ButtonSwap))
	j.Add(press(0, 0, round.ButtonUp))
	j.Add(press(5, 0, round.ButtonDown))

	var times []int
	for _, in := range j.Inputs {
		times = append(times, in.GameTime)
	}
	assert.Equal(t, []int{0, 2, 5, 5, 5}, times)

	at5 := j.InputsAt(5)
	require.Len(t, at5, 3)
	assert.Equal(t, round.ButtonLeft, at5[0].Button, "arrival order within a tick")
	assert.Equal(t, round.ButtonSwap, at5[1].Button)
	assert.Equal(t, round.ButtonDown, at5[2].Button)
	assert.Empty(t, j.InputsAt(3))
}

func sampleJournal() *round.Journal {
	s := round.DefaultSettings(99)
	s.Attacks = false
	s.MaxScrollSpeed = 5
	s.RampTicks = 900
	s.Rules.PanicTime = 45
	j := round.NewJournal(s)
	j.Add(press(0, 0, round.ButtonDown))
	j.Add(press(3, 1, round.ButtonSwap))
	j.Add(round.GameInput{GameTime: 10, Player: 1, Button: round.ButtonRaise, Action: round.ActionUp})
	j.Finish(120, 1)
	return j
}

func TestJournalText(t *testing.T) {
	j := sampleJournal()
	var buf bytes.Buffer
	_, err := j.WriteTo(&buf)
	require.NoError(t, err)

	text := buf.String()
	assert.Contains(t, text, "SET seed 99\n")
	assert.Contains(t, text, "SET rule.panic_time 45\n")
	assert.Contains(t, text, "INPUT 10 1 RAISE UP\n")
	assert.True(t, strings.HasSuffix(text, "END 120 1\n"))

	back, err := round.ReadJournal(&buf)
	require.NoError(t, err)
	assert.Equal(t, j, back)
	assert.Equal(t, round.GameMeta{Players: 2, Seed: 99, Winner: 1}, back.Meta())
}

func TestJournalCompressed(t *testing.T) {
	j := sampleJournal()
	blob, err := j.Marshal()
	require.NoError(t, err)

	back, err := round.UnmarshalJournal(blob)
	require.NoError(t, err)
	assert.Equal(t, j, back)

	_, err = round.UnmarshalJournal([]byte("not zstd"))
	assert.Error(t, err)
}

func TestReadJournalErrors(t *testing.T) {
	tests := map[string]string{
		"no start":        "SET seed 1\n",
		"input too early": "INPUT 0 0 LEFT DOWN\nSTART\n",
		"set after start": "START\nSET seed 1\n",
		"unknown verb":    "START\nJUMP\n",
		"unknown setting": "SET gravity 3\nSTART\n",
		"bad player":      "SET players 1\nSTART\nINPUT 0 1 LEFT DOWN\n",
		"unstamped":       "START\nINPUT -1 0 LEFT DOWN\n",
		"bad rules":       "SET rule.swap_time 0\nSTART\n",
		"bad end":         "START\nEND soon\n",
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := round.ReadJournal(strings.NewReader(text))
			assert.Error(t, err)
		})
	}
}

func TestReadJournalDefaults(t *testing.T) {
	j, err := round.ReadJournal(strings.NewReader("# empty round\nSET players 1\nSTART\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, j.Settings.Players)
	assert.Equal(t, core.DefaultRules(), j.Settings.Rules)
	assert.False(t, j.Finished)
	assert.Equal(t, core.NoOne, j.Winner)
}
