package round_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-brix/internal/games/brix/core"
	"github.com/vovakirdan/tui-brix/internal/games/brix/round"
)

func TestGameInputText(t *testing.T) {
	in := round.GameInput{GameTime: 42, Player: 1, Button: round.ButtonSwap, Action: round.ActionUp}
	assert.Equal(t, "42 1 SWAP UP", in.String())

	back, err := round.ParseGameInput(in.String())
	require.NoError(t, err)
	assert.Equal(t, in, back)

	asap, err := round.ParseGameInput("-1 0 RAISE DOWN")
	require.NoError(t, err)
	assert.Equal(t, round.TimeASAP, asap.GameTime)
}

func TestParseGameInputErrors(t *testing.T) {
	tests := []string{
		"",
		"1 0 LEFT",
		"x 0 LEFT DOWN",
		"-2 0 LEFT DOWN",
		"1 -1 LEFT DOWN",
		"1 0 JUMP DOWN",
		"1 0 LEFT SIDEWAYS",
	}
	for _, s := range tests {
		_, err := round.ParseGameInput(s)
		var perr *round.ParseError
		assert.ErrorAs(t, err, &perr, "input %q", s)
	}
}

func TestButtonDir(t *testing.T) {
	assert.Equal(t, core.DirLeft, round.ButtonLeft.Dir())
	assert.Equal(t, core.DirDown, round.ButtonDown.Dir())
	assert.Equal(t, core.DirNone, round.ButtonSwap.Dir())
	assert.Equal(t, "NONE", round.GameButton(99).String())
}

func TestGameMetaText(t *testing.T) {
	m := round.GameMeta{Players: 2, Seed: 4000000000, Winner: 1}
	back, err := round.ParseGameMeta(m.String())
	require.NoError(t, err)
	assert.Equal(t, m, back)

	draw, err := round.ParseGameMeta("1 7 -1")
	require.NoError(t, err)
	assert.Equal(t, core.NoOne, draw.Winner)

	for _, s := range []string{"2 7", "3 7 0", "2 -7 0", "2 7 2", "2 7 -2"} {
		_, err := round.ParseGameMeta(s)
		assert.Error(t, err, "meta %q", s)
	}
}

func TestSettingsScrollRamp(t *testing.T) {
	s := round.DefaultSettings(1)
	assert.Equal(t, core.ScrollSpeed, s.ScrollSpeedAt(0))
	assert.Equal(t, core.ScrollSpeed, s.ScrollSpeedAt(100000))

	s.Rules.ScrollSpeed = 2
	s.MaxScrollSpeed = 12
	s.RampTicks = 100
	require.NoError(t, s.Validate())
	assert.Equal(t, 2, s.ScrollSpeedAt(0))
	assert.Equal(t, 7, s.ScrollSpeedAt(50))
	assert.Equal(t, 12, s.ScrollSpeedAt(100))
	assert.Equal(t, 12, s.ScrollSpeedAt(5000))

	s.MaxScrollSpeed = 1
	assert.Error(t, s.Validate())
}

func TestSettingsValidate(t *testing.T) {
	s := round.DefaultSettings(1)
	require.NoError(t, s.Validate())

	s.Players = 3
	assert.Error(t, s.Validate())

	s = round.DefaultSettings(1)
	s.Rules.BreakTime = 0
	var rerr *core.RulesError
	assert.ErrorAs(t, s.Validate(), &rerr)
}
