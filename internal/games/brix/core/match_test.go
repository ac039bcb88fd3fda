package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-brix/internal/games/brix/core"
)

func TestMatchBuilder(t *testing.T) {
	const (
		B = core.ColorBlue
		R = core.ColorRed
		F = core.ColorFake
	)

	tests := []struct {
		name     string
		cells    map[core.RowCol]core.Color
		ignite   []core.RowCol
		combo    int
		chaining bool
	}{
		{
			name:   "horizontal three",
			cells:  map[core.RowCol]core.Color{core.RC(0, 0): B, core.RC(0, 1): B, core.RC(0, 2): B, core.RC(0, 3): R},
			ignite: []core.RowCol{core.RC(0, 1)},
			combo:  3,
		},
		{
			name:   "vertical four from the top",
			cells:  map[core.RowCol]core.Color{core.RC(-3, 2): R, core.RC(-2, 2): R, core.RC(-1, 2): R, core.RC(0, 2): R},
			ignite: []core.RowCol{core.RC(-3, 2)},
			combo:  4,
		},
		{
			name: "cross counts the shared cell once",
			cells: map[core.RowCol]core.Color{
				core.RC(0, 0): B, core.RC(0, 1): B, core.RC(0, 2): B,
				core.RC(-1, 1): B, core.RC(-2, 1): B,
			},
			ignite: []core.RowCol{core.RC(0, 1)},
			combo:  5,
		},
		{
			name:   "two hot blocks in the same run",
			cells:  map[core.RowCol]core.Color{core.RC(0, 0): B, core.RC(0, 1): B, core.RC(0, 2): B},
			ignite: []core.RowCol{core.RC(0, 0), core.RC(0, 2)},
			combo:  3,
		},
		{
			name:   "two of a kind",
			cells:  map[core.RowCol]core.Color{core.RC(0, 0): B, core.RC(0, 1): B, core.RC(0, 2): R},
			ignite: []core.RowCol{core.RC(0, 0)},
			combo:  0,
		},
		{
			name:   "fake never matches",
			cells:  map[core.RowCol]core.Color{core.RC(0, 0): F, core.RC(0, 1): F, core.RC(0, 2): F},
			ignite: []core.RowCol{core.RC(0, 1)},
			combo:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPit()
			for rc, color := range tt.cells {
				spawn(t, p, color, rc.R, rc.C)
			}
			m := core.NewMatchBuilder(p)
			for _, rc := range tt.ignite {
				h, ok := p.At(rc)
				require.True(t, ok)
				m.Ignite(h)
			}
			assert.Equal(t, tt.combo, m.Combo())
			assert.Len(t, m.Result(), tt.combo)
			assert.Equal(t, tt.chaining, m.Chaining())
		})
	}
}

func TestMatchSkipsBlocksInMotion(t *testing.T) {
	p := newPit()
	spawn(t, p, core.ColorBlue, 0, 0)
	moving := spawn(t, p, core.ColorBlue, 0, 1)
	h := spawn(t, p, core.ColorBlue, 0, 2)
	require.NoError(t, p.Get(moving).SetState(core.StateSwapLeft, core.SwapTime))

	m := core.NewMatchBuilder(p)
	m.Ignite(h)
	assert.Zero(t, m.Combo())

	// a landing block may match
	require.NoError(t, p.Get(moving).SetState(core.StateLand, core.LandTime))
	m = core.NewMatchBuilder(p)
	m.Ignite(h)
	assert.Equal(t, 3, m.Combo())
}

func TestMatchReportsChaining(t *testing.T) {
	p := newPit()
	spawn(t, p, core.ColorGreen, 0, 3)
	spawn(t, p, core.ColorGreen, 0, 4)
	h := spawn(t, p, core.ColorGreen, 0, 5)
	p.Get(h).Block().Chaining = true

	m := core.NewMatchBuilder(p)
	m.Ignite(h)
	assert.Equal(t, 3, m.Combo())
	assert.True(t, m.Chaining())
	assert.True(t, m.Contains(core.RC(0, 3)))
	assert.False(t, m.Contains(core.RC(0, 2)))
}
