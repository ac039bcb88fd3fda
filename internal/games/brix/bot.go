package brix

import (
	"math/rand/v2"

	"github.com/vovakirdan/tui-brix/internal/core"
	sim "github.com/vovakirdan/tui-brix/internal/games/brix/core"
)

// botDelay is the shortest pause between two bot actions, in ticks.
const botDelay = 4

// Bot plays one pit of a demo round. It looks for a swap that lines up
// three blocks, walks the cursor there and swaps. Its randomness comes from
// its own PCG stream, so a demo with a fixed seed always plays the same.
type Bot struct {
	rng  *rand.Rand
	wait int
}

// NewBot creates a bot for one seat of a round.
func NewBot(seed uint32, player int) *Bot {
	return &Bot{rng: rand.New(rand.NewPCG(uint64(seed), uint64(player)+1))}
}

// Next returns the input of the bot for the coming tick.
func (b *Bot) Next(pit sim.PitSnapshot) core.InputFrame {
	frame := core.NewInputFrame()
	if pit.Over {
		return frame
	}
	if b.wait > 0 {
		b.wait--
		return frame
	}
	b.wait = botDelay + b.rng.IntN(botDelay)

	target, ok := FindSwap(pit)
	if !ok {
		if stackHeight(pit) < sim.PitRows/2 && pit.Recovery == 0 {
			frame.Set(core.ActionRaise)
			return frame
		}
		moves := []core.Action{core.ActionLeft, core.ActionRight, core.ActionUp, core.ActionDown}
		frame.Set(moves[b.rng.IntN(len(moves))])
		return frame
	}

	cur := pit.Cursor
	switch {
	case cur.R > target.R:
		frame.Set(core.ActionUp)
	case cur.R < target.R:
		frame.Set(core.ActionDown)
	case cur.C > target.C:
		frame.Set(core.ActionLeft)
	case cur.C < target.C:
		frame.Set(core.ActionRight)
	default:
		frame.Set(core.ActionSwap)
	}
	return frame
}

// restGrid maps the cells of resting blocks in the visible rows to their
// colors. Anything else that occupies a cell is reported by the second map.
func restGrid(pit sim.PitSnapshot) (map[sim.RowCol]sim.Color, map[sim.RowCol]bool) {
	colors := make(map[sim.RowCol]sim.Color)
	taken := make(map[sim.RowCol]bool)
	for _, o := range pit.Occupants {
		for r := o.RC.R; r < o.RC.R+o.Rows; r++ {
			for c := o.RC.C; c < o.RC.C+o.Columns; c++ {
				taken[sim.RC(r, c)] = true
			}
		}
		if o.Kind == sim.KindBlock && o.State == sim.StateRest && o.RC.R >= pit.Top && o.RC.R <= pit.Bottom {
			colors[o.RC] = o.Color
		}
	}
	return colors, taken
}

// FindSwap returns the left cell of a swap between two resting blocks
// that completes a line of three. Lower rows are preferred.
func FindSwap(pit sim.PitSnapshot) (sim.RowCol, bool) {
	colors, _ := restGrid(pit)
	for r := pit.Bottom; r >= pit.Top; r-- {
		for c := 0; c < sim.PitCols-1; c++ {
			left, right := sim.RC(r, c), sim.RC(r, c+1)
			lc, lok := colors[left]
			rc, rok := colors[right]
			if !lok || !rok || lc == rc || lc == sim.ColorFake || rc == sim.ColorFake {
				continue
			}
			swapped := func(at sim.RowCol) (sim.Color, bool) {
				switch at {
				case left:
					return rc, true
				case right:
					return lc, true
				}
				col, ok := colors[at]
				return col, ok
			}
			if lineThrough(swapped, left, rc) || lineThrough(swapped, right, lc) {
				return left, true
			}
		}
	}
	return sim.RowCol{}, false
}

// lineThrough reports whether at lies on a horizontal or vertical run of
// at least three cells of color.
func lineThrough(get func(sim.RowCol) (sim.Color, bool), at sim.RowCol, color sim.Color) bool {
	run := func(d1, d2 sim.Dir) int {
		n := 1
		for _, d := range []sim.Dir{d1, d2} {
			for next := at.Step(d); ; next = next.Step(d) {
				c, ok := get(next)
				if !ok || c != color {
					break
				}
				n++
			}
		}
		return n
	}
	return run(sim.DirLeft, sim.DirRight) >= 3 || run(sim.DirUp, sim.DirDown) >= 3
}

// stackHeight returns the number of rows between the highest occupied
// cell and the bottom of the pit.
func stackHeight(pit sim.PitSnapshot) int {
	_, taken := restGrid(pit)
	height := 0
	for rc := range taken {
		if rc.R <= pit.Bottom {
			height = max(height, pit.Bottom-rc.R+1)
		}
	}
	return height
}
