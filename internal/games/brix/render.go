package brix

import (
	"fmt"
	"unicode/utf8"

	"github.com/vovakirdan/tui-brix/internal/core"
	sim "github.com/vovakirdan/tui-brix/internal/games/brix/core"
	"github.com/vovakirdan/tui-brix/internal/games/brix/round"
)

// Pit layout. Every column takes a slot for the cursor bracket and two
// characters of block.
const (
	cellW    = 3
	innerW   = sim.PitCols*cellW + 1
	pitW     = innerW + 2
	pitH     = sim.PitRows + 1 + 2 // visible rows, preview row, frame
	pitGap   = 12
	hudLines = 4
)

// RenderSnapshot draws the pits side by side with their HUD and the
// intro, pause and result overlays.
func RenderSnapshot(dst *core.Screen, s Snapshot) {
	n := len(s.Pits)
	if n == 0 {
		return
	}
	total := n*pitW + (n-1)*pitGap
	x0 := max(0, (dst.Width()-total)/2)
	y0 := max(2, (dst.Height()-pitH-hudLines)/2)

	dst.DrawTextCenteredColored(0, s.Title, core.ColorBrightCyan)
	if n > 1 {
		clock := fmt.Sprintf("%02d:%02d", s.GameTime/sim.TPS/60, s.GameTime/sim.TPS%60)
		drawCentered(dst, x0+pitW, pitGap, y0+1, clock, core.ColorWhite)
	}

	for p, pit := range s.Pits {
		x := x0 + p*(pitW+pitGap)
		if p < len(s.Names) {
			drawCentered(dst, x, pitW, y0-1, s.Names[p], core.ColorBrightYellow)
		}
		drawPit(dst, x, y0, pit)
		drawHUD(dst, x, y0+pitH, p, s)
	}

	switch {
	case s.Phase == round.PhaseResult:
		title := "GAME OVER"
		if n > 1 && s.Winner >= 0 && s.Winner < len(s.Names) {
			title = s.Names[s.Winner] + " WINS!"
		}
		sub := ""
		if n > 1 {
			sub = fmt.Sprintf("%d - %d", s.Stats[0].Score, s.Stats[1].Score)
		} else if len(s.Stats) > 0 {
			sub = fmt.Sprintf("score %d", s.Stats[0].Score)
		}
		drawMessage(dst, title, sub)
	case s.Paused:
		drawMessage(dst, "PAUSED", "Press P to resume")
	case s.Phase == round.PhaseIntro:
		drawMessage(dst, "READY", fmt.Sprintf("%d", s.IntroLeft))
	}
}

// drawPit draws the frame, the occupants of the visible rows, the preview
// row dimmed below them and the cursor brackets.
func drawPit(dst *core.Screen, x, y int, pit sim.PitSnapshot) {
	frame := core.ColorWhite
	switch {
	case pit.Over:
		frame = core.ColorGray
	case pit.IsPanic:
		frame = core.ColorBrightRed
	}
	dst.DrawBoxColored(core.NewRect(x, y, pitW, pitH), frame)

	first := pit.Bottom - sim.PitRows + 1
	for _, o := range pit.Occupants {
		for r := o.RC.R; r < o.RC.R+o.Rows; r++ {
			row := r - first
			if row < 0 || row > sim.PitRows {
				continue
			}
			for c := o.RC.C; c < o.RC.C+o.Columns; c++ {
				drawCell(dst, x+1+c*cellW+1, y+1+row, o, r > pit.Bottom)
			}
		}
	}

	cr := pit.Cursor.R - first
	if pit.Over || cr < 0 || cr >= sim.PitRows {
		return
	}
	cx := x + 1 + pit.Cursor.C*cellW
	dst.SetColored(cx, y+1+cr, '[', core.ColorWhite)
	dst.SetColored(cx+2*cellW, y+1+cr, ']', core.ColorWhite)
}

func drawCell(dst *core.Screen, x, y int, o sim.OccupantView, preview bool) {
	glyph := '█'
	color := blockColor(o.Color)
	if o.Kind == sim.KindGarbage {
		glyph, color = '▒', core.ColorGray
	}
	switch o.State {
	case sim.StateBreak:
		glyph = '░'
	case sim.StateSwapLeft, sim.StateSwapRight:
		glyph = '▓'
	}
	cell := core.Cell{Rune: glyph, Color: color, Dim: preview || o.State == sim.StatePreview}
	dst.SetCell(x, y, cell)
	dst.SetCell(x+1, y, cell)
}

func blockColor(c sim.Color) core.Color {
	switch c {
	case sim.ColorBlue:
		return core.ColorBlue
	case sim.ColorRed:
		return core.ColorRed
	case sim.ColorYellow:
		return core.ColorYellow
	case sim.ColorGreen:
		return core.ColorGreen
	case sim.ColorPurple:
		return core.ColorMagenta
	case sim.ColorOrange:
		return core.ColorOrange
	default:
		return core.ColorGray
	}
}

func drawHUD(dst *core.Screen, x, y, p int, s Snapshot) {
	pit := s.Pits[p]
	if p < len(s.Stats) {
		drawCentered(dst, x, pitW, y, fmt.Sprintf("score %d", s.Stats[p].Score), core.ColorWhite)
	}
	if pit.Chain > 0 {
		drawCentered(dst, x, pitW, y+1, fmt.Sprintf("chain x%d", pit.Chain+1), core.ColorBrightCyan)
	}

	switch {
	case pit.Over:
		drawCentered(dst, x, pitW, y+2, "TOPPED OUT", core.ColorGray)
	case pit.IsPanic:
		drawCentered(dst, x, pitW, y+2, fmt.Sprintf("PANIC %d", pit.Panic), core.ColorBrightRed)
	case pit.Recovery > 0:
		drawCentered(dst, x, pitW, y+2, fmt.Sprintf("recover %d", pit.Recovery), core.ColorGreen)
	case pit.Raising:
		drawCentered(dst, x, pitW, y+2, "RAISE", core.ColorYellow)
	}

	if p < len(s.Banners) && s.Banners[p] != "" {
		drawCentered(dst, x, pitW, y+3, s.Banners[p], core.ColorBrightYellow)
	}
}

// drawCentered draws text centered in the span [x, x+w).
func drawCentered(dst *core.Screen, x, w, y int, text string, c core.Color) {
	dst.DrawTextColored(x+(w-utf8.RuneCountInString(text))/2, y, text, c)
}

// drawMessage draws a message box in the center of the screen.
func drawMessage(dst *core.Screen, title, subtitle string) {
	boxW := max(utf8.RuneCountInString(title), utf8.RuneCountInString(subtitle)) + 4
	boxH := 5
	box := core.NewRect((dst.Width()-boxW)/2, (dst.Height()-boxH)/2, boxW, boxH)

	dst.DrawRect(box, ' ')
	dst.DrawBoxColored(box, core.ColorBrightYellow)
	drawCentered(dst, box.X, boxW, box.Y+1, title, core.ColorBrightYellow)
	drawCentered(dst, box.X, boxW, box.Y+3, subtitle, core.ColorWhite)
}
