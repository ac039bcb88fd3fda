// Package tui provides the Bubble Tea front end of brix: the local versus
// and demo loops, the menu, match history, online lobby and the Wish SSH
// server that hosts them.
package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger a game simulation tick. Loop identifies the
// tick loop that scheduled it, so a loop left behind by a closed model
// cannot drive its successor.
type TickMsg struct {
	Loop int64
	Time time.Time
}

var loops atomic.Int64

// newLoop returns a fresh tick loop id.
func newLoop() int64 {
	return loops.Add(1)
}

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(loop int64, tickRate int) tea.Cmd {
	interval := time.Second / time.Duration(max(1, tickRate))
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Loop: loop, Time: t}
	})
}
