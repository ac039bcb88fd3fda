package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-brix/internal/config"
	"github.com/vovakirdan/tui-brix/internal/core"
)

// SeatKeys holds the game buttons of one seat.
type SeatKeys struct {
	Left  key.Binding
	Right key.Binding
	Up    key.Binding
	Down  key.Binding
	Swap  key.Binding
	Raise key.Binding
}

func newSeatKeys(k config.PlayerKeys) SeatKeys {
	return SeatKeys{
		Left:  key.NewBinding(key.WithKeys(k.Left...)),
		Right: key.NewBinding(key.WithKeys(k.Right...)),
		Up:    key.NewBinding(key.WithKeys(k.Up...)),
		Down:  key.NewBinding(key.WithKeys(k.Down...)),
		Swap:  key.NewBinding(key.WithKeys(k.Swap...)),
		Raise: key.NewBinding(key.WithKeys(k.Raise...)),
	}
}

// action returns the game action bound to msg, or ActionNone.
func (s SeatKeys) action(msg tea.KeyMsg) core.Action {
	switch {
	case key.Matches(msg, s.Left):
		return core.ActionLeft
	case key.Matches(msg, s.Right):
		return core.ActionRight
	case key.Matches(msg, s.Up):
		return core.ActionUp
	case key.Matches(msg, s.Down):
		return core.ActionDown
	case key.Matches(msg, s.Swap):
		return core.ActionSwap
	case key.Matches(msg, s.Raise):
		return core.ActionRaise
	}
	return core.ActionNone
}

// KeyMapper translates Bubble Tea key messages to game actions.
// Both seats share one keyboard in local play.
type KeyMapper struct {
	Seats   [2]SeatKeys
	Pause   key.Binding
	Restart key.Binding
	Back    key.Binding
	Quit    key.Binding
	Shot    key.Binding
}

// NewKeyMapper creates a key mapper from the configured seat bindings.
func NewKeyMapper(keys config.KeysConfig) *KeyMapper {
	return &KeyMapper{
		Seats: [2]SeatKeys{newSeatKeys(keys.Player1), newSeatKeys(keys.Player2)},
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rematch"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
		Shot: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "screenshot"),
		),
	}
}

// MapKey translates a key message to the action of a seat. Pause, restart
// and quit belong to Player1. Returns the seat, the action (may be
// ActionNone) and whether it's a quit request.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (seat core.PlayerID, action core.Action, isQuit bool) {
	switch {
	case key.Matches(msg, km.Quit):
		return core.Player1, core.ActionQuit, true
	case key.Matches(msg, km.Pause):
		return core.Player1, core.ActionPause, false
	case key.Matches(msg, km.Restart):
		return core.Player1, core.ActionRestart, false
	case key.Matches(msg, km.Back):
		return core.Player1, core.ActionBack, false
	}

	for i, s := range km.Seats {
		if a := s.action(msg); a != core.ActionNone {
			return core.PlayerID(i), a, false
		}
	}
	return core.Player1, core.ActionNone, false
}

// MapKeyToMultiFrame updates a multi-input frame based on a key message.
// Returns true if the key was a quit request.
func (km *KeyMapper) MapKeyToMultiFrame(msg tea.KeyMsg, frame *core.MultiInputFrame) bool {
	seat, action, isQuit := km.MapKey(msg)
	if action != core.ActionNone && !isQuit {
		frame.Press(seat, action)
	}
	return isQuit
}

// MapKeyToFrame updates the frame of a lone player, as in online play.
// Either seat's bindings drive it. Pause is not forwarded.
func (km *KeyMapper) MapKeyToFrame(msg tea.KeyMsg, frame *core.InputFrame) bool {
	_, action, isQuit := km.MapKey(msg)
	switch action {
	case core.ActionLeft, core.ActionRight, core.ActionUp, core.ActionDown, core.ActionSwap, core.ActionRaise:
		frame.Set(action)
	}
	return isQuit
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k":
		return MenuActionUp
	case "s", "down", "j":
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	}
	return MenuActionNone
}
