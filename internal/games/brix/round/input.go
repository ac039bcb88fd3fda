// Package round runs a whole brix game on top of the pit simulation: two
// pits side by side, player inputs stamped with game time, garbage attacks,
// the intro/play/result phases and the journal that makes every round
// replayable.
package round

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vovakirdan/tui-brix/internal/games/brix/core"
)

// TimeASAP stamps an input to be applied at the next tick.
const TimeASAP = -1

// GameButton is a logical button of one player.
type GameButton int

const (
	ButtonNone GameButton = iota
	ButtonLeft
	ButtonRight
	ButtonUp
	ButtonDown
	ButtonSwap
	ButtonRaise
)

var buttonNames = []string{"NONE", "LEFT", "RIGHT", "UP", "DOWN", "SWAP", "RAISE"}

func (b GameButton) String() string {
	if b < 0 || int(b) >= len(buttonNames) {
		return "NONE"
	}
	return buttonNames[b]
}

// Dir returns the cursor direction of a movement button.
func (b GameButton) Dir() core.Dir {
	switch b {
	case ButtonLeft:
		return core.DirLeft
	case ButtonRight:
		return core.DirRight
	case ButtonUp:
		return core.DirUp
	case ButtonDown:
		return core.DirDown
	default:
		return core.DirNone
	}
}

// ButtonAction is the edge of a button press.
type ButtonAction int

const (
	ActionDown ButtonAction = iota
	ActionUp
)

func (a ButtonAction) String() string {
	if a == ActionUp {
		return "UP"
	}
	return "DOWN"
}

// GameInput is one button edge of one player at a game time.
type GameInput struct {
	GameTime int
	Player   int
	Button   GameButton
	Action   ButtonAction
}

// String renders the canonical form "<time> <player> <BUTTON> <ACTION>".
func (in GameInput) String() string {
	return fmt.Sprintf("%d %d %s %s", in.GameTime, in.Player, in.Button, in.Action)
}

// ParseError reports a malformed record at the boundary of the simulation.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("round: cannot parse %q: %s", e.Input, e.Reason)
}

// ParseGameInput reads the canonical input form.
func ParseGameInput(s string) (GameInput, error) {
	fields := strings.Fields(s)
	if len(fields) != 4 {
		return GameInput{}, &ParseError{Input: s, Reason: "want 4 fields"}
	}
	t, err := strconv.Atoi(fields[0])
	if err != nil || t < TimeASAP {
		return GameInput{}, &ParseError{Input: s, Reason: "bad game time"}
	}
	player, err := strconv.Atoi(fields[1])
	if err != nil || player < 0 {
		return GameInput{}, &ParseError{Input: s, Reason: "bad player"}
	}
	button, ok := parseButton(fields[2])
	if !ok {
		return GameInput{}, &ParseError{Input: s, Reason: "unknown button " + fields[2]}
	}
	var action ButtonAction
	switch fields[3] {
	case "DOWN":
		action = ActionDown
	case "UP":
		action = ActionUp
	default:
		return GameInput{}, &ParseError{Input: s, Reason: "unknown action " + fields[3]}
	}
	return GameInput{GameTime: t, Player: player, Button: button, Action: action}, nil
}

func parseButton(s string) (GameButton, bool) {
	for i, name := range buttonNames {
		if name == s {
			return GameButton(i), true
		}
	}
	return ButtonNone, false
}

// GameMeta describes a round for the record: who played, with which seed,
// who won.
type GameMeta struct {
	Players int
	Seed    uint32
	Winner  int
}

// String renders "<players> <seed> <winner>".
func (m GameMeta) String() string {
	return fmt.Sprintf("%d %d %d", m.Players, m.Seed, m.Winner)
}

// ParseGameMeta reads the canonical meta form.
func ParseGameMeta(s string) (GameMeta, error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return GameMeta{}, &ParseError{Input: s, Reason: "want 3 fields"}
	}
	players, err := strconv.Atoi(fields[0])
	if err != nil || players < 1 || players > MaxPlayers {
		return GameMeta{}, &ParseError{Input: s, Reason: "bad player count"}
	}
	seed, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return GameMeta{}, &ParseError{Input: s, Reason: "bad seed"}
	}
	winner, err := strconv.Atoi(fields[2])
	if err != nil || winner < core.NoOne || winner >= players {
		return GameMeta{}, &ParseError{Input: s, Reason: "bad winner"}
	}
	return GameMeta{Players: players, Seed: uint32(seed), Winner: winner}, nil
}
