// Package multiplayer runs online versus matches: lobbies with join codes,
// the authoritative per-match tick loop and transport-neutral session
// handles. It knows nothing about SSH or Bubble Tea.
package multiplayer

import "github.com/vovakirdan/tui-brix/internal/core"

// PlayerID is an alias to core.PlayerID for convenience.
type PlayerID = core.PlayerID

const (
	Player1 = core.Player1
	Player2 = core.Player2
)

// NoWinner is the seat reported when nobody won.
const NoWinner = -1

// SessionID uniquely identifies a player's session (e.g., SSH connection).
type SessionID string

// MatchID uniquely identifies a match. Matches use UUIDs.
type MatchID string

// MatchMode says where a match was played.
type MatchMode int

const (
	MatchModeLocal MatchMode = iota // two seats on one keyboard
	MatchModeDemo                   // scripted scenario, no input
	MatchModeOnline                 // two sessions through the coordinator
)

// String returns the name stored with match results.
func (m MatchMode) String() string {
	switch m {
	case MatchModeLocal:
		return "local"
	case MatchModeDemo:
		return "demo"
	case MatchModeOnline:
		return "online"
	default:
		return "unknown"
	}
}
