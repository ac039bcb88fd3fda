package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-brix/internal/core"
	"github.com/vovakirdan/tui-brix/internal/games/brix"
	"github.com/vovakirdan/tui-brix/internal/multiplayer"
)

// OnlineState represents the current state of the online matchmaking flow.
type OnlineState int

const (
	OnlineStateChooseMode    OnlineState = iota // Choose Host or Join
	OnlineStateHostWaiting                      // Hosting, waiting for joiner
	OnlineStateJoinEnterCode                    // Entering join code
	OnlineStateJoinWaiting                      // Waiting to connect to host
	OnlineStateInMatch                          // Match started
)

// waitForEvent returns a command that delivers the next coordinator event.
func waitForEvent(events <-chan multiplayer.SessionEvent) tea.Cmd {
	return func() tea.Msg {
		if events == nil {
			return nil
		}
		evt, ok := <-events
		if !ok {
			return nil
		}
		return evt
	}
}

// OnlineLobbyModel handles the online matchmaking flow.
type OnlineLobbyModel struct {
	state       OnlineState
	width       int
	height      int
	sessionID   multiplayer.SessionID
	coordinator *multiplayer.Coordinator

	lobbyCode string

	joinCodeInput string
	joinError     string

	matchID  multiplayer.MatchID
	side     core.PlayerID
	opponent string

	backToMenu bool
	quitting   bool
}

// NewOnlineLobbyModel creates a new online lobby model.
func NewOnlineLobbyModel(
	sessionID multiplayer.SessionID,
	coordinator *multiplayer.Coordinator,
	width, height int,
) OnlineLobbyModel {
	return OnlineLobbyModel{
		state:       OnlineStateChooseMode,
		width:       width,
		height:      height,
		sessionID:   sessionID,
		coordinator: coordinator,
	}
}

// Init initializes the lobby model. Coordinator events arrive through the
// session model.
func (m OnlineLobbyModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m OnlineLobbyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case multiplayer.LobbyCreatedEvent:
		m.lobbyCode = msg.Code
		m.state = OnlineStateHostWaiting
		return m, nil
	case multiplayer.LobbyJoinedEvent:
		m.side = msg.Side
		m.opponent = msg.Opponent
		return m, nil
	case multiplayer.LobbyErrorEvent:
		m.joinError = msg.Message
		if m.state == OnlineStateJoinWaiting {
			m.state = OnlineStateJoinEnterCode
		}
		return m, nil
	case multiplayer.LobbyPlayerLeftEvent:
		return m, nil
	case multiplayer.MatchStartedEvent:
		m.matchID = msg.MatchID
		m.side = msg.Side
		m.opponent = msg.Opponent
		m.state = OnlineStateInMatch
		return m, nil
	case multiplayer.MatchEndedEvent:
		// The host closed the lobby we were joining.
		m.state = OnlineStateJoinEnterCode
		m.joinError = msg.Reason.String()
		return m, nil
	}
	return m, nil
}

func (m OnlineLobbyModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.leave()
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case OnlineStateChooseMode:
		return m.handleChooseModeKey(msg)
	case OnlineStateHostWaiting:
		return m.handleHostWaitingKey(msg)
	case OnlineStateJoinEnterCode:
		return m.handleJoinCodeKey(msg)
	case OnlineStateJoinWaiting:
		return m.handleJoinWaitingKey(msg)
	}
	return m, nil
}

// leave withdraws from a hosted or joined lobby.
func (m *OnlineLobbyModel) leave() {
	switch m.state {
	case OnlineStateHostWaiting:
		m.coordinator.Send(multiplayer.CancelLobbyMsg{SessionID: m.sessionID, Code: m.lobbyCode})
	case OnlineStateJoinWaiting:
		m.coordinator.Send(multiplayer.LeaveLobbyMsg{SessionID: m.sessionID, Code: m.joinCodeInput})
	}
}

func (m OnlineLobbyModel) handleChooseModeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h", "H", "1":
		m.coordinator.Send(multiplayer.CreateLobbyMsg{SessionID: m.sessionID})
		return m, nil
	case "j", "J", "2":
		m.state = OnlineStateJoinEnterCode
		m.joinCodeInput = ""
		m.joinError = ""
		return m, nil
	case "esc", "b":
		m.backToMenu = true
		return m, nil
	case "q":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m OnlineLobbyModel) handleHostWaitingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "b":
		m.leave()
		m.backToMenu = true
		return m, nil
	case "q":
		m.leave()
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m OnlineLobbyModel) handleJoinCodeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "esc":
		m.backToMenu = true
		return m, nil
	case "enter":
		if m.joinCodeInput != "" {
			m.state = OnlineStateJoinWaiting
			m.joinError = ""
			m.coordinator.Send(multiplayer.JoinLobbyMsg{SessionID: m.sessionID, Code: m.joinCodeInput})
		}
	case "backspace":
		if m.joinCodeInput != "" {
			m.joinCodeInput = m.joinCodeInput[:len(m.joinCodeInput)-1]
		}
	default:
		if len(key) == 1 && len(m.joinCodeInput) < 6 {
			c := strings.ToUpper(key)
			if (c[0] >= 'A' && c[0] <= 'Z') || (c[0] >= '0' && c[0] <= '9') {
				m.joinCodeInput += c
			}
		}
	}
	return m, nil
}

func (m OnlineLobbyModel) handleJoinWaitingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "b":
		m.leave()
		m.state = OnlineStateJoinEnterCode
	}
	return m, nil
}

// View renders the current state.
func (m OnlineLobbyModel) View() string {
	if m.quitting {
		return ""
	}

	var lines []string
	switch m.state {
	case OnlineStateChooseMode:
		lines = []string{"ONLINE VERSUS", "", "Choose an option:", "", "[H] Host a game", "[J] Join a game", "", "Esc: Back  |  Q: Quit"}
	case OnlineStateHostWaiting:
		lines = []string{
			"HOSTING GAME", "", "Share this code with your opponent:", "",
			fmt.Sprintf("[ %s ]", m.lobbyCode), "", "Waiting for player to join...", "", "Esc: Cancel  |  Q: Quit",
		}
	case OnlineStateJoinEnterCode:
		code := m.joinCodeInput
		if len(code) < 6 {
			code += "_" + strings.Repeat(" ", 5-len(m.joinCodeInput))
		}
		lines = []string{"JOIN GAME", "", "Enter the game code:", "", fmt.Sprintf("[ %s ]", code)}
		if m.joinError != "" {
			lines = append(lines, "", "Error: "+m.joinError)
		}
		lines = append(lines, "", "Enter: Connect  |  Esc: Back")
	case OnlineStateJoinWaiting:
		lines = []string{"CONNECTING", "", "Joining game: " + m.joinCodeInput, "", "Please wait...", "", "Esc: Cancel"}
	case OnlineStateInMatch:
		lines = []string{"MATCH STARTING", "", fmt.Sprintf("You are %s against %s", seatName(m.side), m.opponent), "", "Get ready!"}
	}

	var b strings.Builder
	b.WriteString("\n")
	for _, l := range lines {
		b.WriteString(centerText(l, m.width))
		b.WriteString("\n")
	}
	return b.String()
}

func seatName(side core.PlayerID) string {
	if side == core.Player2 {
		return "RIGHT (P2)"
	}
	return "LEFT (P1)"
}

// State returns the current online state.
func (m OnlineLobbyModel) State() OnlineState { return m.state }

// BackToMenu returns true if user wants to go back to menu.
func (m OnlineLobbyModel) BackToMenu() bool { return m.backToMenu }

// IsQuitting returns true if user wants to quit entirely.
func (m OnlineLobbyModel) IsQuitting() bool { return m.quitting }

// MatchID returns the match ID if a match was started.
func (m OnlineLobbyModel) MatchID() multiplayer.MatchID { return m.matchID }

// Side returns which seat this session plays.
func (m OnlineLobbyModel) Side() core.PlayerID { return m.side }

// Opponent returns the opponent's name.
func (m OnlineLobbyModel) Opponent() string { return m.opponent }

// OnlineGameModel plays one online match. The server runs the simulation;
// this model forwards key presses and draws the snapshots it receives.
type OnlineGameModel struct {
	coordinator *multiplayer.Coordinator
	keys        *KeyMapper
	sessionID   multiplayer.SessionID
	matchID     multiplayer.MatchID
	side        core.PlayerID
	names       [2]string

	screen   *core.Screen
	snapshot *brix.Snapshot
	ended    *multiplayer.MatchEndedEvent

	quitting   bool
	backToMenu bool
}

// NewOnlineGameModel creates the model of a started match.
func NewOnlineGameModel(
	coordinator *multiplayer.Coordinator,
	keys *KeyMapper,
	sessionID multiplayer.SessionID,
	matchID multiplayer.MatchID,
	side core.PlayerID,
	self, opponent string,
	width, height int,
) OnlineGameModel {
	names := [2]string{self, opponent}
	if side == core.Player2 {
		names = [2]string{opponent, self}
	}
	return OnlineGameModel{
		coordinator: coordinator,
		keys:        keys,
		sessionID:   sessionID,
		matchID:     matchID,
		side:        side,
		names:       names,
		screen:      core.NewScreen(width, height),
	}
}

// Init initializes the game model.
func (m OnlineGameModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m OnlineGameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil
	case multiplayer.SnapshotEvent:
		if snap, ok := msg.Snapshot.(brix.Snapshot); ok && msg.MatchID == m.matchID {
			named := snap.WithNames(m.names[0], m.names[1])
			m.snapshot = &named
		}
		return m, nil
	case multiplayer.MatchEndedEvent:
		if msg.MatchID == m.matchID {
			m.ended = &msg
		}
		return m, nil
	}
	return m, nil
}

func (m OnlineGameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	frame := core.NewInputFrame()
	if m.keys.MapKeyToFrame(msg, &frame) {
		m.leave()
		m.quitting = true
		return m, tea.Quit
	}

	if m.ended != nil {
		if _, action, _ := m.keys.MapKey(msg); action == core.ActionBack || msg.String() == "enter" {
			m.backToMenu = true
		}
		return m, nil
	}

	if !frame.Empty() {
		m.coordinator.Send(multiplayer.PlayerInputMsg{MatchID: m.matchID, Player: m.side, Input: frame})
	}
	return m, nil
}

// leave forfeits a running match.
func (m *OnlineGameModel) leave() {
	if m.ended == nil {
		m.coordinator.Send(multiplayer.LeaveMatchMsg{SessionID: m.sessionID, MatchID: m.matchID})
	}
}

// View renders the latest snapshot.
func (m OnlineGameModel) View() string {
	if m.quitting {
		return ""
	}
	m.screen.Clear()
	if m.snapshot != nil {
		brix.RenderSnapshot(m.screen, *m.snapshot)
	} else {
		m.screen.DrawTextCentered(m.screen.Height()/2, "Waiting for the server...")
	}
	if m.ended != nil {
		m.screen.DrawTextCenteredColored(m.screen.Height()-1, m.endLine(), core.ColorBrightYellow)
	}
	return RenderScreen(m.screen)
}

// endLine describes the end of the match from this seat's point of view.
func (m OnlineGameModel) endLine() string {
	var outcome string
	switch {
	case m.ended.Winner == multiplayer.NoWinner:
		outcome = "No winner"
	case m.ended.Winner == m.side.Index():
		outcome = "You win"
	default:
		outcome = "You lose"
	}
	if m.ended.Reason == multiplayer.MatchEndReasonDisconnect && m.ended.Winner == m.side.Index() {
		outcome = "Opponent left, you win"
	}
	return fmt.Sprintf("%s (%d - %d)  |  Esc: Menu  |  Q: Quit", outcome, m.ended.Score1, m.ended.Score2)
}

// IsQuitting returns true if the user wants to quit entirely.
func (m OnlineGameModel) IsQuitting() bool { return m.quitting }

// BackToMenu returns true once the match ended and the user left it.
func (m OnlineGameModel) BackToMenu() bool { return m.backToMenu }
