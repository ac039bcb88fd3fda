package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-brix/internal/core"
	"github.com/vovakirdan/tui-brix/internal/multiplayer"
	"github.com/vovakirdan/tui-brix/internal/registry"
	"github.com/vovakirdan/tui-brix/internal/storage"
)

// recordable is a game whose rounds can be stored with their replay.
type recordable interface {
	multiplayer.OnlineGame
	Names() []string
}

// Model is the Bubble Tea model for a game on the local keyboard: local
// versus with both seats on one keyboard, or a demo that plays by itself.
type Model struct {
	game       registry.Game
	screen     *core.Screen
	store      *storage.Store
	config     core.RuntimeConfig
	mode       multiplayer.MatchMode
	keys       *KeyMapper
	loop       int64
	inputFrame core.MultiInputFrame
	gameState  core.GameState

	matchID string
	started time.Time
	saved   bool

	standalone bool
	quitting   bool
	backToMenu bool
	err        error
}

// NewModel creates a model and starts the first round of game.
func NewModel(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, mode multiplayer.MatchMode, keys *KeyMapper) Model {
	m := Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		store:      store,
		config:     cfg,
		mode:       mode,
		keys:       keys,
		loop:       newLoop(),
		inputFrame: core.NewMultiInputFrame(),
	}
	m.err = m.newRound(cfg.Seed)
	return m
}

// newRound resets the game. A zero seed picks one from the clock.
func (m *Model) newRound(seed uint32) error {
	if seed == 0 {
		seed = uint32(time.Now().UnixNano()) | 1 //nolint:gosec // any bits will do
	}
	m.config.Seed = seed
	if err := m.game.Reset(m.config); err != nil {
		return fmt.Errorf("cannot start %s: %w", m.game.ID(), err)
	}
	m.gameState = m.game.State()
	m.matchID = uuid.NewString()
	m.started = time.Now()
	m.saved = false
	return nil
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	if m.err != nil {
		return tea.Quit
	}
	return tickCmd(m.loop, m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		if msg.Loop != m.loop {
			return m, nil
		}
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	_, action, isQuit := m.keys.MapKey(msg)
	switch {
	case isQuit:
		m.leave()
		m.quitting = true
		return m, tea.Quit

	case msg.String() == "ctrl+s":
		m.saveScreenshot()
		return m, nil

	case action == core.ActionBack && (m.gameState.GameOver || m.gameState.Paused):
		m.leave()
		m.backToMenu = true
		if m.standalone {
			return m, tea.Quit
		}
		return m, nil
	}

	if m.mode == multiplayer.MatchModeDemo {
		// Demos only take pause and restart.
		if action == core.ActionPause || action == core.ActionRestart {
			m.inputFrame.Press(core.Player1, action)
		}
		return m, nil
	}
	m.keys.MapKeyToMultiFrame(msg, &m.inputFrame)
	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.quitting || m.backToMenu {
		return m, nil
	}

	if m.inputFrame.Player(core.Player1).Has(core.ActionRestart) && m.gameState.GameOver {
		m.inputFrame.Clear()
		if err := m.newRound(0); err != nil {
			m.err = err
			return m, tea.Quit
		}
		return m, tickCmd(m.loop, m.config.TickRate)
	}

	result, err := m.game.Step(m.inputFrame)
	m.inputFrame.Clear()
	if err != nil {
		m.err = err
		m.quitting = true
		return m, tea.Quit
	}
	m.gameState = result.State

	if m.gameState.GameOver && !m.saved {
		m.save("completed")
	}

	return m, tickCmd(m.loop, m.config.TickRate)
}

// leave aborts a round in progress; the aborted round is still recorded.
func (m *Model) leave() {
	if m.gameState.GameOver || m.saved {
		return
	}
	if g, ok := m.game.(recordable); ok {
		g.Abort()
		m.save("aborted")
	}
}

// save stores the result and replay of a local versus round, once.
func (m *Model) save(reason string) {
	m.saved = true
	if m.store == nil || m.mode != multiplayer.MatchModeLocal {
		return
	}
	g, ok := m.game.(recordable)
	if !ok {
		return
	}

	journal, err := g.Journal()
	if err != nil {
		m.err = fmt.Errorf("cannot encode replay: %w", err)
		return
	}
	names := append(g.Names(), "", "")
	data := multiplayer.MatchResultData{
		MatchID:      m.matchID,
		Mode:         m.mode.String(),
		Player1:      names[0],
		Player2:      names[1],
		Score1:       g.Score1(),
		Score2:       g.Score2(),
		Winner:       g.Winner(),
		EndReason:    reason,
		Ticks:        g.GameTime(),
		Seed:         g.Seed(),
		DurationSecs: int(time.Since(m.started).Seconds()),
		Journal:      journal,
	}
	if err := m.store.SaveMatchResult(data); err != nil {
		m.err = err
	}
}

// saveScreenshot saves the current screen to ~/.brix/screenshots.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".brix", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	filename := fmt.Sprintf("%s_%s.txt", m.game.ID(), time.Now().Format("20060102_150405"))
	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(filepath.Join(dir, filename), []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	m.game.Render(m.screen)
	return RenderScreen(m.screen)
}

// MatchID returns the identifier the current round is stored under.
func (m Model) MatchID() string { return m.matchID }

// Err returns the error that stopped the model, if any.
func (m Model) Err() error { return m.err }

// IsQuitting returns true if the user requested to quit entirely.
func (m Model) IsQuitting() bool { return m.quitting }

// BackToMenu returns true if the user requested to go back to the menu.
func (m Model) BackToMenu() bool { return m.backToMenu }

// Run plays game in the terminal until the user quits or goes back.
// Returns true if the user went back to the menu rather than quitting.
func Run(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, mode multiplayer.MatchMode, keys *KeyMapper) (goBack bool, err error) {
	model := NewModel(game, store, cfg, mode, keys)
	model.standalone = true

	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(Model)
	if !ok {
		return false, nil
	}
	return m.BackToMenu(), m.Err()
}
