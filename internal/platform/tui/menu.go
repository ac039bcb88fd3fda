package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-brix/internal/core"
	"github.com/vovakirdan/tui-brix/internal/registry"
)

// MenuKind says what a menu entry starts.
type MenuKind int

const (
	MenuLocal   MenuKind = iota // local versus on one keyboard
	MenuOnline                  // lobby with join codes
	MenuDemo                    // a registered demo scenario
	MenuHistory                 // match history
)

// MenuItem represents a selectable entry in the menu.
type MenuItem struct {
	Kind   MenuKind
	GameID string // registry id for MenuDemo
	Title  string
}

// MenuItems lists the local versus (or online versus when online is set),
// every registered demo and the match history.
func MenuItems(online bool) []MenuItem {
	items := []MenuItem{{Kind: MenuLocal, Title: "Versus (one keyboard)"}}
	if online {
		items = []MenuItem{{Kind: MenuOnline, Title: "Versus online"}}
	}
	for _, g := range registry.List() {
		items = append(items, MenuItem{Kind: MenuDemo, GameID: g.ID, Title: "Demo: " + g.Title})
	}
	return append(items, MenuItem{Kind: MenuHistory, Title: "Match history"})
}

// MenuModel is the Bubble Tea model for the main menu.
type MenuModel struct {
	items     []MenuItem
	cursor    int
	width     int
	height    int
	config    core.RuntimeConfig
	keyMapper *KeyMapper
	quitting  bool
	selected  *MenuItem
}

// NewMenuModel creates a new menu model.
func NewMenuModel(items []MenuItem, keys *KeyMapper, cfg core.RuntimeConfig) MenuModel {
	return MenuModel{
		items:     items,
		width:     cfg.ScreenW,
		height:    cfg.ScreenH,
		config:    cfg,
		keyMapper: keys,
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		return m, nil
	}

	return m, nil
}

func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText("  B R I X  ", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Swap blocks, match three, bury your rival", m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		b.WriteString(centerText(fmt.Sprintf("%s%-28s", cursor, item.Title), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText("Up/Down: Navigate  |  Enter: Select  |  Q: Quit", m.width))
	b.WriteString("\n")
	return b.String()
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// Config returns the current runtime config (may have been updated by resize).
func (m MenuModel) Config() core.RuntimeConfig {
	return m.config
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	n := len([]rune(text))
	if n >= width {
		return text
	}
	return strings.Repeat(" ", (width-n)/2) + text
}

// MenuResult holds the result of running the menu.
type MenuResult struct {
	Item   *MenuItem
	Config core.RuntimeConfig
	Quit   bool
}

// RunMenu runs the local menu and returns the selection.
func RunMenu(keys *KeyMapper, cfg core.RuntimeConfig) (MenuResult, error) {
	p := tea.NewProgram(NewMenuModel(MenuItems(false), keys, cfg), tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return MenuResult{Config: cfg}, err
	}
	m, ok := final.(MenuModel)
	if !ok || m.IsQuitting() || m.Selected() == nil {
		return MenuResult{Config: cfg, Quit: true}, nil
	}
	return MenuResult{Item: m.Selected(), Config: m.Config()}, nil
}
