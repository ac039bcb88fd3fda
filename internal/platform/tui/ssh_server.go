package tui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-brix/internal/config"
	"github.com/vovakirdan/tui-brix/internal/core"
	"github.com/vovakirdan/tui-brix/internal/games/brix"
	sim "github.com/vovakirdan/tui-brix/internal/games/brix/core"
	"github.com/vovakirdan/tui-brix/internal/multiplayer"
	"github.com/vovakirdan/tui-brix/internal/registry"
	"github.com/vovakirdan/tui-brix/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":2323").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.brix/host_key.
	HostKeyPath string

	// DBPath is the path to the match database.
	DBPath string

	// MetricsAddr serves Prometheus metrics on /metrics when set.
	MetricsAddr string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// LobbyTTL is how long an unjoined lobby stays open.
	LobbyTTL time.Duration
}

// SSHServerConfigFrom builds the server config from the server section of
// the configuration file.
func SSHServerConfigFrom(c config.ServerConfig, dbPath string) SSHServerConfig {
	return SSHServerConfig{
		Address:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		HostKeyPath: c.HostKeyPath,
		DBPath:      dbPath,
		MetricsAddr: c.MetricsAddr,
		IdleTimeout: c.IdleTimeout,
		LobbyTTL:    c.LobbyTTL,
	}
}

// SSHServer wraps a Wish SSH server hosting the menu, the demos and online
// versus through one shared coordinator.
type SSHServer struct {
	config      SSHServerConfig
	server      *ssh.Server
	metrics     *http.Server
	store       *storage.Store
	logger      *log.Logger
	keys        *KeyMapper
	sessions    *multiplayer.SessionRegistry
	coordinator *multiplayer.Coordinator
}

// sessionKey stores the coordinator session of an SSH session in its context.
type sessionKey struct{}

// NewSSHServer creates a new SSH server. Online matches use the rules of
// brixCfg.
func NewSSHServer(cfg SSHServerConfig, brixCfg config.BrixConfig, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "brix-ssh",
		})
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open match database", "error", err)
		store = nil
	}

	coordCfg := multiplayer.DefaultCoordinatorConfig()
	coordCfg.TickRate = sim.TPS
	if cfg.LobbyTTL > 0 {
		coordCfg.LobbyTimeout = cfg.LobbyTTL
	}
	sessions := multiplayer.NewSessionRegistry()
	coordinator := multiplayer.NewCoordinator(coordCfg, func(rc core.RuntimeConfig) (multiplayer.OnlineGame, error) {
		g := brix.New(brix.SettingsFromConfig(brixCfg, rc.Seed))
		if err := g.Reset(rc); err != nil {
			return nil, err
		}
		return g, nil
	}, sessions)
	coordinator.SetLogger(logger.WithPrefix("coordinator"))
	if store != nil {
		coordinator.SetResultSaver(store)
	}

	srv := &SSHServer{
		config:      cfg,
		store:       store,
		logger:      logger,
		keys:        NewKeyMapper(brixCfg.Keys),
		sessions:    sessions,
		coordinator: coordinator,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".brix", "host_key")
	}
	if mkdirErr := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	// The last middleware runs first.
	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.sessionMiddleware,
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}
	srv.server = server

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", coordinator.Metrics().Handler())
		srv.metrics = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	}
	return srv, nil
}

// sessionMiddleware registers every SSH session with the coordinator and
// reports its disconnect.
func (s *SSHServer) sessionMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		cs := multiplayer.NewChannelSession(multiplayer.SessionID(uuid.NewString()), sshSession.User(), 64)
		s.sessions.Register(cs)
		s.coordinator.Metrics().SessionOpened()
		sshSession.Context().SetValue(sessionKey{}, cs)

		defer func() {
			s.coordinator.Send(multiplayer.SessionDisconnectedMsg{SessionID: cs.ID()})
			cs.Close()
			s.sessions.Unregister(cs.ID())
			s.coordinator.Metrics().SessionClosed()
		}()
		next(sshSession)
	}
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}
	cs, ok := sshSession.Context().Value(sessionKey{}).(*multiplayer.ChannelSession)
	if !ok {
		s.logger.Error("session not registered", "user", sshSession.User())
		return nil, nil
	}

	cfg := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: sim.TPS,
	}
	model := NewSessionModel(s.store, cfg, s.keys, s.coordinator, cs)

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)
	s.coordinator.Start()

	if s.metrics != nil {
		s.logger.Info("serving metrics", "address", s.config.MetricsAddr)
		go func() {
			if err := s.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("metrics server error", "error", err)
			}
		}()
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server. Running matches are stopped and
// pending results are written before the database closes.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)
	if s.metrics != nil {
		if mErr := s.metrics.Shutdown(ctx); mErr != nil && err == nil {
			err = mErr
		}
	}
	s.coordinator.Stop()
	if s.store != nil {
		s.store.Close()
	}
	return err
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// sessionView is the screen a session is on.
type sessionView int

const (
	viewMenu sessionView = iota
	viewDemo
	viewLobby
	viewOnline
	viewHistory
)

// SessionModel manages the full flow of one SSH session: the menu, demos,
// the online lobby and match, and the player's history.
type SessionModel struct {
	store       *storage.Store
	config      core.RuntimeConfig
	keys        *KeyMapper
	coordinator *multiplayer.Coordinator
	session     *multiplayer.ChannelSession

	view    sessionView
	menu    MenuModel
	demo    Model
	lobby   OnlineLobbyModel
	online  OnlineGameModel
	history HistoryModel

	quitting bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(
	store *storage.Store,
	cfg core.RuntimeConfig,
	keys *KeyMapper,
	coordinator *multiplayer.Coordinator,
	session *multiplayer.ChannelSession,
) SessionModel {
	return SessionModel{
		store:       store,
		config:      cfg,
		keys:        keys,
		coordinator: coordinator,
		session:     session,
		menu:        NewMenuModel(MenuItems(true), keys, cfg),
	}
}

// Init starts the menu and the coordinator event pump.
func (m SessionModel) Init() tea.Cmd {
	return tea.Batch(m.menu.Init(), waitForEvent(m.session.Events()))
}

// Update routes messages to the current screen.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	if evt, ok := msg.(multiplayer.SessionEvent); ok {
		next := waitForEvent(m.session.Events())
		switch m.view {
		case viewLobby, viewOnline:
			updated, cmd := m.route(evt)
			return updated, tea.Batch(cmd, next)
		}
		return m, next
	}
	return m.route(msg)
}

func (m SessionModel) route(msg tea.Msg) (SessionModel, tea.Cmd) {
	switch m.view {
	case viewDemo:
		return m.updateDemo(msg)
	case viewLobby:
		return m.updateLobby(msg)
	case viewOnline:
		return m.updateOnline(msg)
	case viewHistory:
		return m.updateHistory(msg)
	default:
		return m.updateMenu(msg)
	}
}

func (m SessionModel) toMenu() (SessionModel, tea.Cmd) {
	m.view = viewMenu
	m.menu = NewMenuModel(MenuItems(true), m.keys, m.config)
	return m, m.menu.Init()
}

func (m SessionModel) quit() (SessionModel, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

func (m SessionModel) updateMenu(msg tea.Msg) (SessionModel, tea.Cmd) {
	updated, cmd := m.menu.Update(msg)
	if mm, ok := updated.(MenuModel); ok {
		m.menu = mm
	}
	if m.menu.IsQuitting() {
		return m.quit()
	}

	selected := m.menu.Selected()
	if selected == nil {
		return m, cmd
	}
	switch selected.Kind {
	case MenuOnline:
		m.lobby = NewOnlineLobbyModel(m.session.ID(), m.coordinator, m.config.ScreenW, m.config.ScreenH)
		m.view = viewLobby
		return m, m.lobby.Init()

	case MenuDemo:
		game, err := registry.Create(selected.GameID)
		if err != nil {
			return m.toMenu()
		}
		cfg := m.config
		cfg.Seed = 0
		m.demo = NewModel(game, nil, cfg, multiplayer.MatchModeDemo, m.keys)
		m.view = viewDemo
		return m, m.demo.Init()

	case MenuHistory:
		m.history = NewHistoryModel(m.store, m.session.Name(), m.config.ScreenW, m.config.ScreenH)
		m.view = viewHistory
		return m, m.history.Init()
	}
	return m.toMenu()
}

func (m SessionModel) updateDemo(msg tea.Msg) (SessionModel, tea.Cmd) {
	updated, cmd := m.demo.Update(msg)
	if dm, ok := updated.(Model); ok {
		m.demo = dm
	}
	switch {
	case m.demo.IsQuitting():
		return m.quit()
	case m.demo.BackToMenu():
		return m.toMenu()
	}
	return m, cmd
}

func (m SessionModel) updateLobby(msg tea.Msg) (SessionModel, tea.Cmd) {
	updated, cmd := m.lobby.Update(msg)
	if lm, ok := updated.(OnlineLobbyModel); ok {
		m.lobby = lm
	}
	switch {
	case m.lobby.IsQuitting():
		return m.quit()
	case m.lobby.BackToMenu():
		return m.toMenu()
	case m.lobby.State() == OnlineStateInMatch:
		m.online = NewOnlineGameModel(
			m.coordinator, m.keys, m.session.ID(), m.lobby.MatchID(), m.lobby.Side(),
			m.session.Name(), m.lobby.Opponent(), m.config.ScreenW, m.config.ScreenH,
		)
		m.view = viewOnline
		return m, m.online.Init()
	}
	return m, cmd
}

func (m SessionModel) updateOnline(msg tea.Msg) (SessionModel, tea.Cmd) {
	updated, cmd := m.online.Update(msg)
	if om, ok := updated.(OnlineGameModel); ok {
		m.online = om
	}
	switch {
	case m.online.IsQuitting():
		return m.quit()
	case m.online.BackToMenu():
		return m.toMenu()
	}
	return m, cmd
}

func (m SessionModel) updateHistory(msg tea.Msg) (SessionModel, tea.Cmd) {
	updated, cmd := m.history.Update(msg)
	if hm, ok := updated.(HistoryModel); ok {
		m.history = hm
	}
	switch {
	case m.history.IsQuitting():
		return m.quit()
	case m.history.IsGoingBack():
		return m.toMenu()
	}
	return m, cmd
}

// View renders the current screen.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}
	switch m.view {
	case viewDemo:
		return m.demo.View()
	case viewLobby:
		return m.lobby.View()
	case viewOnline:
		return m.online.View()
	case viewHistory:
		return m.history.View()
	default:
		return m.menu.View()
	}
}
