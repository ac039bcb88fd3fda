package multiplayer

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-brix/internal/core"
)

// Lobby is a waiting room for a match.
type Lobby struct {
	Code      string
	Host      SessionHandle
	Joiner    SessionHandle
	CreatedAt time.Time
}

// CoordinatorConfig holds configuration for the coordinator.
type CoordinatorConfig struct {
	LobbyTimeout  time.Duration // How long before an empty lobby expires
	TickRate      int           // Game tick rate (Hz)
	CleanupPeriod time.Duration // How often to clean up expired lobbies
}

// DefaultCoordinatorConfig returns the defaults for a 30 TPS game.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		LobbyTimeout:  10 * time.Minute,
		TickRate:      30,
		CleanupPeriod: 30 * time.Second,
	}
}

// GameFactory creates the simulation of a new match.
type GameFactory func(cfg core.RuntimeConfig) (OnlineGame, error)

// MatchResultSaver persists finished matches.
// This allows the coordinator to save results without depending on the storage package.
type MatchResultSaver interface {
	SaveMatchResult(result MatchResultData) error
}

// MatchResultData contains match result data for persistence.
type MatchResultData struct {
	MatchID      string
	Mode         string
	Player1      string
	Player2      string
	Score1       int
	Score2       int
	Winner       int
	EndReason    string
	Ticks        int
	Seed         uint32
	DurationSecs int
	Journal      []byte // compressed replay journal, nil if unavailable
}

// Coordinator manages lobbies and active matches.
type Coordinator struct {
	config      CoordinatorConfig
	gameFactory GameFactory
	sessions    *SessionRegistry
	resultSaver MatchResultSaver // optional
	logger      *log.Logger
	metrics     *Metrics

	mu      sync.RWMutex
	lobbies map[string]*Lobby
	matches map[MatchID]*OnlineMatch

	sessionLobby map[SessionID]string
	sessionMatch map[SessionID]MatchID

	saves sync.WaitGroup

	msgChan chan CoordinatorMessage
	done    chan struct{}
}

// NewCoordinator creates a new coordinator.
func NewCoordinator(cfg CoordinatorConfig, factory GameFactory, sessions *SessionRegistry) *Coordinator {
	return &Coordinator{
		config:       cfg,
		gameFactory:  factory,
		sessions:     sessions,
		logger:       log.Default(),
		metrics:      NewMetrics(),
		lobbies:      make(map[string]*Lobby),
		matches:      make(map[MatchID]*OnlineMatch),
		sessionLobby: make(map[SessionID]string),
		sessionMatch: make(map[SessionID]MatchID),
		msgChan:      make(chan CoordinatorMessage, 256),
		done:         make(chan struct{}),
	}
}

// SetResultSaver sets the optional match result saver.
func (c *Coordinator) SetResultSaver(saver MatchResultSaver) {
	c.resultSaver = saver
}

// SetLogger replaces the default logger. Call before Start.
func (c *Coordinator) SetLogger(logger *log.Logger) {
	c.logger = logger
}

// Metrics returns the collectors of this coordinator.
func (c *Coordinator) Metrics() *Metrics {
	return c.metrics
}

// Start begins the coordinator's background processing.
func (c *Coordinator) Start() {
	go c.processMessages()
	go c.cleanupLoop()
}

// Stop shuts down the coordinator, stops running matches and waits for
// pending result saves.
func (c *Coordinator) Stop() {
	close(c.done)
	c.mu.Lock()
	for _, m := range c.matches {
		m.Stop()
	}
	c.mu.Unlock()
	c.saves.Wait()
}

// Send sends a message to the coordinator for async processing.
func (c *Coordinator) Send(msg CoordinatorMessage) {
	select {
	case c.msgChan <- msg:
	case <-c.done:
	}
}

func (c *Coordinator) processMessages() {
	for {
		select {
		case msg := <-c.msgChan:
			c.handleMessage(msg)
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) handleMessage(msg CoordinatorMessage) {
	switch m := msg.(type) {
	case CreateLobbyMsg:
		c.handleCreateLobby(m)
	case JoinLobbyMsg:
		c.handleJoinLobby(m)
	case CancelLobbyMsg:
		c.handleCancelLobby(m)
	case LeaveLobbyMsg:
		c.handleLeaveLobby(m)
	case LeaveMatchMsg:
		c.handleLeaveMatch(m)
	case PlayerInputMsg:
		c.handlePlayerInput(m)
	case SessionDisconnectedMsg:
		c.handleSessionDisconnected(m)
	}
}

// updateGauges must be called with the lock held.
func (c *Coordinator) updateGauges() {
	c.metrics.lobbies.Set(float64(len(c.lobbies)))
	c.metrics.matches.Set(float64(len(c.matches)))
}

func (c *Coordinator) handleCreateLobby(msg CreateLobbyMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, inLobby := c.sessionLobby[msg.SessionID]; inLobby {
		session.Send(LobbyErrorEvent{Message: "Already in a lobby"})
		return
	}
	if _, inMatch := c.sessionMatch[msg.SessionID]; inMatch {
		session.Send(LobbyErrorEvent{Message: "Already in a match"})
		return
	}

	code := c.generateUniqueCode()
	c.lobbies[code] = &Lobby{
		Code:      code,
		Host:      session,
		CreatedAt: time.Now(),
	}
	c.sessionLobby[msg.SessionID] = code
	c.updateGauges()

	c.logger.Info("lobby created", "code", code, "host", session.Name())
	session.Send(LobbyCreatedEvent{Code: code})
}

func (c *Coordinator) handleJoinLobby(msg JoinLobbyMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, inLobby := c.sessionLobby[msg.SessionID]; inLobby {
		session.Send(LobbyErrorEvent{Message: "Already in a lobby"})
		return
	}

	code := strings.ToUpper(strings.TrimSpace(msg.Code))
	lobby, exists := c.lobbies[code]
	if !exists {
		session.Send(LobbyErrorEvent{Message: "Lobby not found"})
		return
	}
	if lobby.Joiner != nil {
		session.Send(LobbyErrorEvent{Message: "Lobby is full"})
		return
	}
	if lobby.Host.ID() == msg.SessionID {
		session.Send(LobbyErrorEvent{Message: "Cannot join your own lobby"})
		return
	}

	lobby.Joiner = session
	c.sessionLobby[msg.SessionID] = code

	lobby.Host.Send(LobbyJoinedEvent{Code: code, Side: Player1, Opponent: session.Name()})
	session.Send(LobbyJoinedEvent{Code: code, Side: Player2, Opponent: lobby.Host.Name()})

	c.startMatch(lobby)
}

// startMatch must be called with the lock held.
func (c *Coordinator) startMatch(lobby *Lobby) {
	id := uuid.New()
	matchID := MatchID(id.String())

	cfg := core.RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: c.config.TickRate,
		Seed:     binary.BigEndian.Uint32(id[:4]) | 1,
	}

	hostID, joinerID := lobby.Host.ID(), lobby.Joiner.ID()
	delete(c.sessionLobby, hostID)
	delete(c.sessionLobby, joinerID)
	delete(c.lobbies, lobby.Code)
	defer c.updateGauges()

	game, err := c.gameFactory(cfg)
	if err != nil {
		c.logger.Error("cannot create game", "code", lobby.Code, "err", err)
		lobby.Host.Send(LobbyErrorEvent{Message: "Failed to create game"})
		lobby.Joiner.Send(LobbyErrorEvent{Message: "Failed to create game"})
		return
	}

	match := NewOnlineMatch(matchID, lobby.Code, game, lobby.Host, lobby.Joiner, c.config.TickRate, c.logger, c.metrics)
	c.matches[matchID] = match
	c.sessionMatch[hostID] = matchID
	c.sessionMatch[joinerID] = matchID

	c.logger.Info("match started", "match", matchID, "p1", lobby.Host.Name(), "p2", lobby.Joiner.Name(), "seed", cfg.Seed)
	lobby.Host.Send(MatchStartedEvent{MatchID: matchID, Side: Player1, Code: lobby.Code, Opponent: lobby.Joiner.Name()})
	lobby.Joiner.Send(MatchStartedEvent{MatchID: matchID, Side: Player2, Code: lobby.Code, Opponent: lobby.Host.Name()})

	go match.Run(func(result MatchResult) {
		c.handleMatchEnded(matchID, result)
	})
}

func (c *Coordinator) handleMatchEnded(matchID MatchID, result MatchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	match, exists := c.matches[matchID]
	if !exists {
		return
	}
	p1, p2 := match.Players()
	game := match.Game()

	c.metrics.finished.WithLabelValues(result.Reason.String()).Inc()
	c.logger.Info("match ended", "match", matchID, "reason", result.Reason, "winner", result.Winner,
		"score1", result.Score1, "score2", result.Score2, "ticks", result.Ticks)

	if c.resultSaver != nil {
		journal, err := game.Journal()
		if err != nil {
			c.logger.Warn("cannot encode journal", "match", matchID, "err", err)
		}
		tickRate := max(1, c.config.TickRate)
		data := MatchResultData{
			MatchID:      string(matchID),
			Mode:         MatchModeOnline.String(),
			Player1:      p1.Name(),
			Player2:      p2.Name(),
			Score1:       result.Score1,
			Score2:       result.Score2,
			Winner:       result.Winner,
			EndReason:    result.Reason.String(),
			Ticks:        game.GameTime(),
			Seed:         game.Seed(),
			DurationSecs: int(result.Ticks / uint64(tickRate)), //nolint:gosec // tickRate is clamped positive
			Journal:      journal,
		}
		c.saves.Add(1)
		go func() {
			defer c.saves.Done()
			if err := c.resultSaver.SaveMatchResult(data); err != nil {
				c.logger.Error("cannot save match", "match", matchID, "err", err)
			}
		}()
	}

	delete(c.sessionMatch, p1.ID())
	delete(c.sessionMatch, p2.ID())
	delete(c.matches, matchID)
	c.updateGauges()

	endEvent := MatchEndedEvent{
		MatchID: matchID,
		Reason:  result.Reason,
		Winner:  result.Winner,
		Score1:  result.Score1,
		Score2:  result.Score2,
	}
	p1.Send(endEvent)
	p2.Send(endEvent)
}

func (c *Coordinator) handleCancelLobby(msg CancelLobbyMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lobby, exists := c.lobbies[msg.Code]
	if !exists || lobby.Host.ID() != msg.SessionID {
		return
	}
	c.closeLobby(lobby)
}

// closeLobby must be called with the lock held.
func (c *Coordinator) closeLobby(lobby *Lobby) {
	if lobby.Joiner != nil {
		lobby.Joiner.Send(MatchEndedEvent{Reason: MatchEndReasonHostLeft, Winner: NoWinner})
		delete(c.sessionLobby, lobby.Joiner.ID())
	}
	delete(c.lobbies, lobby.Code)
	delete(c.sessionLobby, lobby.Host.ID())
	c.updateGauges()
}

func (c *Coordinator) handleLeaveLobby(msg LeaveLobbyMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lobby, exists := c.lobbies[msg.Code]
	if !exists {
		return
	}

	switch {
	case lobby.Joiner != nil && lobby.Joiner.ID() == msg.SessionID:
		lobby.Joiner = nil
		delete(c.sessionLobby, msg.SessionID)
		lobby.Host.Send(LobbyPlayerLeftEvent{Code: msg.Code})
	case lobby.Host.ID() == msg.SessionID:
		c.closeLobby(lobby)
	}
}

func (c *Coordinator) handleLeaveMatch(msg LeaveMatchMsg) {
	c.mu.RLock()
	match, exists := c.matches[msg.MatchID]
	c.mu.RUnlock()

	if exists {
		match.PlayerDisconnected(msg.SessionID)
	}
}

func (c *Coordinator) handlePlayerInput(msg PlayerInputMsg) {
	c.mu.RLock()
	match, exists := c.matches[msg.MatchID]
	c.mu.RUnlock()

	if exists {
		match.SendInput(msg.Player, msg.Input)
	}
}

func (c *Coordinator) handleSessionDisconnected(msg SessionDisconnectedMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if code, inLobby := c.sessionLobby[msg.SessionID]; inLobby {
		if lobby, exists := c.lobbies[code]; exists {
			if lobby.Host.ID() == msg.SessionID {
				c.closeLobby(lobby)
			} else if lobby.Joiner != nil && lobby.Joiner.ID() == msg.SessionID {
				lobby.Joiner = nil
				lobby.Host.Send(LobbyPlayerLeftEvent{Code: code})
			}
		}
		delete(c.sessionLobby, msg.SessionID)
	}

	if matchID, inMatch := c.sessionMatch[msg.SessionID]; inMatch {
		if match, exists := c.matches[matchID]; exists {
			match.PlayerDisconnected(msg.SessionID)
		}
	}
}

func (c *Coordinator) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupExpiredLobbies(time.Now())
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) cleanupExpiredLobbies(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for code, lobby := range c.lobbies {
		if lobby.Joiner == nil && now.Sub(lobby.CreatedAt) > c.config.LobbyTimeout {
			lobby.Host.Send(LobbyErrorEvent{Message: "Lobby expired"})
			delete(c.sessionLobby, lobby.Host.ID())
			delete(c.lobbies, code)
			c.logger.Debug("lobby expired", "code", code)
		}
	}
	c.updateGauges()
}

func (c *Coordinator) generateUniqueCode() string {
	for {
		code := generateJoinCode()
		if _, exists := c.lobbies[code]; !exists {
			return code
		}
	}
}

// generateJoinCode creates a 6-character uppercase alphanumeric code.
func generateJoinCode() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%06X", time.Now().UnixNano()&0xFFFFFF)
	}
	return base32.StdEncoding.EncodeToString(b)[:6]
}

// LobbyCount returns the number of active lobbies.
func (c *Coordinator) LobbyCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lobbies)
}

// MatchCount returns the number of active matches.
func (c *Coordinator) MatchCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.matches)
}
