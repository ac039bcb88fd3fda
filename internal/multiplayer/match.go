package multiplayer

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-brix/internal/core"
)

// OnlineGame is what a match loop drives. The server owns the only
// simulation; clients render the snapshots it broadcasts.
type OnlineGame interface {
	// StepMulti applies the input of both seats and advances one tick.
	StepMulti(input core.MultiInputFrame) (core.StepResult, error)

	// Snapshot returns the current game state for network transmission.
	Snapshot() GameSnapshot

	// IsGameOver returns true once the round has a result.
	IsGameOver() bool

	// Winner returns the winning seat index or NoWinner.
	Winner() int

	Score1() int
	Score2() int

	// Abort ends the round without a result, as when a player leaves.
	Abort()

	// GameTime returns the simulated ticks so far.
	GameTime() int

	// Seed returns the seed the round was started with.
	Seed() uint32

	// Journal returns the compressed record of the round for replays.
	Journal() ([]byte, error)
}

// MatchResult contains the outcome of a completed match.
type MatchResult struct {
	MatchID MatchID
	Reason  MatchEndReason
	Winner  int
	Score1  int
	Score2  int
	Ticks   uint64
}

// OnlineMatch runs one online game at a fixed tick rate.
type OnlineMatch struct {
	id   MatchID
	code string
	game OnlineGame

	player1Session SessionHandle
	player2Session SessionHandle

	inputMu    sync.Mutex
	lastInput1 core.InputFrame
	lastInput2 core.InputFrame
	inputChan  chan playerInput

	tick     uint64
	tickRate int
	done     chan struct{}
	doneOnce sync.Once

	disconnectChan chan SessionID

	logger  *log.Logger
	metrics *Metrics
}

type playerInput struct {
	player PlayerID
	input  core.InputFrame
}

// NewOnlineMatch creates a new online match. logger and metrics may be nil.
func NewOnlineMatch(
	id MatchID,
	code string,
	game OnlineGame,
	p1Session, p2Session SessionHandle,
	tickRate int,
	logger *log.Logger,
	metrics *Metrics,
) *OnlineMatch {
	if logger == nil {
		logger = log.Default()
	}
	return &OnlineMatch{
		id:             id,
		code:           code,
		game:           game,
		player1Session: p1Session,
		player2Session: p2Session,
		lastInput1:     core.NewInputFrame(),
		lastInput2:     core.NewInputFrame(),
		inputChan:      make(chan playerInput, 64),
		tickRate:       max(1, tickRate),
		done:           make(chan struct{}),
		disconnectChan: make(chan SessionID, 2),
		logger:         logger.With("match", id),
		metrics:        metrics,
	}
}

// ID returns the match identifier.
func (m *OnlineMatch) ID() MatchID {
	return m.id
}

// Code returns the join code used to create this match.
func (m *OnlineMatch) Code() string {
	return m.code
}

// Players returns the sessions of both seats.
func (m *OnlineMatch) Players() (SessionHandle, SessionHandle) {
	return m.player1Session, m.player2Session
}

// Game returns the simulation driven by the match.
func (m *OnlineMatch) Game() OnlineGame {
	return m.game
}

// SendInput sends player input to the match.
// Non-blocking, uses a buffered channel.
func (m *OnlineMatch) SendInput(player PlayerID, input core.InputFrame) {
	select {
	case m.inputChan <- playerInput{player: player, input: input}:
	default:
		if m.metrics != nil {
			m.metrics.dropped.Inc()
		}
	}
}

// PlayerDisconnected signals that a player has disconnected.
func (m *OnlineMatch) PlayerDisconnected(sessionID SessionID) {
	select {
	case m.disconnectChan <- sessionID:
	default:
	}
}

// Run starts the authoritative match loop and blocks until the match ends.
// The callback is called with the result unless the match was stopped.
func (m *OnlineMatch) Run(onComplete func(MatchResult)) {
	defer m.Stop()

	ticker := time.NewTicker(time.Second / time.Duration(m.tickRate))
	defer ticker.Stop()

	go m.monitorSessions()

	for {
		select {
		case <-ticker.C:
			result, done := m.runTick()
			if done {
				if onComplete != nil {
					onComplete(result)
				}
				return
			}

		case sessionID := <-m.disconnectChan:
			result := m.handleDisconnect(sessionID)
			if onComplete != nil {
				onComplete(result)
			}
			return

		case <-m.done:
			return
		}
	}
}

func (m *OnlineMatch) runTick() (MatchResult, bool) {
	m.drainInputs()

	m.inputMu.Lock()
	multiInput := core.NewMultiInputFrame()
	multiInput.SetPlayer(Player1, m.lastInput1.Clone())
	multiInput.SetPlayer(Player2, m.lastInput2.Clone())
	m.lastInput1.Clear()
	m.lastInput2.Clear()
	m.inputMu.Unlock()

	if _, err := m.game.StepMulti(multiInput); err != nil {
		m.logger.Error("simulation failed", "tick", m.tick, "err", err)
		m.game.Abort()
		return m.result(MatchEndReasonFailed, NoWinner), true
	}
	m.tick++
	if m.metrics != nil {
		m.metrics.ticks.Inc()
	}

	snapshotEvent := SnapshotEvent{
		MatchID:  m.id,
		Tick:     m.tick,
		Snapshot: m.game.Snapshot(),
	}
	m.player1Session.Send(snapshotEvent)
	m.player2Session.Send(snapshotEvent)

	if m.game.IsGameOver() {
		return m.result(MatchEndReasonCompleted, m.game.Winner()), true
	}
	return MatchResult{}, false
}

func (m *OnlineMatch) result(reason MatchEndReason, winner int) MatchResult {
	return MatchResult{
		MatchID: m.id,
		Reason:  reason,
		Winner:  winner,
		Score1:  m.game.Score1(),
		Score2:  m.game.Score2(),
		Ticks:   m.tick,
	}
}

// drainInputs ORs all queued frames into the per-seat frame of this tick.
func (m *OnlineMatch) drainInputs() {
	m.inputMu.Lock()
	defer m.inputMu.Unlock()

	for {
		select {
		case pi := <-m.inputChan:
			target := &m.lastInput1
			if pi.player == Player2 {
				target = &m.lastInput2
			}
			for action, pressed := range pi.input.Actions {
				if pressed {
					target.Set(action)
				}
			}
		default:
			return
		}
	}
}

// handleDisconnect aborts the round; the seat that stayed wins.
func (m *OnlineMatch) handleDisconnect(sessionID SessionID) MatchResult {
	m.game.Abort()
	winner := Player1
	if sessionID == m.player1Session.ID() {
		winner = Player2
	}
	m.logger.Info("player left", "session", sessionID, "tick", m.tick)
	return m.result(MatchEndReasonDisconnect, winner.Index())
}

func (m *OnlineMatch) monitorSessions() {
	select {
	case <-m.player1Session.Done():
		m.PlayerDisconnected(m.player1Session.ID())
	case <-m.player2Session.Done():
		m.PlayerDisconnected(m.player2Session.ID())
	case <-m.done:
	}
}

// Stop stops the match loop without reporting a result.
func (m *OnlineMatch) Stop() {
	m.doneOnce.Do(func() {
		close(m.done)
	})
}
