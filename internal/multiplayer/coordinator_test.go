package multiplayer

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-brix/internal/core"
)

type fakeSnapshot struct{ tick int }

func (fakeSnapshot) IsGameSnapshot() {}

// fakeGame ends after endAt ticks (never if zero) with seat 1 ahead.
type fakeGame struct {
	mu      sync.Mutex
	ticks   int
	endAt   int
	aborted bool
	swaps   int
}

func (g *fakeGame) StepMulti(in core.MultiInputFrame) (core.StepResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ticks++
	if in.Player(Player2).Has(core.ActionSwap) {
		g.swaps++
	}
	return core.StepResult{}, nil
}

func (g *fakeGame) Snapshot() GameSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fakeSnapshot{tick: g.ticks}
}

func (g *fakeGame) IsGameOver() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.endAt > 0 && g.ticks >= g.endAt
}

func (g *fakeGame) Winner() int { return 1 }
func (g *fakeGame) Score1() int { return 10 }
func (g *fakeGame) Score2() int { return 20 }

func (g *fakeGame) Abort() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.aborted = true
}

func (g *fakeGame) GameTime() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ticks
}

func (g *fakeGame) Seed() uint32             { return 7 }
func (g *fakeGame) Journal() ([]byte, error) { return []byte("journal"), nil }

type memorySaver struct {
	mu      sync.Mutex
	results []MatchResultData
}

func (s *memorySaver) SaveMatchResult(r MatchResultData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
	return nil
}

type fixture struct {
	coord *Coordinator
	host  *ChannelSession
	guest *ChannelSession
	game  *fakeGame
	saver *memorySaver
}

func newFixture(t *testing.T, endAt int) *fixture {
	t.Helper()
	f := &fixture{
		host:  NewChannelSession("s1", "ann", 256),
		guest: NewChannelSession("s2", "bob", 256),
		game:  &fakeGame{endAt: endAt},
		saver: &memorySaver{},
	}
	reg := NewSessionRegistry()
	reg.Register(f.host)
	reg.Register(f.guest)

	cfg := DefaultCoordinatorConfig()
	cfg.TickRate = 500
	f.coord = NewCoordinator(cfg, func(core.RuntimeConfig) (OnlineGame, error) { return f.game, nil }, reg)
	f.coord.SetLogger(log.New(io.Discard))
	f.coord.SetResultSaver(f.saver)
	return f
}

// waitFor reads events until one of type T arrives.
func waitFor[T SessionEvent](t *testing.T, s *ChannelSession) T {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case evt := <-s.Events():
			if e, ok := evt.(T); ok {
				return e
			}
		case <-timeout:
			var zero T
			t.Fatalf("timed out waiting for %T", zero)
			return zero
		}
	}
}

func TestMatchRunsToCompletion(t *testing.T) {
	f := newFixture(t, 5)
	f.coord.Start()

	f.coord.Send(CreateLobbyMsg{SessionID: "s1"})
	created := waitFor[LobbyCreatedEvent](t, f.host)
	require.Len(t, created.Code, 6)

	f.coord.Send(JoinLobbyMsg{SessionID: "s2", Code: " " + created.Code + " "})
	joined := waitFor[MatchStartedEvent](t, f.guest)
	assert.Equal(t, Player2, joined.Side)
	assert.Equal(t, "ann", joined.Opponent)

	started := waitFor[MatchStartedEvent](t, f.host)
	assert.Equal(t, joined.MatchID, started.MatchID)
	assert.Len(t, string(started.MatchID), 36, "match ids are UUIDs")

	ended := waitFor[MatchEndedEvent](t, f.host)
	assert.Equal(t, MatchEndReasonCompleted, ended.Reason)
	assert.Equal(t, 1, ended.Winner)
	assert.Equal(t, 20, ended.Score2)

	f.coord.Stop()
	f.saver.mu.Lock()
	defer f.saver.mu.Unlock()
	require.Len(t, f.saver.results, 1)
	res := f.saver.results[0]
	assert.Equal(t, "online", res.Mode)
	assert.Equal(t, "ann", res.Player1)
	assert.Equal(t, "bob", res.Player2)
	assert.Equal(t, "completed", res.EndReason)
	assert.Equal(t, []byte("journal"), res.Journal)
	assert.Equal(t, uint32(7), res.Seed)

	assert.Equal(t, 0, f.coord.MatchCount())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.coord.Metrics().finished.WithLabelValues("completed")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(f.coord.Metrics().ticks), 5.0)
}

func TestDisconnectAwardsTheOtherSeat(t *testing.T) {
	f := newFixture(t, 0)
	f.coord.Start()
	defer f.coord.Stop()

	f.coord.Send(CreateLobbyMsg{SessionID: "s1"})
	code := waitFor[LobbyCreatedEvent](t, f.host).Code
	f.coord.Send(JoinLobbyMsg{SessionID: "s2", Code: code})
	started := waitFor[MatchStartedEvent](t, f.host)

	f.coord.Send(PlayerInputMsg{MatchID: started.MatchID, Player: Player2, Input: swapFrame()})
	waitFor[SnapshotEvent](t, f.host)
	f.guest.Close()

	ended := waitFor[MatchEndedEvent](t, f.host)
	assert.Equal(t, MatchEndReasonDisconnect, ended.Reason)
	assert.Equal(t, 0, ended.Winner)

	f.game.mu.Lock()
	defer f.game.mu.Unlock()
	assert.True(t, f.game.aborted)
}

func swapFrame() core.InputFrame {
	in := core.NewInputFrame()
	in.Set(core.ActionSwap)
	return in
}

func TestLobbyErrors(t *testing.T) {
	f := newFixture(t, 0)
	c := f.coord

	c.handleMessage(CreateLobbyMsg{SessionID: "s1"})
	code := waitFor[LobbyCreatedEvent](t, f.host).Code
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Metrics().lobbies))

	c.handleMessage(CreateLobbyMsg{SessionID: "s1"})
	assert.Equal(t, "Already in a lobby", waitFor[LobbyErrorEvent](t, f.host).Message)

	c.handleMessage(JoinLobbyMsg{SessionID: "s1", Code: code})
	assert.Equal(t, "Already in a lobby", waitFor[LobbyErrorEvent](t, f.host).Message)

	c.handleMessage(JoinLobbyMsg{SessionID: "s2", Code: "ZZZZZZ"})
	assert.Equal(t, "Lobby not found", waitFor[LobbyErrorEvent](t, f.guest).Message)

	c.handleMessage(CancelLobbyMsg{SessionID: "s2", Code: code})
	assert.Equal(t, 1, c.LobbyCount(), "only the host can cancel")

	c.handleMessage(CancelLobbyMsg{SessionID: "s1", Code: code})
	assert.Equal(t, 0, c.LobbyCount())
	assert.Equal(t, 0.0, testutil.ToFloat64(c.Metrics().lobbies))
}

func TestExpiredLobbiesAreRemoved(t *testing.T) {
	f := newFixture(t, 0)
	c := f.coord

	c.handleMessage(CreateLobbyMsg{SessionID: "s1"})
	waitFor[LobbyCreatedEvent](t, f.host)

	c.cleanupExpiredLobbies(time.Now())
	assert.Equal(t, 1, c.LobbyCount())

	c.cleanupExpiredLobbies(time.Now().Add(c.config.LobbyTimeout + time.Second))
	assert.Equal(t, 0, c.LobbyCount())
	assert.Equal(t, "Lobby expired", waitFor[LobbyErrorEvent](t, f.host).Message)
}

func TestHostDisconnectClosesLobby(t *testing.T) {
	f := newFixture(t, 0)
	c := f.coord

	c.handleMessage(CreateLobbyMsg{SessionID: "s1"})
	waitFor[LobbyCreatedEvent](t, f.host)
	c.handleMessage(SessionDisconnectedMsg{SessionID: "s1"})
	assert.Equal(t, 0, c.LobbyCount())

	c.handleMessage(CreateLobbyMsg{SessionID: "s1"})
	waitFor[LobbyCreatedEvent](t, f.host)
}

func TestChannelSessionDropsOldest(t *testing.T) {
	s := NewChannelSession("s", "ann", 2)
	s.Send(LobbyCreatedEvent{Code: "A"})
	s.Send(LobbyCreatedEvent{Code: "B"})
	s.Send(LobbyCreatedEvent{Code: "C"})

	assert.Equal(t, "B", (<-s.Events()).(LobbyCreatedEvent).Code)
	assert.Equal(t, "C", (<-s.Events()).(LobbyCreatedEvent).Code)

	s.Close()
	s.Close()
	s.Send(LobbyCreatedEvent{Code: "D"})
	assert.Empty(t, s.Events())
}
