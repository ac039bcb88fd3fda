package round

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/tui-brix/internal/games/brix/core"
)

// RollbackWindow is the number of checkpoints kept for late inputs.
const RollbackWindow = 10

var (
	// ErrInputTooLate rejects an input older than the oldest checkpoint.
	ErrInputTooLate = errors.New("round: input older than the rollback window")
	// ErrRoundOver rejects inputs after the result is known.
	ErrRoundOver = errors.New("round: round is over")
)

// Phase is the stage of a round.
type Phase int

const (
	PhaseIntro Phase = iota
	PhasePlay
	PhaseResult
)

func (p Phase) String() string {
	switch p {
	case PhaseIntro:
		return "intro"
	case PhasePlay:
		return "play"
	case PhaseResult:
		return "result"
	default:
		return "unknown"
	}
}

type checkpoint struct {
	state *GameState
	stats []Stats
}

// Round drives a GameState through its phases. Inputs go into the journal
// first and reach the simulation when their game time comes up; an input
// stamped in the past rewinds to a checkpoint and simulates forward again.
type Round struct {
	state   *GameState
	journal *Journal
	phase   Phase
	intro   int
	winner  int

	stats       []Stats
	hubs        []*core.Hub
	checkpoints []checkpoint
	events      []PlayerEvent
	rewinds     int
}

// NewRound starts a round in its intro phase.
func NewRound(s Settings) (*Round, error) {
	state, err := NewGameState(s)
	if err != nil {
		return nil, err
	}
	return newRound(state), nil
}

// NewRoundWith starts a round on a prepared state, for scripted pits.
func NewRoundWith(state *GameState) *Round {
	return newRound(state)
}

func newRound(state *GameState) *Round {
	r := &Round{
		state:   state,
		journal: NewJournal(state.Settings()),
		winner:  core.NoOne,
		stats:   make([]Stats, state.Players()),
		hubs:    make([]*core.Hub, state.Players()),
	}
	for p := range r.hubs {
		r.hubs[p] = &core.Hub{}
		r.hubs[p].Add(&r.stats[p])
	}
	return r
}

// State returns the live simulation.
func (r *Round) State() *GameState { return r.state }

// Journal returns the record of the round.
func (r *Round) Journal() *Journal { return r.journal }

// Phase returns the current stage.
func (r *Round) Phase() Phase { return r.phase }

// Winner returns the winning player once the round is over.
func (r *Round) Winner() int { return r.winner }

// IntroLeft returns the ticks until play starts.
func (r *Round) IntroLeft() int {
	if r.phase != PhaseIntro {
		return 0
	}
	return r.state.Settings().Rules.IntroTime - r.intro
}

// Stats returns the running statistics of a player.
func (r *Round) Stats(player int) Stats { return r.stats[player] }

// Rewinds counts the rollbacks caused by late inputs.
func (r *Round) Rewinds() int { return r.rewinds }

// AddListener subscribes l to the live events of a player. Events produced
// while catching up after a rewind are not delivered.
func (r *Round) AddListener(player int, l core.Listener) {
	r.hubs[player].Add(l)
}

// SkipIntro starts play immediately.
func (r *Round) SkipIntro() {
	if r.phase == PhaseIntro {
		r.phase = PhasePlay
	}
}

// Input records an input. TimeASAP inputs take the current game time.
func (r *Round) Input(in GameInput) error {
	if r.phase == PhaseResult {
		return ErrRoundOver
	}
	if in.Player < 0 || in.Player >= r.state.Players() {
		return fmt.Errorf("round: input for unknown player %d", in.Player)
	}
	now := r.state.GameTime()
	if in.GameTime == TimeASAP {
		in.GameTime = now
	}
	if in.GameTime >= now {
		r.journal.Add(in)
		return nil
	}

	cp := -1
	for i := len(r.checkpoints) - 1; i >= 0; i-- {
		if r.checkpoints[i].state.GameTime() <= in.GameTime {
			cp = i
			break
		}
	}
	if cp < 0 {
		return ErrInputTooLate
	}
	r.journal.Add(in)
	return r.rewind(cp, now)
}

func (r *Round) rewind(cp, target int) error {
	r.rewinds++
	base := r.checkpoints[cp]
	r.checkpoints = r.checkpoints[:cp+1]
	r.state = base.state.Clone()
	copy(r.stats, base.stats)

	for r.state.GameTime() < target && r.phase == PhasePlay {
		if err := r.step(false); err != nil {
			return err
		}
	}
	return nil
}

// Tick advances the round by one tick.
func (r *Round) Tick() error {
	switch r.phase {
	case PhaseIntro:
		r.intro++
		if r.intro >= r.state.Settings().Rules.IntroTime {
			r.phase = PhasePlay
		}
		return nil
	case PhasePlay:
		return r.step(true)
	default:
		return nil
	}
}

func (r *Round) step(live bool) error {
	now := r.state.GameTime()
	if now%core.CheckpointInterval == 0 && (len(r.checkpoints) == 0 || r.checkpoints[len(r.checkpoints)-1].state.GameTime() < now) {
		r.checkpoints = append(r.checkpoints, checkpoint{
			state: r.state.Clone(),
			stats: append([]Stats(nil), r.stats...),
		})
		if len(r.checkpoints) > RollbackWindow {
			r.checkpoints = r.checkpoints[len(r.checkpoints)-RollbackWindow:]
		}
	}

	for _, in := range r.journal.InputsAt(now) {
		if err := r.state.ApplyInput(in); err != nil {
			return err
		}
	}
	if err := r.state.Update(); err != nil {
		return err
	}

	for _, pe := range r.state.Drain() {
		if live {
			r.hubs[pe.Player].Publish([]core.Event{pe.Event})
			r.events = append(r.events, pe)
		} else {
			r.stats[pe.Player].Notify(pe.Event)
		}
	}

	if r.state.Over() {
		r.winner = r.state.Winner()
		r.phase = PhaseResult
		r.journal.Finish(r.state.GameTime(), r.winner)
	}
	return nil
}

// Drain returns the live events since the last drain.
func (r *Round) Drain() []PlayerEvent {
	out := r.events
	r.events = nil
	return out
}

// Abort ends the round without a winner, as when a peer leaves.
func (r *Round) Abort() {
	if r.phase == PhaseResult {
		return
	}
	r.phase = PhaseResult
	r.journal.Finish(r.state.GameTime(), r.winner)
}
