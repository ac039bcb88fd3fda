package round

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/tui-brix/internal/games/brix/core"
)

// ErrReplayDiverged means a replay ended differently from the journal.
var ErrReplayDiverged = errors.New("round: replay diverged from journal")

// ReplayResult is the outcome of re-running a journal.
type ReplayResult struct {
	State   *GameState
	Winner  int
	EndTime int
	Stats   []Stats

	// Hashes holds the state hash at every checkpoint interval.
	Hashes []uint64
}

// Replay re-simulates a journal from its settings and inputs. A finished
// journal must reproduce its recorded end; an unfinished one runs to its
// last input.
func Replay(j *Journal) (*ReplayResult, error) {
	state, err := NewGameState(j.Settings)
	if err != nil {
		return nil, err
	}
	r := newRound(state)
	r.SkipIntro()
	for _, in := range j.Inputs {
		r.journal.Add(in)
	}

	end := 0
	if j.Finished {
		end = j.EndTime
	} else if n := len(j.Inputs); n > 0 {
		end = j.Inputs[n-1].GameTime + 1
	}

	res := &ReplayResult{}
	for r.phase == PhasePlay && r.state.GameTime() < end {
		if r.state.GameTime()%core.CheckpointInterval == 0 {
			res.Hashes = append(res.Hashes, r.state.Hash())
		}
		if err := r.step(true); err != nil {
			return nil, err
		}
	}
	r.Drain()

	res.State = r.state
	res.Winner = r.winner
	res.EndTime = r.state.GameTime()
	res.Stats = append([]Stats(nil), r.stats...)

	if j.Finished && (res.Winner != j.Winner || res.EndTime != j.EndTime) {
		return res, fmt.Errorf("%w: ended at %d won by %d, journal says %d won by %d",
			ErrReplayDiverged, res.EndTime, res.Winner, j.EndTime, j.Winner)
	}
	return res, nil
}
