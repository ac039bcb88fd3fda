package round

import "github.com/vovakirdan/tui-brix/internal/games/brix/core"

// Scoring.
const (
	pointsPerBlock = 10
	pointsPerChain = 50
)

// Stats accumulates the score of one player from the pit events.
type Stats struct {
	Score     int
	Matches   int
	MaxCombo  int
	MaxChain  int
	Broken    int
	Dissolved int
}

// Notify implements core.Listener.
func (s *Stats) Notify(e core.Event) {
	switch e := e.(type) {
	case core.Match:
		s.Matches++
		s.Score += pointsPerBlock * e.Combo
		s.MaxCombo = max(s.MaxCombo, e.Combo)
	case core.ChainFinished:
		s.Score += pointsPerChain * e.Counter
		s.MaxChain = max(s.MaxChain, e.Counter)
	case core.BlockDied:
		s.Broken++
	case core.GarbageDissolved:
		s.Dissolved++
	}
}
