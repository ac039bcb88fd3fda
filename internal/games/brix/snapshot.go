package brix

import (
	sim "github.com/vovakirdan/tui-brix/internal/games/brix/core"
	"github.com/vovakirdan/tui-brix/internal/games/brix/round"
)

// Snapshot is everything needed to draw a round. The server broadcasts one
// per tick to both seats of an online match, and local games render
// through the same value.
type Snapshot struct {
	Title     string
	Names     []string
	Pits      []sim.PitSnapshot
	Stats     []round.Stats
	Banners   []string
	Phase     round.Phase
	IntroLeft int
	Winner    int
	GameTime  int
	Paused    bool
}

// IsGameSnapshot implements multiplayer.GameSnapshot.
func (Snapshot) IsGameSnapshot() {}

// WithNames returns a copy labelled with the given names. Empty names keep
// the current label.
func (s Snapshot) WithNames(names ...string) Snapshot {
	s.Names = append([]string(nil), s.Names...)
	for i, n := range names {
		if i < len(s.Names) && n != "" {
			s.Names[i] = n
		}
	}
	return s
}
