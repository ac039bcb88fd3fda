package core

// Color is the color of a block. Fake is a non-playable filler that never
// matches and dies silently.
type Color uint8

const (
	ColorFake Color = iota
	ColorBlue
	ColorRed
	ColorYellow
	ColorGreen
	ColorPurple
	ColorOrange
)

// PlayableColors is the number of colors a supplier chooses from.
const PlayableColors = 6

// String returns the color name.
func (c Color) String() string {
	switch c {
	case ColorFake:
		return "fake"
	case ColorBlue:
		return "blue"
	case ColorRed:
		return "red"
	case ColorYellow:
		return "yellow"
	case ColorGreen:
		return "green"
	case ColorPurple:
		return "purple"
	case ColorOrange:
		return "orange"
	default:
		return "unknown"
	}
}

// ColorSupplier produces the colors of new blocks and of garbage loot.
// Implementations must be deterministic for a given construction.
type ColorSupplier interface {
	NextSpawn() Color
	NextEmerge() Color
	Clone() ColorSupplier
}

// RandomColorSupplier draws uniformly distributed playable colors from a
// PCG32 stream.
type RandomColorSupplier struct {
	rng pcg32
}

// NewRandomColorSupplier seeds a supplier for one player. Each player gets a
// distinct stream derived from the round seed.
func NewRandomColorSupplier(seed uint32, player int) *RandomColorSupplier {
	return &RandomColorSupplier{rng: newPCG32(uint64(seed) * uint64(player+1))}
}

// NextSpawn returns the color for a freshly spawned block.
func (s *RandomColorSupplier) NextSpawn() Color {
	return Color(1 + s.rng.below(PlayableColors))
}

// NextEmerge returns the color for a block hidden in garbage loot.
func (s *RandomColorSupplier) NextEmerge() Color {
	return s.NextSpawn()
}

// Clone returns a supplier that continues the same stream independently.
func (s *RandomColorSupplier) Clone() ColorSupplier {
	c := *s
	return &c
}

// SequenceColorSupplier repeats a fixed color sequence. Useful for scripted
// scenarios and tests.
type SequenceColorSupplier struct {
	Colors []Color
	next   int
}

// NextSpawn returns the next color of the sequence.
func (s *SequenceColorSupplier) NextSpawn() Color {
	if len(s.Colors) == 0 {
		return ColorFake
	}
	c := s.Colors[s.next%len(s.Colors)]
	s.next++
	return c
}

// NextEmerge returns the next color of the sequence.
func (s *SequenceColorSupplier) NextEmerge() Color {
	return s.NextSpawn()
}

// Clone copies the supplier and its position.
func (s *SequenceColorSupplier) Clone() ColorSupplier {
	c := *s
	c.Colors = append([]Color(nil), s.Colors...)
	return &c
}
