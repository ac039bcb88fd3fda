package core

// Kind discriminates the occupant variant.
type Kind uint8

const (
	KindBlock Kind = iota
	KindGarbage
)

func (k Kind) String() string {
	if k == KindGarbage {
		return "garbage"
	}
	return "block"
}

// Block is the payload of a single colored cell.
type Block struct {
	Color Color
	// Chaining marks a block as the consequence of an earlier match. It
	// travels through falls and swaps and is cleared when the block settles
	// without matching.
	Chaining bool
}

// Garbage is the payload of a rectangular brick. Loot holds one color per
// cell; the first Columns entries are released by the next shrink.
type Garbage struct {
	Columns int
	Rows    int
	Loot    []Color
}

// Occupant is anything that claims pit cells: a tagged variant over Block
// and Garbage with the shared Physical payload embedded.
type Occupant struct {
	Physical
	kind    Kind
	block   Block
	garbage Garbage
}

func newBlock(color Color, rc RowCol, state State) *Occupant {
	return &Occupant{
		Physical: newPhysical(rc, state),
		kind:     KindBlock,
		block:    Block{Color: color},
	}
}

func newGarbage(rc RowCol, columns, rows int, loot []Color) (*Occupant, error) {
	if columns < 1 || rows < 1 || len(loot) != columns*rows {
		return nil, invariant("spawn garbage", ErrBadShape)
	}
	return &Occupant{
		Physical: newPhysical(rc, StateRest),
		kind:     KindGarbage,
		garbage:  Garbage{Columns: columns, Rows: rows, Loot: loot},
	}, nil
}

// Kind returns which variant this occupant is.
func (o *Occupant) Kind() Kind { return o.kind }

// Block returns the block payload, or nil for garbage.
func (o *Occupant) Block() *Block {
	if o.kind != KindBlock {
		return nil
	}
	return &o.block
}

// Garbage returns the garbage payload, or nil for blocks.
func (o *Occupant) Garbage() *Garbage {
	if o.kind != KindGarbage {
		return nil
	}
	return &o.garbage
}

// Rows returns the footprint height.
func (o *Occupant) Rows() int {
	switch o.kind {
	case KindGarbage:
		return o.garbage.Rows
	default:
		return 1
	}
}

// Columns returns the footprint width.
func (o *Occupant) Columns() int {
	switch o.kind {
	case KindGarbage:
		return o.garbage.Columns
	default:
		return 1
	}
}

// LowestRow returns the row of the bottom edge of the footprint.
func (o *Occupant) LowestRow() int {
	return o.rc.R + o.Rows() - 1
}

// Cells lists the footprint, top row first.
func (o *Occupant) Cells() []RowCol {
	cells := make([]RowCol, 0, o.Rows()*o.Columns())
	for r := o.rc.R; r < o.rc.R+o.Rows(); r++ {
		for c := o.rc.C; c < o.rc.C+o.Columns(); c++ {
			cells = append(cells, RC(r, c))
		}
	}
	return cells
}

// IsSwappable reports whether a block may take part in a swap.
func (o *Occupant) IsSwappable() bool {
	if o.kind != KindBlock {
		return false
	}
	switch o.state {
	case StateRest, StateFall, StateLand, StateSwapLeft, StateSwapRight:
		return true
	}
	return false
}

// IsMatchable reports whether a block can be part of a match right now.
func (o *Occupant) IsMatchable() bool {
	return o.kind == KindBlock && (o.state == StateRest || o.state == StateLand)
}

// SetState enters a new state for time ticks at speed 1.
func (o *Occupant) SetState(state State, time int) error {
	return o.SetStateSpeed(state, time, 1)
}

// SetStateSpeed enters a new state. The duration is time/speed ticks.
// Preview can only be assigned at spawn, and garbage never swaps or lands.
func (o *Occupant) SetStateSpeed(state State, time, speed int) error {
	if state == StatePreview {
		return invariant("set state preview", ErrBadState)
	}
	if o.kind == KindGarbage {
		switch state {
		case StateSwapLeft, StateSwapRight, StateLand:
			return invariant("set garbage state "+state.String(), ErrBadState)
		}
	}
	return o.enterState(state, time, speed)
}

// update runs the per-tick timer. Landing promotes to rest and a finished
// block break dies; garbage break expiry is left to the director.
func (o *Occupant) update() error {
	if o.state == StateDead {
		return invariant("update", ErrDeadState)
	}
	o.countdown()

	if o.kind == KindBlock && o.state == StateBreak && o.IsArriving() {
		if err := o.SetState(StateDead, 1); err != nil {
			return err
		}
	}
	if o.state == StateLand && o.IsArriving() {
		if err := o.SetState(StateRest, 1); err != nil {
			return err
		}
	}
	return nil
}

// shrink drops the lowest row of a garbage brick and returns the loot it
// held, left to right.
func (g *Garbage) shrink() []Color {
	freed := append([]Color(nil), g.Loot[:g.Columns]...)
	g.Loot = append([]Color(nil), g.Loot[g.Columns:]...)
	g.Rows--
	return freed
}

func (o *Occupant) clone() *Occupant {
	c := *o
	if o.kind == KindGarbage {
		c.garbage.Loot = append([]Color(nil), o.garbage.Loot...)
	}
	return &c
}
