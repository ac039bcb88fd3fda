package core

import "sort"

// MatchBuilder collects the blocks matched by a set of hot blocks. It is
// built for one tick and discarded afterwards.
type MatchBuilder struct {
	pit      *Pit
	result   map[RowCol]Handle
	chaining bool
}

// NewMatchBuilder starts an empty match over pit.
func NewMatchBuilder(pit *Pit) *MatchBuilder {
	return &MatchBuilder{pit: pit, result: make(map[RowCol]Handle)}
}

// Ignite looks for runs of three or more through the block. Horizontal
// and vertical runs count independently; all qualifying cells join the
// result. Cells already in the result are not counted twice.
func (m *MatchBuilder) Ignite(h Handle) {
	o := m.pit.Get(h)
	if o == nil || !m.matchable(o, o.block.Color) {
		return
	}
	color := o.block.Color

	left := m.run(o.rc, DirLeft, color)
	right := m.run(o.rc, DirRight, color)
	if len(left)+len(right)+1 >= 3 {
		m.insert(o.rc)
		m.insertAll(left)
		m.insertAll(right)
	}

	up := m.run(o.rc, DirUp, color)
	down := m.run(o.rc, DirDown, color)
	if len(up)+len(down)+1 >= 3 {
		m.insert(o.rc)
		m.insertAll(up)
		m.insertAll(down)
	}
}

// run walks from rc in direction d while cells hold matchable blocks of color.
func (m *MatchBuilder) run(rc RowCol, d Dir, color Color) []RowCol {
	var cells []RowCol
	for at := rc.Step(d); ; at = at.Step(d) {
		o := m.pit.BlockAt(at)
		if o == nil || !m.matchable(o, color) {
			return cells
		}
		cells = append(cells, at)
	}
}

func (m *MatchBuilder) matchable(o *Occupant, color Color) bool {
	return o.IsMatchable() && o.block.Color == color && color != ColorFake
}

func (m *MatchBuilder) insertAll(cells []RowCol) {
	for _, rc := range cells {
		m.insert(rc)
	}
}

func (m *MatchBuilder) insert(rc RowCol) {
	if _, ok := m.result[rc]; ok {
		return
	}
	h, ok := m.pit.At(rc)
	if !ok {
		return
	}
	m.result[rc] = h
	if m.pit.Get(h).block.Chaining {
		m.chaining = true
	}
}

// Result returns the matched blocks, top to bottom and left to right.
func (m *MatchBuilder) Result() []Handle {
	cells := make([]RowCol, 0, len(m.result))
	for rc := range m.result {
		cells = append(cells, rc)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].R != cells[j].R {
			return cells[i].R < cells[j].R
		}
		return cells[i].C < cells[j].C
	})
	hs := make([]Handle, len(cells))
	for i, rc := range cells {
		hs[i] = m.result[rc]
	}
	return hs
}

// Contains reports whether the cell is part of the match.
func (m *MatchBuilder) Contains(rc RowCol) bool {
	_, ok := m.result[rc]
	return ok
}

// Combo is the number of matched blocks.
func (m *MatchBuilder) Combo() int { return len(m.result) }

// Chaining reports whether any matched block descends from an earlier match.
func (m *MatchBuilder) Chaining() bool { return m.chaining }
