package core

import (
	"encoding/binary"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// OccupantView is a read-only copy of one occupant.
type OccupantView struct {
	RC       RowCol
	Kind     Kind
	Color    Color // blocks only
	Chaining bool  // blocks only
	State    State
	Time     int
	Speed    int
	Columns  int
	Rows     int
	Loot     []Color // garbage only
}

// PitSnapshot is everything a renderer or a peer needs to know about a pit
// at the end of a tick.
type PitSnapshot struct {
	Occupants []OccupantView
	Cursor    RowCol
	Scroll    int
	Top       int
	Bottom    int
	Raising   bool
	Enabled   bool
	Panic     int
	Recovery  int
	Chain     int
	IsPanic   bool
	Over      bool
}

// Snapshot captures the pit state, occupants ordered top to bottom and left
// to right.
func (d *BlockDirector) Snapshot() PitSnapshot {
	p := d.pit
	s := PitSnapshot{
		Occupants: make([]OccupantView, 0, len(p.order)),
		Cursor:    p.cursor,
		Scroll:    p.scroll,
		Top:       p.Top(),
		Bottom:    p.Bottom(),
		Raising:   p.raise,
		Enabled:   p.enabled,
		Panic:     p.panic,
		Recovery:  p.recovery,
		Chain:     d.chain,
		IsPanic:   d.panicking,
		Over:      d.over,
	}
	for _, h := range p.order {
		o := p.Get(h)
		v := OccupantView{
			RC:      o.rc,
			Kind:    o.kind,
			State:   o.state,
			Time:    o.time,
			Speed:   o.speed,
			Columns: o.Columns(),
			Rows:    o.Rows(),
		}
		switch o.kind {
		case KindBlock:
			v.Color = o.block.Color
			v.Chaining = o.block.Chaining
		case KindGarbage:
			v.Loot = append([]Color(nil), o.garbage.Loot...)
		}
		s.Occupants = append(s.Occupants, v)
	}
	sort.Slice(s.Occupants, func(i, j int) bool {
		a, b := s.Occupants[i].RC, s.Occupants[j].RC
		if a.R != b.R {
			return a.R < b.R
		}
		return a.C < b.C
	})
	return s
}

// Hash digests the snapshot. Equal pits hash equal on every platform, which
// is what replay verification and peer comparison rely on.
func (s PitSnapshot) Hash() uint64 {
	d := xxhash.New()
	var buf [8]byte
	put := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(v)))
		_, _ = d.Write(buf[:])
	}
	flag := func(b bool) {
		if b {
			put(1)
		} else {
			put(0)
		}
	}

	put(s.Cursor.R)
	put(s.Cursor.C)
	put(s.Scroll)
	flag(s.Raising)
	flag(s.Enabled)
	put(s.Panic)
	put(s.Recovery)
	put(s.Chain)
	flag(s.IsPanic)
	flag(s.Over)
	put(len(s.Occupants))
	for _, o := range s.Occupants {
		put(o.RC.R)
		put(o.RC.C)
		put(int(o.Kind))
		put(int(o.Color))
		flag(o.Chaining)
		put(int(o.State))
		put(o.Time)
		put(o.Speed)
		put(o.Columns)
		put(o.Rows)
		for _, c := range o.Loot {
			put(int(c))
		}
	}
	return d.Sum64()
}

// Clone returns an independent copy of the director and its pit.
// Pending events are not carried over.
func (d *BlockDirector) Clone() *BlockDirector {
	c := *d
	c.pit = d.pit.Clone()
	c.events = EventQueue{}
	return &c
}
