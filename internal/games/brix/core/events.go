package core

import "fmt"

// Event is something that happened in a pit during a tick. The director
// queues events; it never depends on what listeners do with them.
type Event interface {
	Name() string
}

// CursorMoved reports a successful cursor step.
type CursorMoved struct {
	To RowCol
}

// SwapStarted reports an accepted swap command.
type SwapStarted struct {
	At RowCol
}

// Match reports blocks entering the break state together.
type Match struct {
	Combo    int
	Chaining bool
}

// ChainFinished reports that the pit came to rest after one or more matches.
// Counter is the number of chaining matches that followed the first one.
type ChainFinished struct {
	Counter int
}

// BlockDied reports a block removed after breaking. Filler blocks die silently.
type BlockDied struct {
	At    RowCol
	Color Color
}

// GarbageDissolved reports a garbage brick giving up its lowest row.
type GarbageDissolved struct {
	At      RowCol
	Columns int
	Rows    int
}

func (CursorMoved) Name() string      { return "cursor_moved" }
func (SwapStarted) Name() string      { return "swap_started" }
func (Match) Name() string            { return "match" }
func (ChainFinished) Name() string    { return "chain_finished" }
func (BlockDied) Name() string        { return "block_died" }
func (GarbageDissolved) Name() string { return "garbage_dissolved" }

func (e Match) String() string         { return fmt.Sprintf("match combo=%d chaining=%t", e.Combo, e.Chaining) }
func (e ChainFinished) String() string { return fmt.Sprintf("chain counter=%d", e.Counter) }

// EventQueue buffers events until a consumer drains them.
type EventQueue struct {
	events []Event
}

// Push appends an event.
func (q *EventQueue) Push(e Event) {
	q.events = append(q.events, e)
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int { return len(q.events) }

// Drain returns and clears the pending events in the order they occurred.
func (q *EventQueue) Drain() []Event {
	out := q.events
	q.events = nil
	return out
}

// Listener consumes events.
type Listener interface {
	Notify(Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

// Notify calls f(e).
func (f ListenerFunc) Notify(e Event) { f(e) }

// Hub fans events out to its listeners in registration order.
type Hub struct {
	listeners []Listener
}

// Add registers a listener.
func (h *Hub) Add(l Listener) {
	h.listeners = append(h.listeners, l)
}

// Publish delivers every event to every listener.
func (h *Hub) Publish(events []Event) {
	for _, e := range events {
		for _, l := range h.listeners {
			l.Notify(e)
		}
	}
}
