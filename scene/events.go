package scene

type ZoneEventKind string

const (
	ZoneEntered ZoneEventKind = "entered"
	ZoneExited  ZoneEventKind = "exited"
)

// ZoneEvent is emitted when an object's first fixture enters a zone or its
// last fixture leaves it.
type ZoneEvent struct {
	Kind     ZoneEventKind
	ZoneID   string
	ObjectID string
	AtMs     float64
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []ZoneEvent
}

// Push adds an event.
func (q *EventQueue) Push(evt ZoneEvent) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []ZoneEvent {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}
