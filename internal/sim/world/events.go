package world

type EventKind string

const (
	EventWallState       EventKind = "WALL_STATE"
	EventPillarDestroyed EventKind = "PILLAR_DESTROYED"
	EventDebrisImpact    EventKind = "DEBRIS_IMPACT"
)

// Event is one immutable notification record. Cursor is a per-world
// monotonic sequence; delivery order equals occurrence order.
type Event struct {
	Cursor uint64
	Tick   uint64
	Kind   EventKind

	Wall  WallKey   // WALL_STATE
	State WallState // WALL_STATE
	Pos   Vec2      // PILLAR_DESTROYED, DEBRIS_IMPACT
}

// eventQueue is a bounded append-only ring. Producers only append;
// subscribers poll with a cursor and drain at their own pace. A subscriber
// that falls more than maxEvents behind loses the oldest records rather
// than slowing the producer.
type eventQueue struct {
	base  uint64 // cursor of items[0]
	items []Event
	max   int
}

func newEventQueue(max int) *eventQueue {
	if max <= 0 {
		max = 4096
	}
	return &eventQueue{max: max}
}

func (q *eventQueue) append(e Event) Event {
	e.Cursor = q.base + uint64(len(q.items))
	q.items = append(q.items, e)
	if over := len(q.items) - q.max; over > 0 {
		q.items = append(q.items[:0], q.items[over:]...)
		q.base += uint64(over)
	}
	return e
}

// next is the cursor the following append will receive.
func (q *eventQueue) next() uint64 { return q.base + uint64(len(q.items)) }

// after returns up to limit events with cursor >= since, plus the cursor to
// resume from.
func (q *eventQueue) after(since uint64, limit int) ([]Event, uint64) {
	if since < q.base {
		since = q.base
	}
	start := int(since - q.base)
	if start >= len(q.items) {
		return nil, q.next()
	}
	end := len(q.items)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	out := make([]Event, end-start)
	copy(out, q.items[start:end])
	return out, q.base + uint64(end)
}
