package report

import "sync"

const subscriberBuffer = 64

// Event is one message published to a report's live subscribers over SSE:
// either a stage AgentState update or a section_stream token chunk.
type Event struct {
	Type  string // "state" or "section_stream"
	State *AgentState
	Chunk *SectionChunk
}

// broadcaster fans one report's events out to any number of subscribers,
// dropping events for a subscriber whose channel is full rather than
// blocking generation on a slow reader. Mirrors the per-task broadcaster
// the Task Manager uses for its own event streams.
type broadcaster struct {
	mu      sync.Mutex
	subs    map[int64]chan *Event
	nextSub int64
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int64]chan *Event)}
}

func (b *broadcaster) subscribe() (<-chan *Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextSub
	b.nextSub++
	ch := make(chan *Event, subscriberBuffer)
	b.subs[id] = ch
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if existing, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(existing)
		}
	}
}

func (b *broadcaster) publish(e *Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

func (b *broadcaster) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
