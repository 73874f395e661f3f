package task

import (
	"sync"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
)

const subscriberBuffer = 64

// broadcaster fans a task's events out to live subscribers. It holds no
// durable state of its own — ListByTask against the Store is the source of
// truth for replay; the broadcaster only carries events to subscribers
// that are already attached at publish time.
type broadcaster struct {
	mu      sync.Mutex
	subs    map[int64]chan *entity.TaskEvent
	nextSub int64
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int64]chan *entity.TaskEvent)}
}

// subscribe registers a new subscriber and returns its channel and an
// unsubscribe function the caller must call on disconnect.
func (b *broadcaster) subscribe() (<-chan *entity.TaskEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextSub
	b.nextSub++
	ch := make(chan *entity.TaskEvent, subscriberBuffer)
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

// publish forwards an event to every live subscriber, dropping it for any
// subscriber whose buffer is full rather than blocking the task.
func (b *broadcaster) publish(e *entity.TaskEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// closeAll disconnects every subscriber, used once a task reaches a
// terminal state and no further events will be published.
func (b *broadcaster) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
