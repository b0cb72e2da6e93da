// Package Events is the in-process fan-out used to nudge connected clients
// into refetching after a mutation. Delivery is best effort: slow
// subscribers get skipped, never waited on.
package Events

import (
	"sync"

	"github.com/google/uuid"
)

const (
	StreakLogUpdated = "streak.log.updated"
	TaskLogUpdated   = "task.log.updated"
	GroupUpdated     = "group.updated"
	GroupNoteUpdated = "group.note.updated"
	DayChanged       = "day.changed"
)

type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type Broadcaster struct {
	mu   sync.RWMutex
	subs map[string]chan Event
}

// subscriber channel buffer; events beyond this are dropped for that
// subscriber
const subBuffer = 16

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[string]chan Event)}
}

func (b *Broadcaster) Subscribe() (string, <-chan Event) {
	id := uuid.NewString()
	ch := make(chan Event, subBuffer)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
	b.mu.Unlock()
}

func (b *Broadcaster) Publish(e Event) {
	b.mu.RLock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			// subscriber buffer full, drop
		}
	}
	b.mu.RUnlock()
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Default is the broadcaster the controllers and cron jobs publish to.
var Default = NewBroadcaster()

func Publish(eventType string, payload interface{}) {
	Default.Publish(Event{Type: eventType, Payload: payload})
}
