package events

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/edumax/leads-service/internal/entity"
)

// NotificationEvent is published once per committed notification row. The same
// envelope travels the in-process bus and the AMQP queue, so a consumer cannot
// tell which hop delivered it.
type NotificationEvent struct {
	ID           string              `json:"id"`
	Notification entity.Notification `json:"notification"`
	EmittedAt    time.Time           `json:"emitted_at"`
}

func NewNotificationEvent(n entity.Notification) NotificationEvent {
	return NotificationEvent{
		ID:           uuid.NewString(),
		Notification: n,
		EmittedAt:    time.Now().UTC(),
	}
}

// Bus is the single-node special case of notification fan-out: buffered
// channels per subscriber, non-blocking publish. Subscribers are live-tail
// consumers; one that stops draining loses events rather than stalling the
// pipeline.
type Bus struct {
	mu     sync.Mutex
	subs   map[int]chan NotificationEvent
	nextID int
	closed bool
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan NotificationEvent)}
}

// Subscribe returns the event channel and an unsubscribe func. The channel is
// closed on unsubscribe or bus shutdown.
func (b *Bus) Subscribe(buffer int) (<-chan NotificationEvent, func()) {
	if buffer <= 0 {
		buffer = 16
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan NotificationEvent)
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	ch := make(chan NotificationEvent, buffer)
	b.subs[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, unsubscribe
}

func (b *Bus) Publish(ev NotificationEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default: // full subscriber, drop
		}
	}
}

func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
