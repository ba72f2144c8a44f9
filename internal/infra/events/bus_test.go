package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/edumax/leads-service/internal/entity"
)

func testEvent(id int64) NotificationEvent {
	return NewNotificationEvent(entity.Notification{
		ID:       id,
		Type:     entity.NotificationLeadQualified,
		Priority: entity.PriorityHigh,
	})
}

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch1, unsub1 := bus.Subscribe(4)
	defer unsub1()
	ch2, unsub2 := bus.Subscribe(4)
	defer unsub2()

	bus.Publish(testEvent(1))

	for _, ch := range []<-chan NotificationEvent{ch1, ch2} {
		select {
		case ev := <-ch:
			assert.Equal(t, int64(1), ev.Notification.ID)
			assert.NotEmpty(t, ev.ID)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestBusUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, unsubscribe := bus.Subscribe(1)
	unsubscribe()

	_, open := <-ch
	assert.False(t, open)

	// Publishing after unsubscribe must not panic.
	bus.Publish(testEvent(2))
}

func TestBusDropsWhenSubscriberFull(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, unsubscribe := bus.Subscribe(1)
	defer unsubscribe()

	bus.Publish(testEvent(1))
	bus.Publish(testEvent(2)) // buffer full: dropped, not blocked

	ev := <-ch
	assert.Equal(t, int64(1), ev.Notification.ID)

	select {
	case ev := <-ch:
		t.Fatalf("expected second event to be dropped, got %+v", ev)
	default:
	}
}

func TestBusClose(t *testing.T) {
	bus := NewBus()

	ch, _ := bus.Subscribe(1)
	bus.Close()

	_, open := <-ch
	assert.False(t, open)

	// Both are no-ops after close.
	bus.Publish(testEvent(1))
	bus.Close()

	late, _ := bus.Subscribe(1)
	_, open = <-late
	assert.False(t, open)
}
