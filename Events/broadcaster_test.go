package Events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := NewBroadcaster()
	_, ch1 := b.Subscribe()
	_, ch2 := b.Subscribe()

	b.Publish(Event{Type: TaskLogUpdated, Payload: map[string]uint{"task_id": 1}})

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case e := <-ch:
			assert.Equal(t, TaskLogUpdated, e.Type)
		case <-time.After(time.Second):
			t.Fatal("subscriber never received the event")
		}
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroadcaster()
	id, ch := b.Subscribe()
	require.Equal(t, 1, b.SubscriberCount())

	b.Unsubscribe(id)
	assert.Equal(t, 0, b.SubscriberCount())

	_, open := <-ch
	assert.False(t, open)

	// double unsubscribe is a no-op
	b.Unsubscribe(id)
}

func TestSlowSubscriberIsSkipped(t *testing.T) {
	b := NewBroadcaster()
	_, slow := b.Subscribe()

	// fill the buffer and then some; Publish must never block
	done := make(chan struct{})
	go func() {
		for i := 0; i < subBuffer*2; i++ {
			b.Publish(Event{Type: DayChanged})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
	assert.Len(t, slow, subBuffer)
}
