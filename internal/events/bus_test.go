package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishSubscribe(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(EventDisplay)

	bus.Publish(EventDisplay, Payload{"screen_id": 1})
	bus.Publish(EventSequencerState, Payload{"screen_id": 1})

	payload := <-sub
	assert.Equal(t, 1, payload["screen_id"])

	select {
	case <-sub:
		t.Fatal("received an event of a different type")
	default:
	}
}

func TestSlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(EventDisplay)

	// overflow the buffer; extra events are dropped, not blocking
	for i := 0; i < cap(sub)+5; i++ {
		bus.Publish(EventDisplay, Payload{"n": i})
	}
	assert.Equal(t, cap(sub), len(sub))
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(EventConfigError)
	bus.Unsubscribe(EventConfigError, sub)

	_, open := <-sub
	assert.False(t, open)

	// publishing after unsubscribe is harmless
	bus.Publish(EventConfigError, Payload{})
}
