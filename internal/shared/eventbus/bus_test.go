package eventbus

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_SubscribePublish(t *testing.T) {
	bus := NewEventBus(nil)
	var called bool
	bus.Subscribe("contact.created", func(ctx context.Context, event Event) error {
		called = true
		assert.Equal(t, "contact.created", event.Type())
		assert.Equal(t, "contacts", event.Source())
		return nil
	})
	err := bus.Publish(context.Background(), NewBasicEventWithSource("contact.created", 1, "contacts"))
	assert.NoError(t, err)
	assert.True(t, called)
}

func TestEventBus_PublishWithoutHandlers(t *testing.T) {
	bus := NewEventBus(nil)
	assert.NoError(t, bus.Publish(context.Background(), NewBasicEvent("nobody", nil)))
}

func TestEventBus_SubscribeAll(t *testing.T) {
	bus := NewEventBus(nil)
	types := []string{"a.created", "a.updated", "a.deleted"}
	var seen []string
	bus.SubscribeAll(types, func(ctx context.Context, event Event) error {
		seen = append(seen, event.Type())
		return nil
	})

	for _, et := range types {
		require.NoError(t, bus.Publish(context.Background(), NewBasicEvent(et, nil)))
	}
	assert.Equal(t, types, seen)
}

func TestEventBus_HandlersRunInSubscriptionOrder(t *testing.T) {
	bus := NewEventBus(nil)
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		bus.Subscribe("ev", func(ctx context.Context, event Event) error {
			order = append(order, i)
			return nil
		})
	}
	require.NoError(t, bus.Publish(context.Background(), NewBasicEvent("ev", nil)))
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestEventBus_RetriesFailingHandler(t *testing.T) {
	bus := NewEventBusWithConfig(nil, BusConfig{MaxRetries: 2, RetryDelay: time.Millisecond})
	var calls int32
	bus.Subscribe("flaky", func(ctx context.Context, event Event) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	assert.NoError(t, bus.Publish(context.Background(), NewBasicEvent("flaky", nil)))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestEventBus_ReturnsErrorAfterRetries(t *testing.T) {
	bus := NewEventBusWithConfig(nil, BusConfig{MaxRetries: 1, RetryDelay: time.Millisecond})
	boom := errors.New("boom")
	bus.Subscribe("broken", func(ctx context.Context, event Event) error { return boom })

	err := bus.Publish(context.Background(), NewBasicEvent("broken", nil))
	assert.ErrorIs(t, err, boom)
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus(nil)
	bus.Subscribe("ev", func(ctx context.Context, event Event) error { return nil })
	assert.Equal(t, 1, bus.GetSubscriberCount("ev"))
	bus.Unsubscribe("ev")
	assert.Equal(t, 0, bus.GetSubscriberCount("ev"))
}
