package usecase

import (
	"context"
	"fmt"
	"sync"

	"contacts-api/internal/contacts/domain/model"
	"contacts-api/internal/shared/eventbus"
	"contacts-api/internal/shared/logger"
)

// WatchHub fans contact events out to live subscribers such as WebSocket
// connections. Sends never block: a subscriber with a full channel misses the event.
type WatchHub struct {
	mu          sync.RWMutex
	subscribers map[string]chan<- model.ContactEvent
	logger      logger.Logger
}

// NewWatchHub creates an empty hub
func NewWatchHub(log logger.Logger) *WatchHub {
	if log == nil {
		log = logger.NewLogger()
	}
	return &WatchHub{
		subscribers: make(map[string]chan<- model.ContactEvent),
		logger:      log.WithComponent("watch-hub"),
	}
}

// Subscribe registers ch under subscriberID, replacing any previous channel.
// The caller owns ch and closes it after Unsubscribe.
func (h *WatchHub) Subscribe(subscriberID string, ch chan<- model.ContactEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.subscribers[subscriberID]; exists {
		h.logger.Warnf("Subscriber %s already registered, replacing channel", subscriberID)
	}
	h.subscribers[subscriberID] = ch
	h.logger.WithFields(map[string]interface{}{
		"subscriber_id": subscriberID,
		"subscribers":   len(h.subscribers),
	}).Debug("Watch subscriber added")
}

// Unsubscribe removes subscriberID. Unknown ids are ignored.
func (h *WatchHub) Unsubscribe(subscriberID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.subscribers[subscriberID]; !exists {
		return
	}
	delete(h.subscribers, subscriberID)
	h.logger.WithFields(map[string]interface{}{
		"subscriber_id": subscriberID,
		"subscribers":   len(h.subscribers),
	}).Debug("Watch subscriber removed")
}

// Broadcast delivers event to every subscriber and returns how many received it
func (h *WatchHub) Broadcast(event model.ContactEvent) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for id, ch := range h.subscribers {
		select {
		case ch <- event:
			delivered++
		default:
			h.logger.Warnf("Dropping %s event for slow subscriber %s", event.Type, id)
		}
	}
	return delivered
}

// SubscriberCount returns the number of live subscribers
func (h *WatchHub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// HandleEvent adapts the hub to the event bus
func (h *WatchHub) HandleEvent(_ context.Context, event eventbus.Event) error {
	contactEvent, err := contactEventFrom(event)
	if err != nil {
		return err
	}
	h.Broadcast(contactEvent)
	return nil
}

func contactEventFrom(event eventbus.Event) (model.ContactEvent, error) {
	switch data := event.Data().(type) {
	case model.ContactEvent:
		return data, nil
	case *model.ContactEvent:
		if data != nil {
			return *data, nil
		}
	}
	return model.ContactEvent{}, fmt.Errorf("unexpected payload %T for event %s", event.Data(), event.Type())
}
