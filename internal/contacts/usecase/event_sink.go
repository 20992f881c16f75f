package usecase

import (
	"context"

	"contacts-api/internal/contacts/domain/model"
	"contacts-api/internal/contacts/domain/repository"
	"contacts-api/internal/shared/eventbus"
	"contacts-api/internal/shared/logger"
)

// EventStoreSink persists every contact event published on the bus
type EventStoreSink struct {
	store  repository.EventStore
	logger logger.Logger
}

// NewEventStoreSink wraps store as an event bus handler
func NewEventStoreSink(store repository.EventStore, log logger.Logger) *EventStoreSink {
	if log == nil {
		log = logger.NewLogger()
	}
	return &EventStoreSink{store: store, logger: log.WithComponent("event-store-sink")}
}

// HandleEvent stores the contact event carried by event
func (s *EventStoreSink) HandleEvent(ctx context.Context, event eventbus.Event) error {
	contactEvent, err := contactEventFrom(event)
	if err != nil {
		s.logger.Warnf("Ignoring event: %v", err)
		return nil
	}
	return s.store.StoreEvent(ctx, contactEvent)
}

// RegisterChangeFeed subscribes the hub and the optional store to all contact events
func RegisterChangeFeed(bus *eventbus.EventBus, hub *WatchHub, store repository.EventStore, log logger.Logger) {
	if hub != nil {
		bus.SubscribeAll(model.ContactEventTypeNames(), hub.HandleEvent)
	}
	if store != nil {
		bus.SubscribeAll(model.ContactEventTypeNames(), NewEventStoreSink(store, log).HandleEvent)
	}
}
