package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"contacts-api/internal/contacts/domain/model"
	"contacts-api/internal/shared/logger"

	"github.com/redis/go-redis/v9"
)

const defaultReadLimit = 100

// EventStore persists contact events in a Redis Stream
type EventStore struct {
	client    redis.Cmdable
	stream    string
	maxLength int64
	logger    logger.Logger
}

// NewEventStore creates a store appending to stream, trimmed to roughly maxLength entries
func NewEventStore(client redis.Cmdable, stream string, maxLength int64, log logger.Logger) *EventStore {
	if log == nil {
		log = logger.NewLogger()
	}
	return &EventStore{
		client:    client,
		stream:    stream,
		maxLength: maxLength,
		logger:    log.WithComponent("redis-event-store"),
	}
}

// StoreEvent appends event to the stream
func (s *EventStore) StoreEvent(ctx context.Context, event model.ContactEvent) error {
	values, err := encodeEvent(event)
	if err != nil {
		return err
	}

	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: values,
	}
	if s.maxLength > 0 {
		args.MaxLen = s.maxLength
		args.Approx = true
	}

	id, err := s.client.XAdd(ctx, args).Result()
	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"stream":     s.stream,
			"event_type": string(event.Type),
			"contact_id": event.ContactID,
		}).Errorf("Failed to store event in Redis: %v", err)
		return fmt.Errorf("failed to store contact event: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"stream":    s.stream,
		"stream_id": id,
	}).Debugf("Stored %s event", event.Type)
	return nil
}

// GetEventsSince returns up to limit events with stream ids strictly after afterID.
// An empty afterID reads from the beginning of the stream.
func (s *EventStore) GetEventsSince(ctx context.Context, afterID string, limit int64) ([]model.ContactEvent, error) {
	if limit <= 0 {
		limit = defaultReadLimit
	}
	start := "-"
	if afterID != "" {
		start = "(" + afterID
	}

	messages, err := s.client.XRangeN(ctx, s.stream, start, "+", limit).Result()
	if err != nil {
		if err == redis.Nil {
			return []model.ContactEvent{}, nil
		}
		return nil, fmt.Errorf("failed to read contact events: %w", err)
	}

	events := make([]model.ContactEvent, 0, len(messages))
	for _, msg := range messages {
		event, err := decodeEvent(msg)
		if err != nil {
			s.logger.Warnf("Skipping malformed stream entry %s: %v", msg.ID, err)
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func encodeEvent(event model.ContactEvent) (map[string]interface{}, error) {
	values := map[string]interface{}{
		"type":      string(event.Type),
		"contactId": event.ContactID,
		"timestamp": event.Timestamp.UnixNano(),
	}
	if event.Contact != nil {
		raw, err := json.Marshal(event.Contact)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize contact: %w", err)
		}
		values["contact"] = string(raw)
	}
	return values, nil
}

func decodeEvent(msg redis.XMessage) (model.ContactEvent, error) {
	event := model.ContactEvent{StreamID: msg.ID}

	eventType, _ := msg.Values["type"].(string)
	if eventType == "" {
		return event, fmt.Errorf("missing event type")
	}
	event.Type = model.ContactEventType(eventType)

	contactID, err := strconv.ParseInt(fmt.Sprint(msg.Values["contactId"]), 10, 64)
	if err != nil {
		return event, fmt.Errorf("invalid contact id: %w", err)
	}
	event.ContactID = contactID

	if ts, err := strconv.ParseInt(fmt.Sprint(msg.Values["timestamp"]), 10, 64); err == nil {
		event.Timestamp = time.Unix(0, ts).UTC()
	}

	if raw, ok := msg.Values["contact"].(string); ok && raw != "" {
		var contact model.Contact
		if err := json.Unmarshal([]byte(raw), &contact); err != nil {
			return event, fmt.Errorf("invalid contact payload: %w", err)
		}
		event.Contact = &contact
	}
	return event, nil
}
