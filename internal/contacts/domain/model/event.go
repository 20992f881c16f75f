package model

import "time"

// ContactEventType names a change to a contact
type ContactEventType string

const (
	ContactCreated ContactEventType = "contact.created"
	ContactUpdated ContactEventType = "contact.updated"
	ContactDeleted ContactEventType = "contact.deleted"
)

// ContactEventTypes lists every contact event type in publication order of a lifecycle
var ContactEventTypes = []ContactEventType{ContactCreated, ContactUpdated, ContactDeleted}

// ContactEventTypeNames returns ContactEventTypes as plain strings for bus subscriptions
func ContactEventTypeNames() []string {
	names := make([]string, len(ContactEventTypes))
	for i, t := range ContactEventTypes {
		names[i] = string(t)
	}
	return names
}

// ContactEvent is published after a successful write. Contact is nil for deletes.
// StreamID is only set on events read back from the event store.
type ContactEvent struct {
	Type      ContactEventType `json:"type"`
	ContactID int64            `json:"contactId"`
	Contact   *Contact         `json:"contact,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	StreamID  string           `json:"streamId,omitempty"`
}

// NewContactEvent stamps an event with the current UTC time
func NewContactEvent(eventType ContactEventType, id int64, contact *Contact) ContactEvent {
	return ContactEvent{
		Type:      eventType,
		ContactID: id,
		Contact:   contact,
		Timestamp: time.Now().UTC(),
	}
}
