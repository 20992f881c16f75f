package repository

import (
	"context"

	"contacts-api/internal/contacts/domain/model"
)

// ContactRepository defines persistence operations for contacts
type ContactRepository interface {
	List(ctx context.Context) ([]*model.Contact, error)
	GetByID(ctx context.Context, id int64) (*model.Contact, error)
	Insert(ctx context.Context, contact *model.Contact) error
	// Update applies changes atomically and returns the contact after the update
	Update(ctx context.Context, id int64, changes map[string]string) (*model.Contact, error)
	Delete(ctx context.Context, id int64) error
}

// SequenceGenerator hands out monotonically increasing ids per counter name
type SequenceGenerator interface {
	Next(ctx context.Context, name string) (int64, error)
}

// EventStore persists contact events for later replay
type EventStore interface {
	StoreEvent(ctx context.Context, event model.ContactEvent) error
	GetEventsSince(ctx context.Context, afterID string, limit int64) ([]model.ContactEvent, error)
}
