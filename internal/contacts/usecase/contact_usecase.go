package usecase

import (
	"context"
	"errors"
	"fmt"

	"contacts-api/internal/contacts/domain/model"
	"contacts-api/internal/contacts/domain/repository"
	apperrors "contacts-api/internal/shared/errors"
	"contacts-api/internal/shared/eventbus"
	"contacts-api/internal/shared/logger"
)

const (
	defaultEventsLimit = 100
	maxEventsLimit     = 1000
)

// ContactUsecaseInterface defines the business operations on contacts
type ContactUsecaseInterface interface {
	List(ctx context.Context, filter string) ([]*model.Contact, error)
	Get(ctx context.Context, id int64) (*model.Contact, error)
	Create(ctx context.Context, input model.ContactInput) (int64, error)
	Update(ctx context.Context, id int64, input model.ContactInput) (*model.Contact, error)
	Delete(ctx context.Context, id int64) error
	ListEvents(ctx context.Context, afterID string, limit int64) ([]model.ContactEvent, error)
}

// Dependencies groups everything the contact usecase talks to.
// Publisher and Events are optional.
type Dependencies struct {
	Repository  repository.ContactRepository
	Sequence    repository.SequenceGenerator
	CounterName string
	Publisher   eventbus.Publisher
	Events      repository.EventStore
	Logger      logger.Logger
}

// ContactUsecase implements ContactUsecaseInterface
type ContactUsecase struct {
	repo        repository.ContactRepository
	sequence    repository.SequenceGenerator
	counterName string
	publisher   eventbus.Publisher
	events      repository.EventStore
	filters     *FilterCompiler
	logger      logger.Logger
}

// NewContactUsecase creates a new contact usecase
func NewContactUsecase(deps Dependencies) (*ContactUsecase, error) {
	if deps.Repository == nil || deps.Sequence == nil {
		return nil, fmt.Errorf("contact usecase requires a repository and a sequence generator")
	}
	if deps.CounterName == "" {
		return nil, fmt.Errorf("contact usecase requires a counter name")
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewLogger()
	}

	filters, err := NewFilterCompiler()
	if err != nil {
		return nil, fmt.Errorf("failed to create filter compiler: %w", err)
	}

	return &ContactUsecase{
		repo:        deps.Repository,
		sequence:    deps.Sequence,
		counterName: deps.CounterName,
		publisher:   deps.Publisher,
		events:      deps.Events,
		filters:     filters,
		logger:      log.WithComponent("contact-usecase"),
	}, nil
}

// List returns all contacts ordered by id, optionally narrowed by a CEL filter
func (uc *ContactUsecase) List(ctx context.Context, filter string) ([]*model.Contact, error) {
	var predicate *Filter
	if filter != "" {
		compiled, err := uc.filters.Compile(filter)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error()).WithCause(err)
		}
		predicate = compiled
	}

	contacts, err := uc.repo.List(ctx)
	if err != nil {
		uc.logger.WithContext(ctx).Errorf("Failed to list contacts: %v", err)
		return nil, apperrors.NewInternalError("failed to list contacts").WithCause(err)
	}
	if predicate == nil {
		return contacts, nil
	}

	matched := make([]*model.Contact, 0, len(contacts))
	for _, contact := range contacts {
		ok, err := predicate.Match(contact)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error()).WithCause(err)
		}
		if ok {
			matched = append(matched, contact)
		}
	}
	return matched, nil
}

// Get returns the contact with the given sequence id
func (uc *ContactUsecase) Get(ctx context.Context, id int64) (*model.Contact, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	contact, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, uc.translateRepoError(ctx, err, "failed to get contact", id)
	}
	return contact, nil
}

// Create validates input, reserves the next id and stores the contact
func (uc *ContactUsecase) Create(ctx context.Context, input model.ContactInput) (int64, error) {
	if missing := input.MissingFields(); len(missing) > 0 {
		verrs := apperrors.NewValidationErrors()
		for _, field := range missing {
			verrs.Add(field, fmt.Sprintf("Missing required field: %s", field), nil)
		}
		appErr := verrs.ToAppError()
		appErr.Message = verrs.Errors[0].Message
		return 0, appErr
	}

	id, err := uc.sequence.Next(ctx, uc.counterName)
	if err != nil {
		uc.logger.WithContext(ctx).Errorf("Failed to reserve contact id: %v", err)
		return 0, apperrors.NewInternalError("failed to reserve contact id").WithCause(err)
	}

	contact := input.ToContact(id)
	if err := uc.repo.Insert(ctx, contact); err != nil {
		uc.logger.WithContext(ctx).Errorf("Failed to insert contact %d: %v", id, err)
		return 0, apperrors.NewInternalError("failed to create contact").WithCause(err)
	}

	uc.logger.WithContext(ctx).WithFields(map[string]interface{}{"contact_id": id}).Info("Contact created")
	uc.publish(ctx, model.NewContactEvent(model.ContactCreated, id, contact))
	return id, nil
}

// Update applies the non-empty fields of input to an existing contact
func (uc *ContactUsecase) Update(ctx context.Context, id int64, input model.ContactInput) (*model.Contact, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	changes := input.Changes()
	if len(changes) == 0 {
		return nil, apperrors.NewValidationError("No updatable fields provided")
	}

	contact, err := uc.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, uc.translateRepoError(ctx, err, "failed to update contact", id)
	}

	uc.publish(ctx, model.NewContactEvent(model.ContactUpdated, id, contact))
	return contact, nil
}

// Delete removes a contact by id
func (uc *ContactUsecase) Delete(ctx context.Context, id int64) error {
	if err := validateID(id); err != nil {
		return err
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return uc.translateRepoError(ctx, err, "failed to delete contact", id)
	}

	uc.logger.WithContext(ctx).WithFields(map[string]interface{}{"contact_id": id}).Info("Contact deleted")
	uc.publish(ctx, model.NewContactEvent(model.ContactDeleted, id, nil))
	return nil
}

// ListEvents replays stored change events after the given stream id
func (uc *ContactUsecase) ListEvents(ctx context.Context, afterID string, limit int64) ([]model.ContactEvent, error) {
	if uc.events == nil {
		return nil, apperrors.NewUnavailableError("Change feed store is disabled")
	}
	if limit < 0 {
		return nil, apperrors.NewValidationError("Invalid limit")
	}
	if limit == 0 {
		limit = defaultEventsLimit
	}
	if limit > maxEventsLimit {
		limit = maxEventsLimit
	}

	events, err := uc.events.GetEventsSince(ctx, afterID, limit)
	if err != nil {
		uc.logger.WithContext(ctx).Errorf("Failed to read contact events: %v", err)
		return nil, apperrors.NewInfrastructureError("failed to read contact events").WithCause(err)
	}
	if events == nil {
		events = []model.ContactEvent{}
	}
	return events, nil
}

func (uc *ContactUsecase) publish(ctx context.Context, event model.ContactEvent) {
	if uc.publisher == nil {
		return
	}
	uc.publisher.Enqueue(ctx, eventbus.NewBasicEventWithSource(string(event.Type), event, "contacts"))
}

func (uc *ContactUsecase) translateRepoError(ctx context.Context, err error, message string, id int64) error {
	if errors.Is(err, model.ErrContactNotFound) {
		return apperrors.NewNotFoundError("Contact").WithCause(err)
	}
	uc.logger.WithContext(ctx).Errorf("%s %d: %v", message, id, err)
	return apperrors.NewInternalError(message).WithCause(err)
}

func validateID(id int64) error {
	if id < 1 {
		return apperrors.NewValidationError("Invalid contact id").WithCause(model.ErrInvalidID)
	}
	return nil
}
