package mongodb

import (
	"context"
	"errors"
	"fmt"

	"contacts-api/internal/contacts/domain/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoContactRepository implements repository.ContactRepository on a single collection
type MongoContactRepository struct {
	contacts CollectionInterface
}

// NewMongoContactRepository creates a repository over the contacts collection
func NewMongoContactRepository(contacts CollectionInterface) *MongoContactRepository {
	return &MongoContactRepository{contacts: contacts}
}

// EnsureContactIndexes creates the unique index on the sequence id
func EnsureContactIndexes(ctx context.Context, col *mongo.Collection) error {
	idIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: model.FieldID, Value: 1}},
		Options: options.Index().SetUnique(true).SetName("contacts_id_unique"),
	}
	if _, err := col.Indexes().CreateOne(ctx, idIndex); err != nil {
		return fmt.Errorf("failed to create contacts id index: %w", err)
	}
	return nil
}

// List returns all contacts ordered by id
func (r *MongoContactRepository) List(ctx context.Context) ([]*model.Contact, error) {
	opts := options.Find().SetSort(bson.D{{Key: model.FieldID, Value: 1}})
	cursor, err := r.contacts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer cursor.Close(ctx)

	contacts := make([]*model.Contact, 0)
	for cursor.Next(ctx) {
		var contact model.Contact
		if err := cursor.Decode(&contact); err != nil {
			return nil, fmt.Errorf("failed to decode contact: %w", err)
		}
		contacts = append(contacts, &contact)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contacts: %w", err)
	}

	return contacts, nil
}

// GetByID retrieves a contact by its sequence id
func (r *MongoContactRepository) GetByID(ctx context.Context, id int64) (*model.Contact, error) {
	var contact model.Contact
	err := r.contacts.FindOne(ctx, bson.M{model.FieldID: id}).Decode(&contact)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to get contact %d: %w", id, err)
	}
	return &contact, nil
}

// Insert stores a new contact and records the generated ObjectID on it
func (r *MongoContactRepository) Insert(ctx context.Context, contact *model.Contact) error {
	if contact == nil {
		return fmt.Errorf("contact cannot be nil")
	}

	insertedID, err := r.contacts.InsertOne(ctx, contact)
	if err != nil {
		return fmt.Errorf("failed to insert contact %d: %w", contact.ID, err)
	}
	if oid, ok := insertedID.(primitive.ObjectID); ok {
		contact.ObjectID = oid
	}
	return nil
}

// Update sets the given fields and returns the document after the update.
// Keys other than the five contact fields are dropped, so id and _id are never written.
func (r *MongoContactRepository) Update(ctx context.Context, id int64, changes map[string]string) (*model.Contact, error) {
	set := bson.M{}
	for _, field := range model.RequiredFields {
		if value, ok := changes[field]; ok {
			set[field] = value
		}
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("no updatable fields for contact %d", id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var contact model.Contact
	err := r.contacts.FindOneAndUpdate(ctx, bson.M{model.FieldID: id}, bson.M{"$set": set}, opts).Decode(&contact)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to update contact %d: %w", id, err)
	}
	return &contact, nil
}

// Delete removes a contact by sequence id
func (r *MongoContactRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.contacts.DeleteOne(ctx, bson.M{model.FieldID: id})
	if err != nil {
		return fmt.Errorf("failed to delete contact %d: %w", id, err)
	}
	if result.Deleted() == 0 {
		return model.ErrContactNotFound
	}
	return nil
}
