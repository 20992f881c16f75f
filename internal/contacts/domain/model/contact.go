package model

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrContactNotFound = errors.New("contact not found")
	ErrInvalidID       = errors.New("invalid contact id")
)

// Field names shared by the JSON API and the stored documents
const (
	FieldID            = "id"
	FieldFirstName     = "firstName"
	FieldLastName      = "lastName"
	FieldEmail         = "email"
	FieldFavoriteColor = "favoriteColor"
	FieldBirthday      = "birthday"
)

// RequiredFields lists the fields a new contact must carry, in validation order
var RequiredFields = []string{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldFavoriteColor,
	FieldBirthday,
}

// IsField reports whether name is one of the contact fields exposed by AsMap
func IsField(name string) bool {
	if name == FieldID {
		return true
	}
	for _, field := range RequiredFields {
		if field == name {
			return true
		}
	}
	return false
}

// Contact is the sole domain entity. ID is assigned from the sequence counter;
// ObjectID is MongoDB's own identifier and is never exposed to clients.
type Contact struct {
	ObjectID      primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	ID            int64              `json:"id" bson:"id"`
	FirstName     string             `json:"firstName" bson:"firstName"`
	LastName      string             `json:"lastName" bson:"lastName"`
	Email         string             `json:"email" bson:"email"`
	FavoriteColor string             `json:"favoriteColor" bson:"favoriteColor"`
	Birthday      string             `json:"birthday" bson:"birthday"`
}

// ContactInput is the client-supplied body of create and update requests.
// Identifier fields are deliberately absent so they can never be set by a client.
type ContactInput struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	FavoriteColor string `json:"favoriteColor"`
	Birthday      string `json:"birthday"`
}

// Values returns the input as field name -> trimmed value
func (in ContactInput) Values() map[string]string {
	return map[string]string{
		FieldFirstName:     strings.TrimSpace(in.FirstName),
		FieldLastName:      strings.TrimSpace(in.LastName),
		FieldEmail:         strings.TrimSpace(in.Email),
		FieldFavoriteColor: strings.TrimSpace(in.FavoriteColor),
		FieldBirthday:      strings.TrimSpace(in.Birthday),
	}
}

// MissingFields returns required fields that are empty, in RequiredFields order
func (in ContactInput) MissingFields() []string {
	values := in.Values()
	var missing []string
	for _, field := range RequiredFields {
		if values[field] == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// Changes returns only the non-empty fields, suitable for a partial update
func (in ContactInput) Changes() map[string]string {
	changes := make(map[string]string)
	for field, value := range in.Values() {
		if value != "" {
			changes[field] = value
		}
	}
	return changes
}

// ToContact builds a contact with the given sequence id
func (in ContactInput) ToContact(id int64) *Contact {
	values := in.Values()
	return &Contact{
		ID:            id,
		FirstName:     values[FieldFirstName],
		LastName:      values[FieldLastName],
		Email:         values[FieldEmail],
		FavoriteColor: values[FieldFavoriteColor],
		Birthday:      values[FieldBirthday],
	}
}

// AsMap exposes the contact's public fields, keyed by their JSON names
func (c *Contact) AsMap() map[string]interface{} {
	return map[string]interface{}{
		FieldID:            c.ID,
		FieldFirstName:     c.FirstName,
		FieldLastName:      c.LastName,
		FieldEmail:         c.Email,
		FieldFavoriteColor: c.FavoriteColor,
		FieldBirthday:      c.Birthday,
	}
}
