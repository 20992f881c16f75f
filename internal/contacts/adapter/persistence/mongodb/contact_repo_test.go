package mongodb

import (
	"context"
	"errors"
	"testing"

	"contacts-api/internal/contacts/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContact(id int64, first string) *model.Contact {
	return &model.Contact{
		ID:            id,
		FirstName:     first,
		LastName:      "Hopper",
		Email:         first + "@example.com",
		FavoriteColor: "navy",
		Birthday:      "1906-12-09",
	}
}

func TestContactRepo_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMongoContactRepository(newMemoryCollection())

	contact := newContact(1, "grace")
	require.NoError(t, repo.Insert(ctx, contact))
	assert.False(t, contact.ObjectID.IsZero())

	got, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "grace", got.FirstName)
	assert.Equal(t, contact.ObjectID, got.ObjectID)
}

func TestContactRepo_InsertNil(t *testing.T) {
	err := NewMongoContactRepository(newMemoryCollection()).Insert(context.Background(), nil)
	assert.ErrorContains(t, err, "contact cannot be nil")
}

func TestContactRepo_GetMissing(t *testing.T) {
	_, err := NewMongoContactRepository(newMemoryCollection()).GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, model.ErrContactNotFound)
}

func TestContactRepo_ListSortedByID(t *testing.T) {
	ctx := context.Background()
	repo := NewMongoContactRepository(newMemoryCollection())
	require.NoError(t, repo.Insert(ctx, newContact(3, "c")))
	require.NoError(t, repo.Insert(ctx, newContact(1, "a")))
	require.NoError(t, repo.Insert(ctx, newContact(2, "b")))

	contacts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{contacts[0].ID, contacts[1].ID, contacts[2].ID})
}

func TestContactRepo_ListEmptyIsNotNil(t *testing.T) {
	contacts, err := NewMongoContactRepository(newMemoryCollection()).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, contacts)
	assert.Empty(t, contacts)
}

func TestContactRepo_UpdateReturnsDocumentAfter(t *testing.T) {
	ctx := context.Background()
	repo := NewMongoContactRepository(newMemoryCollection())
	original := newContact(5, "grace")
	require.NoError(t, repo.Insert(ctx, original))

	updated, err := repo.Update(ctx, 5, map[string]string{
		model.FieldFavoriteColor: "teal",
		model.FieldID:            "99",
		"_id":                    "deadbeef",
	})
	require.NoError(t, err)
	assert.Equal(t, "teal", updated.FavoriteColor)
	assert.Equal(t, int64(5), updated.ID)
	assert.Equal(t, original.ObjectID, updated.ObjectID)
	assert.Equal(t, "grace", updated.FirstName)
}

func TestContactRepo_UpdateMissing(t *testing.T) {
	repo := NewMongoContactRepository(newMemoryCollection())
	_, err := repo.Update(context.Background(), 8, map[string]string{model.FieldEmail: "x@example.com"})
	assert.ErrorIs(t, err, model.ErrContactNotFound)
}

func TestContactRepo_UpdateWithoutFields(t *testing.T) {
	repo := NewMongoContactRepository(newMemoryCollection())
	_, err := repo.Update(context.Background(), 8, map[string]string{model.FieldID: "1"})
	assert.ErrorContains(t, err, "no updatable fields")
}

func TestContactRepo_DeleteTwice(t *testing.T) {
	ctx := context.Background()
	col := newMemoryCollection()
	repo := NewMongoContactRepository(col)
	require.NoError(t, repo.Insert(ctx, newContact(1, "a")))

	require.NoError(t, repo.Delete(ctx, 1))
	assert.Equal(t, 0, col.count())
	assert.ErrorIs(t, repo.Delete(ctx, 1), model.ErrContactNotFound)
}

func TestContactRepo_DriverErrorsAreWrapped(t *testing.T) {
	ctx := context.Background()
	col := newMemoryCollection()
	col.err = errors.New("connection reset")
	repo := NewMongoContactRepository(col)

	_, err := repo.List(ctx)
	assert.ErrorContains(t, err, "connection reset")
	_, err = repo.GetByID(ctx, 1)
	assert.ErrorContains(t, err, "failed to get contact 1")
	assert.NotErrorIs(t, err, model.ErrContactNotFound)
	assert.ErrorContains(t, repo.Delete(ctx, 1), "failed to delete contact 1")
}
