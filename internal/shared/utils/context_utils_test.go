package utils

import (
	"context"
	"testing"

	"contacts-api/internal/shared/contextkeys"

	"github.com/stretchr/testify/assert"
)

func TestGetSetContextValues(t *testing.T) {
	ctx := context.Background()
	ctx = WithRequestID(ctx, "req1")
	ctx = WithComponent(ctx, "componentA")
	ctx = WithOperation(ctx, "opX")

	reqID, err := GetRequestIDFromContext(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "req1", reqID)
	assert.True(t, HasRequestID(ctx))
	assert.Equal(t, "req1", GetRequestIDOrDefault(ctx, "default"))
	assert.Equal(t, "componentA", ctx.Value(contextkeys.ComponentKey))
	assert.Equal(t, "opX", ctx.Value(contextkeys.OperationKey))
}

func TestContextUtils_MissingValues(t *testing.T) {
	ctx := context.Background()

	_, err := GetRequestIDFromContext(ctx)
	assert.ErrorIs(t, err, ErrRequestIDNotFound)
	assert.False(t, HasRequestID(ctx))
	assert.Equal(t, "default", GetRequestIDOrDefault(ctx, "default"))
}

func TestContextUtils_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), contextkeys.RequestIDKey, 42)

	_, err := GetRequestIDFromContext(ctx)
	assert.ErrorIs(t, err, ErrRequestIDNotString)
}
