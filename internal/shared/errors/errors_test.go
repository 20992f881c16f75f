package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Behavior(t *testing.T) {
	err := NewValidationError("invalid input")
	assert.Equal(t, ErrorTypeValidation, err.Type)
	assert.Equal(t, "invalid input", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.HTTPCode)
	assert.NotNil(t, err.Details)
	assert.Equal(t, "invalid input", err.Error())
}

func TestAppError_WithCause_Unwrap(t *testing.T) {
	cause := errors.New("no documents in result")
	err := NewNotFoundError("Contact").WithCause(cause)
	assert.Equal(t, cause, err.Unwrap())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Contact not found: no documents in result", err.Error())
}

func TestValidationErrors(t *testing.T) {
	ve := NewValidationErrors()
	assert.Nil(t, ve.ToAppError())
	assert.Equal(t, "validation failed", ve.Error())

	ve.Add("field1", "must be set", "")
	assert.True(t, ve.HasErrors())
	appErr := ve.ToAppError()
	assert.NotNil(t, appErr)
	assert.Equal(t, ErrorTypeValidation, appErr.Type)
	assert.Equal(t, ve.Errors, appErr.Details["validation_errors"])
	assert.Equal(t, "validation failed: must be set", ve.Error())
}

func TestIsNotFound_IsValidation(t *testing.T) {
	nf := NewNotFoundError("doc")
	assert.True(t, IsNotFound(nf))
	assert.False(t, IsValidation(nf))

	assert.True(t, IsValidation(NewValidationError("bad")))
	assert.False(t, IsNotFound(errors.New("plain")))
}

func TestIsNotFound_WrappedAppError(t *testing.T) {
	wrapped := fmt.Errorf("repo: %w", NewNotFoundError("contact"))
	assert.True(t, IsNotFound(wrapped))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(NewValidationError("x")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NewNotFoundError("contact")))
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatus(NewRateLimitError("slow down")))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(NewUnavailableError("down")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(NewInfrastructureError("disk")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("boom")))
}
