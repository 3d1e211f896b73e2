package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorStatuses(t *testing.T) {
	tests := []struct {
		code   int
		status int
	}{
		{ErrInvalidParams, http.StatusBadRequest},
		{ErrUserAlreadyExists, http.StatusConflict},
		{ErrUserNotFound, http.StatusNotFound},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrMissingToken, http.StatusUnauthorized},
		{ErrInvalidToken, http.StatusUnauthorized},
		{ErrExpiredToken, http.StatusUnauthorized},
		{ErrMissingRole, http.StatusForbidden},
		{ErrForbidden, http.StatusForbidden},
		{ErrEmptyMessage, http.StatusBadRequest},
		{ErrRateLimitExceeded, http.StatusTooManyRequests},
		{ErrUnknown, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			err := NewError(tt.code)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.status, err.Status)
			assert.NotEmpty(t, err.Message)
		})
	}
}

func TestNewErrorUnknownCodeFallsBack(t *testing.T) {
	err := NewError(424242)
	assert.Equal(t, ErrUnknown, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestNewErrorDoesNotMutateTemplate(t *testing.T) {
	first := NewError(ErrForbidden)
	first.Message = "changed"

	second := NewError(ErrForbidden)
	assert.Equal(t, "Permission denied.", second.Message)
}

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))

	wrapped := fmt.Errorf("login: %w", NewError(ErrInvalidCredentials))
	got := From(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, ErrInvalidCredentials, got.Code)

	plain := From(errors.New("connection reset"))
	assert.Equal(t, ErrUnknown, plain.Code)
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NewError(ErrExpiredToken))
	assert.True(t, Is(err, ErrExpiredToken))
	assert.False(t, Is(err, ErrInvalidToken))
	assert.False(t, Is(errors.New("x"), ErrExpiredToken))
}
