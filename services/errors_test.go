package services

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsMatchByKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", notFoundError("post"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "wrapped: post not found", err.Error())

	assert.Zero(t, KindOf(errors.New("plain")))
	assert.False(t, errors.Is(ErrInvalidCredentials, ErrAuthorization))
	assert.True(t, errors.Is(ErrInvalidCredentials, ErrInvalidCredentials))
}

func TestStorageErrorKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := storageError("failed to save post", cause)

	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to save post: connection refused", err.Error())
}

func TestHTTPStatusPerKind(t *testing.T) {
	cases := map[error]int{
		validationError("bad"):    http.StatusBadRequest,
		authorizationError("no"):  http.StatusForbidden,
		notFoundError("post"):     http.StatusNotFound,
		storageError("disk", nil): http.StatusInternalServerError,
		ErrInvalidCredentials:     http.StatusUnauthorized,
	}
	for err, want := range cases {
		var e *Error
		if assert.True(t, errors.As(err, &e)) {
			assert.Equal(t, want, e.HTTPStatus(), err.Error())
		}
	}
}
