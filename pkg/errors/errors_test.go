package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/moviestack/moviestack/pkg/errors"
)

func TestErrorPredicates(t *testing.T) {
	assert.True(t, errors.IsNotFound(errors.NotFound("movie not found")))
	assert.True(t, errors.IsConflict(errors.Conflict("stale revision")))
	assert.True(t, errors.IsValidation(errors.Validation("creator is immutable")))
	assert.True(t, errors.IsUnauthorized(errors.Unauthorized("invalid credentials")))
	assert.True(t, errors.IsPersistence(errors.Persistence("save failed", fmt.Errorf("boom"))))

	assert.False(t, errors.IsConflict(errors.NotFound("movie not found")))
	assert.False(t, errors.IsNotFound(fmt.Errorf("plain error")))
	assert.False(t, errors.IsNotFound(nil))
}

func TestErrorPredicatesSeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", errors.Conflict("stale revision"))
	assert.True(t, errors.IsConflict(err))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := errors.Persistence("saving movie", cause)

	assert.ErrorContains(t, err, "PERSISTENCE")
	assert.ErrorContains(t, err, "connection refused")

	var appErr *errors.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, cause, appErr.Unwrap())
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, errors.IsDuplicateError(fmt.Errorf("UNIQUE constraint failed: accounts.email_address")))
	assert.True(t, errors.IsDuplicateError(fmt.Errorf(`duplicate key value violates unique constraint "accounts_pkey"`)))
	assert.False(t, errors.IsDuplicateError(fmt.Errorf("connection reset")))
	assert.False(t, errors.IsDuplicateError(nil))
}
