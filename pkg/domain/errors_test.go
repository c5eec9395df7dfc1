package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorsFields(t *testing.T) {
	errs := ValidationErrors{
		{Field: "row", Message: "out of range"},
		{Field: "seat", Message: "out of range"},
		{Field: "row", Message: "again"},
	}

	assert.Equal(t, map[string][]string{
		"row":  {"out of range", "again"},
		"seat": {"out of range"},
	}, errs.Fields())
	assert.Equal(t, "validation failed: row: out of range; seat: out of range; row: again", errs.Error())
}

func TestErrorHelpers(t *testing.T) {
	wrapped := fmt.Errorf("create order: %w", Invalid("tickets", "need %d", 1))
	assert.True(t, IsValidationError(wrapped))
	assert.False(t, IsConflictError(wrapped))

	conflict := fmt.Errorf("insert: %w", &ConflictError{Resource: "ticket", Err: errors.New("unique")})
	assert.True(t, IsConflictError(conflict))
	assert.EqualError(t, errors.Unwrap(conflict), "ticket conflict: unique")

	assert.True(t, IsNotFoundError(fmt.Errorf("flight 7: %w", ErrNotFound)))
	assert.False(t, IsNotFoundError(ErrForbidden))
}
