package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("authentication credentials were not provided")
	ErrForbidden    = errors.New("you do not have permission to perform this action")
)

// FieldError is a single field-scoped validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every field failure found before persistence.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields groups messages by field name, the shape returned to clients.
func (v ValidationErrors) Fields() map[string][]string {
	out := make(map[string][]string, len(v))
	for _, fe := range v {
		out[fe.Field] = append(out[fe.Field], fe.Message)
	}
	return out
}

func Invalid(field, format string, args ...interface{}) ValidationErrors {
	return ValidationErrors{{Field: field, Message: fmt.Sprintf(format, args...)}}
}

// ConflictError is a store-level constraint violation that pre-validation
// did not catch, e.g. two requests racing for the same seat.
type ConflictError struct {
	Resource string
	Err      error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %v", e.Resource, e.Err)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

func IsValidationError(err error) bool {
	var v ValidationErrors
	return errors.As(err, &v)
}

func IsConflictError(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
