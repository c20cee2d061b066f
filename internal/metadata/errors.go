package metadata

import (
	"errors"
	"fmt"

	"mapi/internal/services"
)

var (
	// ErrUnknownField reports a field name outside the record's accepted set.
	ErrUnknownField = errors.New("unknown metadata field")
	// ErrMediaImmutable reports an attempt to change a record's media kind.
	ErrMediaImmutable = errors.New("media kind is immutable")
	// ErrInvalidDate reports a date that is not formatted as YYYY-MM-DD.
	ErrInvalidDate = errors.New("date must be formatted YYYY-MM-DD")
	// ErrInvalidValue reports a value that cannot be stored in the field.
	ErrInvalidValue = errors.New("invalid metadata value")
)

// FieldError describes a rejected assignment. It matches both its cause and
// services.ErrValidation with errors.Is.
type FieldError struct {
	Field string
	Value any
	Err   error
}

func (e *FieldError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("metadata field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("metadata field %q (%v): %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() []error {
	return []error{e.Err, services.ErrValidation}
}

func fieldError(field string, value any, err error) error {
	return &FieldError{Field: field, Value: value, Err: err}
}
