package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrTestNotFound        = errors.New("test not found")
	ErrNoVariants          = errors.New("test has no variants")
	ErrActiveTestConflict  = errors.New("another active test already targets this field")
	ErrCorruptTest         = errors.New("test variants violate the single-control invariant")
	ErrInvalidStatus       = errors.New("invalid test status")
	ErrInvalidEventType    = errors.New("invalid event type")
	ErrDuplicateAssignment = errors.New("assignment already exists for session")
)

// ValidationError carries a message meant for the caller verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
