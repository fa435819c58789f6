package domain

import (
	"fmt"
	"strings"
	"time"
)

// TestStatus is the lifecycle state of an A/B test.
type TestStatus string

const (
	StatusDraft     TestStatus = "draft"
	StatusActive    TestStatus = "active"
	StatusPaused    TestStatus = "paused"
	StatusCompleted TestStatus = "completed"
)

// TestStatuses lists every lifecycle state in display order.
var TestStatuses = []TestStatus{StatusDraft, StatusActive, StatusPaused, StatusCompleted}

func (s TestStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusPaused, StatusCompleted:
		return true
	}
	return false
}

// ParseTestStatus returns ErrInvalidStatus for anything outside the lifecycle.
func ParseTestStatus(s string) (TestStatus, error) {
	status := TestStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// EventType is the kind of interaction recorded against a variant.
type EventType string

const (
	EventImpression      EventType = "impression"
	EventFocus           EventType = "focus"
	EventBlur            EventType = "blur"
	EventInput           EventType = "input"
	EventValidationError EventType = "validation_error"
	EventFormSubmit      EventType = "form_submit"
	EventFormSuccess     EventType = "form_success"
	EventFormError       EventType = "form_error"
)

var EventTypes = []EventType{
	EventImpression,
	EventFocus,
	EventBlur,
	EventInput,
	EventValidationError,
	EventFormSubmit,
	EventFormSuccess,
	EventFormError,
}

func (e EventType) Valid() bool {
	for _, t := range EventTypes {
		if e == t {
			return true
		}
	}
	return false
}

func ParseEventType(s string) (EventType, error) {
	t := EventType(strings.TrimSpace(s))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidEventType, s)
	}
	return t, nil
}

// Test is a named experiment targeting a single form field.
type Test struct {
	ID                string
	Name              string
	Description       *string
	FormName          string
	FieldName         string
	Status            TestStatus
	TrafficAllocation int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// FieldOverrides replaces the default rendering of the targeted field.
// Nil pointers leave the default in place.
type FieldOverrides struct {
	Label       *string
	Placeholder *string
	Required    bool
	HelperText  *string
}

// Variant is one arm of a Test.
type Variant struct {
	ID            string
	TestID        string
	Name          string
	IsControl     bool
	TrafficWeight int
	Overrides     FieldOverrides
	Position      int
	CreatedAt     time.Time
}

// Assignment maps one session to one variant of one test. Never updated.
type Assignment struct {
	ID        string
	TestID    string
	SessionID string
	VariantID string
	CreatedAt time.Time
}

// Event is an append-only interaction fact.
type Event struct {
	ID        string
	TestID    string
	VariantID string
	SessionID string
	Type      EventType
	Data      *string
	CreatedAt time.Time
}
