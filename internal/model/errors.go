package model

import (
	"errors"
	"fmt"
)

var ErrNoRecord = errors.New("no record")
var ErrAlreadyExists = errors.New("entity already exists")
var ErrEventNotFound = errors.New("event not found")

// InvalidRecurrenceError reports a recurrence line set that can not be turned into a rule set.
type InvalidRecurrenceError struct {
	Reason string
}

func (e *InvalidRecurrenceError) Error() string {
	return fmt.Sprintf("invalid recurrence: %s", e.Reason)
}

// InvalidEventIDError reports a composite instance id that is malformed or
// does not belong to the claimed parent.
type InvalidEventIDError struct {
	ID     string
	Reason string
}

func (e *InvalidEventIDError) Error() string {
	return fmt.Sprintf("invalid event id %q: %s", e.ID, e.Reason)
}

// PermissionError is returned when an attendee tries to change a field only the organizer owns.
type PermissionError struct {
	Field string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("no permission to modify %s", e.Field)
}

// EventRepoError is a structural violation of the event write rules.
type EventRepoError struct {
	Reason string
}

func (e *EventRepoError) Error() string {
	return e.Reason
}
