package domain

import (
	"errors"
	"fmt"
)

// ValidationError is bad or missing input.
type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	return e.Msg
}

// NotFoundError is an unknown ticket, payment, vehicle or history id.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// StateConflictError is an entity in the wrong state for the requested operation.
// CurrentState is echoed back to the caller verbatim.
type StateConflictError struct {
	Resource     string
	ID           string
	CurrentState string
	Msg          string
}

func (e StateConflictError) Error() string {
	return fmt.Sprintf("%s %s: %s (current state %q)", e.Resource, e.ID, e.Msg, e.CurrentState)
}

func Invalid(field, msg string) error {
	return ValidationError{Field: field, Msg: msg}
}

func NotFound(resource, id string) error {
	return NotFoundError{Resource: resource, ID: id}
}

func Conflict(resource, id, state, msg string) error {
	return StateConflictError{Resource: resource, ID: id, CurrentState: state, Msg: msg}
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

// AsConflict returns the conflict carried by err, if any.
func AsConflict(err error) (StateConflictError, bool) {
	var target StateConflictError
	ok := errors.As(err, &target)
	return target, ok
}
