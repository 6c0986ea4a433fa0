// Package errs holds the error taxonomy shared by the project store, the
// generation client and the HTTP layer. Failures are returned as values and
// turned into inline messages by the caller; nothing here retries.
package errs

import (
	"errors"
	"fmt"
)

// NotFoundError reports that a lookup matched nothing, e.g. a project with
// zero file records. It is terminal for the caller.
type NotFoundError struct {
	What string // "project", "file", ...
	ID   string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.What + " not found"
	}
	return fmt.Sprintf("%s %q not found", e.What, e.ID)
}

// TransportError wraps a failed call to an external service. Message is the
// text shown to the user.
type TransportError struct {
	Op      string
	Status  int // HTTP status when the backend answered, 0 otherwise
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op + " failed"
}

func (e *TransportError) Unwrap() error { return e.Err }

// ValidationError rejects input before any side effect happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func NotFound(what, id string) error { return &NotFoundError{What: what, ID: id} }

func Invalid(field, reason string) error { return &ValidationError{Field: field, Reason: reason} }

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsTransport(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}
