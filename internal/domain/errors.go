package domain

import "fmt"

// ValidationError is returned when a submission is missing required fields.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %v", e.Fields)
}

// PersistenceError wraps a record store failure.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NotificationError wraps a mail delivery failure.
type NotificationError struct {
	Err error
}

func (e *NotificationError) Error() string {
	return e.Err.Error()
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}
