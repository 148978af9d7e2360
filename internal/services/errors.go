package services

import "fmt"

// ConflictError reports a unique-field collision detected before any write is
// committed.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s is already taken", e.Field)
}

func conflict(field string) error {
	return &ConflictError{Field: field}
}
