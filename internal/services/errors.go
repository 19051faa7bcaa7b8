package services

import "fmt"

// ConflictError is returned when a live report already occupies the
// requested week range and overwrite was not set.
type ConflictError struct {
	WeekRange string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("report already exists for %s, set overwrite=true to regenerate", e.WeekRange)
}

// NotFoundError is returned when a referenced row does not exist or is
// soft-deleted.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ValidationError is returned when request input fails a domain rule.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// SourceError wraps a failure from one external data source. The whole
// generation fails with the first source error; nothing is written.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
