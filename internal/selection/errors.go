package selection

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFilter is returned by New for unusable filter settings
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrMissingField is returned when an active filter needs a detail the
	// inventory does not report for a device
	ErrMissingField = errors.New("missing device field")

	// ErrMalformedField is returned when a detail needed by an active filter
	// cannot be parsed
	ErrMalformedField = errors.New("malformed device field")

	// ErrTooFewJournals is returned when a host has fewer journal candidates
	// than the configured minimum
	ErrTooFewJournals = errors.New("too few journal devices")
)

// FieldError reports a device detail that blocked a filter step
type FieldError struct {
	Host   string
	Device string
	Field  string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: device %s: %s filter: %v", e.Host, e.Device, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// JournalError reports a host that failed the journal minimum
type JournalError struct {
	Host  string
	Found int
	Want  int
}

func (e *JournalError) Error() string {
	return fmt.Sprintf("%s: only %d journal devices, expect to have at least %d", e.Host, e.Found, e.Want)
}

func (e *JournalError) Unwrap() error {
	return ErrTooFewJournals
}
