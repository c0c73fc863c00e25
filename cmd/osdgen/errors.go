package main

import (
	"errors"
	"fmt"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitFailure = 1 // run failed: fetch, parse, journal minimum, I/O
	ExitUsage   = 2 // bad flag, setting or argument
)

// ExitError carries the process exit code of a failed command
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		if e.Message == "" {
			return e.Err.Error()
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// usageError marks err as caused by invalid input
func usageError(err error) *ExitError {
	return &ExitError{Code: ExitUsage, Err: err}
}

// failure wraps err with a message and the generic failure code
func failure(message string, err error) *ExitError {
	return &ExitError{Code: ExitFailure, Message: message, Err: err}
}

// exitCode extracts the exit code from an error
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}
