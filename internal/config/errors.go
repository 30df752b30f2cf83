package config

import (
	"strings"
)

// Error is a configuration problem detected before any row is processed.
// The CLI maps it to exit code 2.
type Error struct {
	Problems []string
	Cause    error
}

func (e *Error) Error() string {
	return "config error: " + strings.Join(e.Problems, "; ")
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(cause error, problems ...string) *Error {
	return &Error{Problems: problems, Cause: cause}
}
