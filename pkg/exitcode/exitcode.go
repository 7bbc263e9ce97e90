/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package exitcode maps gig outcomes to process exit codes
package exitcode

import (
	"errors"
	"fmt"
)

// Exit codes for the gig CLI
const (
	Success      = 0
	GeneralError = 1
	UsageError   = 2
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error"
	default:
		return "Unknown error"
	}
}

// Usage marks an error as a command-line usage problem.
type Usage struct {
	Err error
}

func (u *Usage) Error() string {
	if u.Err == nil {
		return "invalid usage"
	}
	return u.Err.Error()
}

func (u *Usage) Unwrap() error { return u.Err }

// NewUsage wraps a formatted message as a usage error.
func NewUsage(format string, args ...any) error {
	return &Usage{Err: fmt.Errorf(format, args...)}
}

// ForError picks the exit code for err.
func ForError(err error) int {
	if err == nil {
		return Success
	}
	var u *Usage
	if errors.As(err, &u) {
		return UsageError
	}
	return GeneralError
}
