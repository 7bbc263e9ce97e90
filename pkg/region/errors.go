/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package region

import (
	"errors"
	"fmt"
)

// Region format failures. The file is left untouched when any of them occur.
var (
	ErrNoManagedRegion   = errors.New("no managed region")
	ErrMalformedRegion   = errors.New("malformed region")
	ErrUnterminatedBlock = errors.New("unterminated schema block")
	ErrDuplicateSchema   = errors.New("duplicate schema")
)

// Mutation failures.
var (
	ErrAlreadyPresent = errors.New("schema already present")
	ErrNotFound       = errors.New("schema not found in region")
	ErrInvalidName    = errors.New("invalid schema name")
	ErrLocalBlock     = errors.New("block is not sourced from the catalog")
)

// ParseError describes where in the file a parse failure happened.
type ParseError struct {
	Kind error
	// Line is 1-based; zero when the failure is not tied to a line.
	Line int
	Name string
}

func (e *ParseError) Error() string {
	msg := e.Kind.Error()
	if e.Name != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Name)
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("%s at line %d", msg, e.Line)
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Kind }

// ResolveError reports a schema that could not be resolved.
type ResolveError struct {
	Name string
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.Name, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// IsFormatError reports whether err is one of the region format failures.
func IsFormatError(err error) bool {
	return errors.Is(err, ErrNoManagedRegion) ||
		errors.Is(err, ErrMalformedRegion) ||
		errors.Is(err, ErrUnterminatedBlock) ||
		errors.Is(err, ErrDuplicateSchema)
}
