// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySearchTerm is returned when a search is requested without a term.
	ErrEmptySearchTerm = errors.New("search_term parameter is missing or incorrect")

	// ErrUpstream is returned when the GitHub search call fails or its response cannot be used.
	ErrUpstream = errors.New("incorrect response received from github api")
)

// MalformedItemError is returned when a search item lacks a field the navigator depends on.
type MalformedItemError struct {
	Index int
	Field string
}

func (e *MalformedItemError) Error() string {
	return fmt.Sprintf("search item %d is missing required field %q", e.Index, e.Field)
}

// InvalidLimitError is returned when a requested page size is out of range.
type InvalidLimitError struct {
	Value string
	Max   int
}

func (e *InvalidLimitError) Error() string {
	return fmt.Sprintf("invalid limit %q, expected an integer between 1 and %d", e.Value, e.Max)
}
