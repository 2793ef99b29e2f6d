package cache

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidJSON indicates the response body is not valid JSON.
	ErrInvalidJSON = errors.New("invalid json")

	// ErrMissingColors indicates the body has no "colors" array.
	ErrMissingColors = errors.New(`missing "colors" array`)

	// ErrInvalidRecord indicates an element of "colors" is not an object.
	ErrInvalidRecord = errors.New("color record is not an object")

	// ErrMissingName indicates a color record lacks a string "name".
	ErrMissingName = errors.New(`color record has no string "name"`)
)

// MalformedResponseError reports a response body that does not have the
// expected shape. It wraps one of the Err* sentinels above.
type MalformedResponseError struct {
	// Key is the query the body was fetched for (may be empty)
	Key QueryKey

	// Index is the offending position in "colors", -1 if not record specific
	Index int

	// Err is the reason
	Err error
}

// Error implements the error interface.
func (e *MalformedResponseError) Error() string {
	msg := "malformed color api response"
	if e.Key != "" {
		msg += " for " + string(e.Key)
	}
	if e.Index >= 0 {
		msg += fmt.Sprintf(" (record %d)", e.Index)
	}
	return msg + ": " + e.Err.Error()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
