package cache

import (
	"github.com/Sternrassler/color-cache/pkg/colors"
)

// Result is the outcome of a cache lookup. Exactly one of Collection and
// Err is set.
type Result struct {
	// Key is the query key the result belongs to
	Key QueryKey

	// Collection is the resolved list on success
	Collection *colors.Collection

	// Err is the failure: a *client.TransportError, a
	// *MalformedResponseError, or the caller's context error
	Err error

	// Cached is true when the list was already in the store
	Cached bool

	// Shared is true when the load was handed to more than one concurrent caller
	Shared bool
}

// OK reports whether the lookup succeeded.
func (r Result) OK() bool {
	return r.Err == nil && r.Collection != nil
}

// Unwrap returns the result in (value, error) form.
func (r Result) Unwrap() (*colors.Collection, error) {
	return r.Collection, r.Err
}
