package cache

import (
	"net/url"
	"strings"
)

// listPathPrefix is the fixed query shape for color lists.
const listPathPrefix = "/v1/?list="

// QueryKey identifies one distinct list request. It is used both as the
// store index and as the outbound request path.
type QueryKey string

// ListKey derives the query key for a list name. The empty name selects the
// API's default list and maps to the stable key "/v1/?list=".
//
// Example:
//
//	ListKey("bestOf") == "/v1/?list=bestOf"
func ListKey(name string) QueryKey {
	return QueryKey(listPathPrefix + url.QueryEscape(name))
}

// Path returns the request path relative to the API base URL.
func (k QueryKey) Path() string {
	return string(k)
}

// String implements fmt.Stringer.
func (k QueryKey) String() string {
	return string(k)
}

// ListName returns the list name a key was derived from, if it was built by
// ListKey.
func (k QueryKey) ListName() (string, bool) {
	escaped, ok := strings.CutPrefix(string(k), listPathPrefix)
	if !ok {
		return "", false
	}
	name, err := url.QueryUnescape(escaped)
	if err != nil {
		return "", false
	}
	return name, true
}
