// Package colors defines the color records returned by the color naming API
// and the ordered collections the query cache builds from them.
package colors

import (
	"encoding/json"
	"maps"
	"strings"
)

// Attributes holds everything the API reports about a color except its name.
// Values are decoded JSON: strings, json.Number numbers (exact literal),
// bools, nil, nested map[string]any objects and []any arrays.
type Attributes map[string]any

// Clone returns a shallow copy of the attributes.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	return maps.Clone(a)
}

// String returns the attribute as a string if present and of string type.
func (a Attributes) String(key string) (string, bool) {
	v, ok := a[key].(string)
	return v, ok
}

// Number returns the attribute as a float64 if present and numeric.
// Numbers outside the float64 range report false.
func (a Attributes) Number(key string) (float64, bool) {
	switch v := a[key].(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Record is a single named color as returned by the API.
type Record struct {
	// Name is the unique color name (e.g., "Red")
	Name string

	// Attributes are the remaining fields (hex, rgb, luminance, ...)
	Attributes Attributes
}

// Compare defines the total order over records: case-insensitive by name,
// ties broken by the byte-wise name. Records with equal names compare equal.
func Compare(a, b Record) int {
	if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	return strings.Compare(a.Name, b.Name)
}
