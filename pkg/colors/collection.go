package colors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"slices"
)

// Collection is an ordered mapping from color name to attributes.
// Iteration order follows Compare. A Collection is immutable once built.
type Collection struct {
	names   []string
	entries map[string]Attributes
}

// NewCollection sorts a copy of records by Compare and builds a collection.
// When a name occurs more than once, the later record's attributes replace
// the earlier ones while the entry keeps its original position.
func NewCollection(records []Record) *Collection {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, Compare)

	c := &Collection{
		names:   make([]string, 0, len(sorted)),
		entries: make(map[string]Attributes, len(sorted)),
	}
	for _, r := range sorted {
		if _, exists := c.entries[r.Name]; !exists {
			c.names = append(c.names, r.Name)
		}
		attrs := r.Attributes.Clone()
		if attrs == nil {
			attrs = Attributes{}
		}
		delete(attrs, "name")
		c.entries[r.Name] = attrs
	}
	return c
}

// Len returns the number of colors.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

// Names returns the color names in order.
func (c *Collection) Names() []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.names)
}

// Get returns a copy of the attributes stored for name.
func (c *Collection) Get(name string) (Attributes, bool) {
	if c == nil {
		return nil, false
	}
	attrs, ok := c.entries[name]
	if !ok {
		return nil, false
	}
	return attrs.Clone(), true
}

// Contains reports whether name is present.
func (c *Collection) Contains(name string) bool {
	if c == nil {
		return false
	}
	_, ok := c.entries[name]
	return ok
}

// All iterates over the collection in order.
func (c *Collection) All() iter.Seq2[string, Attributes] {
	return func(yield func(string, Attributes) bool) {
		if c == nil {
			return
		}
		for _, name := range c.names {
			if !yield(name, c.entries[name].Clone()) {
				return
			}
		}
	}
}

// Records returns the collection as records in order.
func (c *Collection) Records() []Record {
	records := make([]Record, 0, c.Len())
	for name, attrs := range c.All() {
		records = append(records, Record{Name: name, Attributes: attrs})
	}
	return records
}

// MarshalJSON encodes the collection as a JSON object whose keys keep the
// collection order.
func (c *Collection) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.Names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, fmt.Errorf("marshal color name %q: %w", name, err)
		}
		value, err := json.Marshal(c.entries[name])
		if err != nil {
			return nil, fmt.Errorf("marshal attributes of %q: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
