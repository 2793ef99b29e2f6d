package cache

import (
	"encoding/json"

	"github.com/Sternrassler/color-cache/pkg/colors"
	"github.com/tidwall/gjson"
)

// Normalize converts a raw API body into a sorted Collection. The body must
// be a JSON object whose "colors" field is an array of objects, each with a
// string "name". Every other field of a record is kept as an attribute.
func Normalize(body []byte) (*colors.Collection, error) {
	if !gjson.ValidBytes(body) {
		return nil, &MalformedResponseError{Index: -1, Err: ErrInvalidJSON}
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, &MalformedResponseError{Index: -1, Err: ErrMissingColors}
	}

	list := root.Get("colors")
	if !list.IsArray() {
		return nil, &MalformedResponseError{Index: -1, Err: ErrMissingColors}
	}

	items := list.Array()
	records := make([]colors.Record, 0, len(items))
	for i, item := range items {
		record, err := toRecord(item)
		if err != nil {
			return nil, &MalformedResponseError{Index: i, Err: err}
		}
		records = append(records, record)
	}

	return colors.NewCollection(records), nil
}

// toRecord splits one JSON color object into its name and attributes.
func toRecord(item gjson.Result) (colors.Record, error) {
	if !item.IsObject() {
		return colors.Record{}, ErrInvalidRecord
	}

	name := item.Get("name")
	if name.Type != gjson.String {
		return colors.Record{}, ErrMissingName
	}

	attrs := colors.Attributes{}
	item.ForEach(func(key, value gjson.Result) bool {
		if key.String() != "name" {
			attrs[key.String()] = decodeValue(value)
		}
		return true
	})

	return colors.Record{Name: name.String(), Attributes: attrs}, nil
}

// decodeValue converts a gjson value to its Go form. Numbers are kept as
// json.Number with the literal from the body, so large integers and
// out-of-range floats pass through without loss.
func decodeValue(value gjson.Result) any {
	switch {
	case value.Type == gjson.Number:
		return json.Number(value.Raw)
	case value.IsArray():
		items := value.Array()
		out := make([]any, 0, len(items))
		for _, item := range items {
			out = append(out, decodeValue(item))
		}
		return out
	case value.IsObject():
		out := map[string]any{}
		value.ForEach(func(key, field gjson.Result) bool {
			out[key.String()] = decodeValue(field)
			return true
		})
		return out
	default:
		return value.Value()
	}
}
