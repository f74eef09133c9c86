// Package jsonx provides tolerant navigation over loosely-typed JSON
// documents. Every accessor is safe to call on an absent or wrong-kind
// node; only the initial parse can fail.
package jsonx

import (
	"encoding/json"
	"strconv"
)

// Element wraps a decoded JSON value. The zero value is the absent
// marker: all navigation on it yields further absent elements and all
// extractors report not-ok.
type Element struct {
	value   any
	present bool
}

// Parse decodes raw JSON into an Element.
func Parse(data []byte) (Element, error) {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return Element{}, err
	}
	return Element{value: value, present: true}, nil
}

// From wraps an already-decoded value in an Element.
func From(value any) Element {
	return Element{value: value, present: true}
}

// Exists reports whether the element refers to an actual node,
// including an explicit JSON null.
func (e Element) Exists() bool {
	return e.present
}

// Get returns the named property of an object element. Navigating a
// non-object or a missing property returns the absent marker.
func (e Element) Get(name string) Element {
	if !e.present {
		return Element{}
	}
	obj, ok := e.value.(map[string]any)
	if !ok {
		return Element{}
	}
	val, ok := obj[name]
	if !ok {
		return Element{}
	}
	return Element{value: val, present: true}
}

// Index returns the i-th entry of an array element, or the absent
// marker when out of range or not an array.
func (e Element) Index(i int) Element {
	if !e.present {
		return Element{}
	}
	arr, ok := e.value.([]any)
	if !ok || i < 0 || i >= len(arr) {
		return Element{}
	}
	return Element{value: arr[i], present: true}
}

// IsArray reports whether the element holds a JSON array.
func (e Element) IsArray() bool {
	if !e.present {
		return false
	}
	_, ok := e.value.([]any)
	return ok
}

// Len returns the length of an array element, zero otherwise.
func (e Element) Len() int {
	if !e.present {
		return 0
	}
	arr, ok := e.value.([]any)
	if !ok {
		return 0
	}
	return len(arr)
}

// Array returns the entries of an array element. Non-arrays yield nil.
func (e Element) Array() []Element {
	if !e.present {
		return nil
	}
	arr, ok := e.value.([]any)
	if !ok {
		return nil
	}
	out := make([]Element, len(arr))
	for i, v := range arr {
		out[i] = Element{value: v, present: true}
	}
	return out
}

// String extracts a string value.
func (e Element) String() (string, bool) {
	if !e.present {
		return "", false
	}
	s, ok := e.value.(string)
	return s, ok
}

// Float extracts a numeric value as float64.
func (e Element) Float() (float64, bool) {
	if !e.present {
		return 0, false
	}
	switch v := e.value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Int extracts a numeric value as int, truncating fractions the way
// upstream APIs encode integers as JSON numbers.
func (e Element) Int() (int, bool) {
	if !e.present {
		return 0, false
	}
	switch v := e.value.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		i, err := strconv.Atoi(v.String())
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
