package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Field string

const (
	FieldAlphabets                Field = "alphabets"
	FieldNumbers                  Field = "numbers"
	FieldHighestLowercaseAlphabet Field = "highest_lowercase_alphabet"
)

var fieldOrder = []Field{FieldAlphabets, FieldNumbers, FieldHighestLowercaseAlphabet}

// Fields returns the known response fields in display order.
func Fields() []Field {
	return append([]Field(nil), fieldOrder...)
}

func ParseField(s string) (Field, error) {
	s = strings.TrimSpace(s)
	for _, f := range fieldOrder {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown field: %q", s)
}

func (f Field) Label() string {
	switch f {
	case FieldAlphabets:
		return "Alphabets"
	case FieldNumbers:
		return "Numbers"
	case FieldHighestLowercaseAlphabet:
		return "Highest Lowercase Alphabet"
	default:
		return string(f)
	}
}

// Filters is the set of fields selected for display. The zero value is the
// empty set. Toggle returns a new set and leaves the receiver untouched.
type Filters struct {
	set map[Field]bool
}

func NewFilters(fields ...Field) Filters {
	var f Filters
	for _, fl := range fields {
		if !f.Has(fl) {
			f = f.Toggle(fl)
		}
	}
	return f
}

func (f Filters) Has(field Field) bool {
	return f.set[field]
}

func (f Filters) Len() int {
	return len(f.set)
}

func (f Filters) Toggle(field Field) Filters {
	next := make(map[Field]bool, len(f.set)+1)
	for k := range f.set {
		next[k] = true
	}
	if next[field] {
		delete(next, field)
	} else {
		next[field] = true
	}
	return Filters{set: next}
}

// Selected lists the selected fields in display order.
func (f Filters) Selected() []Field {
	var out []Field
	for _, fl := range fieldOrder {
		if f.set[fl] {
			out = append(out, fl)
		}
	}
	return out
}

func (f Filters) Equal(other Filters) bool {
	if f.Len() != other.Len() {
		return false
	}
	for k := range f.set {
		if !other.set[k] {
			return false
		}
	}
	return true
}

// Response is the decoded /bfhl reply, kept verbatim.
type Response map[string]json.RawMessage

func DecodeResponse(b []byte) (Response, error) {
	var r Response
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("response not a json object: %w", err)
	}
	if r == nil {
		return nil, fmt.Errorf("response is null")
	}
	return r, nil
}

func (r Response) Get(f Field) (json.RawMessage, bool) {
	v, ok := r[string(f)]
	return v, ok
}

// Strings decodes a field expected to hold a sequence of strings.
// ok is false when the field is absent or has another shape.
func (r Response) Strings(f Field) ([]string, bool) {
	raw, ok := r.Get(f)
	if !ok {
		return nil, false
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false
	}
	return out, true
}

type RenderMode string

const (
	RenderLines RenderMode = "lines"
	RenderJSON  RenderMode = "json"
)

func (m RenderMode) Next() RenderMode {
	if m == RenderJSON {
		return RenderLines
	}
	return RenderJSON
}

type FilterStyle string

const (
	StyleCheckbox FilterStyle = "checkbox"
	StyleDropdown FilterStyle = "dropdown"
)
