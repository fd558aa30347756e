package form

import (
	"bytes"
	"encoding/json"
	"strings"

	"bfhlform/internal/model"
)

type Entry struct {
	Field model.Field
	Value json.RawMessage
}

// View is the filtered slice of a response, in field order.
type View []Entry

// Filter keeps the response fields that are both selected and present.
// ok is false when there is no response yet, in which case nothing should be
// rendered at all.
func Filter(resp model.Response, filters model.Filters) (View, bool) {
	if resp == nil {
		return nil, false
	}
	view := View{}
	for _, f := range filters.Selected() {
		if raw, ok := resp.Get(f); ok {
			view = append(view, Entry{Field: f, Value: raw})
		}
	}
	return view, true
}

// Current derives the view for a state.
func Current(s State) (View, bool) {
	return Filter(s.Response, s.Filters)
}

func (v View) Map() map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(v))
	for _, e := range v {
		out[string(e.Field)] = e.Value
	}
	return out
}

// Lines renders one "Label: a,b,c" line per entry. Values that are not
// string sequences are shown as compact JSON.
func (v View) Lines() []string {
	lines := make([]string, 0, len(v))
	for _, e := range v {
		lines = append(lines, e.Field.Label()+": "+joinValue(e.Value))
	}
	return lines
}

func joinValue(raw json.RawMessage) string {
	var vals []string
	if err := json.Unmarshal(raw, &vals); err == nil {
		return strings.Join(vals, ",")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// JSON renders the view as an object indented by two spaces, keys in field
// order.
func (v View) JSON() string {
	if len(v) == 0 {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteString("{\n")
	for i, e := range v {
		key, _ := json.Marshal(string(e.Field))
		sb.WriteString("  ")
		sb.Write(key)
		sb.WriteString(": ")
		var val bytes.Buffer
		if err := json.Indent(&val, e.Value, "  ", "  "); err != nil {
			sb.Write(e.Value)
		} else {
			sb.Write(val.Bytes())
		}
		if i < len(v)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// Render picks the representation for mode.
func (v View) Render(mode model.RenderMode) string {
	if mode == model.RenderJSON {
		return v.JSON()
	}
	return strings.Join(v.Lines(), "\n")
}
