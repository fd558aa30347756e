package ui

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bfhlform/internal/form"
	"bfhlform/internal/model"
)

func withResponse(t *testing.T, filters ...model.Field) form.State {
	t.Helper()
	resp, err := model.DecodeResponse([]byte(sampleResponse))
	require.NoError(t, err)
	st := form.Succeeded(form.New(model.RenderLines), form.Outcome{Response: resp})
	st.Filters = model.NewFilters(filters...)
	return st
}

func TestCheckboxRow(t *testing.T) {
	st := withResponse(t, model.FieldNumbers)
	row := stripANSI(checkboxRow(st, true))
	assert.Equal(t, "<[ ] Alphabets>  [x] Numbers   [ ] Highest Lowercase Alphabet ", row)
}

func TestDropdownButton(t *testing.T) {
	st := form.New("")
	assert.Equal(t, "Select fields  v", dropdownButton(st))

	st = form.ToggleDropdown(form.ToggleFilter(st, model.FieldHighestLowercaseAlphabet))
	st = form.ToggleFilter(st, model.FieldAlphabets)
	assert.Equal(t, "Alphabets, Highest Lowercase Alphabet  ^", dropdownButton(st))
	assert.Equal(t, []string{
		"[x] Alphabets",
		"[ ] Numbers",
		"[x] Highest Lowercase Alphabet",
	}, dropdownOptions(st))
}

func TestResultsText(t *testing.T) {
	assert.Empty(t, resultsText(form.New(""), false))

	st := withResponse(t)
	assert.Equal(t, "(no fields selected)", stripANSI(resultsText(st, true)))

	st = withResponse(t, model.FieldNumbers, model.FieldAlphabets)
	assert.Equal(t, "Alphabets: A,b\nNumbers: 1,2", resultsText(st, true))

	st = form.SetMode(st, model.RenderJSON)
	view, _ := form.Current(st)
	assert.Equal(t, view.JSON(), resultsText(st, false))
	assert.Equal(t, view.JSON(), stripANSI(resultsText(st, true)))
}

func TestFooterText(t *testing.T) {
	st := form.Failed(form.New(""))
	assert.Equal(t, form.ErrorMessage, stripANSI(footerText(st, focusInput, model.StyleDropdown)))

	st = form.BeginSubmit(form.New(""))
	assert.Equal(t, "submitting...", stripANSI(footerText(st, focusInput, model.StyleDropdown)))

	assert.Contains(t, footerText(form.New(""), focusFilter, model.StyleDropdown), "enter: open/close")
	assert.Contains(t, footerText(form.New(""), focusFilter, model.StyleCheckbox), "space/enter: toggle")
}

func TestStatusLine(t *testing.T) {
	assert.Empty(t, statusLine(form.Meta{}))

	line := stripANSI(statusLine(form.Meta{Status: "200 OK", Size: 2048, Elapsed: 1234567 * time.Nanosecond}))
	assert.Equal(t, "200 OK  2.0 kB in 1ms", line)
}

func TestColorizeNested(t *testing.T) {
	got := stripANSI(colorizeJSON([]byte(`{"b": true, "a": null, "c": 1.50, "d": [], "e": {"n": 10000000000000000001}}`), 0))
	assert.Equal(t, "{\n  \"b\": true,\n  \"a\": null,\n  \"c\": 1.50,\n  \"d\": [],\n  \"e\": {\n    \"n\": 10000000000000000001\n  }\n}", got)

	assert.Equal(t, "{oops", colorizeJSON([]byte("{oops"), 0))
}

func TestColorizeEscapesKeys(t *testing.T) {
	raw := []byte(`{"say \"hi\"": {"back\\slash": ["<a>"]}}`)
	got := stripANSI(colorizeJSON(raw, 0))

	var want, have any
	require.NoError(t, json.Unmarshal(raw, &want))
	require.NoError(t, json.Unmarshal([]byte(got), &have), got)
	assert.Equal(t, want, have)
	assert.Contains(t, got, `"say \"hi\""`)
	assert.Contains(t, got, `"<a>"`)
}

func TestColorizeViewMatchesJSON(t *testing.T) {
	resp, err := model.DecodeResponse([]byte(`{"alphabets":{"z":1,"a":[true,null]},"numbers":[]}`))
	require.NoError(t, err)
	view, ok := form.Filter(resp, model.NewFilters(model.FieldAlphabets, model.FieldNumbers))
	require.True(t, ok)
	assert.Equal(t, view.JSON(), stripANSI(colorizeView(view)))
}
