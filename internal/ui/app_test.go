package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jroimartin/gocui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bfhlform/internal/contract"
	"bfhlform/internal/form"
	"bfhlform/internal/model"
)

const sampleResponse = `{"alphabets":["A","b"],"numbers":["1","2"],"highest_lowercase_alphabet":["b"]}`

// newHeadless builds an App with no GUI attached. Key handlers run directly
// against the form state; submits still resolve on their own goroutine and
// are applied by wait, standing in for the next layout pass.
func newHeadless(t *testing.T, style model.FilterStyle) *App {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	t.Cleanup(srv.Close)

	c, err := contract.Load(context.Background())
	require.NoError(t, err)
	return NewApp(form.NewSubmitter(srv.URL+"/bfhl", c, nil), Options{Style: style})
}

func TestSubmitStoresResponse(t *testing.T) {
	a := newHeadless(t, model.StyleDropdown)
	a.SetInput(`{"data": ["A","b","1","2"]}`)

	require.NoError(t, a.submit(nil, nil))
	a.wait()

	st := a.State()
	assert.Empty(t, st.Err)
	assert.Equal(t, 0, st.Pending)
	got, ok := st.Response.Strings(model.FieldNumbers)
	require.True(t, ok)
	assert.Equal(t, []string{"1", "2"}, got)
}

func TestSubmitInvalidKeepsResponse(t *testing.T) {
	a := newHeadless(t, model.StyleDropdown)
	a.SetInput(`{"data": ["A"]}`)
	require.NoError(t, a.submit(nil, nil))
	a.wait()
	prior := a.State().Response

	a.SetInput(`{"data": [`)
	require.NoError(t, a.submit(nil, nil))
	a.wait()

	assert.Equal(t, form.ErrorMessage, a.State().Err)
	assert.Equal(t, prior, a.State().Response)
}

func TestNextFocusSkipsHiddenPanes(t *testing.T) {
	a := newHeadless(t, model.StyleDropdown)
	require.NoError(t, a.nextFocus(nil, nil))
	assert.Equal(t, focusInput, a.focus)

	a.SetInput(`{"data": ["A"]}`)
	require.NoError(t, a.submit(nil, nil))
	a.wait()

	require.NoError(t, a.nextFocus(nil, nil))
	assert.Equal(t, focusFilter, a.focus)
	require.NoError(t, a.nextFocus(nil, nil))
	assert.Equal(t, focusResults, a.focus)
	require.NoError(t, a.nextFocus(nil, nil))
	assert.Equal(t, focusInput, a.focus)
}

func TestDropdownKeys(t *testing.T) {
	a := newHeadless(t, model.StyleDropdown)

	// closed: space does nothing
	require.NoError(t, a.filterSpace(nil, nil))
	assert.Equal(t, 0, a.State().Filters.Len())

	require.NoError(t, a.filterEnter(nil, nil))
	assert.True(t, a.State().DropdownOpen)
	assert.Equal(t, 0, a.State().Filters.Len())

	require.NoError(t, a.moveOption(1)(nil, nil))
	require.NoError(t, a.filterSpace(nil, nil))
	assert.True(t, a.State().DropdownOpen)
	assert.Equal(t, []model.Field{model.FieldNumbers}, a.State().Filters.Selected())

	require.NoError(t, a.back(nil, nil))
	assert.False(t, a.State().DropdownOpen)
	assert.Equal(t, []model.Field{model.FieldNumbers}, a.State().Filters.Selected())
}

func TestCheckboxKeys(t *testing.T) {
	a := newHeadless(t, model.StyleCheckbox)

	require.NoError(t, a.filterEnter(nil, nil))
	assert.False(t, a.State().DropdownOpen)
	assert.Equal(t, []model.Field{model.FieldAlphabets}, a.State().Filters.Selected())

	require.NoError(t, a.filterSpace(nil, nil))
	assert.Equal(t, 0, a.State().Filters.Len())
}

func TestJumpTo(t *testing.T) {
	a := newHeadless(t, model.StyleCheckbox)

	require.NoError(t, a.jumpTo('n')(nil, nil))
	assert.Equal(t, 1, a.State().Cursor)

	require.NoError(t, a.jumpTo('h')(nil, nil))
	assert.Equal(t, 2, a.State().Cursor)
	assert.Equal(t, "h", a.jump)

	require.NoError(t, a.jumpTo('Q')(nil, nil))
	assert.Equal(t, 2, a.State().Cursor)
	assert.Empty(t, a.jump)
}

func TestSwitchMode(t *testing.T) {
	a := newHeadless(t, model.StyleDropdown)
	assert.Equal(t, model.RenderLines, a.State().Mode)
	require.NoError(t, a.switchMode(nil, nil))
	assert.Equal(t, model.RenderJSON, a.State().Mode)
}

func TestRunExternalEditor(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "fake-editor")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nprintf '{\"data\": [\"z\"]}\\n' > \"$1\"\n"), 0o755))

	a := newHeadless(t, model.StyleDropdown)
	a.editor = script

	file := filepath.Join(dir, "input.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o644))

	require.NoError(t, a.runExternalEditor(file))
	assert.Equal(t, `{"data": ["z"]}`, a.State().Input)
	_, err := os.Stat(file)
	assert.True(t, os.IsNotExist(err))
}

func TestSubmitSurvivesEditorSuspend(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	c, err := contract.Load(context.Background())
	require.NoError(t, err)

	dir := t.TempDir()
	script := filepath.Join(dir, "fake-editor")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nprintf '{\"data\": [\"q\"]}' > \"$1\"\n"), 0o755))

	a := NewApp(form.NewSubmitter(srv.URL+"/bfhl", c, nil), Options{Editor: script})
	a.SetInput(`{"data": ["A","b","1","2"]}`)
	require.NoError(t, a.submit(nil, nil))
	assert.Equal(t, 1, a.State().Pending)

	// ctrl+e leaves the main loop while the request is still out
	assert.Equal(t, gocui.ErrQuit, a.editInEditor(nil, nil))
	file := a.suspendEditorFile
	a.suspendEditorFile = ""
	require.NoError(t, a.runExternalEditor(file))

	close(release)
	a.inflight.Wait()

	// resolved but not applied until a layout pass drains the queue
	assert.Equal(t, 1, a.State().Pending)
	assert.Nil(t, a.State().Response)

	a.drain()
	st := a.State()
	assert.Equal(t, 0, st.Pending)
	assert.Empty(t, st.Err)
	assert.Equal(t, `{"data": ["q"]}`, st.Input)
	got, ok := st.Response.Strings(model.FieldAlphabets)
	require.True(t, ok)
	assert.Equal(t, []string{"A", "b"}, got)
}

func TestOverlappingSubmitsAllSettle(t *testing.T) {
	a := newHeadless(t, model.StyleDropdown)
	a.SetInput(`{"data": ["A"]}`)
	for i := 0; i < 3; i++ {
		require.NoError(t, a.submit(nil, nil))
	}
	a.SetInput(`oops`)
	require.NoError(t, a.submit(nil, nil))
	a.wait()

	st := a.State()
	assert.Equal(t, 0, st.Pending)
	assert.NotNil(t, st.Response)
}

func TestSplitCommand(t *testing.T) {
	assert.Equal(t, []string{"vi"}, splitCommand("  "))
	assert.Equal(t, []string{"code", "--wait"}, splitCommand("code --wait"))
}
