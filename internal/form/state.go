// Package form holds the state of the JSON submit form and the reducer steps
// that move it between states. Every step takes a State and returns the next
// one; nothing here touches the terminal.
package form

import (
	"time"

	"bfhlform/internal/model"
)

// ErrorMessage is the only error text ever shown to the user. Parse errors,
// contract violations and backend failures all collapse into it.
const ErrorMessage = "Invalid JSON input or backend error."

// Meta describes the last successful exchange for the status line.
type Meta struct {
	Status    string
	Size      int
	Elapsed   time.Duration
	RequestID string
}

type State struct {
	Input    string
	Response model.Response
	Meta     Meta
	Err      string

	Filters      model.Filters
	DropdownOpen bool
	Cursor       int
	Mode         model.RenderMode

	// Pending counts submits that have been fired but not yet resolved.
	Pending int

	// ClearOnError drops a stale Response when a later submit fails.
	ClearOnError bool
}

func New(mode model.RenderMode) State {
	if mode == "" {
		mode = model.RenderLines
	}
	return State{Mode: mode}
}

func SetInput(s State, in string) State {
	s.Input = in
	return s
}

// BeginSubmit marks one more submit as in flight.
func BeginSubmit(s State) State {
	s.Pending++
	return s
}

// Succeeded installs a fresh response. Responses are applied in the order
// they resolve, so the last one to arrive wins.
func Succeeded(s State, out Outcome) State {
	s = settle(s)
	s.Response = out.Response
	s.Meta = out.Meta
	s.Err = ""
	return s
}

// Failed records a failed submit. The previous response stays unless
// ClearOnError is set.
func Failed(s State) State {
	s = settle(s)
	s.Err = ErrorMessage
	if s.ClearOnError {
		s.Response = nil
		s.Meta = Meta{}
	}
	return s
}

func settle(s State) State {
	if s.Pending > 0 {
		s.Pending--
	}
	return s
}

func ToggleFilter(s State, f model.Field) State {
	s.Filters = s.Filters.Toggle(f)
	return s
}

func ToggleDropdown(s State) State {
	s.DropdownOpen = !s.DropdownOpen
	return s
}

func CloseDropdown(s State) State {
	s.DropdownOpen = false
	return s
}

func MoveCursor(s State, delta int) State {
	n := len(model.Fields())
	s.Cursor += delta
	if s.Cursor < 0 {
		s.Cursor = 0
	}
	if s.Cursor >= n {
		s.Cursor = n - 1
	}
	return s
}

// CursorTo moves the option cursor onto f.
func CursorTo(s State, f model.Field) State {
	for i, fl := range model.Fields() {
		if fl == f {
			s.Cursor = i
		}
	}
	return s
}

func ToggleAtCursor(s State) State {
	fields := model.Fields()
	if s.Cursor < 0 || s.Cursor >= len(fields) {
		return s
	}
	return ToggleFilter(s, fields[s.Cursor])
}

func SetMode(s State, m model.RenderMode) State {
	s.Mode = m
	return s
}
