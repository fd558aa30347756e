package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"bfhlform/internal/form"
	"bfhlform/internal/model"
)

// ansi colors
const (
	colorDim    = "\033[90m"
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
)

const inputPlaceholder = `e.g. {"data": ["A", "b", "1", "2"]}`

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

// checkboxRow renders every option on one line; the option under the
// cursor is wrapped in angle brackets when the pane has focus.
func checkboxRow(st form.State, focused bool) string {
	var parts []string
	for i, f := range model.Fields() {
		item := checkbox(st.Filters.Has(f)) + " " + f.Label()
		if focused && i == st.Cursor {
			item = colorGreen + "<" + item + ">" + colorReset
		} else {
			item = " " + item + " "
		}
		parts = append(parts, item)
	}
	return strings.Join(parts, " ")
}

func dropdownButton(st form.State) string {
	arrow := "v"
	if st.DropdownOpen {
		arrow = "^"
	}
	n := st.Filters.Len()
	label := "Select fields"
	if n > 0 {
		var names []string
		for _, f := range st.Filters.Selected() {
			names = append(names, f.Label())
		}
		label = strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s  %s", label, arrow)
}

func dropdownOptions(st form.State) []string {
	lines := make([]string, 0, len(model.Fields()))
	for _, f := range model.Fields() {
		lines = append(lines, checkbox(st.Filters.Has(f))+" "+f.Label())
	}
	return lines
}

func resultsText(st form.State, colored bool) string {
	view, ok := form.Current(st)
	if !ok {
		return ""
	}
	if len(view) == 0 {
		if st.Mode == model.RenderJSON {
			return view.JSON()
		}
		return colorDim + "(no fields selected)" + colorReset
	}
	if st.Mode == model.RenderJSON && colored {
		return colorizeView(view)
	}
	return view.Render(st.Mode)
}

func statusLine(m form.Meta) string {
	if m.Status == "" {
		return ""
	}
	return fmt.Sprintf("%s  %s in %s", colorizeStatus(m.Status), humanize.Bytes(uint64(m.Size)), m.Elapsed.Round(time.Millisecond))
}

func footerText(st form.State, f focus, style model.FilterStyle) string {
	if st.Err != "" {
		return colorRed + st.Err + colorReset
	}
	if st.Pending > 0 {
		return colorYellow + "submitting..." + colorReset
	}
	switch f {
	case focusFilter:
		if style == model.StyleDropdown {
			return "enter: open/close   space: toggle   up/down: move   type: jump   tab: next   ctrl+v: view   ctrl+q: quit"
		}
		return "space/enter: toggle   left/right: move   type: jump   tab: next   ctrl+v: view   ctrl+q: quit"
	case focusResults:
		return "up/down: scroll   tab: next   ctrl+v: lines/json   ctrl+r: resubmit   ctrl+q: quit"
	default:
		return "ctrl+r/ctrl+s: submit   ctrl+e: $EDITOR   tab: next   ctrl+q: quit"
	}
}

func colorizeStatus(status string) string {
	parts := strings.Fields(status)
	if len(parts) == 0 {
		return status
	}
	var color string
	switch parts[0][0] {
	case '2':
		color = colorGreen
	case '4':
		color = colorYellow
	case '5':
		color = colorRed
	default:
		color = colorReset
	}
	return color + status + colorReset
}
