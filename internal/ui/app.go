package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jroimartin/gocui"
	"go.uber.org/zap"

	"bfhlform/internal/form"
	"bfhlform/internal/model"
)

type focus int

const (
	focusInput focus = iota
	focusFilter
	focusResults
)

const inputHeight = 8

type Options struct {
	Style        model.FilterStyle
	Mode         model.RenderMode
	Editor       string
	ClearOnError bool
	Logger       *zap.Logger
}

type App struct {
	g *gocui.Gui

	log       *zap.Logger
	submitter *form.Submitter
	style     model.FilterStyle
	editor    string

	state form.State
	focus focus
	jump  string

	suspendEditorFile string

	// mu guards g for submit goroutines and the queue of resolved submits.
	// Only the GUI goroutine applies queued steps to state, in layout.
	mu       sync.Mutex
	resolved []func(form.State) form.State
	inflight sync.WaitGroup
}

func NewApp(sub *form.Submitter, opts Options) *App {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	style := opts.Style
	if style == "" {
		style = model.StyleDropdown
	}
	st := form.New(opts.Mode)
	st.ClearOnError = opts.ClearOnError
	return &App{
		log:       log.Named("ui"),
		submitter: sub,
		style:     style,
		editor:    opts.Editor,
		state:     st,
	}
}

// State returns a copy of the current form state.
func (a *App) State() form.State { return a.state }

// SetInput seeds the input pane, e.g. from a file given on the command line.
func (a *App) SetInput(in string) {
	a.state = form.SetInput(a.state, in)
}

// inputEditor is gocui's default editor that also mirrors every keystroke
// into the form state.
type inputEditor struct{ app *App }

func (e inputEditor) Edit(v *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) {
	gocui.DefaultEditor.Edit(v, key, ch, mod)
	e.app.state = form.SetInput(e.app.state, viewText(v))
}

func (a *App) Run() error {
	// gocui has no suspend/resume, so dropping into $EDITOR means leaving the
	// main loop, running the editor, then building a fresh GUI.
	for {
		g, err := gocui.NewGui(gocui.OutputNormal)
		if err != nil {
			return err
		}
		a.setGui(g)

		g.BgColor = gocui.ColorBlack
		g.FgColor = gocui.ColorWhite

		g.Cursor = true
		g.InputEsc = true
		g.SetManagerFunc(a.layout)

		if err := a.bindKeys(); err != nil {
			g.Close()
			return err
		}

		err = g.MainLoop()
		a.setGui(nil)
		g.Close()

		if a.suspendEditorFile != "" {
			file := a.suspendEditorFile
			a.suspendEditorFile = ""
			if err := a.runExternalEditor(file); err != nil {
				a.log.Warn("editor failed", zap.Error(err))
			}
			continue
		}

		if err != nil && err != gocui.ErrQuit {
			return err
		}
		return nil
	}
}

func (a *App) setGui(g *gocui.Gui) {
	a.mu.Lock()
	a.g = g
	a.mu.Unlock()
}

func (a *App) layout(g *gocui.Gui) error {
	a.drain()
	maxX, maxY := g.Size()

	if v, err := g.SetView("header", 0, 0, maxX-1, 2); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Frame = false
		v.BgColor = gocui.ColorBlack
		v.FgColor = gocui.ColorWhite
		fmt.Fprintln(v, colorGreen+"bfhlform"+colorReset+"  -  POST "+a.submitter.Endpoint())
	}

	if v, err := g.SetView("footer", 0, maxY-2, maxX-1, maxY); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Frame = false
		v.BgColor = gocui.ColorBlack
		v.FgColor = gocui.ColorWhite
	}

	inputBottom := 2 + inputHeight
	if inputBottom > maxY-3 {
		inputBottom = maxY - 3
	}
	if v, err := g.SetView("input", 0, 2, maxX-1, inputBottom); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Editable = true
		v.Editor = inputEditor{app: a}
		v.Wrap = true
		fmt.Fprint(v, a.state.Input)
		a.moveCursorToEnd(v)
	}
	if v, err := g.View("input"); err == nil {
		v.Title = "JSON input"
		if strings.TrimSpace(a.state.Input) == "" {
			v.Title = "JSON input  " + inputPlaceholder
		}
	}

	if a.state.Response == nil {
		a.deleteViews("filter", "options", "results")
		if a.focus != focusInput {
			a.focus = focusInput
		}
	} else if err := a.layoutResults(maxX, maxY, inputBottom); err != nil {
		return err
	}

	a.renderAll()
	return a.setFocus()
}

// layoutResults places the filter control and the results panel below the
// input. Both only exist once a response has arrived.
func (a *App) layoutResults(maxX, maxY, top int) error {
	if v, err := a.g.SetView("filter", 0, top, maxX-1, top+2); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Filter Response"
	}
	if v, err := a.g.SetView("results", 0, top+2, maxX-1, maxY-3); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Wrap = false
		v.Autoscroll = false
	}
	if v, err := a.g.View("results"); err == nil {
		v.Title = "Results (" + string(a.state.Mode) + ")"
	}

	if a.style != model.StyleDropdown || !a.state.DropdownOpen {
		a.deleteViews("options")
		return nil
	}

	lines := dropdownOptions(a.state)
	width := 0
	for _, l := range lines {
		if n := len(stripANSI(l)); n > width {
			width = n
		}
	}
	x1 := 2 + width + 3
	if x1 > maxX-2 {
		x1 = maxX - 2
	}
	if v, err := a.g.SetView("options", 1, top+1, x1, top+2+len(lines)); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Highlight = true
		v.SelFgColor = gocui.ColorBlack
		v.SelBgColor = gocui.ColorGreen
	}
	_, _ = a.g.SetViewOnTop("options")
	return nil
}

func (a *App) setFocus() error {
	name := "input"
	switch a.focus {
	case focusFilter:
		name = "filter"
	case focusResults:
		name = "results"
	}
	if _, err := a.g.SetCurrentView(name); err != nil {
		return err
	}
	a.g.Cursor = a.focus == focusInput
	return nil
}

func (a *App) deleteViews(names ...string) {
	if a.g == nil {
		return
	}
	for _, n := range names {
		if v, err := a.g.View(n); err == nil {
			v.Clear()
			a.g.DeleteView(n)
		}
	}
}

func (a *App) bindKeys() error {
	g := a.g
	if err := g.SetKeybinding("", gocui.KeyCtrlQ, gocui.ModNone, a.quit); err != nil {
		return err
	}
	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, a.quit); err != nil {
		return err
	}
	if err := g.SetKeybinding("", gocui.KeyEsc, gocui.ModNone, a.back); err != nil {
		return err
	}
	if err := g.SetKeybinding("", gocui.KeyTab, gocui.ModNone, a.nextFocus); err != nil {
		return err
	}
	if err := g.SetKeybinding("", gocui.KeyCtrlR, gocui.ModNone, a.submit); err != nil {
		return err
	}
	if err := g.SetKeybinding("", gocui.KeyCtrlS, gocui.ModNone, a.submit); err != nil {
		return err
	}
	if err := g.SetKeybinding("", gocui.KeyCtrlV, gocui.ModNone, a.switchMode); err != nil {
		return err
	}

	// input
	if err := g.SetKeybinding("input", gocui.KeyCtrlE, gocui.ModNone, a.editInEditor); err != nil {
		return err
	}

	// filter
	if err := g.SetKeybinding("filter", gocui.KeyEnter, gocui.ModNone, a.filterEnter); err != nil {
		return err
	}
	if err := g.SetKeybinding("filter", gocui.KeySpace, gocui.ModNone, a.filterSpace); err != nil {
		return err
	}
	for _, k := range []gocui.Key{gocui.KeyArrowUp, gocui.KeyArrowLeft} {
		if err := g.SetKeybinding("filter", k, gocui.ModNone, a.moveOption(-1)); err != nil {
			return err
		}
	}
	for _, k := range []gocui.Key{gocui.KeyArrowDown, gocui.KeyArrowRight} {
		if err := g.SetKeybinding("filter", k, gocui.ModNone, a.moveOption(1)); err != nil {
			return err
		}
	}
	for r := 'a'; r <= 'z'; r++ {
		for _, ch := range []rune{r, r - 'a' + 'A'} {
			if err := g.SetKeybinding("filter", ch, gocui.ModNone, a.jumpTo(ch)); err != nil {
				return err
			}
		}
	}

	// results
	if err := g.SetKeybinding("results", gocui.KeyArrowDown, gocui.ModNone, a.scrollResults(1)); err != nil {
		return err
	}
	if err := g.SetKeybinding("results", gocui.KeyArrowUp, gocui.ModNone, a.scrollResults(-1)); err != nil {
		return err
	}

	return nil
}

func (a *App) quit(*gocui.Gui, *gocui.View) error { return gocui.ErrQuit }

func (a *App) back(*gocui.Gui, *gocui.View) error {
	if a.state.DropdownOpen {
		a.state = form.CloseDropdown(a.state)
		return nil
	}
	a.focus = focusInput
	a.jump = ""
	return nil
}

func (a *App) nextFocus(*gocui.Gui, *gocui.View) error {
	a.jump = ""
	if a.state.Response == nil {
		a.focus = focusInput
		return nil
	}
	switch a.focus {
	case focusInput:
		a.focus = focusFilter
	case focusFilter:
		a.state = form.CloseDropdown(a.state)
		a.focus = focusResults
	default:
		a.focus = focusInput
	}
	return nil
}

// submit fires one request for the current input. Each submit resolves on its
// own goroutine, so overlapping submits are possible; whichever resolves last
// owns the displayed response. Results are queued and applied by the next
// layout pass, which may belong to a GUI rebuilt after an $EDITOR suspend.
func (a *App) submit(*gocui.Gui, *gocui.View) error {
	a.state = form.BeginSubmit(a.state)
	input := a.state.Input
	a.log.Debug("submit", zap.Int("pending", a.state.Pending))

	a.inflight.Add(1)
	go func() {
		defer a.inflight.Done()
		out, err := a.submitter.Do(context.Background(), input)
		a.resolve(func(st form.State) form.State {
			if err != nil {
				return form.Failed(st)
			}
			return form.Succeeded(st, out)
		})
	}()
	a.renderFooter()
	return nil
}

// resolve queues step and wakes the current GUI, if any, so layout runs.
func (a *App) resolve(step func(form.State) form.State) {
	a.mu.Lock()
	a.resolved = append(a.resolved, step)
	g := a.g
	a.mu.Unlock()
	if g != nil {
		g.Update(func(*gocui.Gui) error { return nil })
	}
}

// drain applies queued submit results in the order they resolved.
func (a *App) drain() {
	a.mu.Lock()
	steps := a.resolved
	a.resolved = nil
	a.mu.Unlock()
	for _, step := range steps {
		a.state = step(a.state)
	}
}

// wait blocks until every fired submit has resolved, then applies them.
func (a *App) wait() {
	a.inflight.Wait()
	a.drain()
}

func (a *App) switchMode(*gocui.Gui, *gocui.View) error {
	a.state = form.SetMode(a.state, a.state.Mode.Next())
	if v, err := a.viewOf("results"); err == nil {
		v.SetOrigin(0, 0)
	}
	return nil
}

func (a *App) filterEnter(g *gocui.Gui, v *gocui.View) error {
	if a.style == model.StyleDropdown {
		a.state = form.ToggleDropdown(a.state)
		return nil
	}
	a.state = form.ToggleAtCursor(a.state)
	return nil
}

func (a *App) filterSpace(*gocui.Gui, *gocui.View) error {
	a.jump = ""
	if a.style == model.StyleDropdown && !a.state.DropdownOpen {
		return nil
	}
	a.state = form.ToggleAtCursor(a.state)
	return nil
}

func (a *App) moveOption(delta int) func(*gocui.Gui, *gocui.View) error {
	return func(*gocui.Gui, *gocui.View) error {
		a.jump = ""
		a.state = form.MoveCursor(a.state, delta)
		return nil
	}
}

// jumpTo accumulates typed letters and moves the cursor to the best matching
// option, starting over when the accumulated text stops matching.
func (a *App) jumpTo(r rune) func(*gocui.Gui, *gocui.View) error {
	return func(*gocui.Gui, *gocui.View) error {
		f, ok := matchField(a.jump + string(r))
		if ok {
			a.jump += string(r)
		} else {
			a.jump = string(r)
			if f, ok = matchField(a.jump); !ok {
				a.jump = ""
				return nil
			}
		}
		a.state = form.CursorTo(a.state, f)
		return nil
	}
}

func (a *App) scrollResults(delta int) func(*gocui.Gui, *gocui.View) error {
	return func(g *gocui.Gui, v *gocui.View) error {
		if v == nil {
			return nil
		}
		ox, oy := v.Origin()
		if delta > 0 {
			if oy+1 < len(viewLines(v)) {
				v.SetOrigin(ox, oy+1)
			}
		} else if oy > 0 {
			v.SetOrigin(ox, oy-1)
		}
		return nil
	}
}

func (a *App) viewOf(name string) (*gocui.View, error) {
	if a.g == nil {
		return nil, gocui.ErrUnknownView
	}
	return a.g.View(name)
}

func (a *App) renderAll() {
	a.renderFooter()
	a.renderFilter()
	a.renderOptions()
	a.renderResults()
}

func (a *App) renderFooter() {
	v, err := a.viewOf("footer")
	if err != nil {
		return
	}
	v.Clear()
	msg := footerText(a.state, a.focus, a.style)
	if st := statusLine(a.state.Meta); st != "" && a.state.Err == "" {
		msg = st + "   " + msg
	}
	fmt.Fprint(v, msg)
}

func (a *App) renderFilter() {
	v, err := a.viewOf("filter")
	if err != nil {
		return
	}
	v.Clear()
	if a.style == model.StyleDropdown {
		fmt.Fprint(v, dropdownButton(a.state))
		return
	}
	fmt.Fprint(v, checkboxRow(a.state, a.focus == focusFilter))
}

func (a *App) renderOptions() {
	v, err := a.viewOf("options")
	if err != nil {
		return
	}
	v.Clear()
	for _, l := range dropdownOptions(a.state) {
		fmt.Fprintln(v, l)
	}
	v.SetCursor(0, a.state.Cursor)
}

func (a *App) renderResults() {
	v, err := a.viewOf("results")
	if err != nil {
		return
	}
	v.Clear()
	fmt.Fprint(v, resultsText(a.state, true))
}

func (a *App) moveCursorToEnd(v *gocui.View) {
	lines := viewLines(v)
	if len(lines) == 0 {
		return
	}
	last := len(lines) - 1
	_ = v.SetCursor(len(lines[last]), last)
}

func viewText(v *gocui.View) string {
	b := v.Buffer()
	// gocui includes a trailing newline
	return strings.TrimSuffix(b, "\n")
}

func viewLines(v *gocui.View) []string {
	buf := strings.TrimSuffix(v.Buffer(), "\n")
	if buf == "" {
		return nil
	}
	return strings.Split(buf, "\n")
}
