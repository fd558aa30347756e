package ui

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/jroimartin/gocui"
	"go.uber.org/zap"

	"bfhlform/internal/form"
)

const editorSeed = "{\n  \"data\": []\n}\n"

// editInEditor writes the current input to a temp file and asks Run to
// suspend into $EDITOR.
func (a *App) editInEditor(*gocui.Gui, *gocui.View) error {
	seed := a.state.Input
	if strings.TrimSpace(seed) == "" {
		seed = editorSeed
	} else if !strings.HasSuffix(seed, "\n") {
		seed += "\n"
	}

	f, err := os.CreateTemp("", "bfhlform-input-*.json")
	if err != nil {
		a.log.Warn("temp file", zap.Error(err))
		return nil
	}
	defer f.Close()
	if _, err := f.WriteString(seed); err != nil {
		a.log.Warn("temp file", zap.Error(err))
		return nil
	}
	a.suspendEditorFile = f.Name()
	return gocui.ErrQuit
}

// runExternalEditor edits file and loads the result back as raw input. The
// text is not checked here; that happens on submit like any typed input.
func (a *App) runExternalEditor(file string) error {
	defer os.Remove(file)

	args := splitCommand(a.editor)
	cmd := exec.Command(args[0], append(args[1:], file)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	b, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	a.state = form.SetInput(a.state, strings.TrimRight(string(b), "\n"))
	return nil
}

func splitCommand(s string) []string {
	// Minimal shell-like splitting: whitespace, no quotes/escapes.
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return []string{"vi"}
	}
	return fields
}
