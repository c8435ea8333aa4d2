package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/bethropolis/wysiii/internal/editor"
	"github.com/bethropolis/wysiii/internal/input"
	"github.com/bethropolis/wysiii/internal/logger"
	"github.com/bethropolis/wysiii/internal/render"
	"github.com/bethropolis/wysiii/internal/tui"
)

// handleKey routes a key press. Formatting shortcuts go to the editor
// first; everything else is a host action.
func (a *App) handleKey(ev *tcell.EventKey) {
	if ks, ok := input.FromTcell(ev); ok {
		handled, err := a.editor.HandleKey(ks)
		if err != nil {
			a.reportError(err)
		}
		if handled {
			a.quitArmed = false
			return
		}
	}

	act := a.inputProcessor.ProcessEvent(ev)
	logger.DebugTagf("input", "Key %s -> %s", ev.Name(), act.Action)
	if act.Action != input.ActionQuit {
		a.quitArmed = false
	}

	switch act.Action {
	case input.ActionQuit:
		a.requestQuit()
	case input.ActionSave:
		a.save()
	case input.ActionCancel:
		a.surface.SetCaret(a.surface.Caret())

	// Reached only when the editor declined them, which means source mode.
	case input.ActionBold, input.ActionItalic, input.ActionUnderline, input.ActionParagraph:
		a.reportError(editor.ErrSourceMode)
	case input.ActionUndo, input.ActionRedo:
		a.historyStep(act.Action == input.ActionRedo)

	case input.ActionLineBreak:
		a.lineBreak()
	case input.ActionInsertRune:
		a.insertText(string(act.Rune))
	case input.ActionDeleteCharBackward:
		a.edit(a.surface.DeleteBackward)
	case input.ActionDeleteCharForward:
		a.edit(a.surface.DeleteForward)

	case input.ActionMoveLeft:
		a.surface.MoveLeft(act.Extend)
	case input.ActionMoveRight:
		a.surface.MoveRight(act.Extend)
	case input.ActionMoveUp:
		a.moveVertical(-1, act.Extend)
	case input.ActionMoveDown:
		a.moveVertical(1, act.Extend)
	case input.ActionMoveHome:
		a.moveInRow(false, act.Extend)
	case input.ActionMoveEnd:
		a.moveInRow(true, act.Extend)
	case input.ActionSelectAll:
		a.surface.SelectAll()

	case input.ActionCopy:
		a.copySelection()
	case input.ActionCut:
		a.cutSelection()
	case input.ActionPaste:
		a.paste()

	case input.ActionActivateControl:
		a.activateControl(act.Index)
	case input.ActionEnterCommandMode:
		a.commandPrompt()
	}
}

// reportError shows err on the status line.
func (a *App) reportError(err error) {
	logger.Warnf("App: %v", err)
	a.statusBar.SetErrorMessage("%v", err)
}

// historyStep serves the host-only history bindings such as Ctrl+Y.
func (a *App) historyStep(redo bool) {
	if a.editor.Mode() == editor.SourceMode {
		a.statusBar.SetTemporaryMessage("History is paused in source mode")
		return
	}
	step, verb := a.editor.Undo, "undo"
	if redo {
		step, verb = a.editor.Redo, "redo"
	}
	if !step() {
		a.statusBar.SetTemporaryMessage("Nothing to %s", verb)
	}
}

// edit applies a direct surface change and mirrors it like user input.
func (a *App) edit(change func() bool) {
	if a.editor.Mode() == editor.SourceMode {
		a.statusBar.SetTemporaryMessage("Source view is read-only")
		return
	}
	if change() {
		a.editor.Sync()
	}
}

func (a *App) insertText(text string) {
	a.edit(func() bool { return a.surface.InsertText(text) })
}

// lineBreak is the default handling of Shift+Enter: a <br> at the caret.
func (a *App) lineBreak() {
	a.edit(func() bool { return a.surface.InsertMarkup("<br>") })
}

// anchor returns the fixed end of the selection.
func (a *App) anchor() int {
	start, end := a.surface.Selection()
	if a.surface.Caret() == start {
		return end
	}
	return start
}

// moveTo puts the caret at off, keeping the anchor when extending.
func (a *App) moveTo(off int, extend bool) {
	if extend {
		a.surface.Select(a.anchor(), off)
		return
	}
	a.surface.SetCaret(off)
}

func (a *App) moveVertical(delta int, extend bool) {
	v := a.currentView()
	pos := v.layout.Locate(v.toLayout(a.surface.Caret()))
	target := render.Pos{Row: pos.Row + delta, Col: pos.Col}
	switch {
	case target.Row < 0:
		a.surface.MoveToStart(extend)
	case target.Row >= len(v.layout.Lines):
		a.surface.MoveToEnd(extend)
	default:
		if off, ok := v.layout.OffsetAt(target); ok {
			a.moveTo(v.toSurface(off), extend)
		}
	}
}

// moveInRow moves to the first or last caret stop of the caret's row.
func (a *App) moveInRow(toEnd, extend bool) {
	v := a.currentView()
	pos := v.layout.Locate(v.toLayout(a.surface.Caret()))
	col := 0
	if toEnd {
		col = v.layout.Lines[pos.Row].Width() + 1
	}
	if off, ok := v.layout.OffsetAt(render.Pos{Row: pos.Row, Col: col}); ok {
		a.moveTo(v.toSurface(off), extend)
	}
}

func (a *App) copySelection() {
	text := a.surface.SelectedText()
	if !a.clipboard.Copy(text) {
		a.statusBar.SetTemporaryMessage("Nothing selected")
		return
	}
	a.statusBar.SetTemporaryMessage("Copied %d characters", len([]rune(text)))
}

func (a *App) cutSelection() {
	if a.surface.Collapsed() {
		a.statusBar.SetTemporaryMessage("Nothing selected")
		return
	}
	if a.editor.Mode() == editor.SourceMode {
		a.statusBar.SetTemporaryMessage("Source view is read-only")
		return
	}
	a.clipboard.Copy(a.surface.SelectedText())
	a.edit(a.surface.DeleteBackward)
}

func (a *App) paste() {
	text, ok := a.clipboard.Paste()
	if !ok {
		a.statusBar.SetTemporaryMessage("Clipboard is empty")
		return
	}
	a.insertText(text)
}

// save writes the document to its file, asking for a path when it has none.
func (a *App) save() {
	if a.filePath == "" {
		path, ok := a.collect(editor.Prompt{Label: "Save as:"})
		path = strings.TrimSpace(path)
		if !ok || path == "" {
			return
		}
		a.filePath = path
	}
	value := a.documentValue()
	if err := os.WriteFile(a.filePath, []byte(value), 0o644); err != nil {
		a.reportError(fmt.Errorf("save failed: %w", err))
		return
	}
	a.savedValue = value
	logger.Infof("App: saved %d bytes to '%s'", len(value), a.filePath)
	a.statusBar.SetTemporaryMessage("Saved %s", a.filePath)
}

// requestQuit quits, asking for a second Ctrl+Q when changes are unsaved.
func (a *App) requestQuit() {
	if a.modified() && !a.quitArmed {
		a.quitArmed = true
		a.statusBar.SetErrorMessage("Unsaved changes! Press Ctrl+Q again to quit, Ctrl+S to save")
		return
	}
	a.quit = true
}

// activateControl presses toolbar control i.
func (a *App) activateControl(i int) {
	controls := a.editor.Toolbar()
	if i < 0 || i >= len(controls) {
		return
	}
	c := controls[i]
	if c.Kind == editor.KindSelect {
		a.chooseValue(c)
		return
	}

	if c.Name == editor.ButtonCode && a.editor.Mode() == editor.SourceMode {
		a.warnMarkupProblems()
	}
	if err := a.editor.Activate(c.Name); err != nil {
		a.reportError(err)
	}
}

// warnMarkupProblems reports markup the parser had to repair, before the
// source view is turned back into rich content.
func (a *App) warnMarkupProblems() {
	probs, err := a.highlighter.Problems(context.Background(), []byte(a.surface.Text()))
	if err != nil {
		logger.Warnf("App: markup check failed: %v", err)
		return
	}
	if len(probs) == 0 {
		return
	}
	logger.Infof("App: markup has %d problem(s): %v", len(probs), probs)
	a.statusBar.SetErrorMessage("Markup has %d problem(s), first: %s", len(probs), probs[0])
}

// chooseValue asks for one of a select's choices, by value or label.
func (a *App) chooseValue(c editor.Control) {
	if a.editor.Mode() == editor.SourceMode {
		a.reportError(editor.ErrSourceMode)
		return
	}
	labels := make([]string, 0, len(c.Choices))
	for _, ch := range c.Choices {
		labels = append(labels, ch.Label)
	}
	answer, ok := a.collect(editor.Prompt{Label: fmt.Sprintf("%s (%s):", c.Label, strings.Join(labels, ", "))})
	if !ok {
		return
	}
	value, found := matchChoice(c, answer)
	if !found {
		a.statusBar.SetTemporaryMessage("%s has no choice %q", c.Label, answer)
		return
	}
	if err := a.editor.Select(c.Name, value); err != nil {
		a.reportError(err)
	}
}

// matchChoice finds the choice whose value or label equals answer, ignoring
// case and surrounding space.
func matchChoice(c editor.Control, answer string) (string, bool) {
	answer = strings.TrimSpace(answer)
	for _, ch := range c.Choices {
		if strings.EqualFold(ch.Value, answer) || strings.EqualFold(ch.Label, answer) {
			return ch.Value, true
		}
	}
	return "", false
}

// commandPrompt runs a registered command such as "wc" or "theme <name>".
func (a *App) commandPrompt() {
	line, ok := a.collect(editor.Prompt{Label: "Command:"})
	if !ok {
		return
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	err := a.editor.RunCommand(fields[0], fields[1:])
	switch {
	case errors.Is(err, editor.ErrUnknownCommand):
		a.statusBar.SetErrorMessage("Unknown command %q. Available: %s", fields[0], strings.Join(a.editor.Commands(), ", "))
	case err != nil:
		a.reportError(err)
	}
}

// handleMouse moves the caret or presses a toolbar control on click.
func (a *App) handleMouse(ev *tcell.EventMouse) {
	if ev.Buttons()&tcell.Button1 == 0 {
		return
	}
	x, y := ev.Position()
	if y == 0 {
		if i, ok := tui.HitToolbar(a.toolbarEnds, x); ok {
			a.activateControl(i)
		}
		return
	}
	v := a.currentView()
	row := y - v.area.Y
	if row < 0 || row >= v.area.Height {
		return
	}
	if off, ok := v.layout.OffsetAt(render.Pos{Row: row + a.scroll, Col: x - v.area.X}); ok {
		a.surface.SetCaret(v.toSurface(off))
	}
}
