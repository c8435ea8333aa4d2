package app

import (
	"context"
	"fmt"

	"github.com/bethropolis/wysiii/internal/config"
	"github.com/bethropolis/wysiii/internal/editor"
	"github.com/bethropolis/wysiii/internal/highlighter"
	"github.com/bethropolis/wysiii/internal/logger"
	"github.com/bethropolis/wysiii/internal/render"
	"github.com/bethropolis/wysiii/internal/tui"
)

// view is the layout of the surface as last drawn. In source mode the
// surface holds escaped markup while the layout shows the literal text, so
// offsets are translated between the two.
type view struct {
	layout  *render.Layout
	area    tui.Rect
	escaped string // Surface markup in source mode, empty in rich mode
	source  bool
}

func (v *view) toLayout(off int) int {
	if !v.source {
		return off
	}
	return textOffset(v.escaped, off)
}

func (v *view) toSurface(off int) int {
	if !v.source {
		return off
	}
	return markupOffset(v.escaped, off)
}

// escapes are the references produced when text is shown literally.
var escapes = []string{"&amp;", "&lt;", "&gt;"}

// entityAt returns the length of the reference starting at s[i], or 0.
func entityAt(s string, i int) int {
	for _, e := range escapes {
		if len(s)-i >= len(e) && s[i:i+len(e)] == e {
			return len(e)
		}
	}
	return 0
}

// textOffset converts an offset into escaped markup to the matching offset
// in the decoded text.
func textOffset(escaped string, off int) int {
	text := 0
	for i := 0; i < len(escaped) && i < off; {
		if n := entityAt(escaped, i); n > 0 {
			i += n
		} else {
			i++
		}
		text++
	}
	return text
}

// markupOffset is the inverse of textOffset.
func markupOffset(escaped string, textOff int) int {
	i := 0
	for text := 0; i < len(escaped) && text < textOff; text++ {
		if n := entityAt(escaped, i); n > 0 {
			i += n
		} else {
			i++
		}
	}
	return i
}

// documentArea is the screen region between the toolbar and status rows.
func (a *App) documentArea(width, height int) tui.Rect {
	top := config.ToolbarHeight
	h := height - top - a.cfg.Editor.StatusBarHeight
	if h < 0 {
		h = 0
	}
	return tui.Rect{X: 0, Y: top, Width: width, Height: h}
}

// buildView lays the surface out for area.
func (a *App) buildView(area tui.Rect) *view {
	th := a.themeManager.Current()
	if a.editor.Mode() != editor.SourceMode {
		return &view{layout: render.Rich(a.surface.Document(), th, area.Width), area: area}
	}
	text := a.surface.Text()
	return &view{
		layout:  render.Source(text, a.highlight(text), th, area.Width),
		area:    area,
		escaped: a.surface.Markup(),
		source:  true,
	}
}

// highlight returns the syntax highlight of src, reusing the last result
// while the source is unchanged.
func (a *App) highlight(src string) highlighter.Result {
	if src == a.hlSource && a.hlResult != nil {
		return a.hlResult
	}
	res, err := a.highlighter.Highlight(context.Background(), []byte(src))
	if err != nil {
		logger.Warnf("App: highlighting failed: %v", err)
		return nil
	}
	a.hlSource, a.hlResult = src, res
	return res
}

// currentView returns the last drawn view, laying one out when nothing was
// drawn yet.
func (a *App) currentView() *view {
	if a.view == nil {
		width, height := a.tuiManager.Size()
		a.view = a.buildView(a.documentArea(width, height))
	}
	return a.view
}

// toolbarItems describes the controls for the toolbar row.
func (a *App) toolbarItems() []tui.ToolbarItem {
	controls := a.editor.Toolbar()
	items := make([]tui.ToolbarItem, 0, len(controls))
	source := a.editor.Mode() == editor.SourceMode
	for i, c := range controls {
		items = append(items, tui.ToolbarItem{
			Key:      keyHint(i),
			Label:    c.Label,
			Select:   c.Kind == editor.KindSelect,
			Disabled: source && c.Name != editor.ButtonCode,
		})
	}
	return items
}

// keyHint names the key that activates control i.
func keyHint(i int) string {
	if i < 12 {
		return fmt.Sprintf("F%d", i+1)
	}
	return ""
}

// draw clears the screen and redraws all components.
func (a *App) draw() {
	screen := a.tuiManager.GetScreen()
	width, height := a.tuiManager.Size()
	th := a.themeManager.Current()

	a.updateStatusBarContent()
	a.tuiManager.Clear()

	a.toolbarEnds = tui.DrawToolbar(screen, 0, width, a.toolbarItems(), th)

	area := a.documentArea(width, height)
	a.view = a.buildView(area)
	caret := a.view.layout.Locate(a.view.toLayout(a.surface.Caret()))
	a.scroll = tui.ScrollFor(caret.Row, a.scroll, area.Height)

	start, end := a.surface.Selection()
	sel := tui.Selection{Start: a.view.toLayout(start), End: a.view.toLayout(end)}
	tui.DrawLayout(screen, a.view.layout, area, a.scroll, sel, th)

	logger.DebugTagf("draw", "draw: %dx%d, area %+v, caret %+v, scroll %d", width, height, area, caret, a.scroll)

	if a.prompt != nil {
		col := tui.DrawPrompt(screen, height-1, width, a.prompt.label, a.prompt.value, th)
		screen.ShowCursor(col, height-1)
	} else {
		a.statusBar.Draw(screen, width, height)
		row := caret.Row - a.scroll
		if row >= 0 && row < area.Height && caret.Col < area.Width {
			screen.ShowCursor(area.X+caret.Col, area.Y+row)
		} else {
			screen.HideCursor()
		}
	}
	a.tuiManager.Show()
}

// updateStatusBarContent pushes current editor state to the status bar component.
func (a *App) updateStatusBarContent() {
	name := a.filePath
	if name == "" {
		name = "[No Name]"
	}
	a.statusBar.SetFileInfo(name, a.modified())
	h := a.editor.History()
	a.statusBar.SetHistoryInfo(h.Index(), h.Len())
	a.statusBar.SetEditorMode(a.editor.Mode().String())
}
