// internal/tui/drawing.go
package tui

import (
	"strings"

	"github.com/bethropolis/wysiii/internal/render"
	"github.com/bethropolis/wysiii/internal/statusbar"
	"github.com/bethropolis/wysiii/internal/theme"
	"github.com/gdamore/tcell/v2"
)

// Rect is a screen area.
type Rect struct {
	X, Y, Width, Height int
}

// Selection is a half-open range of source offsets drawn highlighted.
type Selection struct {
	Start, End int
}

func (s Selection) holds(off int) bool {
	return off >= 0 && s.Start < s.End && off >= s.Start && off < s.End
}

// ScrollFor returns the first visible row that keeps row on screen.
func ScrollFor(row, scroll, height int) int {
	if height <= 0 {
		return 0
	}
	if row < scroll {
		return row
	}
	if row >= scroll+height {
		return row - height + 1
	}
	return scroll
}

// DrawLayout paints the rows of l starting at scroll into area, inverting
// cells inside sel.
func DrawLayout(s tcell.Screen, l *render.Layout, area Rect, scroll int, sel Selection, th *theme.Theme) {
	bg := th.GetStyle("Default")
	selStyle := th.GetStyle("Selection")

	for y := 0; y < area.Height; y++ {
		for x := 0; x < area.Width; x++ {
			s.SetContent(area.X+x, area.Y+y, ' ', nil, bg)
		}
		row := scroll + y
		if row < 0 || row >= len(l.Lines) {
			continue
		}
		x := 0
		for _, c := range l.Lines[row].Cells {
			if x+c.Width > area.Width {
				break
			}
			style := c.Style
			if sel.holds(c.Offset) {
				style = selStyle
			}
			if strings.TrimSpace(c.Text) == "" {
				// Expanded tabs and spaces.
				for i := 0; i < c.Width; i++ {
					s.SetContent(area.X+x+i, area.Y+y, ' ', nil, style)
				}
			} else {
				runes := []rune(c.Text)
				s.SetContent(area.X+x, area.Y+y, runes[0], runes[1:], style)
			}
			x += c.Width
		}
	}
}

// ToolbarItem is one entry on the toolbar row.
type ToolbarItem struct {
	Key      string // Activation hint, e.g. "F1"
	Label    string
	Select   bool
	Disabled bool
}

// DrawToolbar paints items on row y and returns the end column of each
// drawn item, for mouse hit testing. Items that do not fit are dropped.
func DrawToolbar(s tcell.Screen, y, width int, items []ToolbarItem, th *theme.Theme) []int {
	bar := th.GetStyle("Toolbar")
	for x := 0; x < width; x++ {
		s.SetContent(x, y, ' ', nil, bar)
	}

	var ends []int
	x := 0
	for _, it := range items {
		label := it.Label
		style := th.GetStyle("ToolbarButton")
		if it.Select {
			label += " ▾"
			style = th.GetStyle("ToolbarSelect")
		}
		if it.Disabled {
			style = th.GetStyle("ToolbarDisabled")
		}
		if x > 0 {
			x += statusbar.DrawText(s, x, y, width-x, " ", bar)
		}
		if x >= width {
			break
		}
		x += statusbar.DrawText(s, x, y, width-x, it.Key+" ", th.GetStyle("ToolbarKey"))
		x += statusbar.DrawText(s, x, y, width-x, label, style)
		ends = append(ends, x)
	}
	return ends
}

// HitToolbar returns the index of the item drawn under column x.
func HitToolbar(ends []int, x int) (int, bool) {
	for i, end := range ends {
		if x < end {
			return i, true
		}
	}
	return 0, false
}

// DrawPrompt paints a prompt line at row y and returns the cursor column.
func DrawPrompt(s tcell.Screen, y, width int, label, value string, th *theme.Theme) int {
	style := th.GetStyle("PromptInput")
	for x := 0; x < width; x++ {
		s.SetContent(x, y, ' ', nil, style)
	}
	x := statusbar.DrawText(s, 0, y, width, label+" ", th.GetStyle("Prompt"))
	x += statusbar.DrawText(s, x, y, width-x, value, style)
	return x
}
