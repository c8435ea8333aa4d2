// Package render lays documents out as terminal cells: the rich view of the
// markup and the highlighted source view.
package render

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/bethropolis/wysiii/internal/highlighter"
	"github.com/bethropolis/wysiii/internal/markup"
	"github.com/bethropolis/wysiii/internal/theme"
)

// Cell is one drawn grapheme.
type Cell struct {
	Text   string
	Width  int
	Style  tcell.Style
	Offset int // Source offset of the unit; -1 for decoration
}

// Line is one screen row of a layout.
type Line struct {
	Cells []Cell
}

// Width returns the number of screen columns the line uses.
func (l Line) Width() int {
	w := 0
	for _, c := range l.Cells {
		w += c.Width
	}
	return w
}

func (l Line) String() string {
	var sb strings.Builder
	for _, c := range l.Cells {
		sb.WriteString(c.Text)
	}
	return sb.String()
}

// Pos is a row and column in a layout.
type Pos struct {
	Row, Col int
}

// Layout is a laid out document.
type Layout struct {
	Lines   []Line
	anchors map[int]Pos
	offsets []int // Sorted keys of anchors
}

// Locate returns the screen position of a caret at off: the exact spot if
// the layout recorded one, else the closest recorded spot before it.
func (l *Layout) Locate(off int) Pos {
	if p, ok := l.anchors[off]; ok {
		return p
	}
	i := sort.SearchInts(l.offsets, off)
	if i == 0 {
		return Pos{}
	}
	return l.anchors[l.offsets[i-1]]
}

// OffsetAt returns the caret offset closest to a screen position, for mouse
// clicks and vertical movement.
func (l *Layout) OffsetAt(p Pos) (int, bool) {
	if len(l.offsets) == 0 {
		return 0, false
	}
	best, bestDist := -1, 0
	for _, off := range l.offsets {
		a := l.anchors[off]
		dist := abs(a.Row-p.Row)*10000 + abs(a.Col-p.Col)
		if best < 0 || dist < bestDist {
			best, bestDist = off, dist
		}
	}
	return best, true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (l *Layout) finish() {
	l.offsets = make([]int, 0, len(l.anchors))
	for off := range l.anchors {
		l.offsets = append(l.offsets, off)
	}
	sort.Ints(l.offsets)
}

// look is the set of attributes accumulated from enclosing elements.
type look struct {
	bold, italic, underline, strike bool
	fg                              tcell.Color
}

func (k look) style(base tcell.Style) tcell.Style {
	s := base.Bold(k.bold).Italic(k.italic).Underline(k.underline).StrikeThrough(k.strike)
	if k.fg != tcell.ColorDefault {
		s = s.Foreground(k.fg)
	}
	return s
}

var (
	colorAttr = regexp.MustCompile(`(?i)\bcolor\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s>]+))`)
	srcAttr   = regexp.MustCompile(`(?i)\bsrc\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s>]+))`)
)

func attrValue(re *regexp.Regexp, tag string) string {
	m := re.FindStringSubmatch(tag)
	if m == nil {
		return ""
	}
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}

// layoutBlocks start a new row; table cells share a row.
var layoutBlocks = map[string]bool{
	"p": true, "div": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "blockquote": true, "pre": true, "li": true,
	"ul": true, "ol": true, "table": true, "tbody": true, "thead": true,
	"tr": true,
}

type builder struct {
	doc   *markup.Document
	th    *theme.Theme
	base  tcell.Style
	width int
	runs  []markup.Span

	out      *Layout
	open     bool     // Current row accepts content
	prefixes []string // Indentation stack
	marker   string   // List marker for the next row
}

// Rich lays out doc as formatted text wrapped at width columns.
func Rich(doc *markup.Document, th *theme.Theme, width int) *Layout {
	if width < 1 {
		width = 1
	}
	b := &builder{
		doc:   doc,
		th:    th,
		base:  th.GetStyle("Default"),
		width: width,
		runs:  doc.TextRuns(),
		out:   &Layout{anchors: make(map[int]Pos)},
	}
	b.children(doc.Roots, markup.Span{Start: 0, End: len(doc.Source)}, look{fg: tcell.ColorDefault})
	if len(b.out.Lines) == 0 {
		b.newRow()
		b.anchor(0)
	}
	b.out.finish()
	return b.out
}

func (b *builder) children(kids []*markup.Element, span markup.Span, lk look) {
	pos := span.Start
	for _, el := range kids {
		b.text(pos, el.Outer.Start, lk)
		b.element(el, lk)
		pos = el.Outer.End
	}
	b.text(pos, span.End, lk)
}

func (b *builder) element(el *markup.Element, lk look) {
	switch el.Tag {
	case "script", "style":
		return
	case "br":
		b.ensureRow()
		b.anchor(el.Outer.Start)
		b.open = false
		b.newRow()
		b.anchor(el.Outer.End)
		return
	case "hr":
		b.open = false
		b.newRow()
		b.anchor(el.Outer.Start)
		b.decorate(strings.Repeat("─", max(1, b.width-b.row().Width())), b.th.GetStyle("rich.marker"))
		b.open = false
		return
	case "img":
		label := "[image]"
		if src := attrValue(srcAttr, el.StartTag); src != "" {
			label = "[image: " + src + "]"
		}
		b.ensureRow()
		b.anchor(el.Outer.Start)
		b.decorate(label, b.th.GetStyle("rich.img"))
		b.anchor(el.Outer.End)
		return
	case "td", "th":
		if b.open && b.row().Width() > b.indentWidth() {
			b.decorate(" │ ", b.th.GetStyle("rich.marker"))
		}
	}

	inner := b.restyle(lk, el)
	block := layoutBlocks[el.Tag]
	if !block {
		b.children(el.Children, el.Inner, inner)
		return
	}

	b.open = false
	pushed := 0
	switch el.Tag {
	case "ul", "ol":
		b.prefixes = append(b.prefixes, "")
		pushed++
	case "li":
		marker := "• "
		if el.Parent != nil && el.Parent.Tag == "ol" {
			marker = fmt.Sprintf("%d. ", itemNumber(el))
		}
		b.marker = marker
		b.prefixes = append(b.prefixes, strings.Repeat(" ", uniseg.StringWidth(marker)))
		pushed++
	case "blockquote":
		b.prefixes = append(b.prefixes, "│ ")
		pushed++
	}

	rows := len(b.out.Lines)
	b.children(el.Children, el.Inner, inner)
	if len(b.out.Lines) == rows && !b.open && !el.Void() && el.Tag != "ul" && el.Tag != "ol" {
		// Empty block: still gets a row the caret can stand on.
		b.newRow()
		b.anchor(el.Inner.Start)
	}
	b.prefixes = b.prefixes[:len(b.prefixes)-pushed]
	b.marker = ""
	b.open = false
}

func itemNumber(li *markup.Element) int {
	n := 0
	for _, sib := range li.Parent.Children {
		if sib.Tag == "li" {
			n++
		}
		if sib == li {
			break
		}
	}
	return n
}

func (b *builder) restyle(lk look, el *markup.Element) look {
	name := "rich." + el.Tag
	if b.th.Has(name) {
		fg, _, attrs := b.th.Styles[name].Decompose()
		baseFg, _, _ := b.base.Decompose()
		lk.bold = lk.bold || attrs&tcell.AttrBold != 0
		lk.italic = lk.italic || attrs&tcell.AttrItalic != 0
		lk.underline = lk.underline || attrs&tcell.AttrUnderline != 0
		lk.strike = lk.strike || attrs&tcell.AttrStrikeThrough != 0
		if fg != baseFg {
			lk.fg = fg
		}
	}
	if el.Tag == "font" {
		if c := attrValue(colorAttr, el.StartTag); c != "" {
			if col, err := theme.ParseColor(c); err == nil {
				lk.fg = col
			}
		}
	}
	return lk
}

// text emits the character data between from and to.
func (b *builder) text(from, to int, lk look) {
	if from >= to {
		return
	}
	style := lk.style(b.base)
	for _, run := range b.runs {
		if run.End <= from || run.Start >= to {
			continue
		}
		sub := markup.Span{Start: max(run.Start, from), End: min(run.End, to)}
		raw := b.doc.Source[sub.Start:sub.End]
		if strings.TrimSpace(raw) == "" && strings.ContainsAny(raw, "\n\t") {
			continue // Formatting whitespace between tags
		}
		for _, u := range markup.Units(b.doc.Source, sub) {
			text, width := u.Text, u.Width
			if text == "\n" || text == "\t" || text == "\r\n" {
				text, width = " ", 1
			}
			b.ensureRow()
			if b.row().Width()+width > b.width && b.row().Width() > b.indentWidth() {
				b.newRow() // Wrap
			}
			b.anchor(u.Start)
			r := b.row()
			r.Cells = append(r.Cells, Cell{Text: text, Width: width, Style: style, Offset: u.Start})
			b.anchorIfUnset(u.End)
		}
	}
}

func (b *builder) row() *Line { return &b.out.Lines[len(b.out.Lines)-1] }

func (b *builder) ensureRow() {
	if !b.open {
		b.newRow()
	}
}

func (b *builder) newRow() {
	b.out.Lines = append(b.out.Lines, Line{})
	b.open = true
	prefixStyle := b.th.GetStyle("rich.marker")
	for i, p := range b.prefixes {
		if i == len(b.prefixes)-1 && b.marker != "" {
			p = b.marker
			b.marker = ""
		}
		b.decorate(p, prefixStyle)
	}
}

func (b *builder) indentWidth() int {
	w := 0
	for _, p := range b.prefixes {
		w += uniseg.StringWidth(p)
	}
	return w
}

func (b *builder) decorate(s string, style tcell.Style) {
	r := b.row()
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		r.Cells = append(r.Cells, Cell{Text: gr.Str(), Width: gr.Width(), Style: style, Offset: -1})
	}
}

func (b *builder) anchor(off int) {
	b.out.anchors[off] = Pos{Row: len(b.out.Lines) - 1, Col: b.row().Width()}
}

func (b *builder) anchorIfUnset(off int) {
	if _, ok := b.out.anchors[off]; !ok {
		b.anchor(off)
	}
}

// Source lays out literal text, one row per line, wrapped at width and
// coloured from hl.
func Source(text string, hl highlighter.Result, th *theme.Theme, width int) *Layout {
	if width < 1 {
		width = 1
	}
	out := &Layout{anchors: make(map[int]Pos)}
	plain := th.GetStyle("SourceView")
	out.Lines = append(out.Lines, Line{})

	state := -1
	rest := text
	pos := 0
	for len(rest) > 0 {
		var cluster string
		var w int
		cluster, rest, w, state = uniseg.FirstGraphemeClusterInString(rest, state)
		off := pos
		pos += len(cluster)

		row := &out.Lines[len(out.Lines)-1]
		if cluster == "\n" || cluster == "\r\n" {
			out.anchors[off] = Pos{Row: len(out.Lines) - 1, Col: row.Width()}
			out.Lines = append(out.Lines, Line{})
			continue
		}
		if cluster == "\t" {
			cluster, w = "    ", 4
		}
		if row.Width()+w > width && len(row.Cells) > 0 {
			out.Lines = append(out.Lines, Line{})
			row = &out.Lines[len(out.Lines)-1]
		}
		style := plain
		if name, ok := hl.StyleAt(off); ok {
			style = th.GetStyle(name)
		}
		out.anchors[off] = Pos{Row: len(out.Lines) - 1, Col: row.Width()}
		row.Cells = append(row.Cells, Cell{Text: cluster, Width: w, Style: style, Offset: off})
	}
	out.anchors[len(text)] = Pos{Row: len(out.Lines) - 1, Col: out.Lines[len(out.Lines)-1].Width()}
	out.finish()
	return out
}
