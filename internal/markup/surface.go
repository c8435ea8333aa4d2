package markup

import (
	"html"
	"regexp"
	"sort"
	"strings"

	"github.com/bethropolis/wysiii/internal/content"
	"github.com/bethropolis/wysiii/internal/logger"
)

// Surface is an editable HTML fragment with a selection. Offsets are byte
// offsets into the markup and never fall inside a tag.
//
// Surface is not safe for concurrent use.
type Surface struct {
	doc      string
	anchor   int
	head     int
	editable bool
	focused  bool

	parsed *Document // Cache for doc, nil when stale
}

// NewSurface creates an editable surface holding c with the caret at the end.
func NewSurface(c content.Content) *Surface {
	s := &Surface{editable: true}
	s.SetContent(c)
	return s
}

// Content returns the current markup.
func (s *Surface) Content() content.Content { return content.Deserialize(s.doc) }

// SetContent replaces the markup and puts the caret at the end of the text.
func (s *Surface) SetContent(c content.Content) {
	s.setDoc(c.Serialize())
	end := s.lastStop()
	s.anchor, s.head = end, end
}

// Markup returns the raw markup string.
func (s *Surface) Markup() string { return s.doc }

// Document returns the parsed markup.
func (s *Surface) Document() *Document {
	if s.parsed == nil {
		s.parsed = Parse(s.doc)
	}
	return s.parsed
}

func (s *Surface) setDoc(doc string) {
	s.doc = doc
	s.parsed = nil
}

// Text returns the surface's character data, entities decoded.
func (s *Surface) Text() string { return TextContent(s.doc) }

// SetText replaces the content with t shown literally.
func (s *Surface) SetText(t string) {
	s.SetContent(content.Deserialize(EscapeText(t)))
}

// Editable reports whether typing and formatting may change the content.
func (s *Surface) Editable() bool { return s.editable }

// SetEditable toggles read-only mode.
func (s *Surface) SetEditable(on bool) { s.editable = on }

// Focus gives the surface keyboard focus.
func (s *Surface) Focus() { s.focused = true }

// Blur removes keyboard focus.
func (s *Surface) Blur() { s.focused = false }

// Focused reports whether the surface has focus.
func (s *Surface) Focused() bool { return s.focused }

// Selection returns the ordered selection bounds.
func (s *Surface) Selection() (start, end int) {
	if s.anchor <= s.head {
		return s.anchor, s.head
	}
	return s.head, s.anchor
}

// Caret returns the moving end of the selection.
func (s *Surface) Caret() int { return s.head }

// Collapsed reports whether the selection is empty.
func (s *Surface) Collapsed() bool { return s.anchor == s.head }

// Select sets the selection, clamping into the document and moving offsets
// that fall inside a tag to the tag's end.
func (s *Surface) Select(anchor, head int) {
	s.anchor = s.snap(anchor)
	s.head = s.snap(head)
}

// SetCaret collapses the selection at off.
func (s *Surface) SetCaret(off int) { s.Select(off, off) }

// SelectAll selects from the first to the last caret stop.
func (s *Surface) SelectAll() {
	stops := s.stops()
	if len(stops) == 0 {
		s.Select(0, len(s.doc))
		return
	}
	s.Select(stops[0], stops[len(stops)-1])
}

func (s *Surface) snap(off int) int {
	if off < 0 {
		off = 0
	}
	if off > len(s.doc) {
		off = len(s.doc)
	}
	d := s.Document()
	for _, m := range d.Markup {
		if m.Start < off && off < m.End {
			return m.End
		}
	}
	return off
}

// SelectedText returns the text inside the selection, entities decoded.
func (s *Surface) SelectedText() string {
	start, end := s.Selection()
	if start == end {
		return ""
	}
	var sb strings.Builder
	for _, r := range s.Document().TextRuns() {
		lo, hi := max(r.Start, start), min(r.End, end)
		if lo < hi {
			sb.WriteString(s.doc[lo:hi])
		}
	}
	return html.UnescapeString(sb.String())
}

// stops returns every offset where the caret may rest, ascending.
func (s *Surface) stops() []int {
	d := s.Document()
	seen := map[int]bool{}
	var out []int
	add := func(off int) {
		if !seen[off] {
			seen[off] = true
			out = append(out, off)
		}
	}
	for _, r := range d.TextRuns() {
		add(r.Start)
		for _, u := range Units(s.doc, r) {
			add(u.End)
		}
	}
	for _, el := range d.Elements() {
		if !el.void && el.Inner.Start == el.Inner.End {
			add(el.Inner.Start)
		}
	}
	if len(out) == 0 {
		add(s.snap(len(s.doc)))
	}
	sort.Ints(out)
	return out
}

func (s *Surface) lastStop() int {
	stops := s.stops()
	return stops[len(stops)-1]
}

var tagNameRe = regexp.MustCompile(`^</?\s*([a-zA-Z][a-zA-Z0-9]*)`)

// inlineMarkup reports whether a markup span is a comment or an inline tag.
func (s *Surface) inlineMarkup(m Span) bool {
	text := s.doc[m.Start:m.End]
	if strings.HasPrefix(text, "<!--") {
		return true
	}
	name := tagNameRe.FindStringSubmatch(text)
	if name == nil {
		return false
	}
	tag := strings.ToLower(name[1])
	return !blockTags[tag] && tag != "br" && tag != "img"
}

// sameVisualPlace reports whether everything between a and b is inline markup,
// so the two offsets draw at the same caret position.
func (s *Surface) sameVisualPlace(a, b int) bool {
	if a > b {
		a, b = b, a
	}
	pos := a
	for _, m := range s.Document().Markup {
		if m.End <= a || m.Start >= b {
			continue
		}
		if m.Start > pos || !s.inlineMarkup(m) {
			return false
		}
		pos = m.End
	}
	return pos >= b
}

// step finds the caret stop one visual position away from off.
func (s *Surface) step(off int, forward bool) int {
	stops := s.stops()
	if forward {
		for _, t := range stops {
			if t > off && !s.sameVisualPlace(off, t) {
				return t
			}
		}
		return off
	}
	for i := len(stops) - 1; i >= 0; i-- {
		if t := stops[i]; t < off && !s.sameVisualPlace(t, off) {
			return t
		}
	}
	return off
}

// MoveRight moves the caret one unit forward; extend keeps the anchor.
func (s *Surface) MoveRight(extend bool) {
	if !extend && !s.Collapsed() {
		_, end := s.Selection()
		s.SetCaret(end)
		return
	}
	s.head = s.step(s.head, true)
	if !extend {
		s.anchor = s.head
	}
}

// MoveLeft moves the caret one unit backward; extend keeps the anchor.
func (s *Surface) MoveLeft(extend bool) {
	if !extend && !s.Collapsed() {
		start, _ := s.Selection()
		s.SetCaret(start)
		return
	}
	s.head = s.step(s.head, false)
	if !extend {
		s.anchor = s.head
	}
}

// MoveToStart moves the caret to the first stop.
func (s *Surface) MoveToStart(extend bool) {
	s.head = s.stops()[0]
	if !extend {
		s.anchor = s.head
	}
}

// MoveToEnd moves the caret to the last stop.
func (s *Surface) MoveToEnd(extend bool) {
	s.head = s.lastStop()
	if !extend {
		s.anchor = s.head
	}
}

// InsertText replaces the selection with literal text. It reports false on
// a read-only surface.
func (s *Surface) InsertText(t string) bool {
	return s.InsertMarkup(EscapeText(t))
}

// InsertMarkup replaces the selection with raw markup and leaves the caret
// after it.
func (s *Surface) InsertMarkup(m string) bool {
	if !s.editable {
		return false
	}
	at := s.deleteSelection()
	s.setDoc(s.doc[:at] + m + s.doc[at:])
	s.SetCaret(at + len(m))
	return true
}

// deleteSelection removes the selected text, keeping every tag, and returns
// the collapsed caret.
func (s *Surface) deleteSelection() int {
	start, end := s.Selection()
	if start == end {
		return start
	}
	var sb strings.Builder
	pos := 0
	for _, r := range s.Document().TextRuns() {
		lo, hi := max(r.Start, start), min(r.End, end)
		if lo >= hi {
			continue
		}
		sb.WriteString(s.doc[pos:lo])
		pos = hi
	}
	sb.WriteString(s.doc[pos:])
	s.setDoc(sb.String())
	s.anchor, s.head = start, start
	return start
}

// DeleteBackward removes the selection, or the unit before the caret. At the
// start of a block the block is joined onto the previous one.
func (s *Surface) DeleteBackward() bool {
	if !s.editable {
		return false
	}
	if !s.Collapsed() {
		s.deleteSelection()
		return true
	}
	caret := s.head
	if u, ok := s.unitBefore(caret); ok {
		s.setDoc(s.doc[:u.Start] + s.doc[u.End:])
		s.SetCaret(u.Start)
		return true
	}
	return s.joinWithPrevious(caret)
}

// DeleteForward removes the selection, or the unit after the caret.
func (s *Surface) DeleteForward() bool {
	if !s.editable {
		return false
	}
	if !s.Collapsed() {
		s.deleteSelection()
		return true
	}
	caret := s.head
	if u, ok := s.unitAfter(caret); ok {
		s.setDoc(s.doc[:u.Start] + s.doc[u.End:])
		s.SetCaret(u.Start)
		return true
	}
	next := s.step(caret, true)
	if next == caret {
		return false
	}
	return s.joinWithPrevious(next)
}

// unitBefore finds the text unit ending at off, looking through inline tags.
func (s *Surface) unitBefore(off int) (Span, bool) {
	d := s.Document()
	p := off
	for i := len(d.Markup) - 1; i >= 0; i-- {
		if m := d.Markup[i]; m.End == p && s.inlineMarkup(m) {
			p = m.Start
		}
	}
	for _, r := range d.TextRuns() {
		if r.Start < p && p <= r.End {
			for _, u := range Units(s.doc, r) {
				if u.End == p {
					return u.Span, true
				}
			}
		}
	}
	return Span{}, false
}

// unitAfter finds the text unit starting at off, looking through inline tags.
func (s *Surface) unitAfter(off int) (Span, bool) {
	d := s.Document()
	p := off
	for _, m := range d.Markup {
		if m.Start == p && s.inlineMarkup(m) {
			p = m.End
		}
	}
	for _, r := range d.TextRuns() {
		if r.Start <= p && p < r.End {
			for _, u := range Units(s.doc, r) {
				if u.Start == p {
					return u.Span, true
				}
			}
		}
	}
	return Span{}, false
}

// joinWithPrevious merges the block whose content starts at off into the
// block before it.
func (s *Surface) joinWithPrevious(off int) bool {
	d := s.Document()
	b := d.BlockAt(off)
	if b == nil || b.Inner.Start != off && !s.sameVisualPlace(b.Inner.Start, off) {
		return false
	}
	siblings := d.Roots
	if b.Parent != nil {
		siblings = b.Parent.Children
	}
	var prev *Element
	for _, el := range siblings {
		if el == b {
			break
		}
		prev = el
	}
	if prev == nil || !prev.Block() || prev.void || !textBlocks[prev.Tag] {
		return false
	}
	joined := s.doc[:prev.Inner.End] +
		s.doc[b.Inner.Start:b.Inner.End] +
		s.doc[prev.Inner.End:prev.Outer.End] +
		s.doc[b.Outer.End:]
	logger.DebugTagf("markup", "Surface: joined <%s> into <%s>", b.Tag, prev.Tag)
	s.setDoc(joined)
	s.SetCaret(prev.Inner.End)
	return true
}

// textBlocks are the blocks that hold inline content directly.
var textBlocks = map[string]bool{
	"p": true, "div": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "blockquote": true, "pre": true, "li": true,
}
