package markup

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bethropolis/wysiii/internal/logger"
)

var (
	// ErrUnsupported is returned for command names the executor does not know.
	ErrUnsupported = errors.New("unsupported command")

	// ErrReadOnly is returned when the surface is not editable.
	ErrReadOnly = errors.New("surface is read-only")
)

// Command names understood by Executor.
const (
	CmdBold                = "bold"
	CmdItalic              = "italic"
	CmdUnderline           = "underline"
	CmdStrikeThrough       = "strikeThrough"
	CmdCreateLink          = "createLink"
	CmdFontSize            = "fontSize"
	CmdForeColor           = "foreColor"
	CmdFormatBlock         = "formatBlock"
	CmdInsertHTML          = "insertHTML"
	CmdInsertText          = "insertText"
	CmdInsertImage         = "insertImage"
	CmdInsertParagraph     = "insertParagraph"
	CmdInsertUnorderedList = "insertUnorderedList"
	CmdInsertOrderedList   = "insertOrderedList"
)

// blockFormats are the values formatBlock accepts.
var blockFormats = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "blockquote": true, "pre": true, "div": true,
}

// Executor applies formatting commands to a Surface's selection.
type Executor struct {
	s *Surface
}

// NewExecutor creates an executor bound to s.
func NewExecutor(s *Surface) *Executor {
	return &Executor{s: s}
}

// Apply runs command name with value. Inline commands with an empty
// selection change nothing and succeed.
func (e *Executor) Apply(name, value string) error {
	if !e.s.Editable() {
		return fmt.Errorf("%s: %w", name, ErrReadOnly)
	}

	switch name {
	case CmdBold:
		return e.wrap("<b>", "</b>")
	case CmdItalic:
		return e.wrap("<i>", "</i>")
	case CmdUnderline:
		return e.wrap("<u>", "</u>")
	case CmdStrikeThrough:
		return e.wrap("<s>", "</s>")
	case CmdCreateLink:
		if value == "" {
			return nil
		}
		return e.wrap(`<a href="`+escapeAttr(value)+`">`, "</a>")
	case CmdFontSize:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 1 || n > 7 {
			return fmt.Errorf("fontSize %q: %w", value, ErrUnsupported)
		}
		return e.wrap(`<font size="`+strconv.Itoa(n)+`">`, "</font>")
	case CmdForeColor:
		if value == "" {
			return nil
		}
		return e.wrap(`<font color="`+escapeAttr(value)+`">`, "</font>")
	case CmdFormatBlock:
		return e.formatBlock(value)
	case CmdInsertHTML:
		if value != "" {
			e.s.InsertMarkup(value)
		}
		return nil
	case CmdInsertText:
		if value != "" {
			e.s.InsertText(value)
		}
		return nil
	case CmdInsertImage:
		if value != "" {
			e.s.InsertMarkup(`<img src="` + escapeAttr(value) + `">`)
		}
		return nil
	case CmdInsertParagraph:
		e.insertParagraph()
		return nil
	case CmdInsertUnorderedList:
		e.toggleList("ul")
		return nil
	case CmdInsertOrderedList:
		e.toggleList("ol")
		return nil
	default:
		return fmt.Errorf("%q: %w", name, ErrUnsupported)
	}
}

// wrap surrounds each selected piece of text with open/close. Selecting the
// whole content of an identical wrapper removes it instead.
func (e *Executor) wrap(open, close string) error {
	s := e.s
	start, end := s.Selection()
	if start == end {
		logger.DebugTagf("markup", "Executor: empty selection, %s ignored", open)
		return nil
	}
	doc := s.doc

	if start >= len(open) && end+len(close) <= len(doc) &&
		doc[start-len(open):start] == open && doc[end:end+len(close)] == close {
		s.setDoc(doc[:start-len(open)] + doc[start:end] + doc[end+len(close):])
		s.Select(start-len(open), end-len(open))
		return nil
	}

	var sb strings.Builder
	pos := 0
	newStart, newEnd := -1, -1
	for _, r := range s.Document().TextRuns() {
		lo, hi := max(r.Start, start), min(r.End, end)
		if lo >= hi {
			continue
		}
		sb.WriteString(doc[pos:lo])
		sb.WriteString(open)
		if newStart < 0 {
			newStart = sb.Len()
		}
		sb.WriteString(doc[lo:hi])
		newEnd = sb.Len()
		sb.WriteString(close)
		pos = hi
	}
	if newStart < 0 {
		return nil // Only tags selected
	}
	sb.WriteString(doc[pos:])
	s.setDoc(sb.String())
	s.Select(newStart, newEnd)
	return nil
}

// replaceOuter swaps el's whole markup for repl and keeps the caret at the
// same place relative to the element content, which now starts at innerAt.
func (e *Executor) replaceOuter(el *Element, repl string, innerAt int) {
	s := e.s
	start, end := s.Selection()
	shift := func(off int) int {
		switch {
		case off >= el.Inner.Start && off <= el.Inner.End:
			return el.Outer.Start + innerAt + (off - el.Inner.Start)
		case off >= el.Outer.End:
			return off + len(repl) - (el.Outer.End - el.Outer.Start)
		default:
			return off
		}
	}
	s.setDoc(s.doc[:el.Outer.Start] + repl + s.doc[el.Outer.End:])
	s.Select(shift(start), shift(end))
}

// inlineRange returns the stretch of inline content around off that is not
// inside any block.
func (e *Executor) inlineRange(off int) (int, int) {
	s := e.s
	lo, hi := 0, len(s.doc)
	for _, m := range s.Document().Markup {
		if s.inlineMarkup(m) {
			continue
		}
		if m.End <= off && m.End > lo {
			lo = m.End
		}
		if m.Start >= off && m.Start < hi {
			hi = m.Start
		}
	}
	return lo, hi
}

// wrapInline wraps the inline stretch around the caret in <tag>…</tag>.
func (e *Executor) wrapInline(open, close string) {
	s := e.s
	start, end := s.Selection()
	lo, hi := e.inlineRange(start)
	s.setDoc(s.doc[:lo] + open + s.doc[lo:hi] + close + s.doc[hi:])
	s.Select(start+len(open), end+len(open))
}

func (e *Executor) formatBlock(value string) error {
	tag := strings.Trim(strings.ToLower(strings.TrimSpace(value)), "<>")
	if !blockFormats[tag] {
		return fmt.Errorf("formatBlock %q: %w", value, ErrUnsupported)
	}
	open, close := "<"+tag+">", "</"+tag+">"

	start, _ := e.s.Selection()
	b := e.s.Document().BlockAt(start)
	switch {
	case b == nil:
		e.wrapInline(open, close)
	case b.Tag == "li":
		inner := e.s.doc[b.Inner.Start:b.Inner.End]
		repl := b.StartTag + open + inner + close + "</li>"
		e.replaceOuter(b, repl, len(b.StartTag)+len(open))
	default:
		inner := e.s.doc[b.Inner.Start:b.Inner.End]
		e.replaceOuter(b, open+inner+close, len(open))
	}
	return nil
}

func (e *Executor) toggleList(want string) {
	s := e.s
	start, _ := s.Selection()
	d := s.Document()
	b := d.BlockAt(start)

	if b != nil && b.Tag == "li" && b.Parent != nil && (b.Parent.Tag == "ul" || b.Parent.Tag == "ol") {
		list := b.Parent
		if list.Tag != want {
			inner := s.doc[list.Inner.Start:list.Inner.End]
			e.replaceOuter(list, "<"+want+">"+inner+"</"+want+">", len(want)+2)
			return
		}
		// Same list type again: turn every item back into a paragraph.
		var sb strings.Builder
		caret := -1
		for _, li := range list.Children {
			if li.Tag != "li" {
				continue
			}
			sb.WriteString("<p>")
			if li == b {
				caret = list.Outer.Start + sb.Len() + (start - li.Inner.Start)
			}
			sb.WriteString(s.doc[li.Inner.Start:li.Inner.End])
			sb.WriteString("</p>")
		}
		s.setDoc(s.doc[:list.Outer.Start] + sb.String() + s.doc[list.Outer.End:])
		if caret >= 0 {
			s.SetCaret(caret)
		}
		return
	}

	open, close := "<"+want+"><li>", "</li></"+want+">"
	if b == nil {
		e.wrapInline(open, close)
		return
	}
	inner := s.doc[b.Inner.Start:b.Inner.End]
	e.replaceOuter(b, open+inner+close, len(open))
}

func (e *Executor) insertParagraph() {
	s := e.s
	at := s.deleteSelection()
	anc := s.Document().Ancestors(at)

	k := -1
	for i, el := range anc {
		if textBlocks[el.Tag] {
			k = i
			break
		}
	}
	if k < 0 {
		e.wrapInline("<p>", "</p>")
		at = s.Caret()
		anc = s.Document().Ancestors(at)
		for i, el := range anc {
			if el.Tag == "p" {
				k = i
				break
			}
		}
		if k < 0 {
			return
		}
	}
	block := anc[k]
	inline := anc[:k]

	var closing, opening strings.Builder
	for _, el := range inline {
		closing.WriteString("</" + el.Tag + ">")
	}
	closing.WriteString("</" + block.Tag + ">")

	// Enter at the end of a heading starts a plain paragraph. Everything
	// between the caret and the heading's end is inline closing markup,
	// which closing already covers.
	if isHeading(block.Tag) && s.sameVisualPlace(at, block.Inner.End) {
		head := s.doc[:at] + closing.String() + "<p>"
		s.setDoc(head + "</p>" + s.doc[block.Outer.End:])
		s.SetCaret(len(head))
		return
	}

	nextTag := block.StartTag
	if nextTag == "" {
		nextTag = "<" + block.Tag + ">"
	}
	opening.WriteString(nextTag)
	for i := len(inline) - 1; i >= 0; i-- {
		tag := inline[i].StartTag
		if tag == "" {
			tag = "<" + inline[i].Tag + ">"
		}
		opening.WriteString(tag)
	}

	split := closing.String() + opening.String()
	s.setDoc(s.doc[:at] + split + s.doc[at:])
	s.SetCaret(at + len(split))
}

func isHeading(tag string) bool {
	return len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6'
}
