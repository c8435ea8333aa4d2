// Package markup is the reference editing surface and formatting executor.
// It keeps the document as an HTML fragment and uses tree-sitter to find
// tags, text runs and the element enclosing a caret.
package markup

import (
	"context"
	"html"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	tshtml "github.com/smacker/go-tree-sitter/html"

	"github.com/bethropolis/wysiii/internal/logger"
)

// Span is a half-open byte range [Start, End).
type Span struct {
	Start, End int
}

// Element is one HTML element found in a document.
type Element struct {
	Tag      string // Lower-cased tag name
	Outer    Span   // Whole element, tags included
	Inner    Span   // Content between start and end tag
	StartTag string // Start tag source, e.g. `<a href="x">`
	Parent   *Element
	Children []*Element

	void bool // No content and no end tag
}

// Block reports whether the element starts a new line in layout.
func (e *Element) Block() bool { return blockTags[e.Tag] }

// Void reports whether the element has neither content nor an end tag.
func (e *Element) Void() bool { return e.void }

var blockTags = map[string]bool{
	"p": true, "div": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "blockquote": true, "pre": true, "li": true,
	"ul": true, "ol": true, "table": true, "tbody": true, "thead": true,
	"tr": true, "td": true, "th": true, "hr": true,
}

// Document is the parsed view of a markup string.
type Document struct {
	Source   string
	Roots    []*Element
	Markup   []Span // Tags, comments and doctypes, in order
	elements []*Element
}

// markupNodeTypes are the tree-sitter html node kinds that are not text.
var markupNodeTypes = map[string]bool{
	"start_tag":         true,
	"end_tag":           true,
	"self_closing_tag":  true,
	"erroneous_end_tag": true,
	"comment":           true,
	"doctype":           true,
}

// Parse builds a Document from src. Parsing never fails on malformed
// markup; tree-sitter recovers and whatever it recognises is used.
func Parse(src string) *Document {
	doc := &Document{Source: src}
	if src == "" {
		return doc
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(tshtml.GetLanguage())

	b := []byte(src)
	tree, err := parser.ParseCtx(context.Background(), nil, b)
	if err != nil {
		logger.Warnf("markup: parse failed: %v", err)
		doc.Markup = nil
		return doc
	}
	defer tree.Close()

	doc.walk(tree.RootNode(), b, nil)
	sort.Slice(doc.Markup, func(i, j int) bool { return doc.Markup[i].Start < doc.Markup[j].Start })
	return doc
}

func (d *Document) walk(n *sitter.Node, src []byte, parent *Element) {
	typ := n.Type()
	if markupNodeTypes[typ] {
		if n.EndByte() > n.StartByte() {
			d.Markup = append(d.Markup, Span{int(n.StartByte()), int(n.EndByte())})
		}
		return
	}

	if typ == "element" || typ == "script_element" || typ == "style_element" {
		el := &Element{
			Outer:  Span{int(n.StartByte()), int(n.EndByte())},
			Inner:  Span{int(n.StartByte()), int(n.EndByte())},
			Parent: parent,
		}
		hasEnd := false
		for i := 0; i < int(n.ChildCount()); i++ {
			c := n.Child(i)
			switch c.Type() {
			case "start_tag", "self_closing_tag":
				el.StartTag = c.Content(src)
				el.Inner.Start = int(c.EndByte())
				el.Inner.End = int(c.EndByte())
				el.Tag = tagName(c, src)
			case "end_tag":
				el.Inner.End = int(c.StartByte())
				hasEnd = true
			default:
				if el.Inner.End < int(c.EndByte()) {
					el.Inner.End = int(c.EndByte())
				}
			}
		}
		el.void = !hasEnd && el.Inner.Start == el.Outer.End
		if parent != nil {
			parent.Children = append(parent.Children, el)
		} else {
			d.Roots = append(d.Roots, el)
		}
		d.elements = append(d.elements, el)
		parent = el
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		d.walk(n.Child(i), src, parent)
	}
}

func tagName(tag *sitter.Node, src []byte) string {
	for i := 0; i < int(tag.NamedChildCount()); i++ {
		c := tag.NamedChild(i)
		if c.Type() == "tag_name" {
			return strings.ToLower(c.Content(src))
		}
	}
	return ""
}

// TextRuns returns the spans of src that are character data, in order.
// Empty runs between adjacent tags are not reported.
func (d *Document) TextRuns() []Span {
	var runs []Span
	pos := 0
	for _, m := range d.Markup {
		if m.Start > pos {
			runs = append(runs, Span{pos, m.Start})
		}
		if m.End > pos {
			pos = m.End
		}
	}
	if pos < len(d.Source) {
		runs = append(runs, Span{pos, len(d.Source)})
	}
	return runs
}

// InMarkup reports whether off falls strictly inside a tag or comment, where
// no caret may stand.
func (d *Document) InMarkup(off int) bool {
	i := sort.Search(len(d.Markup), func(i int) bool { return d.Markup[i].End > off })
	return i < len(d.Markup) && d.Markup[i].Start < off && off < d.Markup[i].End
}

// Ancestors returns the elements whose content holds off, innermost first.
func (d *Document) Ancestors(off int) []*Element {
	var out []*Element
	level := d.Roots
	for {
		var next *Element
		for _, el := range level {
			if el.holds(off) {
				next = el
				break
			}
		}
		if next == nil {
			break
		}
		out = append([]*Element{next}, out...)
		level = next.Children
	}
	return out
}

// holds reports whether a caret at off sits inside the element's content.
// Void elements such as <br> hold nothing.
func (e *Element) holds(off int) bool {
	if e.void {
		return false
	}
	return off >= e.Inner.Start && off <= e.Inner.End
}

// BlockAt returns the innermost block holding inline content around off,
// such as a paragraph, heading or list item.
func (d *Document) BlockAt(off int) *Element {
	for _, el := range d.Ancestors(off) {
		if textBlocks[el.Tag] {
			return el
		}
	}
	return nil
}

// Elements returns every element in document order.
func (d *Document) Elements() []*Element { return d.elements }

// TextContent returns the character data of src with markup removed and
// entities decoded.
func TextContent(src string) string {
	d := Parse(src)
	var sb strings.Builder
	for _, r := range d.TextRuns() {
		sb.WriteString(src[r.Start:r.End])
	}
	return html.UnescapeString(sb.String())
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// EscapeText turns literal text into character data that reads back as the
// same text.
func EscapeText(s string) string { return textEscaper.Replace(s) }

var attrEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;", "<", "&lt;", ">", "&gt;")

func escapeAttr(s string) string { return attrEscaper.Replace(s) }
