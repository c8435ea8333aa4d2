// Package highlighter colours HTML source for the read-only source view and
// reports markup tree-sitter could not make sense of.
package highlighter

import (
	"context" // Required by tree-sitter library
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/bethropolis/wysiii/internal/logger"
	sitter "github.com/smacker/go-tree-sitter"
	tshtml "github.com/smacker/go-tree-sitter/html"
)

//go:embed queries/html/highlights.scm
var htmlHighlightsQuery []byte

// Region is a styled byte range [Start, End) of the source.
type Region struct {
	Start, End int
	Style      string
}

// Result holds regions ordered by start offset.
type Result []Region

// StyleAt returns the style of the innermost region covering off.
func (r Result) StyleAt(off int) (string, bool) {
	// Regions are sorted by Start; the last one starting at or before off
	// that still covers it is the innermost.
	i := sort.Search(len(r), func(i int) bool { return r[i].Start > off })
	for j := i - 1; j >= 0; j-- {
		if r[j].End > off {
			return r[j].Style, true
		}
	}
	return "", false
}

// Problem is a piece of markup the parser had to recover from.
type Problem struct {
	Start, End int
	Kind       string // "error", "missing" or "stray end tag"
}

func (p Problem) String() string {
	return fmt.Sprintf("%s at %d-%d", p.Kind, p.Start, p.End)
}

// Highlighter parses HTML and runs the highlight query. It is not safe for
// concurrent use.
type Highlighter struct {
	parser *sitter.Parser
	lang   *sitter.Language
	query  *sitter.Query
}

// NewHighlighter compiles the embedded query.
func NewHighlighter() (*Highlighter, error) {
	lang := tshtml.GetLanguage()
	query, err := sitter.NewQuery(htmlHighlightsQuery, lang)
	if err != nil {
		return nil, fmt.Errorf("query parse failed: %w", err)
	}
	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	return &Highlighter{parser: parser, lang: lang, query: query}, nil
}

// Close releases the parser and query.
func (h *Highlighter) Close() {
	h.query.Close()
	h.parser.Close()
}

func (h *Highlighter) parse(ctx context.Context, src []byte) (*sitter.Tree, error) {
	tree, err := h.parser.ParseCtx(ctx, nil, src)
	if err != nil {
		logger.Errorf("Tree-sitter parsing error: %v", err)
		return nil, fmt.Errorf("parsing failed: %w", err)
	}
	return tree, nil
}

// Highlight returns the styled regions of src.
func (h *Highlighter) Highlight(ctx context.Context, src []byte) (Result, error) {
	if len(src) == 0 {
		return nil, nil
	}
	tree, err := h.parse(ctx, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(h.query, tree.RootNode())

	var res Result
	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, capture := range match.Captures {
			node := capture.Node
			start, end := int(node.StartByte()), int(node.EndByte())
			if end <= start {
				continue // Zero-width nodes
			}
			res = append(res, Region{
				Start: start,
				End:   end,
				Style: captureNameToStyleName(h.query.CaptureNameForId(capture.Index)),
			})
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].Start < res[j].Start })

	logger.DebugTagf("highlight", "Highlight: %d regions in %d bytes", len(res), len(src))
	return res, nil
}

// Problems lists the spots where src is not well-formed HTML.
func (h *Highlighter) Problems(ctx context.Context, src []byte) ([]Problem, error) {
	if len(src) == 0 {
		return nil, nil
	}
	tree, err := h.parse(ctx, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() && !hasType(root, "erroneous_end_tag") {
		return nil, nil
	}
	var out []Problem
	collectProblems(root, &out)
	return out, nil
}

func collectProblems(n *sitter.Node, out *[]Problem) {
	kind := ""
	switch {
	case n.IsMissing():
		kind = "missing"
	case n.IsError():
		kind = "error"
	case n.Type() == "erroneous_end_tag":
		kind = "stray end tag"
	}
	if kind != "" {
		*out = append(*out, Problem{Start: int(n.StartByte()), End: int(n.EndByte()), Kind: kind})
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		collectProblems(n.Child(i), out)
	}
}

func hasType(n *sitter.Node, typ string) bool {
	if n.Type() == typ {
		return true
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if hasType(n.Child(i), typ) {
			return true
		}
	}
	return false
}

// captureNameToStyleName maps Tree-sitter capture names (like @tag.error)
// to the style names used by the theme system. Themes fall back from
// "tag.error" to "tag" themselves.
func captureNameToStyleName(captureName string) string {
	return strings.TrimPrefix(captureName, "@")
}
