package render

import (
	"context"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/wysiii/internal/highlighter"
	"github.com/bethropolis/wysiii/internal/markup"
	"github.com/bethropolis/wysiii/internal/theme"
)

func rows(l *Layout) []string {
	out := make([]string, len(l.Lines))
	for i, line := range l.Lines {
		out[i] = line.String()
	}
	return out
}

func rich(src string, width int) *Layout {
	return Rich(markup.Parse(src), &theme.WysiiiDark, width)
}

func TestRichBlocks(t *testing.T) {
	l := rich("<h1>T</h1>\n<p>a <b>b</b></p><ul><li>x</li><li>y</li></ul><ol><li>one</li><li>two</li></ol>", 40)
	assert.Equal(t, []string{"T", "a b", "• x", "• y", "1. one", "2. two"}, rows(l))
}

func TestRichQuoteTableAndImage(t *testing.T) {
	l := rich(`<blockquote>wise</blockquote><table border="1"><tbody><tr><td>Cell</td><td>Cell</td></tr></tbody></table><p>a<img src="c.png">b<br>c</p>`, 40)
	assert.Equal(t, []string{"│ wise", "Cell │ Cell", "a[image: c.png]b", "c"}, rows(l))
}

func TestRichStyles(t *testing.T) {
	l := rich(`<p><b>x</b><font color="#ff0000">y</font></p>`, 40)
	require.Len(t, l.Lines, 1)
	cells := l.Lines[0].Cells

	_, _, attrs := cells[0].Style.Decompose()
	assert.NotZero(t, attrs&tcell.AttrBold)

	fg, _, _ := cells[1].Style.Decompose()
	assert.Equal(t, tcell.NewHexColor(0xff0000), fg)
}

func TestRichWrapAndCaret(t *testing.T) {
	l := rich("<p>abcdef</p><p></p>", 3)
	assert.Equal(t, []string{"abc", "def", ""}, rows(l))

	assert.Equal(t, Pos{0, 0}, l.Locate(3))
	assert.Equal(t, Pos{0, 2}, l.Locate(5))
	assert.Equal(t, Pos{1, 0}, l.Locate(6), "a wrapped unit starts the next row")
	assert.Equal(t, Pos{1, 3}, l.Locate(9))
	assert.Equal(t, Pos{2, 0}, l.Locate(16), "empty paragraphs get a row")

	off, ok := l.OffsetAt(Pos{1, 1})
	assert.True(t, ok)
	assert.Equal(t, 7, off)
}

func TestRichEntitiesAndEmpty(t *testing.T) {
	l := rich("<p>a&amp;b</p>", 10)
	assert.Equal(t, []string{"a&b"}, rows(l))
	assert.Equal(t, Pos{0, 2}, l.Locate(9))

	l = rich("", 10)
	assert.Equal(t, []string{""}, rows(l))
}

func TestSourceLayout(t *testing.T) {
	h, err := highlighter.NewHighlighter()
	require.NoError(t, err)
	defer h.Close()

	src := "<p>\n\thi</p>"
	hl, err := h.Highlight(context.Background(), []byte(src))
	require.NoError(t, err)

	l := Source(src, hl, &theme.WysiiiDark, 80)
	assert.Equal(t, []string{"<p>", "    hi</p>"}, rows(l))
	assert.Equal(t, theme.WysiiiDark.GetStyle("tag"), l.Lines[0].Cells[1].Style)
	assert.Equal(t, Pos{1, 4}, l.Locate(5))
}
