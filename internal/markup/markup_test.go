package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/wysiii/internal/content"
)

func surface(doc string) (*Surface, *Executor) {
	s := NewSurface(content.Deserialize(doc))
	return s, NewExecutor(s)
}

func TestTextContent(t *testing.T) {
	assert.Equal(t, "a & bc", TextContent("<p>a &amp; b</p><p>c</p>"))
	assert.Equal(t, "plain", TextContent("plain"))
	assert.Equal(t, "", TextContent(""))
	assert.Equal(t, "xy", TextContent("<!-- note --><b>x</b><br>y"))
}

func TestTextRunsSkipTags(t *testing.T) {
	d := Parse("<p>a<b>b</b></p>")
	assert.Equal(t, []Span{{3, 4}, {7, 8}}, d.TextRuns())
	assert.True(t, d.InMarkup(5))
	assert.False(t, d.InMarkup(4))
}

func TestAncestorsAndBlock(t *testing.T) {
	d := Parse("<p><b>ab</b></p>")
	anc := d.Ancestors(7)
	require.Len(t, anc, 2)
	assert.Equal(t, "b", anc[0].Tag)
	assert.Equal(t, "p", anc[1].Tag)
	assert.Equal(t, "p", d.BlockAt(7).Tag)
	assert.Nil(t, Parse("loose text").BlockAt(2))
}

func TestUnitsKeepCharacterReferencesWhole(t *testing.T) {
	src := "a&amp;é"
	units := Units(src, Span{0, len(src)})
	require.Len(t, units, 3)
	assert.Equal(t, "&", units[1].Text)
	assert.Equal(t, Span{1, 6}, units[1].Span)
	assert.Equal(t, 1, units[2].Width)
}

func TestSourceRoundTrip(t *testing.T) {
	original := "<p>Hi <b>there</b> &amp; you</p>"
	s, _ := surface(original)

	s.SetText(s.Content().Serialize())
	assert.Equal(t, original, s.Text())
	assert.NotEqual(t, original, s.Markup())

	s.SetContent(content.Deserialize(s.Text()))
	assert.Equal(t, original, s.Content().Serialize())
}

func TestBoldWrapsAndToggles(t *testing.T) {
	s, e := surface("<p>hello world</p>")
	s.Select(3, 8)
	require.NoError(t, e.Apply(CmdBold, ""))
	assert.Equal(t, "<p><b>hello</b> world</p>", s.Markup())
	assert.Equal(t, "hello", s.SelectedText())

	require.NoError(t, e.Apply(CmdBold, ""))
	assert.Equal(t, "<p>hello world</p>", s.Markup())
}

func TestInlineCommandWithEmptySelectionIsNoop(t *testing.T) {
	s, e := surface("<p>plain</p>")
	before := s.Markup()
	require.NoError(t, e.Apply(CmdBold, ""))
	require.NoError(t, e.Apply(CmdItalic, ""))
	assert.Equal(t, before, s.Markup())
}

func TestWrapAcrossTagsStaysBalanced(t *testing.T) {
	s, e := surface("<p>ab<i>cd</i></p>")
	s.Select(4, 9)
	require.NoError(t, e.Apply(CmdBold, ""))
	assert.Equal(t, "<p>a<b>b</b><i><b>c</b>d</i></p>", s.Markup())
	assert.Equal(t, "bc", s.SelectedText())
}

func TestLinkColorAndSize(t *testing.T) {
	s, e := surface("<p>hello</p>")
	s.Select(3, 8)
	require.NoError(t, e.Apply(CmdCreateLink, "https://x.y/?a=1&b"))
	assert.Equal(t, `<p><a href="https://x.y/?a=1&amp;b">hello</a></p>`, s.Markup())

	s, e = surface("<p>hi</p>")
	s.Select(3, 5)
	require.NoError(t, e.Apply(CmdForeColor, "#FF0000"))
	assert.Equal(t, `<p><font color="#FF0000">hi</font></p>`, s.Markup())

	s, e = surface("<p>hi</p>")
	s.Select(3, 5)
	require.NoError(t, e.Apply(CmdFontSize, "5"))
	assert.Equal(t, `<p><font size="5">hi</font></p>`, s.Markup())
	assert.ErrorIs(t, e.Apply(CmdFontSize, "9"), ErrUnsupported)
}

func TestUnknownAndReadOnly(t *testing.T) {
	s, e := surface("<p>x</p>")
	assert.ErrorIs(t, e.Apply("frobnicate", ""), ErrUnsupported)

	s.SetEditable(false)
	assert.ErrorIs(t, e.Apply(CmdBold, ""), ErrReadOnly)
	assert.False(t, s.InsertText("nope"))
	assert.Equal(t, "<p>x</p>", s.Markup())
}

func TestInsertAtCaret(t *testing.T) {
	s, e := surface("<p>ab</p>")
	s.SetCaret(4)
	require.NoError(t, e.Apply(CmdInsertHTML, "<br>"))
	assert.Equal(t, "<p>a<br>b</p>", s.Markup())

	s, e = surface("<p>ab</p>")
	s.SetCaret(4)
	require.NoError(t, e.Apply(CmdInsertImage, "cat.png"))
	assert.Equal(t, `<p>a<img src="cat.png">b</p>`, s.Markup())

	s, e = surface("<p>ab</p>")
	s.SetCaret(4)
	require.NoError(t, e.Apply(CmdInsertText, "<&>"))
	assert.Equal(t, "<p>a&lt;&amp;&gt;b</p>", s.Markup())
	assert.Equal(t, "a<&>b", s.Text())
}

func TestInsertParagraphSplitsBlock(t *testing.T) {
	s, e := surface("<p>ab</p>")
	s.SetCaret(4)
	require.NoError(t, e.Apply(CmdInsertParagraph, ""))
	assert.Equal(t, "<p>a</p><p>b</p>", s.Markup())
	assert.Equal(t, 11, s.Caret())
}

func TestInsertParagraphReopensInlineTags(t *testing.T) {
	s, e := surface("<p><b>ab</b></p>")
	s.SetCaret(7)
	require.NoError(t, e.Apply(CmdInsertParagraph, ""))
	assert.Equal(t, "<p><b>a</b></p><p><b>b</b></p>", s.Markup())
}

func TestInsertParagraphAfterHeading(t *testing.T) {
	s, e := surface("<h1>T</h1>")
	s.SetCaret(5)
	require.NoError(t, e.Apply(CmdInsertParagraph, ""))
	assert.Equal(t, "<h1>T</h1><p></p>", s.Markup())
	assert.Equal(t, 13, s.Caret())
}

func TestFormatBlock(t *testing.T) {
	s, e := surface("<p>ab</p>")
	s.SetCaret(4)
	require.NoError(t, e.Apply(CmdFormatBlock, "h2"))
	assert.Equal(t, "<h2>ab</h2>", s.Markup())
	assert.Equal(t, 5, s.Caret())

	require.NoError(t, e.Apply(CmdFormatBlock, "<blockquote>"))
	assert.Equal(t, "<blockquote>ab</blockquote>", s.Markup())

	assert.ErrorIs(t, e.Apply(CmdFormatBlock, "marquee"), ErrUnsupported)

	s, e = surface("ab")
	s.SetCaret(1)
	require.NoError(t, e.Apply(CmdFormatBlock, "h1"))
	assert.Equal(t, "<h1>ab</h1>", s.Markup())
}

func TestListToggle(t *testing.T) {
	s, e := surface("<p>ab</p>")
	s.SetCaret(4)
	require.NoError(t, e.Apply(CmdInsertUnorderedList, ""))
	assert.Equal(t, "<ul><li>ab</li></ul>", s.Markup())
	assert.Equal(t, 9, s.Caret())

	require.NoError(t, e.Apply(CmdInsertOrderedList, ""))
	assert.Equal(t, "<ol><li>ab</li></ol>", s.Markup())

	require.NoError(t, e.Apply(CmdInsertOrderedList, ""))
	assert.Equal(t, "<p>ab</p>", s.Markup())
	assert.Equal(t, 4, s.Caret())
}

func TestCaretSkipsInlineTags(t *testing.T) {
	s, _ := surface("<p>a<b>b</b>c</p>")
	s.MoveToStart(false)
	assert.Equal(t, 3, s.Caret())
	s.MoveRight(false)
	assert.Equal(t, 4, s.Caret())
	s.MoveRight(false)
	assert.Equal(t, 8, s.Caret())
	s.MoveRight(false)
	assert.Equal(t, 13, s.Caret())
	s.MoveRight(false)
	assert.Equal(t, 13, s.Caret())

	s.MoveLeft(true)
	assert.Equal(t, "c", s.SelectedText())
}

func TestDeleteBackward(t *testing.T) {
	s, _ := surface("<p>a<b>b</b></p>")
	s.SetCaret(8)
	require.True(t, s.DeleteBackward())
	assert.Equal(t, "<p>a<b></b></p>", s.Markup())
	assert.Equal(t, 7, s.Caret())

	require.True(t, s.DeleteBackward())
	assert.Equal(t, "<p><b></b></p>", s.Markup())
}

func TestDeleteBackwardJoinsParagraphs(t *testing.T) {
	s, _ := surface("<p>a</p><p>b</p>")
	s.SetCaret(11)
	require.True(t, s.DeleteBackward())
	assert.Equal(t, "<p>ab</p>", s.Markup())
	assert.Equal(t, 4, s.Caret())
}

func TestDeleteSelectionKeepsTags(t *testing.T) {
	s, _ := surface("<p>ab<i>cd</i></p>")
	s.Select(4, 9)
	require.True(t, s.DeleteBackward())
	assert.Equal(t, "<p>a<i>d</i></p>", s.Markup())
}

func TestSelectSnapsOutOfTags(t *testing.T) {
	s, _ := surface("<p>ab</p>")
	s.SetCaret(1)
	assert.Equal(t, 3, s.Caret())
	s.SetCaret(100)
	assert.Equal(t, len(s.Markup()), s.Caret())
}

func TestEmptySurfaceCaret(t *testing.T) {
	s, e := surface("")
	assert.Equal(t, 0, s.Caret())
	require.True(t, s.InsertText("hi"))
	assert.Equal(t, "hi", s.Markup())
	require.NoError(t, e.Apply(CmdInsertParagraph, ""))
	assert.Equal(t, "<p>hi</p><p></p>", s.Markup())
}
