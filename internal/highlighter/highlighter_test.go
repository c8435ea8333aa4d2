package highlighter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHL(t *testing.T) *Highlighter {
	t.Helper()
	h, err := NewHighlighter()
	require.NoError(t, err)
	t.Cleanup(h.Close)
	return h
}

func TestHighlightTagsAndAttributes(t *testing.T) {
	h := newHL(t)
	src := `<p class="x">hi</p><!-- c -->`
	res, err := h.Highlight(context.Background(), []byte(src))
	require.NoError(t, err)
	require.NotEmpty(t, res)

	style, ok := res.StyleAt(1) // "p"
	assert.True(t, ok)
	assert.Equal(t, "tag", style)

	style, _ = res.StyleAt(3) // "class"
	assert.Equal(t, "attribute", style)

	style, _ = res.StyleAt(11) // inside the value
	assert.Equal(t, "string", style)

	_, ok = res.StyleAt(14) // "hi" is plain text
	assert.False(t, ok)

	style, _ = res.StyleAt(len(src) - 2)
	assert.Equal(t, "comment", style)
}

func TestHighlightEmpty(t *testing.T) {
	res, err := newHL(t).Highlight(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, res)
}

func TestProblems(t *testing.T) {
	h := newHL(t)
	probs, err := h.Problems(context.Background(), []byte("<p>fine</p>"))
	require.NoError(t, err)
	assert.Empty(t, probs)

	probs, err = h.Problems(context.Background(), []byte("<p>text</b></p>"))
	require.NoError(t, err)
	assert.NotEmpty(t, probs)
}

func TestCaptureNameToStyleName(t *testing.T) {
	assert.Equal(t, "tag.error", captureNameToStyleName("@tag.error"))
	assert.Equal(t, "string", captureNameToStyleName("string"))
}
