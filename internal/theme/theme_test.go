package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStyleFallbacks(t *testing.T) {
	th := &WysiiiDark
	assert.Equal(t, th.Styles["tag"], th.GetStyle("tag"))
	assert.Equal(t, th.Styles["tag"], th.GetStyle("tag.custom"), "unknown names fall back to their base")
	assert.Equal(t, th.Styles["Default"], th.GetStyle("nothing"))

	bare := &Theme{Name: "bare", Styles: map[string]tcell.Style{}}
	assert.Equal(t, tcell.StyleDefault, bare.GetStyle("x"))
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#FF0000")
	require.NoError(t, err)
	assert.Equal(t, tcell.NewHexColor(0xff0000), c)

	c, err = ParseColor("#0f0")
	require.NoError(t, err)
	assert.Equal(t, tcell.NewHexColor(0x00ff00), c)

	c, err = ParseColor(" Red ")
	require.NoError(t, err)
	assert.Equal(t, tcell.ColorRed, c)

	_, err = ParseColor("#12345")
	assert.Error(t, err)
	_, err = ParseColor("nope")
	assert.Error(t, err)
}

func TestParseThemeInherits(t *testing.T) {
	th, err := ParseTheme(`
name = "Mine"
inherit = "wysiii light"

[styles.tag]
fg = "#112233"
bold = false
`)
	require.NoError(t, err)
	assert.Equal(t, "Mine", th.Name)
	fg, _, attrs := th.GetStyle("tag").Decompose()
	assert.Equal(t, tcell.NewHexColor(0x112233), fg)
	assert.Zero(t, attrs&tcell.AttrBold)
	assert.Equal(t, WysiiiLight.Styles["rich.h1"], th.GetStyle("rich.h1"))

	_, err = ParseTheme(`inherit = "missing"`)
	assert.Error(t, err)
}

func TestManagerLoadsDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "paper.toml"), []byte(`
[styles.Default]
fg = "black"
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.toml"), []byte("[styles"), 0o644))

	m := NewManager(dir)
	assert.Equal(t, "Wysiii Dark", m.Current().Name)
	assert.Equal(t, []string{"Wysiii Dark", "Wysiii Light", "paper"}, m.ListThemes())

	require.NoError(t, m.SetTheme("PAPER"))
	assert.Equal(t, "paper", m.Current().Name)
	assert.Error(t, m.SetTheme("missing"))

	m = NewManager(filepath.Join(dir, "absent"))
	assert.Len(t, m.ListThemes(), 2)
}
