// internal/theme/theme.go
package theme

import (
	"strings"

	"github.com/bethropolis/wysiii/internal/logger" // For logging missing styles
	"github.com/gdamore/tcell/v2"
)

// Theme maps style names to terminal styles. Names are UI elements
// ("StatusBar", "Toolbar"), rendered markup ("rich.b", "rich.h1") and
// source highlight captures ("tag", "attribute").
type Theme struct {
	Name   string
	IsDark bool
	Styles map[string]tcell.Style
}

// GetStyle returns the style for name, falling back to the part before the
// first dot and then to "Default".
func (t *Theme) GetStyle(name string) tcell.Style {
	// 1. Try exact name
	if style, ok := t.Styles[name]; ok {
		return style
	}

	// 2. Try base name (part before first dot)
	if dotIndex := strings.Index(name, "."); dotIndex != -1 {
		baseName := name[:dotIndex]
		if style, ok := t.Styles[baseName]; ok {
			logger.DebugTagf("theme", "Theme '%s': Style '%s' not found, using base '%s'", t.Name, name, baseName)
			return style
		}
	}

	// 3. Return "Default" style
	if defStyle, ok := t.Styles["Default"]; ok {
		return defStyle
	}

	// 4. Absolute fallback
	logger.Warnf("Theme '%s': Style '%s' and 'Default' style not found, using tcell default.", t.Name, name)
	return tcell.StyleDefault
}

// Has reports whether the theme defines name exactly.
func (t *Theme) Has(name string) bool {
	_, ok := t.Styles[name]
	return ok
}

// --- Built-in themes ---

var (
	WysiiiDark  Theme
	WysiiiLight Theme
)

type palette struct {
	bg, fg, muted, accent, warm, green, cyan, blue, magenta, red tcell.Color
}

func build(name string, dark bool, p palette) Theme {
	base := tcell.StyleDefault.Background(tcell.ColorReset).Foreground(p.fg)
	bar := tcell.StyleDefault.Background(p.bg).Foreground(p.fg)

	return Theme{
		Name:   name,
		IsDark: dark,
		Styles: map[string]tcell.Style{
			// --- UI Elements ---
			"Default":           base,
			"Selection":         base.Reverse(true),
			"Placeholder":       base.Foreground(p.muted).Italic(true),
			"StatusBar":         bar,
			"StatusBarMode":     bar.Foreground(p.warm).Bold(true),
			"StatusBarMessage":  bar.Bold(true),
			"StatusBarError":    bar.Foreground(p.red).Bold(true),
			"Toolbar":           bar,
			"ToolbarKey":        bar.Foreground(p.muted),
			"ToolbarButton":     bar.Foreground(p.accent),
			"ToolbarSelect":     bar.Foreground(p.cyan),
			"ToolbarDisabled":   bar.Foreground(p.muted).Dim(true),
			"Prompt":            bar.Foreground(p.green).Bold(true),
			"PromptInput":       bar,
			"SourceView":        base,
			"SourceViewCaption": base.Foreground(p.muted).Italic(true),

			// --- Rendered markup ---
			"rich.b":          base.Bold(true),
			"rich.strong":     base.Bold(true),
			"rich.i":          base.Italic(true),
			"rich.em":         base.Italic(true),
			"rich.u":          base.Underline(true),
			"rich.s":          base.StrikeThrough(true),
			"rich.strike":     base.StrikeThrough(true),
			"rich.a":          base.Foreground(p.blue).Underline(true),
			"rich.h1":         base.Foreground(p.warm).Bold(true).Underline(true),
			"rich.h2":         base.Foreground(p.warm).Bold(true),
			"rich.h3":         base.Foreground(p.accent).Bold(true),
			"rich.blockquote": base.Foreground(p.muted).Italic(true),
			"rich.code":       base.Foreground(p.green),
			"rich.img":        base.Foreground(p.magenta),
			"rich.marker":     base.Foreground(p.muted),

			// --- Source highlighting ---
			"tag":                 base.Foreground(p.blue).Bold(true),
			"tag.error":           base.Foreground(p.red).Bold(true),
			"attribute":           base.Foreground(p.warm),
			"string":              base.Foreground(p.green),
			"comment":             base.Foreground(p.muted).Italic(true),
			"constant":            base.Foreground(p.magenta),
			"operator":            base.Foreground(p.fg),
			"punctuation":         base.Foreground(p.muted),
			"punctuation.bracket": base.Foreground(p.muted),
		},
	}
}

func init() {
	WysiiiDark = build("Wysiii Dark", true, palette{
		bg:      tcell.NewHexColor(0x2a2f38),
		fg:      tcell.NewHexColor(0xc5cdd9),
		muted:   tcell.NewHexColor(0x5c6370),
		accent:  tcell.NewHexColor(0xe5c07b),
		warm:    tcell.NewHexColor(0xd19a66),
		green:   tcell.NewHexColor(0x98c379),
		cyan:    tcell.NewHexColor(0x56b6c2),
		blue:    tcell.NewHexColor(0x61afef),
		magenta: tcell.NewHexColor(0xc678dd),
		red:     tcell.NewHexColor(0xe06c75),
	})
	WysiiiLight = build("Wysiii Light", false, palette{
		bg:      tcell.NewHexColor(0xe5e5e6),
		fg:      tcell.NewHexColor(0x383a42),
		muted:   tcell.NewHexColor(0xa0a1a7),
		accent:  tcell.NewHexColor(0xc18401),
		warm:    tcell.NewHexColor(0x986801),
		green:   tcell.NewHexColor(0x50a14f),
		cyan:    tcell.NewHexColor(0x0184bc),
		blue:    tcell.NewHexColor(0x4078f2),
		magenta: tcell.NewHexColor(0xa626a4),
		red:     tcell.NewHexColor(0xe45649),
	})
}
