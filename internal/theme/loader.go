// internal/theme/loader.go
package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bethropolis/wysiii/internal/logger"
	"github.com/gdamore/tcell/v2"
)

// TomlStyleDef represents a single style definition in the TOML file
type TomlStyleDef struct {
	Fg            *string `toml:"fg"` // Use pointers to detect missing values
	Bg            *string `toml:"bg"`
	Bold          *bool   `toml:"bold"`
	Italic        *bool   `toml:"italic"`
	Underline     *bool   `toml:"underline"`
	StrikeThrough *bool   `toml:"strikethrough"`
	Dim           *bool   `toml:"dim"`
	Reverse       *bool   `toml:"reverse"`
}

// TomlTheme represents the structure of a theme file
type TomlTheme struct {
	Name    string                  `toml:"name"`
	IsDark  bool                    `toml:"is_dark"`
	Inherit string                  `toml:"inherit"` // Built-in theme supplying unset styles
	Styles  map[string]TomlStyleDef `toml:"styles"`
}

// LoadThemeFromFile parses a TOML theme file.
func LoadThemeFromFile(filePath string) (*Theme, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme file '%s': %w", filePath, err)
	}
	t, err := ParseTheme(string(data))
	if err != nil {
		return nil, fmt.Errorf("theme file '%s': %w", filePath, err)
	}
	if t.Name == "" {
		t.Name = strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
		logger.Debugf("Theme file '%s' missing 'name', using filename '%s'", filePath, t.Name)
	}
	return t, nil
}

// ParseTheme converts TOML theme source to a Theme. Styles inherit unset
// attributes from the theme's "Default" style; styles not mentioned at all
// come from the inherited built-in theme, if one is named.
func ParseTheme(src string) (*Theme, error) {
	var tomlTheme TomlTheme
	metadata, err := toml.Decode(src, &tomlTheme)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML theme: %w", err)
	}
	if len(metadata.Undecoded()) > 0 {
		logger.Warnf("Theme '%s': Unrecognized keys: %v", tomlTheme.Name, metadata.Undecoded())
	}

	theme := &Theme{
		Name:   tomlTheme.Name,
		IsDark: tomlTheme.IsDark,
		Styles: make(map[string]tcell.Style),
	}

	if tomlTheme.Inherit != "" {
		parent := builtin(tomlTheme.Inherit)
		if parent == nil {
			return nil, fmt.Errorf("unknown theme to inherit '%s'", tomlTheme.Inherit)
		}
		for name, style := range parent.Styles {
			theme.Styles[name] = style
		}
	}

	baseStyle, ok := theme.Styles["Default"]
	if !ok {
		baseStyle = tcell.StyleDefault
	}
	if def, ok := tomlTheme.Styles["Default"]; ok {
		baseStyle, err = convertTomlStyle(def, baseStyle)
		if err != nil {
			logger.Warnf("Theme '%s': Failed to parse 'Default' style, using tcell default as base: %v", theme.Name, err)
			baseStyle = tcell.StyleDefault
		}
	}
	theme.Styles["Default"] = baseStyle

	for name, tomlStyle := range tomlTheme.Styles {
		if name == "Default" {
			continue // Already processed
		}
		style, err := convertTomlStyle(tomlStyle, baseStyle)
		if err != nil {
			logger.Warnf("Theme '%s': Failed to parse style '%s', skipping: %v", theme.Name, name, err)
			continue
		}
		theme.Styles[name] = style
	}
	return theme, nil
}

func builtin(name string) *Theme {
	for _, t := range []*Theme{&WysiiiDark, &WysiiiLight} {
		if strings.EqualFold(t.Name, name) {
			return t
		}
	}
	return nil
}

// convertTomlStyle converts the TOML definition to a tcell.Style, inheriting from a base
func convertTomlStyle(tomlStyle TomlStyleDef, baseStyle tcell.Style) (tcell.Style, error) {
	style := baseStyle

	if tomlStyle.Fg != nil {
		color, err := ParseColor(*tomlStyle.Fg)
		if err != nil {
			return style, fmt.Errorf("invalid foreground color '%s': %w", *tomlStyle.Fg, err)
		}
		style = style.Foreground(color)
	}
	if tomlStyle.Bg != nil {
		color, err := ParseColor(*tomlStyle.Bg)
		if err != nil {
			return style, fmt.Errorf("invalid background color '%s': %w", *tomlStyle.Bg, err)
		}
		style = style.Background(color)
	}

	if tomlStyle.Bold != nil {
		style = style.Bold(*tomlStyle.Bold)
	}
	if tomlStyle.Italic != nil {
		style = style.Italic(*tomlStyle.Italic)
	}
	if tomlStyle.Underline != nil {
		style = style.Underline(*tomlStyle.Underline)
	}
	if tomlStyle.StrikeThrough != nil {
		style = style.StrikeThrough(*tomlStyle.StrikeThrough)
	}
	if tomlStyle.Dim != nil {
		style = style.Dim(*tomlStyle.Dim)
	}
	if tomlStyle.Reverse != nil {
		style = style.Reverse(*tomlStyle.Reverse)
	}
	return style, nil
}

// ParseColor converts #RRGGBB, #RGB, "reset", "default" or a W3C colour
// name to a tcell colour. The rich view uses it for foreColor values.
func ParseColor(s string) (tcell.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "reset":
		return tcell.ColorReset, nil
	case "default":
		return tcell.ColorDefault, nil
	}

	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return tcell.ColorDefault, fmt.Errorf("invalid hex color format '%s', must be #RRGGBB or #RGB", s)
		}
		val, err := strconv.ParseInt(hex, 16, 32)
		if err != nil {
			return tcell.ColorDefault, fmt.Errorf("invalid hex value '%s': %w", s, err)
		}
		return tcell.NewHexColor(int32(val)), nil
	}

	if c, ok := tcell.ColorNames[s]; ok {
		return c, nil
	}
	return tcell.ColorDefault, fmt.Errorf("unknown color format or name '%s'", s)
}
