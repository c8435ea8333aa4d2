package editor

import (
	"strconv"
	"strings"

	"github.com/bethropolis/wysiii/internal/markup"
)

// ControlKind tells buttons from selects.
type ControlKind int

const (
	KindButton ControlKind = iota
	KindSelect
)

// Names of the select controls.
const (
	SelectFontSize    = "fontSize"
	SelectFormatBlock = "formatBlock"
	SelectForeColor   = "foreColor"
)

// Button names that are not plain commands.
const (
	ButtonLink  = "link"
	ButtonImage = "image"
	ButtonCode  = "code"
	ButtonTable = "table"
)

// Choice is one option of a select control.
type Choice struct {
	Value string
	Label string
}

// Control is one toolbar item.
type Control struct {
	Name    string
	Label   string
	Kind    ControlKind
	Command string   // Command dispatched; empty for flows handled by the editor
	Choices []Choice // Select options
}

type buttonSpec struct {
	label   string
	command string
}

// buttonSpecs lists every button the toolbar knows.
var buttonSpecs = map[string]buttonSpec{
	"bold":          {"Bold", markup.CmdBold},
	"italic":        {"Italic", markup.CmdItalic},
	"underline":     {"Underline", markup.CmdUnderline},
	"strikethrough": {"Strikethrough", markup.CmdStrikeThrough},
	"list":          {"Bullet list", markup.CmdInsertUnorderedList},
	"orderedList":   {"Numbered list", markup.CmdInsertOrderedList},
	ButtonLink:      {"Insert link", markup.CmdCreateLink},
	ButtonImage:     {"Insert image", markup.CmdInsertImage},
	ButtonCode:      {"View source code", ""},
	ButtonTable:     {"Insert table", markup.CmdInsertHTML},
}

var colorNames = map[string]string{
	"#000000": "Black",
	"#FF0000": "Red",
	"#00FF00": "Green",
	"#0000FF": "Blue",
	"#FFFF00": "Yellow",
	"#FF00FF": "Magenta",
	"#00FFFF": "Cyan",
}

// ColorName returns a readable name for a hex colour, or the value itself.
func ColorName(hex string) string {
	if n, ok := colorNames[strings.ToUpper(hex)]; ok {
		return n
	}
	return hex
}

// BuildToolbar lays out the controls for opts: the enabled buttons in
// order, then the font size and paragraph style selects, then the colour
// select when colours are configured.
func BuildToolbar(opts Options) []Control {
	var controls []Control
	for _, name := range opts.Buttons {
		spec := buttonSpecs[name]
		controls = append(controls, Control{
			Name:    name,
			Label:   spec.label,
			Kind:    KindButton,
			Command: spec.command,
		})
	}

	sizes := make([]Choice, 0, 7)
	for i := 1; i <= 7; i++ {
		v := strconv.Itoa(i)
		sizes = append(sizes, Choice{Value: v, Label: v})
	}
	controls = append(controls, Control{
		Name:    SelectFontSize,
		Label:   "Font size",
		Kind:    KindSelect,
		Command: markup.CmdFontSize,
		Choices: sizes,
	})

	controls = append(controls, Control{
		Name:    SelectFormatBlock,
		Label:   "Paragraph style",
		Kind:    KindSelect,
		Command: markup.CmdFormatBlock,
		Choices: []Choice{
			{"p", "Paragraph"},
			{"h1", "Heading 1"},
			{"h2", "Heading 2"},
			{"h3", "Heading 3"},
			{"blockquote", "Quote"},
		},
	})

	if len(opts.Colors) > 0 {
		colors := make([]Choice, 0, len(opts.Colors))
		for _, c := range opts.Colors {
			colors = append(colors, Choice{Value: c, Label: ColorName(c)})
		}
		controls = append(controls, Control{
			Name:    SelectForeColor,
			Label:   "Text color",
			Kind:    KindSelect,
			Command: markup.CmdForeColor,
			Choices: colors,
		})
	}
	return controls
}

// offers reports whether the select has a choice with this value.
func (c Control) offers(value string) bool {
	for _, ch := range c.Choices {
		if ch.Value == value {
			return true
		}
	}
	return false
}
