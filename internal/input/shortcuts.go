package input

import "unicode"

// KeyStroke is a terminal-independent key press, enough to describe the
// editor's shortcut surface.
type KeyStroke struct {
	Rune  rune // Letter pressed, if any
	Enter bool
	Ctrl  bool
	Meta  bool // Alt on terminals, Cmd elsewhere
	Shift bool
}

// Shortcut maps a key stroke to one of the formatting shortcuts:
//
//	Ctrl/Meta+B, I, U   bold, italic, underline
//	Ctrl/Meta+Z         undo
//	Ctrl/Meta+Shift+Z   redo
//	Enter               paragraph break
//	Shift+Enter         line break (default handling)
//
// It reports false for every other key.
func Shortcut(k KeyStroke) (Action, bool) {
	if k.Enter {
		if k.Ctrl || k.Meta {
			return ActionUnknown, false
		}
		if k.Shift {
			return ActionLineBreak, true
		}
		return ActionParagraph, true
	}
	if !k.Ctrl && !k.Meta {
		return ActionUnknown, false
	}

	r := k.Rune
	shift := k.Shift
	if unicode.IsUpper(r) {
		r = unicode.ToLower(r)
		shift = true
	}
	switch r {
	case 'b':
		return ActionBold, true
	case 'i':
		return ActionItalic, true
	case 'u':
		return ActionUnderline, true
	case 'z':
		if shift {
			return ActionRedo, true
		}
		return ActionUndo, true
	}
	return ActionUnknown, false
}
