// internal/input/action.go
package input

// Action represents an operation requested from the keyboard.
type Action int

// Define the set of possible editor actions.
const (
	// --- Meta Actions ---
	ActionUnknown Action = iota // Default/invalid action
	ActionQuit
	ActionSave   // Write the mirrored value to the output file
	ActionCancel // Esc: leave prompts, clear selection

	// --- Formatting shortcuts (intercepted before default handling) ---
	ActionBold
	ActionItalic
	ActionUnderline
	ActionUndo
	ActionRedo
	ActionParagraph // Plain Enter
	ActionLineBreak // Shift+Enter, left to default handling

	// --- Cursor Movement ---
	ActionMoveUp
	ActionMoveDown
	ActionMoveLeft
	ActionMoveRight
	ActionMoveHome
	ActionMoveEnd
	ActionSelectAll

	// --- Text Manipulation ---
	ActionInsertRune         // Requires Rune argument
	ActionDeleteCharForward  // Delete key
	ActionDeleteCharBackward // Backspace key
	ActionCopy
	ActionCut
	ActionPaste

	// --- Toolbar / Commands ---
	ActionActivateControl  // Requires Index argument
	ActionEnterCommandMode // Prompt for a plugin command
)

var actionNames = map[Action]string{
	ActionQuit:               "quit",
	ActionSave:               "save",
	ActionCancel:             "cancel",
	ActionBold:               "bold",
	ActionItalic:             "italic",
	ActionUnderline:          "underline",
	ActionUndo:               "undo",
	ActionRedo:               "redo",
	ActionParagraph:          "paragraph",
	ActionLineBreak:          "linebreak",
	ActionMoveUp:             "up",
	ActionMoveDown:           "down",
	ActionMoveLeft:           "left",
	ActionMoveRight:          "right",
	ActionMoveHome:           "home",
	ActionMoveEnd:            "end",
	ActionSelectAll:          "selectall",
	ActionInsertRune:         "rune",
	ActionDeleteCharForward:  "delete",
	ActionDeleteCharBackward: "backspace",
	ActionCopy:               "copy",
	ActionCut:                "cut",
	ActionPaste:              "paste",
	ActionActivateControl:    "control",
	ActionEnterCommandMode:   "command",
}

func (a Action) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return "unknown"
}

// ActionEvent represents a decoded input event resulting in an action.
type ActionEvent struct {
	Action Action
	Rune   rune // Used for ActionInsertRune
	Extend bool // Shift held on a movement key: extend the selection
	Index  int  // Toolbar control index for ActionActivateControl
}
