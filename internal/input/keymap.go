// internal/input/keymap.go
package input

import (
	"github.com/gdamore/tcell/v2"
)

// Keymap maps specific key events to editor actions.
type Keymap map[tcell.Key]Action        // For special keys (Enter, Arrows, etc.)
type ModKeymap map[tcell.ModMask]Keymap // For keys combined with modifiers (Ctrl, Alt, Shift)

// InputProcessor translates tcell events into ActionEvents.
type InputProcessor struct {
	keymap    Keymap
	modKeymap ModKeymap
}

// NewInputProcessor creates a processor with default keybindings.
func NewInputProcessor() *InputProcessor {
	p := &InputProcessor{
		keymap:    make(Keymap),
		modKeymap: make(ModKeymap),
	}
	p.loadDefaultBindings()
	return p
}

// loadDefaultBindings sets up the host key mappings. Formatting shortcuts
// are not listed here; Shortcut handles them before this table is consulted.
func (p *InputProcessor) loadDefaultBindings() {
	// --- Simple Keys ---
	p.keymap[tcell.KeyUp] = ActionMoveUp
	p.keymap[tcell.KeyDown] = ActionMoveDown
	p.keymap[tcell.KeyLeft] = ActionMoveLeft
	p.keymap[tcell.KeyRight] = ActionMoveRight
	p.keymap[tcell.KeyHome] = ActionMoveHome
	p.keymap[tcell.KeyEnd] = ActionMoveEnd
	p.keymap[tcell.KeyBackspace] = ActionDeleteCharBackward
	p.keymap[tcell.KeyBackspace2] = ActionDeleteCharBackward // Often used for Backspace
	p.keymap[tcell.KeyDelete] = ActionDeleteCharForward
	p.keymap[tcell.KeyEscape] = ActionCancel

	// --- Ctrl bindings ---
	ctrlMap := make(Keymap)
	ctrlMap[tcell.KeyCtrlQ] = ActionQuit
	ctrlMap[tcell.KeyCtrlS] = ActionSave
	ctrlMap[tcell.KeyCtrlA] = ActionSelectAll
	ctrlMap[tcell.KeyCtrlC] = ActionCopy
	ctrlMap[tcell.KeyCtrlX] = ActionCut
	ctrlMap[tcell.KeyCtrlV] = ActionPaste
	ctrlMap[tcell.KeyCtrlY] = ActionRedo // Terminals rarely report Ctrl+Shift+Z
	ctrlMap[tcell.KeyCtrlP] = ActionEnterCommandMode
	p.modKeymap[tcell.ModCtrl] = ctrlMap
}

// FromTcell converts a tcell key event into a KeyStroke. It reports false
// for keys that cannot be part of a shortcut.
func FromTcell(ev *tcell.EventKey) (KeyStroke, bool) {
	mod := ev.Modifiers()
	k := KeyStroke{
		Ctrl:  mod&tcell.ModCtrl != 0,
		Meta:  mod&(tcell.ModAlt|tcell.ModMeta) != 0,
		Shift: mod&tcell.ModShift != 0,
	}

	key := ev.Key()
	switch {
	case key == tcell.KeyEnter:
		k.Enter = true
	case key == tcell.KeyRune:
		k.Rune = ev.Rune()
	case key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ && k.Ctrl:
		// tcell reports Ctrl+letter as a control code; Tab is Ctrl+I and only
		// counts when the terminal also reported the Ctrl modifier.
		k.Rune = rune('a' + int(key-tcell.KeyCtrlA))
	default:
		return k, false
	}
	return k, true
}

// ProcessEvent takes a tcell key event and returns the corresponding ActionEvent.
func (p *InputProcessor) ProcessEvent(ev *tcell.EventKey) ActionEvent {
	key := ev.Key()
	mod := ev.Modifiers()
	runeVal := ev.Rune()

	// 1. Formatting shortcuts win over everything else.
	if ks, ok := FromTcell(ev); ok {
		if action, ok := Shortcut(ks); ok {
			return ActionEvent{Action: action}
		}
	}

	// 2. Toolbar controls: F1..F12 and Alt+1..9.
	if key >= tcell.KeyF1 && key <= tcell.KeyF12 {
		return ActionEvent{Action: ActionActivateControl, Index: int(key - tcell.KeyF1)}
	}
	if key == tcell.KeyRune && mod&tcell.ModAlt != 0 && runeVal >= '1' && runeVal <= '9' {
		return ActionEvent{Action: ActionActivateControl, Index: int(runeVal - '1')}
	}

	// 3. Check Modifier + Key combinations
	if modKeyMap, modOk := p.modKeymap[mod&^tcell.ModShift]; modOk {
		if action, keyOk := modKeyMap[key]; keyOk {
			return ActionEvent{Action: action}
		}
	}

	// 4. Check simple Key mappings; Shift extends the selection.
	if mod == tcell.ModNone || mod == tcell.ModShift {
		if action, ok := p.keymap[key]; ok {
			return ActionEvent{Action: action, Extend: mod == tcell.ModShift}
		}
	}

	// 5. Plain runes are insertion requests.
	if key == tcell.KeyRune && mod&(tcell.ModCtrl|tcell.ModAlt|tcell.ModMeta) == 0 {
		return ActionEvent{Action: ActionInsertRune, Rune: runeVal}
	}

	// 6. No mapping found
	return ActionEvent{Action: ActionUnknown}
}
