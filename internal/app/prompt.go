package app

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/bethropolis/wysiii/internal/editor"
	"github.com/bethropolis/wysiii/internal/logger"
)

// promptState is the line being typed at the bottom of the screen.
type promptState struct {
	label string
	value string
}

// collect asks the user for a value on the bottom row. It runs its own
// event loop, so the caller blocks until Enter (accept) or Esc (cancel).
// It implements editor.DataCollector for the link, image and table flows.
func (a *App) collect(p editor.Prompt) (string, bool) {
	a.prompt = &promptState{label: p.Label, value: p.Default}
	defer func() { a.prompt = nil }()

	for {
		a.draw()
		ev := a.tuiManager.PollEvent()
		if ev == nil {
			return "", false
		}
		switch e := ev.(type) {
		case *tcell.EventResize:
			a.tuiManager.GetScreen().Sync()
		case *tcell.EventKey:
			switch e.Key() {
			case tcell.KeyEnter:
				logger.DebugTagf("prompt", "Prompt %q accepted", p.Label)
				return a.prompt.value, true
			case tcell.KeyEscape, tcell.KeyCtrlC:
				logger.DebugTagf("prompt", "Prompt %q cancelled", p.Label)
				return "", false
			case tcell.KeyBackspace, tcell.KeyBackspace2:
				a.prompt.value = dropLastGrapheme(a.prompt.value)
			case tcell.KeyCtrlU:
				a.prompt.value = ""
			case tcell.KeyRune:
				a.prompt.value += string(e.Rune())
			}
		}
	}
}

// dropLastGrapheme removes the last user-perceived character of s.
func dropLastGrapheme(s string) string {
	last, pos := 0, 0
	state := -1
	rest := s
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		last = pos
		pos += len(cluster)
	}
	return s[:last]
}
