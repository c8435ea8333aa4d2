package app

import (
	"github.com/bethropolis/wysiii/internal/dispatcher"
	"github.com/bethropolis/wysiii/internal/event"
	"github.com/bethropolis/wysiii/internal/logger"
)

// subscribeEvents wires the App's reactions to editor events.
func (a *App) subscribeEvents() {
	a.events.Subscribe(event.TypeHistoryMoved, a.handleHistoryMovedForStatus)
	a.events.Subscribe(event.TypeModeChanged, a.handleModeChangedForStatus)
	a.events.Subscribe(event.TypeContentChanged, a.handleContentChangedForHighlighting)
}

// handleHistoryMovedForStatus reports undo and redo steps.
func (a *App) handleHistoryMovedForStatus(e event.Event) bool {
	if data, ok := e.Data.(event.HistoryMovedData); ok {
		verb := "Undo"
		if data.Redo {
			verb = "Redo"
		}
		a.statusBar.SetTemporaryMessage("%s (%d/%d)", verb, data.Index+1, data.Len)
	}
	return false // Not consumed
}

// handleModeChangedForStatus names the new view.
func (a *App) handleModeChangedForStatus(e event.Event) bool {
	if data, ok := e.Data.(event.ModeChangedData); ok {
		a.statusBar.SetEditorMode(data.Mode)
		if data.Mode == "source" {
			a.statusBar.SetTemporaryMessage("Source view (read-only). Press the code button to return")
		}
	}
	a.scroll = 0
	return false
}

// handleContentChangedForHighlighting drops the cached highlight when the
// listing changed.
func (a *App) handleContentChangedForHighlighting(e event.Event) bool {
	if data, ok := e.Data.(event.ContentChangedData); ok && data.Reason == dispatcher.ReasonMode {
		logger.DebugTagf("highlight", "App: content replaced by mode switch, clearing highlight cache")
		a.hlSource, a.hlResult = "", nil
	}
	return false
}
