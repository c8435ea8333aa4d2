// internal/event/events.go
package event

import "github.com/bethropolis/wysiii/internal/content"

// Type identifies the kind of event.
type Type int

const (
	TypeUnknown Type = iota

	// Editor events
	TypeContentChanged    // Fired after the mirrored value was synchronised
	TypeCommandDispatched // Fired after a dispatch cycle completed
	TypeHistoryMoved      // Fired after undo/redo restored a snapshot
	TypeModeChanged       // Fired when the surface switches between rich and source mode

	// Application lifecycle events
	TypeAppReady
	TypeAppQuit
)

// String returns a readable name for logs.
func (t Type) String() string {
	switch t {
	case TypeContentChanged:
		return "ContentChanged"
	case TypeCommandDispatched:
		return "CommandDispatched"
	case TypeHistoryMoved:
		return "HistoryMoved"
	case TypeModeChanged:
		return "ModeChanged"
	case TypeAppReady:
		return "AppReady"
	case TypeAppQuit:
		return "AppQuit"
	default:
		return "Unknown"
	}
}

// Event is the structure passed through the event bus.
type Event struct {
	Type Type
	Data interface{}
}

// ContentChangedData carries the content that was just mirrored.
type ContentChangedData struct {
	Content content.Content
	Reason  string // "dispatch", "input", "undo", "redo", "mode", "init"
}

// CommandDispatchedData describes a completed dispatch cycle.
type CommandDispatchedData struct {
	Name  string
	Value string
}

// HistoryMovedData reports the history cursor after undo or redo.
type HistoryMovedData struct {
	Index int
	Len   int
	Redo  bool
}

// ModeChangedData carries the new surface mode name.
type ModeChangedData struct {
	Mode string
}

// AppReadyData could contain initial config or state later.
type AppReadyData struct{}

// AppQuitData could contain exit code or reason later.
type AppQuitData struct{}
