// internal/statusbar/statusbar.go
package statusbar

import (
	"fmt"
	"sync"
	"time"

	"github.com/bethropolis/wysiii/internal/theme"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg" // For proper Unicode width calculation
)

// Config defines the appearance and behavior of the status bar.
type Config struct {
	StyleDefault   tcell.Style // Default background/foreground
	StyleMode      tcell.Style // Style for the mode indicator
	StyleMessage   tcell.Style // Style for temporary messages
	StyleError     tcell.Style // Style for error messages
	MessageTimeout time.Duration
}

// DefaultConfig provides sensible defaults.
func DefaultConfig() Config {
	return Config{
		StyleDefault:   tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorBlue),
		StyleMode:      tcell.StyleDefault.Foreground(tcell.ColorYellow).Background(tcell.ColorBlue).Bold(true),
		StyleMessage:   tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlue).Bold(true),
		StyleError:     tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorBlue).Bold(true),
		MessageTimeout: 4 * time.Second,
	}
}

// ConfigFromTheme takes the bar styles from th.
func ConfigFromTheme(th *theme.Theme, timeout time.Duration) Config {
	return Config{
		StyleDefault:   th.GetStyle("StatusBar"),
		StyleMode:      th.GetStyle("StatusBarMode"),
		StyleMessage:   th.GetStyle("StatusBarMessage"),
		StyleError:     th.GetStyle("StatusBarError"),
		MessageTimeout: timeout,
	}
}

// StatusBar represents the UI component for the status line.
type StatusBar struct {
	config Config
	mu     sync.RWMutex // Protect access to text fields

	docPath    string
	isModified bool
	editorMode string
	histIndex  int
	histLen    int

	tempMessage     string
	tempMessageTime time.Time
	tempIsError     bool
}

// New creates a new StatusBar with the given configuration.
func New(config Config) *StatusBar {
	return &StatusBar{config: config}
}

// SetConfig swaps the styles, for theme changes.
func (sb *StatusBar) SetConfig(config Config) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.config = config
}

// SetFileInfo updates the document path shown in the status bar.
func (sb *StatusBar) SetFileInfo(path string, modified bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.docPath = path
	sb.isModified = modified
}

// SetHistoryInfo updates the undo position shown.
func (sb *StatusBar) SetHistoryInfo(index, length int) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.histIndex = index
	sb.histLen = length
}

// SetEditorMode updates the displayed editor mode.
func (sb *StatusBar) SetEditorMode(mode string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.editorMode = mode
}

// SetTemporaryMessage displays a message for a configured duration.
func (sb *StatusBar) SetTemporaryMessage(format string, args ...interface{}) {
	sb.setMessage(false, format, args...)
}

// SetErrorMessage is SetTemporaryMessage in the error style.
func (sb *StatusBar) SetErrorMessage(format string, args ...interface{}) {
	sb.setMessage(true, format, args...)
}

func (sb *StatusBar) setMessage(isErr bool, format string, args ...interface{}) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.tempMessage = fmt.Sprintf(format, args...)
	sb.tempMessageTime = time.Now()
	sb.tempIsError = isErr
}

// ResetTemporaryMessage clears any temporary message being displayed
func (sb *StatusBar) ResetTemporaryMessage() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.tempMessage = ""
	sb.tempMessageTime = time.Time{}
}

// Message returns the temporary message if it is still showing.
func (sb *StatusBar) Message() (string, bool) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	if sb.tempMessageTime.IsZero() || time.Since(sb.tempMessageTime) > sb.config.MessageTimeout {
		return "", false
	}
	return sb.tempMessage, true
}

// Text builds the default status line text.
func (sb *StatusBar) Text() string {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	return sb.defaultText()
}

func (sb *StatusBar) defaultText() string {
	path := sb.docPath
	if path == "" {
		path = "[No Name]"
	}
	modified := ""
	if sb.isModified {
		modified = " [Modified]"
	}
	mode := ""
	if sb.editorMode != "" {
		mode = fmt.Sprintf(" -- %s", sb.editorMode)
	}
	return fmt.Sprintf("%s%s -- History: %d/%d%s", path, modified, sb.histIndex+1, sb.histLen, mode)
}

// Draw renders the status bar onto the last screen row.
func (sb *StatusBar) Draw(screen tcell.Screen, width, height int) {
	if height <= 0 || width <= 0 {
		return
	}
	y := height - 1

	sb.mu.Lock()
	active := !sb.tempMessageTime.IsZero() && time.Since(sb.tempMessageTime) <= sb.config.MessageTimeout
	if !sb.tempMessageTime.IsZero() && !active {
		sb.tempMessage = ""
		sb.tempMessageTime = time.Time{}
	}

	var style tcell.Style
	var text string
	switch {
	case active && sb.tempIsError:
		text, style = sb.tempMessage, sb.config.StyleError
	case active:
		text, style = sb.tempMessage, sb.config.StyleMessage
	default:
		text, style = sb.defaultText(), sb.config.StyleDefault
	}
	sb.mu.Unlock()

	for x := 0; x < width; x++ {
		screen.SetContent(x, y, ' ', nil, style)
	}
	DrawText(screen, 0, y, width, text, style)
}

// DrawText writes text from (x, y) using grapheme widths, clipped at
// maxWidth cells. It returns the number of cells used.
func DrawText(screen tcell.Screen, x, y, maxWidth int, text string, style tcell.Style) int {
	gr := uniseg.NewGraphemes(text)
	used := 0
	for gr.Next() {
		w := gr.Width()
		if used+w > maxWidth {
			break
		}
		runes := gr.Runes()
		if len(runes) > 0 {
			screen.SetContent(x+used, y, runes[0], runes[1:], style)
		}
		used += w
	}
	return used
}
