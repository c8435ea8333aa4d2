// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/bethropolis/wysiii/internal/clipboard"
	"github.com/bethropolis/wysiii/internal/config"
	"github.com/bethropolis/wysiii/internal/content"
	"github.com/bethropolis/wysiii/internal/editor"
	"github.com/bethropolis/wysiii/internal/event"
	"github.com/bethropolis/wysiii/internal/highlighter"
	"github.com/bethropolis/wysiii/internal/input"
	"github.com/bethropolis/wysiii/internal/logger"
	"github.com/bethropolis/wysiii/internal/markup"
	"github.com/bethropolis/wysiii/internal/preview"
	"github.com/bethropolis/wysiii/internal/statusbar"
	"github.com/bethropolis/wysiii/internal/theme"
	"github.com/bethropolis/wysiii/internal/tui"
)

// tickInterval wakes the loop so expired status messages disappear.
const tickInterval = time.Second

// App encapsulates the core components and main loop of the editor.
type App struct {
	cfg            *config.Config
	tuiManager     *tui.TUI
	editor         *editor.Editor
	surface        *markup.Surface
	doc            *editor.MemoryInput
	events         *event.Manager
	statusBar      *statusbar.StatusBar
	themeManager   *theme.Manager
	inputProcessor *input.InputProcessor
	clipboard      *clipboard.Manager
	highlighter    *highlighter.Highlighter
	preview        *preview.Server

	filePath   string
	savedValue string // Value last read from or written to filePath

	view        *view
	prompt      *promptState // Non-nil while a prompt owns the bottom row
	scroll      int
	toolbarEnds []int
	quitArmed   bool // Ctrl+Q pressed once with unsaved changes
	quit        bool
	closed      bool
	stopTicker  chan struct{}

	// Highlight of the last source text drawn
	hlSource string
	hlResult highlighter.Result
}

// NewApp creates the application for the document at filePath. A nil
// screen opens the terminal.
func NewApp(cfg *config.Config, filePath string, screen tcell.Screen) (*App, error) {
	themesDir := ""
	if dir, err := config.ThemesDir(); err == nil {
		themesDir = dir
	}
	themeManager := theme.NewManager(themesDir)
	if err := themeManager.SetTheme(cfg.Editor.Theme); err != nil {
		logger.Warnf("App: %v, keeping %s", err, themeManager.Current().Name)
	}
	defStyle := themeManager.Current().GetStyle("Default")

	var tuiManager *tui.TUI
	var err error
	if screen == nil {
		tuiManager, err = tui.New(defStyle)
	} else {
		tuiManager, err = tui.NewWithScreen(screen, defStyle)
	}
	if err != nil {
		return nil, fmt.Errorf("TUI initialization failed: %w", err)
	}

	initial, err := readDocument(filePath)
	if err != nil {
		tuiManager.Close()
		return nil, err
	}

	hl, err := highlighter.NewHighlighter()
	if err != nil {
		tuiManager.Close()
		return nil, fmt.Errorf("highlighter initialization failed: %w", err)
	}

	a := &App{
		cfg:            cfg,
		tuiManager:     tuiManager,
		doc:            editor.NewMemoryInput(initial, nil),
		events:         event.NewManager(),
		statusBar:      statusbar.New(statusbar.ConfigFromTheme(themeManager.Current(), config.MessageTimeout)),
		themeManager:   themeManager,
		inputProcessor: input.NewInputProcessor(),
		clipboard:      clipboard.NewManager(cfg.Editor.SystemClipboard),
		highlighter:    hl,
		filePath:       filePath,
		stopTicker:     make(chan struct{}),
	}

	if cfg.Preview.Enabled {
		a.preview = preview.New(cfg.Preview.Addr)
		a.preview.Subscribe(a.events)
	}
	a.subscribeEvents()

	a.surface = markup.NewSurface(content.Content{})
	options := []editor.Option{
		editor.WithEvents(a.events),
		editor.WithDefaults(editor.Options{
			Buttons:     cfg.Editor.Buttons,
			Colors:      cfg.Editor.Colors,
			Placeholder: cfg.Editor.Placeholder,
		}),
		editor.WithHistoryLimit(cfg.Editor.HistoryLimit),
		editor.WithIsolateHookErrors(cfg.Editor.IsolateHookErrors),
		editor.WithPluginConfig(cfg.PluginValue),
		editor.WithStatusFunc(func(msg string) { a.statusBar.SetTemporaryMessage("%s", msg) }),
		editor.WithCollector(editor.CollectorFunc(a.collect)),
	}
	options = append(options, pluginOptions(cfg)...)

	ed, err := editor.New(a.doc, a.surface, markup.NewExecutor(a.surface), options...)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("editor initialization failed: %w", err)
	}
	a.editor = ed
	a.savedValue = a.doc.Value()

	registerAppCommands(a)
	if err := ed.InitPlugins(); err != nil {
		logger.Errorf("App: plugin initialization failed: %v", err)
		a.statusBar.SetErrorMessage("Plugin error: %v", err)
	}
	return a, nil
}

// readDocument returns the file content, or "" for a new file.
func readDocument(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Infof("App: '%s' does not exist yet, starting empty", path)
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read '%s': %w", path, err)
	}
	return string(data), nil
}

// Run starts the preview server if configured and processes terminal
// events until the user quits.
func (a *App) Run() error {
	defer a.Close()

	if a.preview != nil {
		if err := a.preview.Start(); err != nil {
			a.statusBar.SetErrorMessage("Preview: %v", err)
		} else {
			a.preview.Publish(a.doc.Value())
			a.statusBar.SetTemporaryMessage("Preview on http://%s", a.preview.Addr())
		}
	}
	go a.ticker()

	a.events.Dispatch(event.TypeAppReady, event.AppReadyData{})
	if msg, ok := a.statusBar.Message(); !ok || msg == "" {
		a.statusBar.SetTemporaryMessage("wysiii - Ctrl+S Save | Ctrl+P Command | Ctrl+Q Quit")
	}

	for !a.quit {
		a.draw()
		ev := a.tuiManager.PollEvent()
		if ev == nil {
			break
		}
		a.handleEvent(ev)
	}

	a.events.Dispatch(event.TypeAppQuit, event.AppQuitData{})
	if a.modified() {
		logger.Warnf("App: exited with unsaved changes")
	}
	logger.Infof("Exiting application.")
	return nil
}

// ticker posts interrupts so the loop redraws while idle.
func (a *App) ticker() {
	t := time.NewTicker(tickInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			_ = a.tuiManager.PostEvent(tcell.NewEventInterrupt(nil))
		case <-a.stopTicker:
			return
		}
	}
}

// handleEvent reacts to one terminal event.
func (a *App) handleEvent(ev tcell.Event) {
	switch e := ev.(type) {
	case *tcell.EventResize:
		a.tuiManager.GetScreen().Sync()
	case *tcell.EventKey:
		a.handleKey(e)
	case *tcell.EventMouse:
		a.handleMouse(e)
	}
}

// Close shuts plugins, the preview server and the terminal down. It is
// safe to call more than once.
func (a *App) Close() {
	if a.closed {
		return
	}
	a.closed = true
	close(a.stopTicker)
	if a.editor != nil {
		a.editor.Close()
	}
	if a.preview != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := a.preview.Shutdown(ctx); err != nil {
			logger.Warnf("App: preview shutdown: %v", err)
		}
		cancel()
	}
	if a.highlighter != nil {
		a.highlighter.Close()
		a.highlighter = nil
	}
	a.tuiManager.Close()
}

// documentValue returns the markup to save. In source mode the input
// mirrors the escaped listing, not the markup.
func (a *App) documentValue() string {
	return a.editor.DocumentValue()
}

// modified reports whether the document differs from the file.
func (a *App) modified() bool {
	return a.documentValue() != a.savedValue
}

// Editor exposes the editor, for tests and embedding.
func (a *App) Editor() *editor.Editor { return a.editor }

// SetStatusMessage shows a temporary message on the status bar.
func (a *App) SetStatusMessage(format string, args ...interface{}) {
	a.statusBar.SetTemporaryMessage(format, args...)
}
