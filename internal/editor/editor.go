// Package editor is the rich-text widget: it resolves options from the
// mirrored input, builds the toolbar model, owns the rich/source mode and
// routes toolbar, shortcut and plugin intents through the dispatcher.
package editor

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bethropolis/wysiii/internal/content"
	"github.com/bethropolis/wysiii/internal/dispatcher"
	"github.com/bethropolis/wysiii/internal/event"
	"github.com/bethropolis/wysiii/internal/history"
	"github.com/bethropolis/wysiii/internal/input"
	"github.com/bethropolis/wysiii/internal/logger"
	"github.com/bethropolis/wysiii/internal/markup"
	"github.com/bethropolis/wysiii/internal/plugin"
)

var (
	ErrSourceMode         = errors.New("formatting is disabled in source mode")
	ErrPluginsInitialized = errors.New("plugins already initialized")
	ErrUnknownControl     = errors.New("unknown toolbar control")
	ErrUnknownCommand     = errors.New("unknown command")
	ErrClosed             = errors.New("editor closed")
)

// Surface is the editable area. Besides the dispatcher's needs it can show
// literal text and be made read-only, which the source view uses.
type Surface interface {
	dispatcher.Surface
	Text() string
	SetText(t string)
	SetEditable(on bool)
}

// Prompt describes one value the editor needs from the user.
type Prompt struct {
	Label   string
	Default string
}

// DataCollector asks the user for a value. ok is false when the user
// cancelled.
type DataCollector interface {
	Collect(p Prompt) (value string, ok bool)
}

// CollectorFunc adapts a function to DataCollector.
type CollectorFunc func(p Prompt) (string, bool)

func (f CollectorFunc) Collect(p Prompt) (string, bool) { return f(p) }

// Prompt labels.
const (
	PromptURL     = "Enter new URL:"
	PromptRows    = "Number of rows:"
	PromptColumns = "Number of columns:"
)

// Mode is the surface mode.
type Mode int

const (
	RichMode Mode = iota
	SourceMode
)

func (m Mode) String() string {
	if m == SourceMode {
		return "source"
	}
	return "rich"
}

type namedPlugin struct {
	name string
	p    plugin.Plugin
}

type settings struct {
	plugins      []namedPlugin
	collector    DataCollector
	events       *event.Manager
	defaults     Options
	isolate      bool
	status       func(msg string)
	pluginConfig func(pluginName, key string) (interface{}, bool)
	historyLimit int
}

// Option configures New.
type Option func(*settings)

// WithPlugin registers a plugin before the first snapshot is taken.
func WithPlugin(name string, p plugin.Plugin) Option {
	return func(s *settings) { s.plugins = append(s.plugins, namedPlugin{name, p}) }
}

// WithCollector sets the collector used by link, image and table flows.
// Without one those flows dispatch nothing.
func WithCollector(c DataCollector) Option {
	return func(s *settings) { s.collector = c }
}

// WithEvents shares an event manager with the host.
func WithEvents(m *event.Manager) Option {
	return func(s *settings) { s.events = m }
}

// WithDefaults sets the options used when the input has no attributes.
func WithDefaults(o Options) Option {
	return func(s *settings) { s.defaults = o }
}

// WithIsolateHookErrors makes hook failures log and continue instead of
// aborting the dispatch.
func WithIsolateHookErrors(on bool) Option {
	return func(s *settings) { s.isolate = on }
}

// WithStatusFunc receives messages plugins send through SetStatusMessage.
func WithStatusFunc(fn func(msg string)) Option {
	return func(s *settings) { s.status = fn }
}

// WithPluginConfig supplies per-plugin configuration lookups.
func WithPluginConfig(fn func(pluginName, key string) (interface{}, bool)) Option {
	return func(s *settings) { s.pluginConfig = fn }
}

// WithHistoryLimit caps the number of snapshots kept. The default keeps
// them all; once capped, the oldest ones fall off.
func WithHistoryLimit(n int) Option {
	return func(s *settings) { s.historyLimit = n }
}

// Editor ties an input, a surface and an executor together. It is not safe
// for concurrent use.
type Editor struct {
	input     Input
	surface   Surface
	opts      Options
	toolbar   []Control
	mode      Mode
	disp      *dispatcher.Dispatcher
	events    *event.Manager
	collector DataCollector

	status       func(msg string)
	pluginConfig func(pluginName, key string) (interface{}, bool)
	commands     map[string]plugin.CommandFunc

	pluginsInit bool
	closed      bool
}

var _ plugin.Host = (*Editor)(nil)

// New attaches an editor to in. The surface is loaded with the input's
// value, or the placeholder when it is empty, and the first snapshot is
// recorded. A malformed button attribute fails with ErrInvalidOptions
// before anything is touched.
func New(in Input, surface Surface, exec dispatcher.Executor, options ...Option) (*Editor, error) {
	s := settings{defaults: DefaultOptions(), historyLimit: history.Unlimited}
	for _, o := range options {
		o(&s)
	}

	opts, err := ParseOptions(in, s.defaults)
	if err != nil {
		return nil, err
	}

	registry := plugin.NewRegistry()
	registry.SetIsolation(s.isolate)
	for _, np := range s.plugins {
		if err := registry.Register(np.name, np.p); err != nil {
			return nil, fmt.Errorf("register plugin: %w", err)
		}
	}

	if s.events == nil {
		s.events = event.NewManager()
	}

	e := &Editor{
		input:        in,
		surface:      surface,
		opts:         opts,
		toolbar:      BuildToolbar(opts),
		mode:         RichMode,
		events:       s.events,
		collector:    s.collector,
		status:       s.status,
		pluginConfig: s.pluginConfig,
		commands:     make(map[string]plugin.CommandFunc),
	}
	e.disp = dispatcher.New(dispatcher.Deps{
		Surface:  surface,
		Executor: exec,
		Mirror:   in,
		Plugins:  registry,
		History:  history.NewStore(s.historyLimit),
		Events:   s.events,
	})

	initial := in.Value()
	if initial == "" {
		initial = opts.Placeholder
	}
	surface.SetContent(content.Deserialize(initial))
	surface.SetEditable(true)
	e.disp.Sync(dispatcher.ReasonInit)

	logger.Debugf("Editor: created with buttons %v, %d colors", opts.Buttons, len(opts.Colors))
	return e, nil
}

func (e *Editor) Options() Options { return e.opts }
func (e *Editor) Toolbar() []Control { return e.toolbar }
func (e *Editor) Mode() Mode { return e.mode }
func (e *Editor) Input() Input { return e.input }
func (e *Editor) History() *history.Store { return e.disp.History() }
func (e *Editor) Events() *event.Manager { return e.events }
func (e *Editor) Plugins() *plugin.Registry { return e.disp.Plugins() }
func (e *Editor) Surface() Surface { return e.surface }
func (e *Editor) Content() content.Content { return e.surface.Content() }
func (e *Editor) SetCollector(c DataCollector) { e.collector = c }

// DocumentValue returns the document markup. In source mode the surface
// holds the escaped listing, whose text is the markup.
func (e *Editor) DocumentValue() string {
	if e.mode == SourceMode {
		return e.surface.Text()
	}
	return e.surface.Content().Serialize()
}

// Dispatch runs one command cycle. Formatting is refused in source mode.
func (e *Editor) Dispatch(name, value string) error {
	if e.mode == SourceMode {
		return ErrSourceMode
	}
	return e.disp.Dispatch(name, value)
}

// Sync mirrors and records the surface after input the editor did not
// perform itself, such as typing or a host-inserted line break.
func (e *Editor) Sync() {
	e.disp.Sync(dispatcher.ReasonInput)
}

// Undo steps back one snapshot. It is disabled in source mode and reports
// false when nothing changed.
func (e *Editor) Undo() bool {
	if e.mode == SourceMode {
		return false
	}
	return e.disp.Undo()
}

// Redo steps forward one snapshot.
func (e *Editor) Redo() bool {
	if e.mode == SourceMode {
		return false
	}
	return e.disp.Redo()
}

func (e *Editor) control(name string, kind ControlKind) (Control, bool) {
	for _, c := range e.toolbar {
		if c.Name == name && c.Kind == kind {
			return c, true
		}
	}
	return Control{}, false
}

// Activate handles a toolbar button press. Only the source toggle works in
// source mode.
func (e *Editor) Activate(button string) error {
	c, ok := e.control(button, KindButton)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownControl, button)
	}
	if c.Name == ButtonCode {
		e.ToggleSource()
		return nil
	}
	if e.mode == SourceMode {
		return ErrSourceMode
	}

	switch c.Name {
	case ButtonLink, ButtonImage:
		url, ok := e.collect(Prompt{Label: PromptURL})
		if !ok || strings.TrimSpace(url) == "" {
			logger.Debugf("Editor: %s cancelled", c.Name)
			return nil
		}
		return e.Dispatch(c.Command, url)
	case ButtonTable:
		return e.InsertTable()
	}
	return e.Dispatch(c.Command, "")
}

// Select handles a change on one of the toolbar selects. Values the select
// does not offer are ignored.
func (e *Editor) Select(control, value string) error {
	c, ok := e.control(control, KindSelect)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownControl, control)
	}
	if !c.offers(value) {
		logger.Debugf("Editor: %s does not offer %q", control, value)
		return nil
	}
	return e.Dispatch(c.Command, value)
}

// ToggleSource switches between the rendered document and its literal
// markup. Each switch is mirrored and recorded.
func (e *Editor) ToggleSource() Mode {
	if e.mode == RichMode {
		e.surface.SetText(e.surface.Content().Serialize())
		e.surface.SetEditable(false)
		e.mode = SourceMode
	} else {
		e.surface.SetContent(content.Deserialize(e.surface.Text()))
		e.surface.SetEditable(true)
		e.mode = RichMode
	}
	logger.DebugTagf("mode", "Editor: now in %s mode", e.mode)

	e.disp.Sync(dispatcher.ReasonMode)
	e.events.Dispatch(event.TypeModeChanged, event.ModeChangedData{Mode: e.mode.String()})
	return e.mode
}

// InsertTable asks for a row and column count and inserts a table of
// placeholder cells. Cancelling either prompt, or answering with anything
// but a positive number, inserts nothing.
func (e *Editor) InsertTable() error {
	if e.mode == SourceMode {
		return ErrSourceMode
	}
	rows, ok := e.collectCount(PromptRows)
	if !ok {
		return nil
	}
	cols, ok := e.collectCount(PromptColumns)
	if !ok {
		return nil
	}
	return e.Dispatch(markup.CmdInsertHTML, TableMarkup(rows, cols))
}

// TableMarkup builds a rows x cols table of "Cell" entries.
func TableMarkup(rows, cols int) string {
	var b strings.Builder
	b.WriteString(`<table border="1"><tbody>`)
	for i := 0; i < rows; i++ {
		b.WriteString("<tr>")
		for j := 0; j < cols; j++ {
			b.WriteString("<td>Cell</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	return b.String()
}

func (e *Editor) collectCount(label string) (int, bool) {
	raw, ok := e.collect(Prompt{Label: label, Default: "3"})
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		logger.Debugf("Editor: ignoring table size %q", raw)
		return 0, false
	}
	return n, true
}

func (e *Editor) collect(p Prompt) (string, bool) {
	if e.collector == nil {
		logger.Warnf("Editor: no data collector for %q", p.Label)
		return "", false
	}
	return e.collector.Collect(p)
}

// HandleKey runs the editor's keyboard shortcuts. handled is false for keys
// the host should process itself, including Shift+Enter and every key in
// source mode.
func (e *Editor) HandleKey(k input.KeyStroke) (handled bool, err error) {
	action, ok := input.Shortcut(k)
	if !ok || action == input.ActionLineBreak || e.mode == SourceMode {
		return false, nil
	}

	switch action {
	case input.ActionBold:
		return true, e.Dispatch(markup.CmdBold, "")
	case input.ActionItalic:
		return true, e.Dispatch(markup.CmdItalic, "")
	case input.ActionUnderline:
		return true, e.Dispatch(markup.CmdUnderline, "")
	case input.ActionUndo:
		e.Undo()
		return true, nil
	case input.ActionRedo:
		e.Redo()
		return true, nil
	case input.ActionParagraph:
		return true, e.Dispatch(markup.CmdInsertParagraph, "")
	}
	return false, nil
}

// InitPlugins initializes every attached plugin. It may only run once per
// editor.
func (e *Editor) InitPlugins() error {
	if e.pluginsInit {
		return ErrPluginsInitialized
	}
	e.pluginsInit = true
	return e.disp.Plugins().InitAll(e)
}

// Close shuts plugins down. It is safe to call more than once.
func (e *Editor) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.disp.Plugins().ShutdownAll()
}

// --- plugin.Host ---

// Attach registers a plugin. Plugins attached after InitPlugins get no Init
// call.
func (e *Editor) Attach(name string, p plugin.Plugin) error {
	if e.closed {
		return ErrClosed
	}
	return e.disp.Plugins().Register(name, p)
}

func (e *Editor) SubscribeEvent(t event.Type, h event.Handler) {
	e.events.Subscribe(t, h)
}

// RegisterCommand adds a named host command, replacing any previous one.
func (e *Editor) RegisterCommand(name string, fn plugin.CommandFunc) error {
	if name == "" {
		return plugin.ErrEmptyName
	}
	if fn == nil {
		return fmt.Errorf("command '%s': nil function", name)
	}
	if _, exists := e.commands[name]; exists {
		logger.Warnf("Editor: command '%s' re-registered", name)
	}
	e.commands[name] = fn
	return nil
}

// RunCommand runs a command registered by a plugin.
func (e *Editor) RunCommand(name string, args []string) error {
	fn, ok := e.commands[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return fn(args)
}

// Commands lists registered command names, sorted.
func (e *Editor) Commands() []string {
	names := make([]string, 0, len(e.commands))
	for n := range e.commands {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (e *Editor) SetStatusMessage(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if e.status == nil {
		logger.Infof("Status: %s", msg)
		return
	}
	e.status(msg)
}

func (e *Editor) PluginConfigValue(pluginName, key string) (interface{}, bool) {
	if e.pluginConfig == nil {
		return nil, false
	}
	return e.pluginConfig(pluginName, key)
}
