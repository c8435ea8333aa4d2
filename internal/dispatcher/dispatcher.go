// Package dispatcher turns command intents into one complete edit cycle:
// plugin hooks, the formatting executor, focus, mirror sync and a history record.
package dispatcher

import (
	"github.com/bethropolis/wysiii/internal/content"
	"github.com/bethropolis/wysiii/internal/event"
	"github.com/bethropolis/wysiii/internal/history"
	"github.com/bethropolis/wysiii/internal/logger"
	"github.com/bethropolis/wysiii/internal/plugin"
)

// Executor applies a named formatting command to the surface's current
// selection. An empty value means the command takes none.
type Executor interface {
	Apply(name, value string) error
}

// Surface is the editable area the executor works on.
type Surface interface {
	Content() content.Content
	SetContent(c content.Content)
	Focus()
}

// Mirror receives the serialized content after every sync.
type Mirror interface {
	SetValue(v string)
}

// Intent is a single user-initiated command.
type Intent struct {
	Name  string
	Value string
}

// Reasons attached to ContentChanged events.
const (
	ReasonInit     = "init"
	ReasonDispatch = "dispatch"
	ReasonInput    = "input"
	ReasonMode     = "mode"
	ReasonUndo     = "undo"
	ReasonRedo     = "redo"
)

// Deps groups the collaborators a Dispatcher drives.
type Deps struct {
	Surface  Surface
	Executor Executor
	Mirror   Mirror
	Plugins  *plugin.Registry // Optional; an empty registry is created when nil
	History  *history.Store   // Optional; a default-sized store is created when nil
	Events   *event.Manager   // Optional
}

// Dispatcher runs dispatch cycles. It is not safe for concurrent use.
type Dispatcher struct {
	surface Surface
	exec    Executor
	mirror  Mirror
	plugins *plugin.Registry
	history *history.Store
	events  *event.Manager
}

// New creates a dispatcher. It does not take the initial snapshot; the
// owner calls Sync once its surface holds the starting content.
func New(d Deps) *Dispatcher {
	if d.Plugins == nil {
		d.Plugins = plugin.NewRegistry()
	}
	if d.History == nil {
		d.History = history.NewStore(history.Unlimited)
	}
	return &Dispatcher{
		surface: d.Surface,
		exec:    d.Executor,
		mirror:  d.Mirror,
		plugins: d.Plugins,
		history: d.History,
		events:  d.Events,
	}
}

// Plugins returns the registry hooks are run from.
func (d *Dispatcher) Plugins() *plugin.Registry { return d.plugins }

// History returns the snapshot store.
func (d *Dispatcher) History() *history.Store { return d.history }

// Dispatch runs one full cycle for (name, value):
//
//  1. beforeExecCommand on every plugin, in registration order
//  2. Executor.Apply
//  3. afterExecCommand on every plugin, in registration order
//  4. Surface.Focus
//  5. mirror sync and exactly one history record
//
// A hook error aborts the cycle and is returned; nothing after the failing
// hook runs. Executor errors only mean the command had no visible effect,
// so they are logged and the cycle completes.
func (d *Dispatcher) Dispatch(name, value string) error {
	logger.DebugTagf("dispatch", "Dispatch: %s(%q)", name, value)

	if err := d.plugins.RunHook(plugin.HookBeforeExec, name, value); err != nil {
		logger.Warnf("Dispatch: %s aborted: %v", name, err)
		return err
	}

	if err := d.exec.Apply(name, value); err != nil {
		logger.Warnf("Dispatch: executor could not apply %s: %v", name, err)
	}

	if err := d.plugins.RunHook(plugin.HookAfterExec, name, value); err != nil {
		logger.Warnf("Dispatch: %s aborted after execution: %v", name, err)
		return err
	}

	d.surface.Focus()
	d.Sync(ReasonDispatch)

	d.publish(event.TypeCommandDispatched, event.CommandDispatchedData{Name: name, Value: value})
	return nil
}

// DispatchIntent is Dispatch for a prepared Intent.
func (d *Dispatcher) DispatchIntent(in Intent) error {
	return d.Dispatch(in.Name, in.Value)
}

// Sync mirrors the surface content into the input and records it. It is the
// last step of Dispatch and also how keystrokes, construction and mode
// changes reach history.
func (d *Dispatcher) Sync(reason string) {
	c := d.surface.Content()
	d.mirror.SetValue(c.Serialize())
	d.history.Record(c)
	d.publish(event.TypeContentChanged, event.ContentChangedData{Content: c, Reason: reason})
}

// Undo restores the previous snapshot. It reports false, changing nothing,
// when there is nothing to undo.
func (d *Dispatcher) Undo() bool {
	c, ok := d.history.Undo()
	if !ok {
		return false
	}
	d.restore(c, ReasonUndo)
	return true
}

// Redo restores the next snapshot. It reports false, changing nothing,
// when the cursor is already at the newest snapshot.
func (d *Dispatcher) Redo() bool {
	c, ok := d.history.Redo()
	if !ok {
		return false
	}
	d.restore(c, ReasonRedo)
	return true
}

// restore pushes a snapshot to the surface and mirror. History only moves
// its cursor; nothing is recorded.
func (d *Dispatcher) restore(c content.Content, reason string) {
	d.surface.SetContent(c)
	d.mirror.SetValue(c.Serialize())

	d.publish(event.TypeContentChanged, event.ContentChangedData{Content: c, Reason: reason})
	d.publish(event.TypeHistoryMoved, event.HistoryMovedData{
		Index: d.history.Index(),
		Len:   d.history.Len(),
		Redo:  reason == ReasonRedo,
	})
}

func (d *Dispatcher) publish(t event.Type, data interface{}) {
	if d.events != nil {
		d.events.Dispatch(t, data)
	}
}
