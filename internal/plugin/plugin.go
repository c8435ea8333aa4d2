// internal/plugin/plugin.go
package plugin

import (
	"github.com/bethropolis/wysiii/internal/content"
	"github.com/bethropolis/wysiii/internal/event"
)

// CommandFunc defines the signature for commands registered by plugins.
// It takes arguments (e.g., from the command prompt) and returns an error.
type CommandFunc func(args []string) error

// Host defines what plugins can reach of the editor that initialised them.
// It is a controlled surface, plugins never see the editor itself.
type Host interface {
	// Content returns the current surface content.
	Content() content.Content

	// DocumentValue returns the document markup. It differs from Content
	// in source mode, where the surface holds the escaped listing.
	DocumentValue() string

	// Attach registers another plugin on the same registry. The new plugin
	// receives no Init call until plugins are initialised again.
	Attach(name string, p Plugin) error

	// SubscribeEvent lets plugins listen to editor events.
	SubscribeEvent(eventType event.Type, handler event.Handler)

	// RegisterCommand exposes a named command to the surrounding UI.
	RegisterCommand(name string, fn CommandFunc) error

	// SetStatusMessage shows a temporary message, if the host has a status line.
	SetStatusMessage(format string, args ...interface{})

	// PluginConfigValue reads a key from the plugin's own config table.
	PluginConfigValue(pluginName, key string) (interface{}, bool)
}

// Plugin is any value registered under a name. Its capabilities are
// discovered through the optional interfaces below; a plugin implementing
// none of them is valid and simply never called.
type Plugin interface{}

// Initializer is implemented by plugins that want the host handle.
type Initializer interface {
	Init(host Host) error
}

// BeforeExecHook runs before the formatting executor applies a command.
// A non-nil error aborts the dispatch cycle.
type BeforeExecHook interface {
	BeforeExecCommand(name, value string) error
}

// AfterExecHook runs after the formatting executor applied a command.
type AfterExecHook interface {
	AfterExecCommand(name, value string) error
}

// Shutdowner is implemented by plugins holding resources (timers, files).
type Shutdowner interface {
	Shutdown() error
}

// Funcs adapts plain functions into a plugin. Nil fields are treated as
// absent capabilities, so the registry skips them.
type Funcs struct {
	InitFunc     func(host Host) error
	BeforeFunc   func(name, value string) error
	AfterFunc    func(name, value string) error
	ShutdownFunc func() error
}

// Ensure Funcs exposes every capability.
var (
	_ Initializer    = Funcs{}
	_ BeforeExecHook = Funcs{}
	_ AfterExecHook  = Funcs{}
	_ Shutdowner     = Funcs{}
)

func (f Funcs) Init(host Host) error {
	if f.InitFunc == nil {
		return nil
	}
	return f.InitFunc(host)
}

func (f Funcs) BeforeExecCommand(name, value string) error {
	if f.BeforeFunc == nil {
		return nil
	}
	return f.BeforeFunc(name, value)
}

func (f Funcs) AfterExecCommand(name, value string) error {
	if f.AfterFunc == nil {
		return nil
	}
	return f.AfterFunc(name, value)
}

func (f Funcs) Shutdown() error {
	if f.ShutdownFunc == nil {
		return nil
	}
	return f.ShutdownFunc()
}

// Defines reports which capabilities are backed by a non-nil function.
func (f Funcs) Defines(h Hook) bool {
	switch h {
	case HookInit:
		return f.InitFunc != nil
	case HookBeforeExec:
		return f.BeforeFunc != nil
	case HookAfterExec:
		return f.AfterFunc != nil
	case HookShutdown:
		return f.ShutdownFunc != nil
	}
	return false
}

// Hook names one of the optional plugin capabilities.
type Hook int

const (
	HookInit Hook = iota
	HookBeforeExec
	HookAfterExec
	HookShutdown
)

func (h Hook) String() string {
	switch h {
	case HookInit:
		return "init"
	case HookBeforeExec:
		return "beforeExecCommand"
	case HookAfterExec:
		return "afterExecCommand"
	case HookShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// HookDefiner lets adapters (Funcs, Lua scripts) declare which of the
// interfaces they satisfy are really backed by code.
type HookDefiner interface {
	Defines(h Hook) bool
}

// has reports whether p implements capability h.
func has(p Plugin, h Hook) bool {
	if d, ok := p.(HookDefiner); ok && !d.Defines(h) {
		return false
	}
	switch h {
	case HookInit:
		_, ok := p.(Initializer)
		return ok
	case HookBeforeExec:
		_, ok := p.(BeforeExecHook)
		return ok
	case HookAfterExec:
		_, ok := p.(AfterExecHook)
		return ok
	case HookShutdown:
		_, ok := p.(Shutdowner)
		return ok
	}
	return false
}
