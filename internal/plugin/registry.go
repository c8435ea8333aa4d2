// internal/plugin/registry.go
package plugin

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bethropolis/wysiii/internal/logger"
)

// ErrEmptyName is returned when registering a plugin without a name.
var ErrEmptyName = errors.New("plugin name cannot be empty")

// Registry holds named plugins in registration order.
type Registry struct {
	mu          sync.RWMutex
	order       []string          // Registration order, which is also hook order
	plugins     map[string]Plugin // Store plugins by name
	initialized bool
	isolate     bool // Log hook failures instead of returning them
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		plugins: make(map[string]Plugin),
	}
}

// SetIsolation switches hook failures from propagate to log-and-continue.
func (r *Registry) SetIsolation(isolate bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.isolate = isolate
}

// Register stores p under name. A second registration under the same name
// replaces the plugin but keeps its original position in the hook order.
func (r *Registry) Register(name string, p Plugin) error {
	if name == "" {
		return fmt.Errorf("plugin registration failed: %w", ErrEmptyName)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[name]; exists {
		logger.DebugTagf("plugin", "Plugin Registry: Replacing plugin '%s'", name)
	} else {
		r.order = append(r.order, name)
		logger.DebugTagf("plugin", "Plugin Registry: Registered plugin '%s'", name)
	}
	r.plugins[name] = p
	return nil
}

// Get returns a registered plugin by name.
func (r *Registry) Get(name string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[name]
	return p, ok
}

// Names returns the registered names in hook order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered plugins.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Initialized reports whether InitAll has run.
func (r *Registry) Initialized() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.initialized
}

type entry struct {
	name   string
	plugin Plugin
}

// snapshot copies the ordered plugin list so hooks run without the lock held;
// plugins may call Register from inside a hook.
func (r *Registry) snapshot() ([]entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entry, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, entry{name: name, plugin: r.plugins[name]})
	}
	return out, r.isolate
}

// InitAll calls Init(host) on every plugin currently registered, in order,
// and enables hooks. Calling it again re-initialises every plugin.
func (r *Registry) InitAll(host Host) error {
	plugins, isolate := r.snapshot()

	r.mu.Lock()
	r.initialized = true
	r.mu.Unlock()

	logger.DebugTagf("plugin", "Plugin Registry: Initializing %d plugins...", len(plugins))
	for _, e := range plugins {
		if !has(e.plugin, HookInit) {
			continue
		}
		if err := e.plugin.(Initializer).Init(host); err != nil {
			err = fmt.Errorf("plugin '%s' init: %w", e.name, err)
			if !isolate {
				return err
			}
			logger.Errorf("Plugin Registry: %v", err)
			continue
		}
		logger.DebugTagf("plugin", "Plugin Registry: Initialized plugin '%s'", e.name)
	}
	return nil
}

// RunHook calls hook h with (name, value) on every plugin defining it, in
// registration order. Plugins without the hook are skipped. Before InitAll
// has run it does nothing.
func (r *Registry) RunHook(h Hook, name, value string) error {
	if !r.Initialized() {
		return nil
	}
	plugins, isolate := r.snapshot()

	for _, e := range plugins {
		if !has(e.plugin, h) {
			continue
		}
		var err error
		switch h {
		case HookBeforeExec:
			err = e.plugin.(BeforeExecHook).BeforeExecCommand(name, value)
		case HookAfterExec:
			err = e.plugin.(AfterExecHook).AfterExecCommand(name, value)
		default:
			return fmt.Errorf("hook %v cannot be run with command arguments", h)
		}
		if err != nil {
			err = fmt.Errorf("plugin '%s' %v(%q): %w", e.name, h, name, err)
			if !isolate {
				return err
			}
			logger.Warnf("Plugin Registry: %v", err)
		}
	}
	return nil
}

// ShutdownAll calls Shutdown on every plugin that defines it. Errors are
// logged; shutdown always reaches every plugin.
func (r *Registry) ShutdownAll() {
	plugins, _ := r.snapshot()

	logger.DebugTagf("plugin", "Plugin Registry: Shutting down %d plugins...", len(plugins))
	for _, e := range plugins {
		if !has(e.plugin, HookShutdown) {
			continue
		}
		if err := e.plugin.(Shutdowner).Shutdown(); err != nil {
			logger.Errorf("Plugin Registry: ERROR shutting down plugin '%s': %v", e.name, err)
		}
	}
}
