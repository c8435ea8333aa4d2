package lua

import (
	"fmt"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/bethropolis/wysiii/internal/logger"
	"github.com/bethropolis/wysiii/internal/plugin"
)

// Global function names a script may define.
const (
	fnInit   = "init"
	fnBefore = "beforeExecCommand"
	fnAfter  = "afterExecCommand"
	fnStop   = "shutdown"
)

// Script is a plugin backed by a Lua chunk.
type Script struct {
	name    string
	timeout time.Duration

	mu     sync.Mutex
	L      *lua.LState
	host   plugin.Host
	closed bool
}

// Ensure Script satisfies every plugin capability.
var (
	_ plugin.Initializer    = (*Script)(nil)
	_ plugin.BeforeExecHook = (*Script)(nil)
	_ plugin.AfterExecHook  = (*Script)(nil)
	_ plugin.Shutdowner     = (*Script)(nil)
	_ plugin.HookDefiner    = (*Script)(nil)
)

// Load compiles and runs source once in a fresh sandbox so its globals are
// defined. The top level is bounded by DefaultExecutionTimeout.
func Load(name, source string) (*Script, error) {
	return load(name, source, DefaultExecutionTimeout)
}

func load(name, source string, timeout time.Duration) (*Script, error) {
	if strings.TrimSpace(source) == "" {
		return nil, ErrNoScript
	}
	s := &Script{
		name:    name,
		timeout: timeout,
		L:       newSandboxedState(),
	}
	s.installHostTable()

	if err := runChunk(s.L, s.timeout, source); err != nil {
		s.L.Close()
		return nil, fmt.Errorf("loading lua plugin %q: %w", name, err)
	}
	logger.DebugTagf("plugin", "Lua: Loaded script '%s'", name)
	return s, nil
}

// Name returns the plugin name the script registers under.
func (s *Script) Name() string { return s.name }

// SetTimeout changes the per-call execution limit.
func (s *Script) SetTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d > 0 {
		s.timeout = d
	}
}

// Defines reports whether the script declared the global for hook h.
func (s *Script) Defines(h plugin.Hook) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	var fn string
	switch h {
	case plugin.HookInit:
		fn = fnInit
	case plugin.HookBeforeExec:
		fn = fnBefore
	case plugin.HookAfterExec:
		fn = fnAfter
	case plugin.HookShutdown:
		// Shutdown always closes the state, even without a Lua shutdown().
		return true
	default:
		return false
	}
	return s.L.GetGlobal(fn).Type() == lua.LTFunction
}

// Init stores the host handle and runs the script's init().
func (s *Script) Init(host plugin.Host) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}
	s.host = host
	_, err := call(s.L, s.timeout, fnInit)
	return err
}

// BeforeExecCommand runs beforeExecCommand(name, value). Returning false
// from Lua vetoes the command.
func (s *Script) BeforeExecCommand(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}
	ret, err := call(s.L, s.timeout, fnBefore, lua.LString(name), optional(value))
	if err != nil {
		return err
	}
	if len(ret) > 0 && ret[0] == lua.LFalse {
		return fmt.Errorf("%w: %s", ErrVetoed, name)
	}
	return nil
}

// AfterExecCommand runs afterExecCommand(name, value).
func (s *Script) AfterExecCommand(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}
	_, err := call(s.L, s.timeout, fnAfter, lua.LString(name), optional(value))
	return err
}

// Shutdown runs shutdown() if defined and closes the Lua state.
func (s *Script) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	_, err := call(s.L, s.timeout, fnStop)
	s.L.Close()
	s.closed = true
	return err
}

func optional(v string) lua.LValue {
	if v == "" {
		return lua.LNil
	}
	return lua.LString(v)
}

// installHostTable exposes the global "wysiii" table:
//
//	wysiii.content()      -> current serialized content
//	wysiii.status(msg)    -> status line message
//	wysiii.config(key)    -> value from [plugins.<name>] or nil
//
// The functions are no-ops (or return nil) before init.
func (s *Script) installHostTable() {
	L := s.L
	tbl := L.NewTable()
	L.SetFuncs(tbl, map[string]lua.LGFunction{
		"content": func(L *lua.LState) int {
			if s.host == nil {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(lua.LString(s.host.Content().Serialize()))
			return 1
		},
		"status": func(L *lua.LState) int {
			msg := L.CheckString(1)
			if s.host != nil {
				s.host.SetStatusMessage("%s", msg)
			}
			return 0
		},
		"config": func(L *lua.LState) int {
			key := L.CheckString(1)
			if s.host == nil {
				L.Push(lua.LNil)
				return 1
			}
			v, ok := s.host.PluginConfigValue(s.name, key)
			if !ok {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(toLua(L, v))
			return 1
		},
	})
	L.SetGlobal("wysiii", tbl)
}

// toLua converts decoded TOML values into Lua values.
func toLua(L *lua.LState, v interface{}) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case string:
		return lua.LString(x)
	case bool:
		return lua.LBool(x)
	case int:
		return lua.LNumber(x)
	case int64:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case []interface{}:
		t := L.NewTable()
		for _, e := range x {
			t.Append(toLua(L, e))
		}
		return t
	case map[string]interface{}:
		t := L.NewTable()
		for k, e := range x {
			t.RawSetString(k, toLua(L, e))
		}
		return t
	default:
		return lua.LString(fmt.Sprint(x))
	}
}
