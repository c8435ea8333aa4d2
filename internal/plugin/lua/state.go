// Package lua runs editor plugins written in Lua.
//
// A script may define any of the global functions init(), beforeExecCommand(name, value),
// afterExecCommand(name, value) and shutdown(). Missing globals are treated as absent
// capabilities. A command value of "" reaches Lua as nil.
//
// gopher-lua's LState is not goroutine-safe; the mutex in Script serialises Go callers.
package lua

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultExecutionTimeout bounds every call into a script.
const DefaultExecutionTimeout = 2 * time.Second

var (
	// ErrNoScript is returned when the script source is empty.
	ErrNoScript = errors.New("lua: empty script")

	// ErrStateClosed is returned when calling into a script after Shutdown.
	ErrStateClosed = errors.New("lua: state is closed")

	// ErrVetoed is returned when beforeExecCommand returns false.
	ErrVetoed = errors.New("lua: command vetoed by script")
)

// newSandboxedState creates an LState with only the safe standard libraries.
func newSandboxedState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	// io, os, debug and package are intentionally NOT opened.
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// call invokes global fn with a timeout. It returns (nil, nil) when fn is
// not defined.
func call(L *lua.LState, timeout time.Duration, fn string, args ...lua.LValue) ([]lua.LValue, error) {
	fnVal := L.GetGlobal(fn)
	if fnVal.Type() != lua.LTFunction {
		return nil, nil
	}

	top := L.GetTop()
	if err := pcall(L, timeout, fnVal, args...); err != nil {
		L.SetTop(top)
		return nil, fmt.Errorf("%s: %w", fn, err)
	}

	n := L.GetTop() - top
	out := make([]lua.LValue, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, L.Get(top+i))
	}
	L.SetTop(top)
	return out, nil
}

// runChunk compiles source and runs its top level under the same limit as
// hook calls.
func runChunk(L *lua.LState, timeout time.Duration, source string) error {
	chunk, err := L.LoadString(source)
	if err != nil {
		return err
	}
	top := L.GetTop()
	defer L.SetTop(top)
	return pcall(L, timeout, chunk)
}

// pcall calls f with args, leaving its results on the stack. Runaway code
// is stopped when timeout expires.
func pcall(L *lua.LState, timeout time.Duration, f lua.LValue, args ...lua.LValue) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	L.SetContext(ctx)
	defer L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	L.Push(f)
	for _, a := range args {
		L.Push(a)
	}
	return L.PCall(len(args), lua.MultRet, nil)
}

// nameFromPath turns "/x/y/shout.lua" into "shout".
func nameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadFile reads a script from disk. The plugin name is the file name
// without extension.
func LoadFile(path string) (*Script, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lua plugin %s: %w", path, err)
	}
	return Load(nameFromPath(path), string(src))
}

// guard is a helper for methods that must not run after Shutdown.
func (s *Script) guard() error {
	if s.closed {
		return ErrStateClosed
	}
	return nil
}
