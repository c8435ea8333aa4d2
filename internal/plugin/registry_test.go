package plugin

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/wysiii/internal/content"
	"github.com/bethropolis/wysiii/internal/event"
)

type nopHost struct{}

func (nopHost) Content() content.Content                            { return content.Content{} }
func (nopHost) DocumentValue() string                               { return "" }
func (nopHost) Attach(string, Plugin) error                         { return nil }
func (nopHost) SubscribeEvent(event.Type, event.Handler)            {}
func (nopHost) RegisterCommand(string, CommandFunc) error           { return nil }
func (nopHost) SetStatusMessage(string, ...interface{})             {}
func (nopHost) PluginConfigValue(string, string) (interface{}, bool) { return nil, false }

// afterOnly implements a single capability through a method set.
type afterOnly struct {
	calls []string
	vals  []string
}

func (a *afterOnly) AfterExecCommand(name, value string) error {
	a.calls = append(a.calls, name)
	a.vals = append(a.vals, value)
	return nil
}

func recorder(log *[]string, id string) Funcs {
	return Funcs{
		InitFunc:   func(Host) error { *log = append(*log, id+":init"); return nil },
		BeforeFunc: func(n, _ string) error { *log = append(*log, id+":before:"+n); return nil },
		AfterFunc:  func(n, _ string) error { *log = append(*log, id+":after:"+n); return nil },
	}
}

func TestRegisterEmptyName(t *testing.T) {
	r := NewRegistry()
	err := r.Register("", Funcs{})
	assert.ErrorIs(t, err, ErrEmptyName)
	assert.Equal(t, 0, r.Len())
}

func TestHooksRunInRegistrationOrder(t *testing.T) {
	var log []string
	r := NewRegistry()
	require.NoError(t, r.Register("b", recorder(&log, "b")))
	require.NoError(t, r.Register("a", recorder(&log, "a")))
	require.NoError(t, r.Register("c", recorder(&log, "c")))
	require.NoError(t, r.InitAll(nopHost{}))

	require.NoError(t, r.RunHook(HookBeforeExec, "bold", ""))
	require.NoError(t, r.RunHook(HookAfterExec, "bold", ""))

	assert.Equal(t, []string{
		"b:init", "a:init", "c:init",
		"b:before:bold", "a:before:bold", "c:before:bold",
		"b:after:bold", "a:after:bold", "c:after:bold",
	}, log)
}

func TestCollisionOverwritesKeepingSlot(t *testing.T) {
	var log []string
	r := NewRegistry()
	require.NoError(t, r.Register("one", recorder(&log, "old")))
	require.NoError(t, r.Register("two", recorder(&log, "two")))
	require.NoError(t, r.Register("one", recorder(&log, "new")))
	require.NoError(t, r.InitAll(nopHost{}))
	log = nil

	require.NoError(t, r.RunHook(HookAfterExec, "italic", ""))
	assert.Equal(t, []string{"new:after:italic", "two:after:italic"}, log)
	assert.Equal(t, []string{"one", "two"}, r.Names())
}

func TestHooksDormantBeforeInit(t *testing.T) {
	p := &afterOnly{}
	r := NewRegistry()
	require.NoError(t, r.Register("p", p))

	require.NoError(t, r.RunHook(HookAfterExec, "bold", ""))
	assert.Empty(t, p.calls)

	require.NoError(t, r.InitAll(nopHost{}))
	require.NoError(t, r.RunHook(HookAfterExec, "bold", ""))
	assert.Equal(t, []string{"bold"}, p.calls)
}

func TestMissingCapabilitiesAreSkipped(t *testing.T) {
	p := &afterOnly{}
	r := NewRegistry()
	require.NoError(t, r.Register("p", p))
	require.NoError(t, r.Register("nothing", struct{}{}))
	require.NoError(t, r.Register("nilfuncs", Funcs{}))
	require.NoError(t, r.InitAll(nopHost{}))

	require.NoError(t, r.RunHook(HookBeforeExec, "italic", ""))
	require.NoError(t, r.RunHook(HookAfterExec, "italic", ""))
	assert.Equal(t, []string{"italic"}, p.calls)
	assert.Equal(t, []string{""}, p.vals)
}

func TestLateRegistrationGetsNoInit(t *testing.T) {
	var log []string
	r := NewRegistry()
	require.NoError(t, r.Register("early", recorder(&log, "early")))
	require.NoError(t, r.InitAll(nopHost{}))
	require.NoError(t, r.Register("late", recorder(&log, "late")))
	assert.Equal(t, []string{"early:init"}, log)

	// Hooks still reach the late plugin.
	log = nil
	require.NoError(t, r.RunHook(HookBeforeExec, "u", ""))
	assert.Equal(t, []string{"early:before:u", "late:before:u"}, log)

	// An explicit second InitAll initialises everyone again.
	log = nil
	require.NoError(t, r.InitAll(nopHost{}))
	assert.Equal(t, []string{"early:init", "late:init"}, log)
}

func TestHookErrorPropagatesAndStops(t *testing.T) {
	boom := errors.New("boom")
	var log []string
	r := NewRegistry()
	require.NoError(t, r.Register("first", Funcs{BeforeFunc: func(string, string) error { return boom }}))
	require.NoError(t, r.Register("second", recorder(&log, "second")))
	require.NoError(t, r.InitAll(nopHost{}))
	log = nil

	err := r.RunHook(HookBeforeExec, "bold", "")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "first")
	assert.Empty(t, log)
}

func TestIsolationContinuesAfterFailure(t *testing.T) {
	boom := errors.New("boom")
	var log []string
	r := NewRegistry()
	r.SetIsolation(true)
	require.NoError(t, r.Register("first", Funcs{
		InitFunc:   func(Host) error { return boom },
		BeforeFunc: func(string, string) error { return boom },
	}))
	require.NoError(t, r.Register("second", recorder(&log, "second")))

	require.NoError(t, r.InitAll(nopHost{}))
	require.NoError(t, r.RunHook(HookBeforeExec, "bold", ""))
	assert.Equal(t, []string{"second:init", "second:before:bold"}, log)
}

func TestInitErrorPropagates(t *testing.T) {
	boom := errors.New("no init")
	r := NewRegistry()
	require.NoError(t, r.Register("bad", Funcs{InitFunc: func(Host) error { return boom }}))
	assert.ErrorIs(t, r.InitAll(nopHost{}), boom)
}

func TestRegisterFromInsideHook(t *testing.T) {
	r := NewRegistry()
	late := &afterOnly{}
	require.NoError(t, r.Register("spawner", Funcs{
		InitFunc: func(Host) error { return r.Register("spawned", late) },
	}))
	require.NoError(t, r.InitAll(nopHost{}))
	require.NoError(t, r.RunHook(HookAfterExec, "bold", ""))
	assert.Equal(t, []string{"bold"}, late.calls)
}

func TestShutdownAll(t *testing.T) {
	var closed []string
	r := NewRegistry()
	require.NoError(t, r.Register("x", Funcs{ShutdownFunc: func() error { closed = append(closed, "x"); return errors.New("ignored") }}))
	require.NoError(t, r.Register("y", Funcs{ShutdownFunc: func() error { closed = append(closed, "y"); return nil }}))
	r.ShutdownAll()
	assert.Equal(t, []string{"x", "y"}, closed)
}

func TestHookString(t *testing.T) {
	assert.Equal(t, "beforeExecCommand", HookBeforeExec.String())
	assert.Equal(t, "afterExecCommand", HookAfterExec.String())
}
