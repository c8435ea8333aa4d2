package dispatcher

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/wysiii/internal/content"
	"github.com/bethropolis/wysiii/internal/event"
	"github.com/bethropolis/wysiii/internal/history"
	"github.com/bethropolis/wysiii/internal/plugin"
)

// fakeSurface holds a document and a selected substring.
type fakeSurface struct {
	doc      string
	selected string
	focused  int
	trace    *[]string
}

func (s *fakeSurface) Content() content.Content      { return content.Deserialize(s.doc) }
func (s *fakeSurface) SetContent(c content.Content) { s.doc = c.Serialize() }
func (s *fakeSurface) Focus() {
	s.focused++
	if s.trace != nil {
		*s.trace = append(*s.trace, "focus")
	}
}

// fakeExecutor appends "<name>" markers for each command applied to a
// non-empty selection.
type fakeExecutor struct {
	s     *fakeSurface
	calls []string
	err   error
	trace *[]string
}

func (e *fakeExecutor) Apply(name, value string) error {
	e.calls = append(e.calls, name)
	if e.trace != nil {
		*e.trace = append(*e.trace, "exec:"+name)
	}
	if e.err != nil {
		return e.err
	}
	if e.s.selected == "" {
		return nil
	}
	e.s.doc += fmt.Sprintf("<%s>", name)
	return nil
}

type fakeMirror struct{ value string }

func (m *fakeMirror) SetValue(v string) { m.value = v }

type fixture struct {
	surface *fakeSurface
	exec    *fakeExecutor
	mirror  *fakeMirror
	plugins *plugin.Registry
	history *history.Store
	events  *event.Manager
	d       *Dispatcher
	trace   []string
}

func newFixture(t *testing.T, initial string) *fixture {
	t.Helper()
	f := &fixture{}
	f.surface = &fakeSurface{doc: initial, trace: &f.trace}
	f.exec = &fakeExecutor{s: f.surface, trace: &f.trace}
	f.mirror = &fakeMirror{}
	f.plugins = plugin.NewRegistry()
	f.history = history.NewStore(0)
	f.events = event.NewManager()
	f.d = New(Deps{
		Surface:  f.surface,
		Executor: f.exec,
		Mirror:   f.mirror,
		Plugins:  f.plugins,
		History:  f.history,
		Events:   f.events,
	})
	f.d.Sync(ReasonInit)
	return f
}

func (f *fixture) tracer(id string) plugin.Funcs {
	return plugin.Funcs{
		BeforeFunc: func(n, _ string) error { f.trace = append(f.trace, id+":before:"+n); return nil },
		AfterFunc:  func(n, _ string) error { f.trace = append(f.trace, id+":after:"+n); return nil },
	}
}

type nopHost struct{}

func (nopHost) Content() content.Content                                  { return content.Content{} }
func (nopHost) DocumentValue() string                                     { return "" }
func (nopHost) Attach(string, plugin.Plugin) error                        { return nil }
func (nopHost) SubscribeEvent(event.Type, event.Handler)                  {}
func (nopHost) RegisterCommand(string, plugin.CommandFunc) error          { return nil }
func (nopHost) SetStatusMessage(string, ...interface{})                   {}
func (nopHost) PluginConfigValue(string, string) (interface{}, bool)      { return nil, false }

func TestInitialSyncRecordsFirstSnapshot(t *testing.T) {
	f := newFixture(t, "<p>hello</p>")
	assert.Equal(t, 1, f.history.Len())
	assert.Equal(t, 0, f.history.Index())
	assert.Equal(t, "<p>hello</p>", f.mirror.value)
}

func TestDispatchCycleOrder(t *testing.T) {
	f := newFixture(t, "<p>x</p>")
	require.NoError(t, f.plugins.Register("p1", f.tracer("p1")))
	require.NoError(t, f.plugins.Register("p2", f.tracer("p2")))
	require.NoError(t, f.plugins.InitAll(nopHost{}))

	var recordedAt int
	f.events.Subscribe(event.TypeContentChanged, func(e event.Event) bool {
		f.trace = append(f.trace, "sync")
		recordedAt = f.history.Len()
		return false
	})

	require.NoError(t, f.d.Dispatch("bold", ""))
	assert.Equal(t, []string{
		"p1:before:bold", "p2:before:bold",
		"exec:bold",
		"p1:after:bold", "p2:after:bold",
		"focus",
		"sync",
	}, f.trace)
	assert.Equal(t, 2, recordedAt)
}

func TestEmptySelectionStillRecords(t *testing.T) {
	f := newFixture(t, "<p>plain</p>")
	require.NoError(t, f.d.Dispatch("bold", ""))

	assert.Equal(t, "<p>plain</p>", f.surface.doc)
	assert.Equal(t, 2, f.history.Len())
	entries := f.history.Entries()
	assert.True(t, entries[0].Equal(entries[1]))
}

func TestExactlyOneRecordPerDispatch(t *testing.T) {
	f := newFixture(t, "a")
	f.surface.selected = "a"
	for i := 0; i < 4; i++ {
		require.NoError(t, f.d.Dispatch("italic", ""))
	}
	assert.Equal(t, 5, f.history.Len())
	assert.Equal(t, f.surface.doc, f.mirror.value)
}

func TestExecutorErrorStillRecords(t *testing.T) {
	f := newFixture(t, "a")
	f.exec.err = errors.New("unsupported")
	require.NoError(t, f.d.Dispatch("frobnicate", ""))
	assert.Equal(t, 2, f.history.Len())
	assert.Equal(t, 1, f.surface.focused)
}

func TestBeforeHookFailureAbortsCycle(t *testing.T) {
	f := newFixture(t, "a")
	boom := errors.New("boom")
	var afterCalled bool
	require.NoError(t, f.plugins.Register("bad", plugin.Funcs{BeforeFunc: func(string, string) error { return boom }}))
	require.NoError(t, f.plugins.Register("later", plugin.Funcs{
		BeforeFunc: func(string, string) error { t.Fatal("later before hook ran"); return nil },
		AfterFunc:  func(string, string) error { afterCalled = true; return nil },
	}))
	require.NoError(t, f.plugins.InitAll(nopHost{}))

	err := f.d.Dispatch("bold", "")
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, f.exec.calls)
	assert.False(t, afterCalled)
	assert.Equal(t, 0, f.surface.focused)
	assert.Equal(t, 1, f.history.Len())
}

func TestAfterHookFailureSkipsFocusAndRecord(t *testing.T) {
	f := newFixture(t, "a")
	f.surface.selected = "a"
	boom := errors.New("after boom")
	require.NoError(t, f.plugins.Register("bad", plugin.Funcs{AfterFunc: func(string, string) error { return boom }}))
	require.NoError(t, f.plugins.InitAll(nopHost{}))

	err := f.d.Dispatch("underline", "")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"underline"}, f.exec.calls)
	assert.Equal(t, 0, f.surface.focused)
	assert.Equal(t, 1, f.history.Len())
}

func TestIsolatedHookFailureCompletesCycle(t *testing.T) {
	f := newFixture(t, "a")
	f.plugins.SetIsolation(true)
	require.NoError(t, f.plugins.Register("bad", plugin.Funcs{BeforeFunc: func(string, string) error { return errors.New("x") }}))
	require.NoError(t, f.plugins.InitAll(nopHost{}))

	require.NoError(t, f.d.Dispatch("bold", ""))
	assert.Equal(t, 2, f.history.Len())
}

func TestAfterOnlyPluginGetsEmptyValueOnce(t *testing.T) {
	f := newFixture(t, "a")
	var got []Intent
	require.NoError(t, f.plugins.Register("p", plugin.Funcs{
		AfterFunc: func(n, v string) error { got = append(got, Intent{n, v}); return nil },
	}))
	require.NoError(t, f.plugins.InitAll(nopHost{}))

	require.NoError(t, f.d.Dispatch("italic", ""))
	assert.Equal(t, []Intent{{Name: "italic"}}, got)
}

func TestUndoRedoRestoreWithoutRecording(t *testing.T) {
	f := newFixture(t, "v0")
	f.surface.selected = "v0"
	require.NoError(t, f.d.Dispatch("b", ""))
	require.NoError(t, f.d.Dispatch("i", ""))
	require.Equal(t, 3, f.history.Len())
	latest := f.surface.doc

	var moves []event.HistoryMovedData
	f.events.Subscribe(event.TypeHistoryMoved, func(e event.Event) bool {
		moves = append(moves, e.Data.(event.HistoryMovedData))
		return false
	})

	assert.True(t, f.d.Undo())
	assert.Equal(t, "v0<b>", f.surface.doc)
	assert.Equal(t, "v0<b>", f.mirror.value)
	assert.True(t, f.d.Undo())
	assert.Equal(t, "v0", f.surface.doc)
	assert.False(t, f.d.Undo())
	assert.Equal(t, "v0", f.surface.doc)

	assert.True(t, f.d.Redo())
	assert.True(t, f.d.Redo())
	assert.False(t, f.d.Redo())
	assert.Equal(t, latest, f.surface.doc)
	assert.Equal(t, latest, f.mirror.value)

	assert.Equal(t, 3, f.history.Len())
	require.Len(t, moves, 4)
	assert.False(t, moves[0].Redo)
	assert.Equal(t, 0, moves[1].Index)
	assert.True(t, moves[3].Redo)
}

func TestUndoOnFreshEditorIsNoop(t *testing.T) {
	f := newFixture(t, "<p>start</p>")
	assert.False(t, f.d.Undo())
	assert.Equal(t, "<p>start</p>", f.surface.doc)
	assert.Equal(t, 0, f.history.Index())
	assert.Equal(t, 1, f.history.Len())
}

func TestUndoClampsWithoutDuplicateRecord(t *testing.T) {
	f := newFixture(t, "s")
	f.surface.selected = "s"
	require.NoError(t, f.d.Dispatch("a", ""))
	require.NoError(t, f.d.Dispatch("b", ""))

	for i := 0; i < 5; i++ {
		f.d.Undo()
	}
	assert.Equal(t, 0, f.history.Index())
	assert.Equal(t, 3, f.history.Len())
	assert.Equal(t, "s", f.surface.doc)
}

func TestNewEditAfterUndoDropsRedo(t *testing.T) {
	f := newFixture(t, "s")
	f.surface.selected = "s"
	require.NoError(t, f.d.Dispatch("a", ""))
	require.True(t, f.d.Undo())
	require.NoError(t, f.d.Dispatch("b", ""))

	assert.False(t, f.d.Redo())
	assert.Equal(t, "s<b>", f.surface.doc)
	assert.Equal(t, 2, f.history.Len())
}

func TestDispatchPublishesCommandEvent(t *testing.T) {
	f := newFixture(t, "a")
	var got event.CommandDispatchedData
	f.events.Subscribe(event.TypeCommandDispatched, func(e event.Event) bool {
		got = e.Data.(event.CommandDispatchedData)
		return false
	})
	require.NoError(t, f.d.DispatchIntent(Intent{Name: "foreColor", Value: "#00FF00"}))
	assert.Equal(t, "foreColor", got.Name)
	assert.Equal(t, "#00FF00", got.Value)
}

func TestNewFillsOptionalDeps(t *testing.T) {
	s := &fakeSurface{doc: "x"}
	d := New(Deps{Surface: s, Executor: &fakeExecutor{s: s}, Mirror: &fakeMirror{}})
	assert.NotNil(t, d.Plugins())
	assert.NotNil(t, d.History())
	d.Sync(ReasonInput)
	assert.Equal(t, 1, d.History().Len())
}
