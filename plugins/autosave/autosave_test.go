package autosave

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/wysiii/internal/content"
	"github.com/bethropolis/wysiii/internal/editor"
	"github.com/bethropolis/wysiii/internal/event"
	"github.com/bethropolis/wysiii/internal/markup"
	"github.com/bethropolis/wysiii/internal/plugin"
)

type fakeHost struct {
	events *event.Manager
	config map[string]interface{}
	value  string
}

func (h *fakeHost) Content() content.Content { return content.Deserialize(h.DocumentValue()) }
func (h *fakeHost) Attach(string, plugin.Plugin) error { return nil }
func (h *fakeHost) RegisterCommand(string, plugin.CommandFunc) error { return nil }
func (h *fakeHost) SetStatusMessage(string, ...interface{}) {}

func (h *fakeHost) SubscribeEvent(t event.Type, fn event.Handler) {
	h.events.Subscribe(t, fn)
}

func (h *fakeHost) PluginConfigValue(name, key string) (interface{}, bool) {
	if name != Name {
		return nil, false
	}
	v, ok := h.config[key]
	return v, ok
}

func (h *fakeHost) DocumentValue() string {
	if h.value == "" {
		return "<p>start</p>"
	}
	return h.value
}

func changed(h *fakeHost, value string) {
	h.value = value
	h.events.Dispatch(event.TypeContentChanged, event.ContentChangedData{
		Content: content.Deserialize(value),
		Reason:  "input",
	})
}

func TestDisabledByDefault(t *testing.T) {
	p := New()
	require.NoError(t, p.Init(&fakeHost{events: event.NewManager()}))
	assert.Nil(t, p.stopChan)
	assert.NoError(t, p.Shutdown())
}

func TestEnabledWithoutPathStaysOff(t *testing.T) {
	p := New()
	host := &fakeHost{events: event.NewManager(), config: map[string]interface{}{"enabled": true}}
	require.NoError(t, p.Init(host))
	assert.False(t, p.enabled)
}

func TestParseInterval(t *testing.T) {
	assert.Equal(t, 2*time.Second, parseInterval("2s", time.Minute))
	assert.Equal(t, time.Minute, parseInterval("soon", time.Minute))
	assert.Equal(t, time.Minute, parseInterval("-1s", time.Minute))
	assert.Equal(t, time.Minute, parseInterval(5, time.Minute))
}

func TestSavesChangedValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.html")
	host := &fakeHost{events: event.NewManager(), config: map[string]interface{}{
		"enabled":  true,
		"interval": "10ms",
		"path":     path,
	}}
	p := New()
	require.NoError(t, p.Init(host))
	defer p.Shutdown()

	time.Sleep(30 * time.Millisecond)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "unchanged content is not written")

	changed(host, "<p>edited</p>")
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && string(data) == "<p>edited</p>"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSaveIfModifiedDirect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.html")
	p := New()
	p.path = path
	p.latest, p.saved = "<p>x</p>", ""
	p.dirty = true

	require.NoError(t, p.saveIfModified())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<p>x</p>", string(data))
	assert.False(t, p.dirty)

	p.path = filepath.Join(t.TempDir(), "missing", "out.html")
	p.dirty = true
	assert.Error(t, p.saveIfModified())
}

func TestSourceViewSavesMarkup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.html")
	config := map[string]interface{}{"enabled": true, "interval": "10ms", "path": path}

	p := New()
	s := markup.NewSurface(content.Content{})
	ed, err := editor.New(editor.NewMemoryInput("<p>hello</p>", nil), s, markup.NewExecutor(s),
		editor.WithPlugin(Name, p),
		editor.WithPluginConfig(func(name, key string) (interface{}, bool) {
			v, ok := config[key]
			return v, ok && name == Name
		}),
	)
	require.NoError(t, err)
	require.NoError(t, ed.InitPlugins())
	defer ed.Close()

	s.SelectAll()
	require.NoError(t, ed.Dispatch(markup.CmdBold, ""))
	require.Equal(t, editor.SourceMode, ed.ToggleSource())

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && string(data) == "<p><b>hello</b></p>"
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<p><b>hello</b></p>", string(data), "escaped listing never reaches the file")
}
