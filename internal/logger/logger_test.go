package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagFilters(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{LogLevel: "debug", DisabledTags: []string{"History"}}, &buf)
	t.Cleanup(func() { Init(NewConfig(), nil) })

	DebugTagf("history", "recorded entry %d", 3)
	DebugTagf("dispatch", "dispatching %s", "bold")

	out := buf.String()
	assert.NotContains(t, out, "recorded entry")
	assert.Contains(t, out, "dispatching bold")
	assert.Contains(t, out, "tag=dispatch")
}

func TestEnabledTagsDropUntagged(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{LogLevel: "debug", EnabledTags: []string{"plugin"}}, &buf)
	t.Cleanup(func() { Init(NewConfig(), nil) })

	Infof("untagged message")
	DebugTagf("plugin", "tagged message")

	out := buf.String()
	assert.NotContains(t, out, "untagged message")
	assert.Contains(t, out, "tagged message")
}

func TestPackageFilter(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{LogLevel: "debug", DisabledPackages: []string{"logger"}}, &buf)
	t.Cleanup(func() { Init(NewConfig(), nil) })

	Warnf("from the logger package")
	assert.Empty(t, buf.String())
}

func TestLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{LogLevel: "warn"}, &buf)
	t.Cleanup(func() { Init(NewConfig(), nil) })

	Infof("quiet")
	Errorf("loud")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "loud")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("err"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestOpen(t *testing.T) {
	w, c, err := Open(Config{})
	assert.NoError(t, err)
	assert.NotNil(t, w)
	assert.NoError(t, c.Close())

	path := t.TempDir() + "/logs/wysiii.log"
	w, c, err = Open(Config{LogFilePath: path})
	assert.NoError(t, err)
	_, err = w.Write([]byte("hello\n"))
	assert.NoError(t, err)
	assert.NoError(t, c.Close())
}
