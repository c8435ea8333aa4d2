package preview

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/wysiii/internal/content"
	"github.com/bethropolis/wysiii/internal/event"
)

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, res, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	res.Body.Close()
	t.Cleanup(func() { conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	var m Message
	require.NoError(t, conn.ReadJSON(&m))
	return m
}

func TestClientReceivesCurrentThenUpdates(t *testing.T) {
	s := New("127.0.0.1:0")
	s.Publish("<p>before</p>")
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dial(t, ts)
	first := read(t, conn)
	assert.Equal(t, "<p>before</p>", first.HTML)
	assert.NotEmpty(t, first.Session)
	assert.Equal(t, 1, s.Clients())

	s.Publish("<p>after</p>")
	next := read(t, conn)
	assert.Equal(t, "<p>after</p>", next.HTML)
	assert.Equal(t, first.Session, next.Session)
	assert.Equal(t, first.Seq+1, next.Seq)
}

func TestSessionsAreDistinct(t *testing.T) {
	s := New("127.0.0.1:0")
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	a := read(t, dial(t, ts))
	b := read(t, dial(t, ts))
	assert.NotEqual(t, a.Session, b.Session)
}

func TestSubscribePublishesContentChanges(t *testing.T) {
	s := New("127.0.0.1:0")
	events := event.NewManager()
	s.Subscribe(events)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dial(t, ts)
	read(t, conn)

	events.Dispatch(event.TypeContentChanged, event.ContentChangedData{
		Content: content.Deserialize("<p><b>x</b></p>"),
		Reason:  "dispatch",
	})
	assert.Equal(t, "<p><b>x</b></p>", read(t, conn).HTML)
}

func TestPageAndNotFound(t *testing.T) {
	ts := httptest.NewServer(New("").Handler())
	defer ts.Close()

	res, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `new WebSocket`)

	res, err = http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestStartAndShutdown(t *testing.T) {
	s := New("127.0.0.1:0")
	require.NoError(t, s.Start())
	assert.ErrorIs(t, s.Start(), ErrRunning)

	res, err := http.Get("http://" + s.Addr() + "/")
	require.NoError(t, err)
	res.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, s.Shutdown(ctx))
	assert.Equal(t, 0, s.Clients())
	assert.NoError(t, s.Shutdown(ctx), "second shutdown is a no-op")
}

func TestForeignOriginIsRefused(t *testing.T) {
	s := New("127.0.0.1:0")
	s.Publish("<p>secret draft</p>")
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	conn, res, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example"}})
	if conn != nil {
		conn.Close()
	}
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, res)
	res.Body.Close()
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Equal(t, 0, s.Clients())

	conn, res, err = websocket.DefaultDialer.Dial(url, http.Header{"Origin": {ts.URL}})
	require.NoError(t, err, "the page's own origin is accepted")
	res.Body.Close()
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	assert.Equal(t, "<p>secret draft</p>", read(t, conn).HTML)
}

func TestSequenceNeverGoesBackwards(t *testing.T) {
	const last = 200
	s := New("127.0.0.1:0")
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i <= last; i++ {
			s.Publish(fmt.Sprintf("<p>%d</p>", i))
		}
	}()

	conn := dial(t, ts)
	prev := read(t, conn)
	for prev.Seq < last {
		m := read(t, conn)
		require.Greater(t, m.Seq, prev.Seq, "older snapshot after %d", prev.Seq)
		prev = m
	}
	<-done
	assert.Equal(t, fmt.Sprintf("<p>%d</p>", last), prev.HTML)
}
