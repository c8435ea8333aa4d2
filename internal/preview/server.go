// Package preview serves a live HTML view of the editor's mirrored value.
// Browsers open the page at "/" and receive every change over a websocket.
package preview

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/bethropolis/wysiii/internal/event"
	"github.com/bethropolis/wysiii/internal/logger"
)

const writeTimeout = 5 * time.Second

// ErrRunning is returned by Start on a server that is already listening.
var ErrRunning = errors.New("preview server already running")

// Message is pushed to every client after a change.
type Message struct {
	Session string `json:"session"`
	Seq     uint64 `json:"seq"`
	HTML    string `json:"html"`
}

type client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex // Serialises writes; gorilla allows one writer at a time
}

func (c *client) send(m Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.write(m)
}

// write sends m; the caller holds c.mu.
func (c *client) write(m Message) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(m)
}

// Server broadcasts HTML snapshots.
type Server struct {
	addr     string
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*client
	html    string
	seq     uint64

	httpSrv  *http.Server
	listener net.Listener
}

// New creates a server that will listen on addr.
func New(addr string) *Server {
	return &Server{
		addr:    addr,
		clients: make(map[string]*client),
		// No CheckOrigin: gorilla's default refuses cross-origin pages, so
		// only the page served here can read the document.
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Handler returns the HTTP routes: the page at "/" and the socket at "/ws".
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.servePage)
	mux.HandleFunc("/ws", s.serveSocket)
	return mux
}

// Subscribe publishes the content of every ContentChanged event.
func (s *Server) Subscribe(events *event.Manager) {
	events.Subscribe(event.TypeContentChanged, func(e event.Event) bool {
		if data, ok := e.Data.(event.ContentChangedData); ok {
			s.Publish(data.Content.Serialize())
		}
		return false
	})
}

// Publish stores html and sends it to every connected client. Clients whose
// write fails are dropped.
func (s *Server) Publish(html string) {
	s.mu.Lock()
	s.html = html
	s.seq++
	seq := s.seq
	targets := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		targets = append(targets, c)
	}
	s.mu.Unlock()

	for _, c := range targets {
		if err := c.send(Message{Session: c.id, Seq: seq, HTML: html}); err != nil {
			logger.Debugf("Preview: dropping client %s: %v", c.id, err)
			s.drop(c)
		}
	}
}

// Clients returns the number of connected browsers.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpSrv != nil {
		return ErrRunning
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("preview listen on %s: %w", s.addr, err)
	}
	s.listener = ln
	s.httpSrv = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: writeTimeout}

	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("Preview: server stopped: %v", err)
		}
	}(s.httpSrv)
	logger.Infof("Preview: serving on http://%s", ln.Addr())
	return nil
}

// Addr returns the listening address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Shutdown closes every client and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpSrv
	s.httpSrv = nil
	s.listener = nil
	clients := s.clients
	s.clients = make(map[string]*client)
	s.mu.Unlock()

	for _, c := range clients {
		c.mu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "editor closed"),
			time.Now().Add(time.Second))
		c.mu.Unlock()
		c.conn.Close()
	}
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	delete(s.clients, c.id)
	s.mu.Unlock()
	c.conn.Close()
}

func (s *Server) serveSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnf("Preview: upgrade failed: %v", err)
		return
	}
	c := &client{id: uuid.New().String(), conn: conn}

	// c.mu is held until the current value is written; a concurrent Publish
	// waits on it, so sequence numbers reach the client in order.
	c.mu.Lock()
	s.mu.Lock()
	s.clients[c.id] = c
	first := Message{Session: c.id, Seq: s.seq, HTML: s.html}
	s.mu.Unlock()
	err = c.write(first)
	c.mu.Unlock()
	logger.Debugf("Preview: client %s connected", c.id)

	if err != nil {
		s.drop(c)
		return
	}

	// Reads only detect the browser going away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				logger.Debugf("Preview: client %s gone: %v", c.id, err)
				s.drop(c)
				return
			}
		}
	}()
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}

const page = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>wysiii preview</title>
</head>
<body>
<div id="doc"></div>
<script>
(function () {
  var doc = document.getElementById("doc");
  var ws = new WebSocket("ws://" + location.host + "/ws");
  ws.onmessage = function (ev) {
    doc.innerHTML = JSON.parse(ev.data).html;
  };
  ws.onclose = function () {
    document.title = "wysiii preview (disconnected)";
  };
})();
</script>
</body>
</html>
`
