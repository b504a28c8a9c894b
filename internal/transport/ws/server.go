// Package ws serves game sessions to browser terminals over websockets.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"lifeserve/internal/session"
	"lifeserve/internal/ui"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
	readLimit  = 4 << 10
)

// Handler receives session events. *session.Coordinator implements it.
type Handler interface {
	Connect(conn session.Conn, cols, rows int) (*session.Session, error)
	Input(id int, chunk []byte) error
	Resize(id, cols, rows int) error
	Disconnect(id int)
}

// control is a text message sent by the browser. Binary messages carry raw
// key bytes.
type control struct {
	Type string `json:"type"`
	Data string `json:"data,omitempty"`
	Cols int    `json:"cols,omitempty"`
	Rows int    `json:"rows,omitempty"`
}

// Server exposes /ws for terminals and /healthz for probes.
type Server struct {
	handler  Handler
	upgrader websocket.Upgrader
	logger   *log.Logger
}

// New constructs a websocket server for h.
func New(h Handler, logger *log.Logger) *Server {
	return &Server{
		handler: h,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

func (s *Server) logf(format string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Printf(format, args...)
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	return mux
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logf("websocket listening on %s", addr)
	select {
	case err := <-errCh:
		return fmt.Errorf("ws: listen %s: %w", addr, err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ws: shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	cols, _ := strconv.Atoi(r.URL.Query().Get("cols"))
	rows, _ := strconv.Atoi(r.URL.Query().Get("rows"))

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logf("ws upgrade: %v", err)
		return
	}
	conn := &wsConn{ws: ws}
	sess, err := s.handler.Connect(conn, cols, rows)
	if err != nil {
		s.logf("ws session rejected: %v", err)
		msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, ui.NewPrinter("en").Sprintf(ui.MsgJoinNoSpace))
		ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		ws.Close()
		return
	}
	defer s.handler.Disconnect(sess.ID)

	ws.SetReadLimit(readLimit)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go conn.pingLoop(done)

	for {
		kind, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && !conn.IsClosing() {
				s.logf("ws read session %d: %v", sess.ID, err)
			}
			return
		}
		if kind == websocket.BinaryMessage {
			if s.handler.Input(sess.ID, data) != nil {
				return
			}
			continue
		}
		var msg control
		if err := json.Unmarshal(data, &msg); err != nil {
			// Plain text is treated as typed input.
			if s.handler.Input(sess.ID, data) != nil {
				return
			}
			continue
		}
		switch msg.Type {
		case "input":
			err = s.handler.Input(sess.ID, []byte(msg.Data))
		case "resize":
			err = s.handler.Resize(sess.ID, msg.Cols, msg.Rows)
		}
		if err != nil {
			return
		}
	}
}

// wsConn adapts a websocket to session.Conn. Writes are serialised and
// bounded by a deadline.
type wsConn struct {
	ws      *websocket.Conn
	mu      sync.Mutex
	closing atomic.Bool
}

func (c *wsConn) Write(frame string) error {
	if c.closing.Load() {
		return websocket.ErrCloseSent
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, []byte(frame))
}

func (c *wsConn) Close() error {
	if c.closing.Swap(true) {
		return nil
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
	c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	return c.ws.Close()
}

func (c *wsConn) IsClosing() bool { return c.closing.Load() }

func (c *wsConn) pingLoop(done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
