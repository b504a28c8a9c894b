package ws

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"lifeserve/internal/session"
)

type fakeHandler struct {
	mu       sync.Mutex
	conns    map[int]session.Conn
	nextID   int
	reject   bool
	inputs   chan string
	resizes  chan [2]int
	connects chan [2]int
}

func newFakeHandler() *fakeHandler {
	return &fakeHandler{
		conns:    make(map[int]session.Conn),
		inputs:   make(chan string, 16),
		resizes:  make(chan [2]int, 16),
		connects: make(chan [2]int, 16),
	}
}

func (h *fakeHandler) Connect(conn session.Conn, cols, rows int) (*session.Session, error) {
	if h.reject {
		return nil, errors.New("no space")
	}
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.conns[id] = conn
	h.mu.Unlock()
	h.connects <- [2]int{cols, rows}
	conn.Write("welcome")
	return &session.Session{ID: id}, nil
}

func (h *fakeHandler) Input(id int, chunk []byte) error {
	h.inputs <- string(chunk)
	if string(chunk) == "q" {
		h.Disconnect(id)
	}
	return nil
}

func (h *fakeHandler) Resize(id, cols, rows int) error {
	h.resizes <- [2]int{cols, rows}
	return nil
}

func (h *fakeHandler) Disconnect(id int) {
	h.mu.Lock()
	conn, ok := h.conns[id]
	delete(h.conns, id)
	h.mu.Unlock()
	if ok {
		conn.Close()
	}
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	return c
}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
	var zero T
	return zero
}

func TestSessionLifecycle(t *testing.T) {
	h := newFakeHandler()
	srv := httptest.NewServer(New(h, nil).Handler())
	defer srv.Close()

	c := dial(t, srv, "?cols=100&rows=35")
	if got := recv(t, h.connects); got != [2]int{100, 35} {
		t.Fatalf("connect geometry = %v", got)
	}
	_, msg, err := c.ReadMessage()
	if err != nil || string(msg) != "welcome" {
		t.Fatalf("first frame = %q, %v", msg, err)
	}

	c.WriteMessage(websocket.TextMessage, []byte(`{"type":"resize","cols":120,"rows":40}`))
	if got := recv(t, h.resizes); got != [2]int{120, 40} {
		t.Fatalf("resize = %v", got)
	}
	c.WriteMessage(websocket.BinaryMessage, []byte("r"))
	if got := recv(t, h.inputs); got != "r" {
		t.Fatalf("input = %q", got)
	}
	c.WriteMessage(websocket.TextMessage, []byte(`{"type":"input","data":"q"}`))
	if got := recv(t, h.inputs); got != "q" {
		t.Fatalf("input = %q", got)
	}

	_, _, err = c.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("read after quit = %v, want normal close", err)
	}
}

func TestRejectedJoinClosesWithReason(t *testing.T) {
	h := newFakeHandler()
	h.reject = true
	srv := httptest.NewServer(New(h, nil).Handler())
	defer srv.Close()

	c := dial(t, srv, "")
	_, _, err := c.ReadMessage()
	var ce *websocket.CloseError
	if !errors.As(err, &ce) || ce.Code != websocket.CloseTryAgainLater {
		t.Fatalf("err = %v, want try-again-later close", err)
	}
	if !strings.Contains(ce.Text, "full") {
		t.Fatalf("close reason = %q", ce.Text)
	}
}

func TestHealthz(t *testing.T) {
	srv := httptest.NewServer(New(newFakeHandler(), nil).Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok\n" {
		t.Fatalf("healthz = %d %q", resp.StatusCode, body)
	}
}
