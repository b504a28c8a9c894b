package sshd

import (
	"bytes"
	"context"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"

	"lifeserve/internal/session"
)

type event struct {
	kind       string
	cols, rows int
	data       string
}

type fakeHandler struct {
	mu     sync.Mutex
	conns  map[int]session.Conn
	nextID int
	events chan event
}

func newFakeHandler() *fakeHandler {
	return &fakeHandler{conns: make(map[int]session.Conn), events: make(chan event, 32)}
}

func (h *fakeHandler) Connect(conn session.Conn, cols, rows int) (*session.Session, error) {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.conns[id] = conn
	h.mu.Unlock()
	h.events <- event{kind: "connect", cols: cols, rows: rows}
	conn.Write("frame-1")
	return &session.Session{ID: id}, nil
}

func (h *fakeHandler) Input(id int, chunk []byte) error {
	h.events <- event{kind: "input", data: string(chunk)}
	if bytes.IndexByte(chunk, 'q') >= 0 {
		h.Disconnect(id)
	}
	return nil
}

func (h *fakeHandler) Resize(id, cols, rows int) error {
	h.events <- event{kind: "resize", cols: cols, rows: rows}
	return nil
}

func (h *fakeHandler) Disconnect(id int) {
	h.mu.Lock()
	conn, ok := h.conns[id]
	delete(h.conns, id)
	h.mu.Unlock()
	if ok {
		conn.Close()
		h.events <- event{kind: "disconnect"}
	}
}

func (h *fakeHandler) expect(t *testing.T, kind string) event {
	t.Helper()
	for {
		select {
		case ev := <-h.events:
			if ev.kind == kind {
				return ev
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s", kind)
		}
	}
}

func TestHostKeyPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "host_key")
	first, err := LoadOrCreateHostKey(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := LoadOrCreateHostKey(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bytes.Equal(first.PublicKey().Marshal(), second.PublicKey().Marshal()) {
		t.Fatal("reloaded host key differs from the generated one")
	}
	if first.PublicKey().Type() != ssh.KeyAlgoED25519 {
		t.Fatalf("key type = %s", first.PublicKey().Type())
	}
}

func TestParseRequests(t *testing.T) {
	payload := ssh.Marshal(ptyRequest{Term: "xterm", Columns: 120, Rows: 40})
	pty, err := parsePtyRequest(payload)
	if err != nil {
		t.Fatalf("parsePtyRequest: %v", err)
	}
	if pty.Term != "xterm" || pty.Columns != 120 || pty.Rows != 40 {
		t.Fatalf("pty = %+v", pty)
	}
	wc, err := parseWindowChange(ssh.Marshal(windowChange{Columns: 90, Rows: 30}))
	if err != nil || wc.Columns != 90 || wc.Rows != 30 {
		t.Fatalf("window change = %+v, %v", wc, err)
	}
	if _, err := parsePtyRequest([]byte{1, 2}); err == nil {
		t.Fatal("expected error for a truncated payload")
	}
}

func TestShellSession(t *testing.T) {
	signer, err := LoadOrCreateHostKey("")
	if err != nil {
		t.Fatalf("host key: %v", err)
	}
	h := newFakeHandler()
	srv, err := New(Config{Signer: signer}, h)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ctx, ln) }()
	defer func() {
		cancel()
		if err := <-served; err != nil {
			t.Errorf("Serve: %v", err)
		}
	}()

	client, err := ssh.Dial("tcp", ln.Addr().String(), &ssh.ClientConfig{
		User:            "player",
		HostKeyCallback: ssh.FixedHostKey(signer.PublicKey()),
		Timeout:         2 * time.Second,
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	sess, err := client.NewSession()
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	var out safeBuffer
	sess.Stdout = &out
	stdin, err := sess.StdinPipe()
	if err != nil {
		t.Fatalf("stdin: %v", err)
	}
	if err := sess.RequestPty("xterm", 33, 101, ssh.TerminalModes{}); err != nil {
		t.Fatalf("pty: %v", err)
	}
	if err := sess.Shell(); err != nil {
		t.Fatalf("shell: %v", err)
	}

	ev := h.expect(t, "connect")
	if ev.cols != 101 || ev.rows != 33 {
		t.Fatalf("connect geometry %dx%d, want 101x33", ev.cols, ev.rows)
	}
	if err := sess.WindowChange(50, 140); err != nil {
		t.Fatalf("window change: %v", err)
	}
	if ev := h.expect(t, "resize"); ev.cols != 140 || ev.rows != 50 {
		t.Fatalf("resize %dx%d, want 140x50", ev.cols, ev.rows)
	}

	stdin.Write([]byte("q"))
	if ev := h.expect(t, "input"); ev.data != "q" {
		t.Fatalf("input %q", ev.data)
	}
	h.expect(t, "disconnect")

	done := make(chan struct{})
	go func() { sess.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not end after disconnect")
	}
	if got := out.String(); got != "frame-1" {
		t.Fatalf("client received %q", got)
	}
}

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
