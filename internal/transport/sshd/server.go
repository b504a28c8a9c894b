// Package sshd serves game sessions to interactive SSH clients.
package sshd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"sync/atomic"

	"golang.org/x/crypto/ssh"

	"lifeserve/internal/session"
	"lifeserve/internal/ui"
)

// Handler receives session events. *session.Coordinator implements it.
type Handler interface {
	Connect(conn session.Conn, cols, rows int) (*session.Session, error)
	Input(id int, chunk []byte) error
	Resize(id, cols, rows int) error
	Disconnect(id int)
}

// Config controls the SSH listener.
type Config struct {
	Addr   string
	Signer ssh.Signer
	Logger *log.Logger
}

// Server accepts SSH connections and bridges shell channels to a Handler.
type Server struct {
	cfg     Config
	handler Handler
	sshCfg  *ssh.ServerConfig
	wg      sync.WaitGroup
}

// New constructs a server. Clients are not authenticated.
func New(cfg Config, h Handler) (*Server, error) {
	if cfg.Signer == nil {
		return nil, errors.New("sshd: host key required")
	}
	sshCfg := &ssh.ServerConfig{
		NoClientAuth:  true,
		ServerVersion: "SSH-2.0-lifeserve",
	}
	sshCfg.AddHostKey(cfg.Signer)
	return &Server{cfg: cfg, handler: h, sshCfg: sshCfg}, nil
}

func (s *Server) logf(format string, args ...any) {
	if s.cfg.Logger == nil {
		return
	}
	s.cfg.Logger.Printf(format, args...)
}

// ListenAndServe listens on the configured address until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("sshd: listen %s: %w", s.cfg.Addr, err)
	}
	s.logf("ssh listening on %s", ln.Addr())
	return s.Serve(ctx, ln)
}

// Serve accepts connections from ln until ctx is done, then closes ln and
// waits for connection handlers to return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()
	defer s.wg.Wait()
	for {
		nc, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("sshd: accept: %w", err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, nc)
		}()
	}
}

func (s *Server) handleConn(ctx context.Context, nc net.Conn) {
	sc, chans, reqs, err := ssh.NewServerConn(nc, s.sshCfg)
	if err != nil {
		s.logf("ssh handshake from %s: %v", nc.RemoteAddr(), err)
		nc.Close()
		return
	}
	stop := context.AfterFunc(ctx, func() { sc.Close() })
	defer stop()
	defer sc.Close()
	go ssh.DiscardRequests(reqs)

	for newCh := range chans {
		if newCh.ChannelType() != "session" {
			newCh.Reject(ssh.UnknownChannelType, "only session channels are supported")
			continue
		}
		ch, requests, err := newCh.Accept()
		if err != nil {
			s.logf("ssh accept channel: %v", err)
			continue
		}
		go s.handleChannel(ch, requests)
	}
}

// handleChannel services one session channel. The game starts on the shell
// request using the geometry from any earlier pty-req.
func (s *Server) handleChannel(ch ssh.Channel, requests <-chan *ssh.Request) {
	cols, rows := 0, 0
	id := 0
	for req := range requests {
		switch req.Type {
		case "pty-req":
			pty, err := parsePtyRequest(req.Payload)
			if err == nil {
				cols, rows = int(pty.Columns), int(pty.Rows)
			}
			req.Reply(err == nil, nil)
		case "window-change":
			wc, err := parseWindowChange(req.Payload)
			if err == nil && id != 0 {
				s.handler.Resize(id, int(wc.Columns), int(wc.Rows))
			}
			req.Reply(err == nil, nil)
		case "shell":
			if id != 0 {
				req.Reply(false, nil)
				continue
			}
			req.Reply(true, nil)
			conn := &channelConn{ch: ch}
			sess, err := s.handler.Connect(conn, cols, rows)
			if err != nil {
				s.logf("ssh session rejected: %v", err)
				io.WriteString(ch, ui.NewPrinter("en").Sprintf(ui.MsgJoinNoSpace)+"\r\n")
				ch.SendRequest("exit-status", false, ssh.Marshal(exitStatus{Status: 1}))
				ch.Close()
				continue
			}
			id = sess.ID
			go s.readLoop(ch, id)
		default:
			req.Reply(false, nil)
		}
	}
	if id != 0 {
		s.handler.Disconnect(id)
	}
}

func (s *Server) readLoop(ch ssh.Channel, id int) {
	buf := make([]byte, 256)
	for {
		n, err := ch.Read(buf)
		if n > 0 {
			if herr := s.handler.Input(id, buf[:n]); herr != nil {
				return
			}
		}
		if err != nil {
			s.handler.Disconnect(id)
			return
		}
	}
}

// channelConn adapts an SSH channel to session.Conn.
type channelConn struct {
	ch      ssh.Channel
	closing atomic.Bool
}

func (c *channelConn) Write(frame string) error {
	if c.closing.Load() {
		return net.ErrClosed
	}
	_, err := io.WriteString(c.ch, frame)
	return err
}

func (c *channelConn) Close() error {
	if c.closing.Swap(true) {
		return nil
	}
	c.ch.SendRequest("exit-status", false, ssh.Marshal(exitStatus{}))
	err := c.ch.Close()
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (c *channelConn) IsClosing() bool { return c.closing.Load() }
