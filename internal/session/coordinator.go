package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/message"

	"lifeserve/internal/core"
	"lifeserve/internal/game"
	"lifeserve/internal/render"
	"lifeserve/internal/ui"
)

// DefaultFeedbackTTL is how long a feedback banner stays visible.
const DefaultFeedbackTTL = 3 * time.Second

// ErrUnknownSession is returned for ids without a live session.
var ErrUnknownSession = errors.New("session: unknown session")

// Conn is the transport side of a session. Write may block; it is only
// called from the session's writer goroutine.
type Conn interface {
	Write(frame string) error
	Close() error
	IsClosing() bool
}

// Session is one connected client.
type Session struct {
	ID    int
	Trace uuid.UUID

	conn   Conn
	state  State
	frames chan string
	done   chan struct{}
	once   sync.Once
}

// Done is closed when the session has been torn down.
func (s *Session) Done() <-chan struct{} { return s.done }

// offer places frame in the one-slot mailbox, replacing a frame the writer
// has not picked up yet.
func (s *Session) offer(frame string) {
	select {
	case s.frames <- frame:
		return
	default:
	}
	select {
	case <-s.frames:
	default:
	}
	select {
	case s.frames <- frame:
	default:
	}
}

func (s *Session) stop() {
	s.once.Do(func() { close(s.done) })
}

// Options configures a Coordinator.
type Options struct {
	TickPeriod  time.Duration
	FeedbackTTL time.Duration
	// Passphrase enables god mode when non-nil.
	Passphrase *Passphrase
	Printer    *message.Printer
	Logger     *log.Logger
	Clock      func() time.Time
	Tracer     trace.Tracer
}

// Coordinator serialises the tick and all session input against one world.
// A single mutex guards the world and the session table; frames are written
// outside the lock by each session's writer goroutine.
type Coordinator struct {
	mu       sync.Mutex
	world    *game.World
	sessions map[int]*Session
	nextID   int

	renderer    *render.Renderer
	p           *message.Printer
	pass        *Passphrase
	feedbackTTL time.Duration
	timer       *core.FixedStep

	now    func() time.Time
	logger *log.Logger
	tracer trace.Tracer
}

// NewCoordinator builds a coordinator around world.
func NewCoordinator(world *game.World, opts Options) *Coordinator {
	if opts.FeedbackTTL <= 0 {
		opts.FeedbackTTL = DefaultFeedbackTTL
	}
	if opts.Printer == nil {
		opts.Printer = ui.NewPrinter("en")
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer("lifeserve/session")
	}
	return &Coordinator{
		world:       world,
		sessions:    make(map[int]*Session),
		renderer:    render.NewRenderer(ui.NewHUD(opts.Printer)),
		p:           opts.Printer,
		pass:        opts.Passphrase,
		feedbackTTL: opts.FeedbackTTL,
		timer:       core.NewFixedStep(opts.TickPeriod),
		now:         opts.Clock,
		logger:      opts.Logger,
		tracer:      opts.Tracer,
	}
}

func (c *Coordinator) logf(format string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Printf(format, args...)
}

// Connect registers conn as a new player sized cols x rows. When no spawn
// location is free the player is not created and the caller should close
// the connection.
func (c *Coordinator) Connect(conn Conn, cols, rows int) (*Session, error) {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	res := c.world.Join(id)
	if !res.OK {
		c.mu.Unlock()
		c.logf("session %d: join failed: %s", id, res.Reason)
		return nil, fmt.Errorf("session: join player %d: %w", id, res.Err())
	}
	s := &Session{
		ID:     id,
		Trace:  uuid.New(),
		conn:   conn,
		frames: make(chan string, 1),
		done:   make(chan struct{}),
		state:  State{Cols: cols, Rows: rows},
	}
	c.sessions[id] = s
	frame, ok := c.renderLocked(s)
	c.mu.Unlock()

	c.logf("session %d (%s) connected %dx%d", id, s.Trace, cols, rows)
	go c.writeLoop(s)
	if ok {
		s.offer(frame)
	}
	return s, nil
}

// Input feeds raw client bytes to session id.
func (c *Coordinator) Input(id int, chunk []byte) error {
	c.mu.Lock()
	s, ok := c.sessions[id]
	if !ok {
		c.mu.Unlock()
		return ErrUnknownSession
	}
	closeConn := c.handleInputLocked(s, chunk)
	var frame string
	var send bool
	if !closeConn {
		frame, send = c.renderLocked(s)
	}
	c.mu.Unlock()

	if closeConn {
		c.Disconnect(id)
		return nil
	}
	if send {
		s.offer(frame)
	}
	return nil
}

// Resize updates the terminal geometry of session id.
func (c *Coordinator) Resize(id, cols, rows int) error {
	c.mu.Lock()
	s, ok := c.sessions[id]
	if !ok {
		c.mu.Unlock()
		return ErrUnknownSession
	}
	s.state.Cols, s.state.Rows = cols, rows
	frame, send := c.renderLocked(s)
	c.mu.Unlock()
	if send {
		s.offer(frame)
	}
	return nil
}

// Disconnect removes the session and its player in one critical section and
// closes the connection. Repeated calls are no-ops.
func (c *Coordinator) Disconnect(id int) {
	c.mu.Lock()
	s, ok := c.sessions[id]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.sessions, id)
	cleared := c.world.RemovePlayer(id)
	c.mu.Unlock()

	s.stop()
	if err := s.conn.Close(); err != nil {
		c.logf("session %d (%s): close: %v", id, s.Trace, err)
	}
	c.logf("session %d (%s) disconnected, %d cells cleared", id, s.Trace, cleared)
}

// Close disconnects every session.
func (c *Coordinator) Close() {
	c.mu.Lock()
	ids := make([]int, 0, len(c.sessions))
	for id := range c.sessions {
		ids = append(ids, id)
	}
	c.mu.Unlock()
	for _, id := range ids {
		c.Disconnect(id)
	}
}

// SessionCount returns the number of live sessions.
func (c *Coordinator) SessionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// State returns a copy of session id's input state.
func (c *Coordinator) State(id int) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[id]
	if !ok {
		return State{}, false
	}
	st := s.state
	st.password = nil
	return st, true
}

// WithWorld runs fn with the world locked against the tick and all input.
func (c *Coordinator) WithWorld(fn func(w *game.World)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.world)
}

// Tick steps the world once, expires banners and hands every session a
// fresh frame.
func (c *Coordinator) Tick(ctx context.Context) game.TickReport {
	_, span := c.tracer.Start(ctx, "lifeserve.tick")
	defer span.End()

	type outgoing struct {
		s     *Session
		frame string
	}

	c.mu.Lock()
	report := c.world.Tick()
	if report.Round != nil {
		c.announceRoundLocked(*report.Round)
		span.AddEvent("round.end", trace.WithAttributes(
			attribute.Int("round", report.Round.Round),
			attribute.Int("winner", report.Round.Winner),
			attribute.Int("unplaced", len(report.Round.Reset.Unplaced)),
		))
	}
	if report.BecameStable {
		span.AddEvent("board.stable")
	}
	now := c.now()
	out := make([]outgoing, 0, len(c.sessions))
	for _, s := range c.sessions {
		s.state.Expire(now)
		if frame, ok := c.renderLocked(s); ok {
			out = append(out, outgoing{s: s, frame: frame})
		}
	}
	sessions := len(c.sessions)
	c.mu.Unlock()

	for _, o := range out {
		o.s.offer(o.frame)
	}
	span.SetAttributes(
		attribute.Int("generation", report.Generation),
		attribute.Int("live", report.Live),
		attribute.Int("sessions", sessions),
	)
	return report
}

// Run ticks at the configured period until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) error {
	c.logf("tick loop started, period %s", c.timer.Period())
	for {
		start := time.Now()
		c.Tick(ctx)
		if err := c.timer.Wait(ctx, start); err != nil {
			c.logf("tick loop stopped: %v", err)
			return nil
		}
	}
}

// renderLocked builds the frame for s. A missing player is logged and the
// session gets a generic banner instead of a frame.
// Caller must hold c.mu.
func (c *Coordinator) renderLocked(s *Session) (string, bool) {
	req := render.Request{
		PlayerID: s.ID,
		Cols:     s.state.Cols,
		Rows:     s.state.Rows,
		GodMode:  s.state.GodMode,
		Prompt:   c.promptText(&s.state),
	}
	if s.state.Feedback.Active(c.now()) {
		req.Feedback = s.state.Feedback.Text
	}
	frame, err := c.renderer.Render(c.world, req)
	if err != nil {
		c.logf("session %d (%s): render: %v", s.ID, s.Trace, err)
		c.feedbackLocked(s, c.p.Sprintf(ui.MsgInternal))
		return "", false
	}
	return frame, true
}

// Caller must hold c.mu.
func (c *Coordinator) feedbackLocked(s *Session, text string) {
	s.state.Feedback = Feedback{Text: text, Expiry: c.now().Add(c.feedbackTTL)}
}

// announceRoundLocked shows the round result to every session.
// Caller must hold c.mu.
func (c *Coordinator) announceRoundLocked(summary game.RoundSummary) {
	text := c.p.Sprintf(ui.MsgRoundNone, strconv.Itoa(summary.Round))
	if summary.Winner != 0 {
		text = c.p.Sprintf(ui.MsgRoundWon, strconv.Itoa(summary.Round), strconv.Itoa(summary.Winner))
	}
	for _, s := range c.sessions {
		c.feedbackLocked(s, text)
	}
}

func (c *Coordinator) writeLoop(s *Session) {
	for {
		select {
		case <-s.done:
			return
		case frame := <-s.frames:
			if s.conn.IsClosing() {
				c.Disconnect(s.ID)
				return
			}
			if err := s.conn.Write(frame); err != nil {
				c.logf("session %d (%s): write: %v", s.ID, s.Trace, err)
				c.Disconnect(s.ID)
				return
			}
		}
	}
}
