// Package session runs the request/response cycle of one chat widget.
//
// A Session owns the transcript and the input lock. Each accepted send
// moves it from Idle to AwaitingResponse while the endpoint is queried and
// the typing indicator is shown for at least a minimum duration, then to
// Revealing while the reply is typed out, and back to Idle when the reveal
// finishes. Sends outside Idle are ignored.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/linanwx/chatwidget/client"
	"github.com/linanwx/chatwidget/logger"
	"github.com/linanwx/chatwidget/markdown"
	"github.com/linanwx/chatwidget/reveal"
)

// FailureReply is shown when the endpoint cannot be reached or answers
// with an error.
const FailureReply = "Sorry, I'm having trouble connecting right now. Please try again later."

const (
	DefaultMinTyping      = 2000 * time.Millisecond
	DefaultRequestTimeout = 30 * time.Second
)

// Display is the surface a session draws on.
type Display interface {
	// AppendMessage adds a message with its initial HTML.
	AppendMessage(msg Message, html string)
	// UpdateMessage replaces the HTML of a previously appended message.
	UpdateMessage(id, html string)
	ShowTyping()
	HideTyping()
	ScrollToBottom()
	// SetInputEnabled reflects the input lock.
	SetInputEnabled(enabled bool)
}

// Client fetches the reply to a user message.
type Client interface {
	Ask(ctx context.Context, message string) (string, error)
}

// State is the lifecycle state of a session.
type State int

const (
	StateIdle State = iota
	StateAwaitingResponse
	StateRevealing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingResponse:
		return "awaiting_response"
	case StateRevealing:
		return "revealing"
	default:
		return "unknown"
	}
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the wall clock for the typing floor and the reveal.
func WithClock(c clockwork.Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithMinTyping sets how long the typing indicator stays up at least.
func WithMinTyping(d time.Duration) Option {
	return func(s *Session) {
		if d >= 0 {
			s.minTyping = d
		}
	}
}

// WithRequestTimeout bounds each endpoint request.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithRevealInterval sets the per-character reveal delay.
func WithRevealInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.interval = d
		}
	}
}

// Session is one chat conversation bound to a display.
type Session struct {
	client    Client
	display   Display
	clock     clockwork.Clock
	engine    *reveal.Engine
	minTyping time.Duration
	timeout   time.Duration
	interval  time.Duration

	mu         sync.Mutex
	state      State
	transcript []Message
	closed     bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an idle Session.
func New(c Client, d Display, opts ...Option) *Session {
	s := &Session{
		client:    c,
		display:   d,
		clock:     clockwork.NewRealClock(),
		minTyping: DefaultMinTyping,
		timeout:   DefaultRequestTimeout,
		interval:  reveal.DefaultInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = reveal.New(reveal.WithClock(s.clock), reveal.WithInterval(s.interval))
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transcript returns a copy of the messages appended so far.
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Send submits user text. It reports false, doing nothing, when the text
// is blank or a previous exchange has not finished.
func (s *Session) Send(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	s.mu.Lock()
	if s.closed || s.state != StateIdle {
		s.mu.Unlock()
		return false
	}
	s.state = StateAwaitingResponse
	msg := newMessage(text, SenderUser, s.clock.Now())
	s.transcript = append(s.transcript, msg)
	s.wg.Add(1)
	s.mu.Unlock()

	s.display.AppendMessage(msg, "<p>"+markdown.EscapeHTML(text)+"</p>")
	s.display.ScrollToBottom()
	s.display.SetInputEnabled(false)
	s.display.ShowTyping()
	shownAt := s.clock.Now()

	logger.Debug("chat message sent", "id", msg.ID, "chars", len([]rune(text)))
	go s.exchange(text, shownAt)
	return true
}

// Greet types out a bot message without querying the endpoint. Input is
// locked until it finishes. It reports false when the session is busy.
func (s *Session) Greet(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	s.mu.Lock()
	if s.closed || s.state != StateIdle {
		s.mu.Unlock()
		return false
	}
	msg := newMessage(text, SenderBot, s.clock.Now())
	s.transcript = append(s.transcript, msg)
	s.state = StateRevealing
	s.wg.Add(1)
	s.mu.Unlock()

	s.display.SetInputEnabled(false)
	s.display.AppendMessage(msg, "")
	s.display.ScrollToBottom()
	go func() {
		defer s.wg.Done()
		s.reveal(msg, reveal.ModePlain)
	}()
	return true
}

// AddSystemMessage shows a bot message immediately, without animation and
// without touching the input lock.
func (s *Session) AddSystemMessage(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	msg := newMessage(text, SenderBot, s.clock.Now())
	s.transcript = append(s.transcript, msg)
	s.mu.Unlock()

	s.display.AppendMessage(msg, "<p>"+markdown.EscapeHTML(text)+"</p>")
	s.display.ScrollToBottom()
}

// Wait blocks until the running exchange, if any, has finished.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close abandons any running exchange. No display calls are made after
// Close returns.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.engine.Stop()
	s.wg.Wait()
}

func (s *Session) exchange(text string, shownAt time.Time) {
	defer s.wg.Done()

	reply := s.fetch(text)
	if !s.waitFloor(shownAt) {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	msg := newMessage(reply, SenderBot, s.clock.Now())
	s.transcript = append(s.transcript, msg)
	s.state = StateRevealing
	s.mu.Unlock()

	s.display.HideTyping()
	s.display.AppendMessage(msg, "")
	s.display.ScrollToBottom()
	s.reveal(msg, reveal.ModeMarkdown)
}

// fetch always yields displayable text; failures become FailureReply.
func (s *Session) fetch(text string) string {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	reply, err := s.client.Ask(ctx, text)
	if err != nil {
		logger.Warn("chat request failed", "err", err, "elapsed", time.Since(start))
		return FailureReply
	}
	if strings.TrimSpace(reply) == "" {
		return client.DefaultReply
	}
	logger.Debug("chat reply received", "chars", len([]rune(reply)), "elapsed", time.Since(start))
	return reply
}

// waitFloor sleeps until the typing indicator has been up for minTyping.
// It reports false if the session was closed meanwhile.
func (s *Session) waitFloor(shownAt time.Time) bool {
	remaining := s.minTyping - s.clock.Since(shownAt)
	if remaining <= 0 {
		return s.ctx.Err() == nil
	}
	select {
	case <-s.clock.After(remaining):
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *Session) reveal(msg Message, mode reveal.Mode) {
	done := make(chan struct{})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.engine.Start(msg.Text, mode, func(html string) {
		s.display.UpdateMessage(msg.ID, html)
		s.display.ScrollToBottom()
	}, func() { close(done) })
	s.mu.Unlock()

	select {
	case <-done:
		s.unlock()
	case <-s.ctx.Done():
		s.engine.Stop()
	}
}

func (s *Session) unlock() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state = StateIdle
	s.mu.Unlock()
	s.display.SetInputEnabled(true)
}
