package channel

import (
	"context"
	_ "embed"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/linanwx/chatwidget/client"
	"github.com/linanwx/chatwidget/logger"
	"github.com/linanwx/chatwidget/session"
)

//go:embed static/index.html
var widgetPage []byte

const webFrameBufferSize = 256

// Frame is one display update sent to the widget page.
type Frame struct {
	Type    string `json:"type"` // append, update, typing, input, scroll, endpoint
	ID      string `json:"id,omitempty"`
	Sender  string `json:"sender,omitempty"`
	HTML    string `json:"html,omitempty"`
	On      bool   `json:"on,omitempty"`
	Enabled bool   `json:"enabled,omitempty"`
	URL     string `json:"url,omitempty"`
}

// inbound is a frame sent by the widget page.
type inbound struct {
	Type string `json:"type"` // send
	Text string `json:"text"`
}

// SessionObserver is told when widget sessions open and close.
type SessionObserver interface {
	SessionOpened()
	SessionClosed()
}

// WebChannel serves the widget page and runs one session per websocket.
type WebChannel struct {
	sessions *Sessions
	origins  []string
	observer SessionObserver

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// WebOption configures a WebChannel.
type WebOption func(*WebChannel)

// WithAllowedOrigins restricts which pages may open the websocket.
// Entries are origins ("https://site.example") or "*".
func WithAllowedOrigins(origins []string) WebOption {
	return func(c *WebChannel) {
		c.origins = originPatterns(origins)
	}
}

// WithSessionObserver reports session counts, e.g. to metrics.
func WithSessionObserver(o SessionObserver) WebOption {
	return func(c *WebChannel) { c.observer = o }
}

// NewWebChannel creates the web widget channel.
func NewWebChannel(sessions *Sessions, opts ...WebOption) *WebChannel {
	c := &WebChannel{sessions: sessions}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *WebChannel) Name() string { return "web" }

// Start allows connections until ctx is canceled or Stop is called.
func (c *WebChannel) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctx, c.cancel = context.WithCancel(ctx)
	logger.Info("web channel started")
	return nil
}

// Stop closes every open websocket and waits for their sessions.
func (c *WebChannel) Stop() error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()
	c.wg.Wait()
	logger.Info("web channel stopped")
	return nil
}

// PageHandler serves the widget page.
func (c *WebChannel) PageHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" && r.URL.Path != "/index.html" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(widgetPage)
	})
}

// SocketHandler upgrades to a websocket and runs a session on it.
func (c *WebChannel) SocketHandler() http.Handler {
	return http.HandlerFunc(c.serveSocket)
}

func (c *WebChannel) serveSocket(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	base := c.ctx
	if base == nil || base.Err() != nil {
		c.mu.Unlock()
		http.Error(w, "web channel not running", http.StatusServiceUnavailable)
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()
	defer c.wg.Done()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: c.origins})
	if err != nil {
		logger.Warn("websocket accept failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(base)
	defer cancel()

	display := newSocketDisplay(ctx, cancel)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		display.run(conn)
	}()

	sess, cl := c.sessions.New(r.Host, display,
		client.WithHeader(client.ClientHeader, r.RemoteAddr))
	if c.observer != nil {
		c.observer.SessionOpened()
		defer c.observer.SessionClosed()
	}
	logger.Info("widget session opened", "remote", r.RemoteAddr, "endpoint", cl.Endpoint())

	display.push(Frame{Type: "endpoint", URL: cl.Endpoint()})
	display.SetInputEnabled(true)
	if greeting := c.sessions.Greeting(); greeting != "" {
		sess.Greet(greeting)
	}

	for {
		var in inbound
		if err := wsjson.Read(ctx, conn, &in); err != nil {
			if status := websocket.CloseStatus(err); status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !errors.Is(err, context.Canceled) {
				logger.Debug("websocket read ended", "remote", r.RemoteAddr, "err", err)
			}
			break
		}
		if in.Type != "send" {
			continue
		}
		// Slash commands are terminal-only: the client runs in this
		// process, so a remote page must not pick where it posts.
		if !sess.Send(strings.TrimSpace(in.Text)) {
			logger.Debug("widget send ignored", "state", sess.State().String())
		}
	}

	cancel()
	sess.Close()
	<-writerDone
	_ = conn.Close(websocket.StatusNormalClosure, "")
	logger.Info("widget session closed", "remote", r.RemoteAddr)
}

// socketDisplay queues frames for one websocket. Display calls never block
// past the connection's lifetime; a failed write ends the connection.
type socketDisplay struct {
	ctx    context.Context
	cancel context.CancelFunc
	frames chan Frame
}

func newSocketDisplay(ctx context.Context, cancel context.CancelFunc) *socketDisplay {
	return &socketDisplay{ctx: ctx, cancel: cancel, frames: make(chan Frame, webFrameBufferSize)}
}

func (d *socketDisplay) push(f Frame) {
	select {
	case d.frames <- f:
	case <-d.ctx.Done():
	}
}

func (d *socketDisplay) run(conn *websocket.Conn) {
	for {
		select {
		case <-d.ctx.Done():
			return
		case f := <-d.frames:
			if err := wsjson.Write(d.ctx, conn, f); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.Debug("websocket write failed", "err", err)
				}
				d.cancel()
				return
			}
		}
	}
}

func (d *socketDisplay) AppendMessage(msg session.Message, html string) {
	d.push(Frame{Type: "append", ID: msg.ID, Sender: string(msg.Sender), HTML: html})
}

func (d *socketDisplay) UpdateMessage(id, html string) {
	d.push(Frame{Type: "update", ID: id, HTML: html})
}

func (d *socketDisplay) ShowTyping() { d.push(Frame{Type: "typing", On: true}) }
func (d *socketDisplay) HideTyping() { d.push(Frame{Type: "typing", On: false}) }

func (d *socketDisplay) ScrollToBottom() { d.push(Frame{Type: "scroll"}) }

func (d *socketDisplay) SetInputEnabled(enabled bool) {
	d.push(Frame{Type: "input", Enabled: enabled})
}

// originPatterns turns configured origins into websocket host patterns.
func originPatterns(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		o = strings.TrimPrefix(o, "https://")
		o = strings.TrimPrefix(o, "http://")
		o = strings.TrimRight(o, "/")
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
