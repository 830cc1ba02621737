package channel

import (
	"net/http"
	"strings"

	"github.com/linanwx/chatwidget/client"
	"github.com/linanwx/chatwidget/config"
	"github.com/linanwx/chatwidget/session"
)

// Sessions builds chat sessions from the widget configuration. All
// sessions share one pooled HTTP client.
type Sessions struct {
	widget config.WidgetConfig
	http   *http.Client
}

// NewSessions creates a session factory for w.
func NewSessions(w config.WidgetConfig) *Sessions {
	return &Sessions{
		widget: w,
		http:   client.NewHTTPClient(w.Timeout()),
	}
}

// Greeting returns the message typed out when a session opens.
func (f *Sessions) Greeting() string {
	return f.widget.Greeting
}

// New creates a session drawing on d. host is where the widget is served
// from and picks the endpoint in auto mode. opts are applied to the
// session's endpoint client.
func (f *Sessions) New(host string, d session.Display, opts ...client.Option) (*session.Session, *client.Client) {
	opts = append([]client.Option{client.WithHTTPClient(f.http)}, opts...)
	c := client.New(f.widget.ResolveEndpoint(host), opts...)
	s := session.New(c, d,
		session.WithMinTyping(f.widget.MinTyping()),
		session.WithRequestTimeout(f.widget.Timeout()),
		session.WithRevealInterval(f.widget.RevealInterval()),
	)
	return s, c
}

// handleCommand runs slash commands typed into a terminal chat input. It
// reports whether text was a command.
//
//	/endpoint            show the current endpoint
//	/endpoint <url>      switch endpoints
func handleCommand(s *session.Session, c *client.Client, text string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 || fields[0] != "/endpoint" {
		return false
	}
	if len(fields) == 1 {
		s.AddSystemMessage("Endpoint: " + c.Endpoint())
		return true
	}
	c.SetEndpoint(fields[1])
	s.AddSystemMessage("Endpoint changed to " + c.Endpoint())
	return true
}
