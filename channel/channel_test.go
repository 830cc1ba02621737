package channel

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/linanwx/chatwidget/config"
)

type stubChannel struct {
	name    string
	log     *[]string
	stopErr error
}

func (c *stubChannel) Name() string { return c.name }
func (c *stubChannel) Start(context.Context) error {
	*c.log = append(*c.log, "start:"+c.name)
	return nil
}
func (c *stubChannel) Stop() error {
	*c.log = append(*c.log, "stop:"+c.name)
	return c.stopErr
}

func TestManager(t *testing.T) {
	var log []string
	m := NewManager()
	m.Register(&stubChannel{name: "web", log: &log})
	m.Register(&stubChannel{name: "cli", log: &log, stopErr: errors.New("boom")})
	m.Register(nil)

	if _, ok := m.Get("web"); !ok {
		t.Fatal("web channel not registered")
	}
	if err := m.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if err := m.StopAll(); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("StopAll error = %v", err)
	}
	if got := strings.Join(log, ","); got != "start:cli,start:web,stop:cli,stop:web" {
		t.Fatalf("call order = %s", got)
	}
}

// replyServer is a chat endpoint answering every message with reply.
func replyServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":` + reply + `}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func fastWidget(endpoint string) config.WidgetConfig {
	return config.WidgetConfig{
		Endpoint:         endpoint,
		RevealIntervalMs: 1,
		MinTypingMs:      1,
		RequestTimeout:   5,
	}
}

func TestHandleCommand(t *testing.T) {
	d := newPlainDisplay(&strings.Builder{})
	s, c := NewSessions(fastWidget("http://one/chat")).New("localhost", d)
	defer s.Close()

	if handleCommand(s, c, "hello") {
		t.Fatal("plain text treated as a command")
	}
	if !handleCommand(s, c, "/endpoint http://two/chat") {
		t.Fatal("/endpoint not handled")
	}
	if c.Endpoint() != "http://two/chat" {
		t.Fatalf("endpoint = %q", c.Endpoint())
	}
	tr := s.Transcript()
	if len(tr) != 1 || tr[0].Text != "Endpoint changed to http://two/chat" {
		t.Fatalf("transcript = %+v", tr)
	}
}

// syncBuffer is a strings.Builder safe for concurrent writers.
type syncBuffer struct {
	mu sync.Mutex
	b  strings.Builder
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestPlainCLIChannel(t *testing.T) {
	srv := replyServer(t, `"**Hi** there"`)
	w := fastWidget(srv.URL + "/chat")
	w.Greeting = "Welcome!"

	out := &syncBuffer{}
	in := strings.NewReader("hello\n/endpoint\nquit\n")
	c := newPlainCLIChannel(NewSessions(w), in, out)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	select {
	case <-c.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("cli channel did not finish")
	}
	_ = c.Stop()

	got := out.String()
	for _, want := range []string{"Welcome!", "...", "Hi there", "Endpoint: " + srv.URL + "/chat", "Goodbye!"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "Welcome!") > strings.Index(got, "Hi there") {
		t.Errorf("greeting printed after reply:\n%s", got)
	}
}
