package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/linanwx/chatwidget/channel"
	"github.com/linanwx/chatwidget/config"
	"github.com/linanwx/chatwidget/provider"
)

// lastReply sends text over conn and returns the final HTML of the bot
// reply once input is unlocked again.
func lastReply(t *testing.T, conn *websocket.Conn, text string) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, conn, map[string]string{"type": "send", "text": text}); err != nil {
		t.Fatal(err)
	}
	var html string
	for {
		var f channel.Frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			t.Fatalf("read frame: %v", err)
		}
		switch {
		case f.Type == "update":
			html = f.HTML
		case f.Type == "input" && f.Enabled && html != "":
			return html
		}
	}
}

func TestWidgetUsersHaveSeparateLimits(t *testing.T) {
	cfg := config.DefaultConfig().Server
	cfg.RateLimit.RPS = 0.001
	cfg.RateLimit.Burst = 1
	r, err := NewResponder(provider.EchoProvider{}, ResponderOptions{ProviderName: "echo"})
	if err != nil {
		t.Fatal(err)
	}
	srv := New(cfg, r)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	// The widget relays to the same server, as in the default dev setup.
	web := channel.NewWebChannel(channel.NewSessions(config.WidgetConfig{
		Endpoint:         ts.URL + "/chat",
		RevealIntervalMs: 1,
		MinTypingMs:      1,
		RequestTimeout:   5,
	}))
	srv.Mount("GET /ws", web.SocketHandler())
	if err := web.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer web.Stop()

	dial := func() *websocket.Conn {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		return conn
	}
	alice, bob := dial(), dial()
	defer alice.CloseNow()
	defer bob.CloseNow()

	if got := lastReply(t, alice, "hello"); !strings.Contains(got, "You said") {
		t.Fatalf("first user reply = %q", got)
	}
	if got := lastReply(t, bob, "hello"); !strings.Contains(got, "You said") {
		t.Fatalf("second user reply = %q", got)
	}
	if got := lastReply(t, alice, "again"); !strings.Contains(got, "trouble connecting") {
		t.Fatalf("first user was not limited: %q", got)
	}
}
