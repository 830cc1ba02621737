package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tidwall/gjson"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"response field", `{"response":"hello"}`, "hello"},
		{"message field", `{"message":"hi there"}`, "hi there"},
		{"response wins", `{"response":"a","message":"b"}`, "a"},
		{"empty response falls through", `{"response":"","message":"b"}`, "b"},
		{"number", `{"response":42}`, "42"},
		{"missing fields", `{"status":"ok"}`, DefaultReply},
		{"null", `{"response":null}`, DefaultReply},
		{"array", `["hello"]`, DefaultReply},
		{"scalar", `"hello"`, DefaultReply},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseReply([]byte(tt.body)); got != tt.want {
				t.Errorf("ParseReply(%s) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}
}

func TestEncodeRequest(t *testing.T) {
	ts := time.Date(2024, 3, 9, 8, 7, 6, 5_000_000, time.FixedZone("X", 3600))
	body, err := EncodeRequest(`say "hi" <now>`, ts)
	if err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}
	if got := gjson.GetBytes(body, "message").String(); got != `say "hi" <now>` {
		t.Errorf("message = %q", got)
	}
	if got := gjson.GetBytes(body, "timestamp").String(); got != "2024-03-09T07:07:06.005Z" {
		t.Errorf("timestamp = %q", got)
	}
}

func TestAsk(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"**pong**"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	reply, err := c.Ask(context.Background(), "ping")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if reply != "**pong**" {
		t.Errorf("reply = %q", reply)
	}
	if gjson.GetBytes(gotBody, "message").String() != "ping" {
		t.Errorf("request body = %s", gotBody)
	}
	if !gjson.GetBytes(gotBody, "timestamp").Exists() {
		t.Errorf("request has no timestamp: %s", gotBody)
	}
}

func TestAskErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr func(error) bool
	}{
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `{"response":"ignored"}`,
			wantErr: func(err error) bool {
				var se *StatusError
				return errors.As(err, &se) && se.Code == http.StatusInternalServerError
			},
		},
		{
			name:    "malformed json",
			status:  http.StatusOK,
			body:    `{"response": "unterminated`,
			wantErr: func(err error) bool { return errors.Is(err, ErrMalformedResponse) },
		},
		{
			name:    "html page",
			status:  http.StatusOK,
			body:    `<html>oops</html>`,
			wantErr: func(err error) bool { return errors.Is(err, ErrMalformedResponse) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).Ask(context.Background(), "hi")
			if err == nil || !tt.wantErr(err) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestAskHonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := New(srv.URL).Ask(ctx, "hi"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestSetEndpoint(t *testing.T) {
	c := New("http://a")
	c.SetEndpoint("  http://b/chat ")
	if c.Endpoint() != "http://b/chat" {
		t.Fatalf("endpoint = %q", c.Endpoint())
	}
	c.SetEndpoint("")
	if _, err := c.Ask(context.Background(), "x"); err == nil {
		t.Fatal("expected error without endpoint")
	}
}
