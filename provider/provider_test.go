package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func TestRegistry(t *testing.T) {
	names := SupportedProviders()
	for _, want := range []string{"anthropic", "deepseek", "echo", "gemini", "openai", "openrouter"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Errorf("provider %q not registered (have %v)", want, names)
		}
	}
	if got := SupportedModelsForProvider("gemini"); len(got) == 0 || got[0] != "gemini-2.0-flash-lite" {
		t.Errorf("gemini models = %v", got)
	}
	if got := EnvKeyForProvider("anthropic"); got != "ANTHROPIC_API_KEY" {
		t.Errorf("anthropic env key = %q", got)
	}
	if SupportedModelsForProvider("nope") != nil {
		t.Error("unknown provider should have no models")
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New("nope", Settings{}); err == nil || !strings.Contains(err.Error(), "unknown provider") {
		t.Fatalf("unknown provider error = %v", err)
	}
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := New("openai", Settings{}); err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("missing key error = %v", err)
	}
	t.Setenv("OPENAI_API_KEY", "sk-env")
	p, err := New("openai", Settings{})
	if err != nil {
		t.Fatalf("New with env key: %v", err)
	}
	if cp := p.(*CompatProvider); cp.modelName != "gpt-4o-mini" {
		t.Errorf("default model = %q", cp.modelName)
	}
}

func TestCompatProviderChat(t *testing.T) {
	var body []byte
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/openai/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id":"c1","object":"chat.completion","created":1,"model":"gemini-2.0-flash-lite",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  **Hi** there  "}}],
			"usage":{"prompt_tokens":12,"completion_tokens":3,"total_tokens":15}
		}`)
	}))
	defer srv.Close()

	p, err := New("gemini", Settings{
		APIKey:      "key",
		APIBase:     srv.URL + "/v1beta/openai/chat/completions",
		MaxTokens:   64,
		Temperature: 0.5,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	resp, err := p.Chat(context.Background(), &Request{Messages: []Message{
		SystemMessage("be brief"),
		UserMessage("hello"),
		AssistantMessage("hi"),
		UserMessage("again"),
	}})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Content != "**Hi** there" {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 15 || resp.Usage.PromptTokens != 12 {
		t.Errorf("Usage = %+v", resp.Usage)
	}
	if auth != "Bearer key" {
		t.Errorf("Authorization = %q", auth)
	}

	req := gjson.ParseBytes(body)
	if req.Get("model").String() != "gemini-2.0-flash-lite" {
		t.Errorf("model = %s", req.Get("model"))
	}
	if req.Get("max_tokens").Int() != 64 || req.Get("temperature").Float() != 0.5 {
		t.Errorf("sampling params = %s", body)
	}
	roles := []string{}
	for _, m := range req.Get("messages").Array() {
		roles = append(roles, m.Get("role").String())
	}
	if strings.Join(roles, ",") != "system,user,assistant,user" {
		t.Errorf("roles = %v", roles)
	}
}

func TestCompatProviderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"message":"bad model"}}`)
	}))
	defer srv.Close()

	p, err := New("openai", Settings{APIKey: "k", APIBase: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Chat(context.Background(), &Request{Messages: []Message{UserMessage("x")}}); err == nil {
		t.Fatal("expected error for 400 response")
	}
}

func TestAnthropicProviderChat(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "ak" {
			t.Errorf("api key header = %q", r.Header.Get("X-Api-Key"))
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-haiku-latest",
			"content":[{"type":"text","text":"Hello "},{"type":"text","text":"*world*"}],
			"stop_reason":"end_turn","usage":{"input_tokens":9,"output_tokens":4}
		}`)
	}))
	defer srv.Close()

	p, err := New("anthropic", Settings{APIKey: "ak", APIBase: srv.URL + "/v1"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	resp, err := p.Chat(context.Background(), &Request{Messages: []Message{
		SystemMessage("you are helpful"),
		UserMessage("hi"),
	}})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Content != "Hello *world*" {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 13 {
		t.Errorf("Usage = %+v", resp.Usage)
	}
	if payload["max_tokens"] != float64(1024) {
		t.Errorf("max_tokens = %v", payload["max_tokens"])
	}
	if msgs, _ := payload["messages"].([]any); len(msgs) != 1 {
		t.Errorf("messages = %v", payload["messages"])
	}
	if sys, _ := payload["system"].([]any); len(sys) != 1 {
		t.Errorf("system = %v", payload["system"])
	}
}

func TestEchoProvider(t *testing.T) {
	p, err := New("echo", Settings{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	resp, err := p.Chat(context.Background(), &Request{Messages: []Message{
		SystemMessage("ignored"),
		UserMessage("first"),
		UserMessage("line one\nline two"),
	}})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if !strings.Contains(resp.Content, "> line one line two") || !strings.Contains(resp.Content, "(17 characters)") {
		t.Errorf("echo content = %q", resp.Content)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Chat(ctx, &Request{}); err == nil {
		t.Error("echo should honor a canceled context")
	}
}

func TestNormalizeSDKBaseURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "https://api.openai.com/v1/"},
		{"https://x.test/v1", "https://x.test/v1/"},
		{"https://x.test/v1/", "https://x.test/v1/"},
		{"https://x.test/v1/chat/completions", "https://x.test/v1/"},
	}
	for _, tt := range tests {
		if got := normalizeSDKBaseURL(tt.in, openAIAPIBase, "/chat/completions"); got != tt.want {
			t.Errorf("normalizeSDKBaseURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
