package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestChatPanelUpsertsByID(t *testing.T) {
	p := NewChatPanel()
	p.SetSize(80, 20)

	p.Update(ChatMsg{ID: "u1", Text: "hi", IsUser: true})
	p.Update(ChatMsg{ID: "b1", Text: ""})
	p.Update(ChatMsg{ID: "b1", Text: "Hel"})
	p.Update(ChatMsg{ID: "b1", Text: "Hello"})

	if got := p.Content(); got != "> hi\n\nHello" {
		t.Fatalf("content = %q", got)
	}
}

func TestChatPanelTypingIndicator(t *testing.T) {
	p := NewChatPanel()
	p.SetSize(80, 20)

	p.Update(TypingMsg{On: true})
	if !strings.Contains(p.View(), "typing") {
		t.Fatalf("typing indicator missing: %q", p.View())
	}
	p.Update(TypingMsg{On: false})
	if strings.Contains(p.View(), "typing") {
		t.Fatalf("typing indicator still shown: %q", p.View())
	}
}

func TestInputPanelLock(t *testing.T) {
	p := NewInputPanel("you> ")
	p.SetSize(40, 1)

	for _, r := range "hey" {
		p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	p.Update(InputEnabledMsg{Enabled: false})
	if p.Enabled() {
		t.Fatal("panel still enabled")
	}
	if _, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Fatal("Enter submitted while locked")
	}

	p.Update(InputEnabledMsg{Enabled: true})
	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("Enter ignored after unlock")
	}
	if msg, ok := cmd().(InputSubmitMsg); !ok || msg.Text != "hey" {
		t.Fatalf("submit msg = %#v", cmd())
	}
}

func TestAppForwardsInput(t *testing.T) {
	app := NewApp()
	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	app.Update(InputSubmitMsg{Text: "hello"})

	select {
	case got := <-app.InputCh:
		if got != "hello" {
			t.Fatalf("input = %q", got)
		}
	default:
		t.Fatal("input not forwarded")
	}
	if strings.Contains(app.View(), "hello") {
		t.Fatal("app echoed input before the session accepted it")
	}
}

func TestLogPanelKeepsTail(t *testing.T) {
	p := NewLogPanel()
	p.SetSize(80, 5)

	p.Update(LogLineMsg{Line: "time=2026-01-02T03:04:05Z level=WARN msg=\"chat request failed\"\n"})
	p.Update(LogLineMsg{Line: "level=INFO msg=started"})
	lines := p.Lines()
	if len(lines) != 2 || lines[0] != `level=WARN msg="chat request failed"` || lines[1] != "level=INFO msg=started" {
		t.Fatalf("lines = %q", lines)
	}

	for range maxLogLines {
		p.Update(LogLineMsg{Line: "level=DEBUG msg=tick"})
	}
	if n := len(p.Lines()); n != maxLogLines {
		t.Fatalf("kept %d lines, want %d", n, maxLogLines)
	}
}

func TestAppStatusAndLogToggle(t *testing.T) {
	app := NewApp()
	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	app.Update(StatusMsg{Endpoint: "http://localhost:8000/chat"})
	app.Update(LogLineMsg{Line: "level=INFO msg=visible-log"})

	view := app.View()
	if !strings.Contains(view, "http://localhost:8000/chat") || !strings.Contains(view, "visible-log") {
		t.Fatalf("view = %q", view)
	}

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if strings.Contains(app.View(), "visible-log") {
		t.Fatal("log pane still shown after esc")
	}
	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !strings.Contains(app.View(), "visible-log") {
		t.Fatal("log pane not restored")
	}
}
