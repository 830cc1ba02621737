package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	userMsgStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // cyan
	typingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

// ChatPanel displays the conversation in a scrollable viewport.
type ChatPanel struct {
	viewport viewport.Model
	order    []string
	messages map[string]ChatMsg
	typing   bool
}

// NewChatPanel creates a chat panel.
func NewChatPanel() *ChatPanel {
	vp := viewport.New(0, 0)
	vp.SetContent("")
	return &ChatPanel{viewport: vp, messages: make(map[string]ChatMsg)}
}

func (p *ChatPanel) Update(msg tea.Msg) (Panel, tea.Cmd) {
	switch msg := msg.(type) {
	case ChatMsg:
		if _, ok := p.messages[msg.ID]; !ok {
			p.order = append(p.order, msg.ID)
		}
		p.messages[msg.ID] = msg
		p.refresh()
		return p, nil
	case TypingMsg:
		p.typing = msg.On
		p.refresh()
		return p, nil
	}
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

// Content returns the unstyled transcript, one block per message.
func (p *ChatPanel) Content() string {
	blocks := make([]string, 0, len(p.order))
	for _, id := range p.order {
		m := p.messages[id]
		if m.IsUser {
			blocks = append(blocks, "> "+m.Text)
		} else if m.Text != "" {
			blocks = append(blocks, m.Text)
		}
	}
	return strings.Join(blocks, "\n\n")
}

func (p *ChatPanel) refresh() {
	blocks := make([]string, 0, len(p.order)+1)
	for _, id := range p.order {
		m := p.messages[id]
		switch {
		case m.IsUser:
			blocks = append(blocks, userMsgStyle.Render("> "+m.Text))
		case m.Text != "":
			blocks = append(blocks, m.Text)
		}
	}
	if p.typing {
		blocks = append(blocks, typingStyle.Render("assistant is typing..."))
	}
	p.viewport.SetContent(strings.Join(blocks, "\n\n"))
	p.viewport.GotoBottom()
}

func (p *ChatPanel) View() string {
	return p.viewport.View()
}

func (p *ChatPanel) SetSize(width, height int) {
	p.viewport.Width = width
	p.viewport.Height = height
}
