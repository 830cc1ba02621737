package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const lockedPlaceholder = "waiting for the reply..."

// InputPanel provides a single-line text input. While disabled it keeps
// its text but ignores keys.
type InputPanel struct {
	input         textinput.Model
	enabled       bool
	width, height int
}

// NewInputPanel creates an enabled input panel with the given prompt.
func NewInputPanel(prompt string) *InputPanel {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Focus()
	return &InputPanel{input: ti, enabled: true}
}

// Enabled reports whether the panel accepts input.
func (p *InputPanel) Enabled() bool { return p.enabled }

func (p *InputPanel) Update(msg tea.Msg) (Panel, tea.Cmd) {
	switch msg := msg.(type) {
	case InputEnabledMsg:
		p.enabled = msg.Enabled
		if p.enabled {
			p.input.Placeholder = ""
			return p, p.input.Focus()
		}
		p.input.Placeholder = lockedPlaceholder
		p.input.Blur()
		return p, nil
	case tea.KeyMsg:
		if !p.enabled {
			return p, nil
		}
		if msg.Type == tea.KeyEnter {
			text := p.input.Value()
			if text == "" {
				return p, nil
			}
			p.input.Reset()
			return p, func() tea.Msg { return InputSubmitMsg{Text: text} }
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *InputPanel) View() string {
	return p.input.View()
}

func (p *InputPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.Width = width - len(p.input.Prompt) - 1
}
