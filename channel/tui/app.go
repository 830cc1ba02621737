package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const defaultLogRatio = 0.3

var (
	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
)

// App is the root bubbletea model: a status line, the log tail, the chat
// transcript and the input line, top to bottom. Esc hides the log pane.
type App struct {
	logPanel   Panel
	chatPanel  Panel
	inputPanel Panel

	endpoint string
	showLogs bool

	width, height int
	logRatio      float64

	// InputCh receives text submitted in the input panel.
	InputCh chan string
}

// NewApp creates the root TUI model with default panels.
func NewApp() *App {
	return &App{
		logPanel:   NewLogPanel(),
		chatPanel:  NewChatPanel(),
		inputPanel: NewInputPanel("you> "),
		showLogs:   true,
		logRatio:   defaultLogRatio,
		InputCh:    make(chan string, 16),
	}
}

func (m *App) Init() tea.Cmd {
	return textinput.Blink
}

func (m *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			m.showLogs = !m.showLogs
			m.recalcLayout()
			return m, nil
		}
		p, cmd := m.inputPanel.Update(msg)
		m.inputPanel = p
		cmds = append(cmds, cmd)

	case InputSubmitMsg:
		// Not echoed here: the session appends accepted input itself.
		select {
		case m.InputCh <- msg.Text:
		default:
		}

	case StatusMsg:
		m.endpoint = msg.Endpoint

	case LogLineMsg:
		p, cmd := m.logPanel.Update(msg)
		m.logPanel = p
		cmds = append(cmds, cmd)

	case ChatMsg, TypingMsg:
		p, cmd := m.chatPanel.Update(msg)
		m.chatPanel = p
		cmds = append(cmds, cmd)

	default:
		// InputEnabledMsg and cursor blinks.
		p, cmd := m.inputPanel.Update(msg)
		m.inputPanel = p
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *App) View() string {
	if m.width == 0 || m.height == 0 {
		return "initializing..."
	}

	sep := separatorStyle.Render(strings.Repeat("─", m.width))
	rows := []string{m.statusLine()}
	if m.showLogs {
		rows = append(rows, m.logPanel.View(), sep)
	}
	rows = append(rows, m.chatPanel.View(), sep, m.inputPanel.View())
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *App) statusLine() string {
	line := "chatwidget"
	if m.endpoint != "" {
		line += " · " + m.endpoint
	}
	if !m.showLogs {
		line += " · esc: logs"
	}
	return statusStyle.MaxWidth(m.width).Render(line)
}

func (m *App) recalcLayout() {
	const fixed = 3 // status, input and the separator above it

	usable := max(m.height-fixed, 2)
	chatH := usable
	if m.showLogs {
		logH := max(int(float64(usable-1)*m.logRatio), 1)
		m.logPanel.SetSize(m.width, logH)
		chatH = max(usable-1-logH, 1)
	}
	m.chatPanel.SetSize(m.width, chatH)
	m.inputPanel.SetSize(m.width, 1)
}
