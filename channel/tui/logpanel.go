package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxLogLines = 500

var (
	logDebugStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	logInfoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	logWarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	logErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// LogPanel shows the tail of the session log, colored by level.
type LogPanel struct {
	viewport viewport.Model
	lines    []string
}

// NewLogPanel creates an empty log panel.
func NewLogPanel() *LogPanel {
	return &LogPanel{viewport: viewport.New(0, 0)}
}

func (p *LogPanel) Update(msg tea.Msg) (Panel, tea.Cmd) {
	if msg, ok := msg.(LogLineMsg); ok {
		p.lines = append(p.lines, stripLogTime(strings.TrimRight(msg.Line, "\n")))
		if len(p.lines) > maxLogLines {
			p.lines = p.lines[len(p.lines)-maxLogLines:]
		}
		styled := make([]string, len(p.lines))
		for i, l := range p.lines {
			styled[i] = styleLogLine(l)
		}
		p.viewport.SetContent(strings.Join(styled, "\n"))
		p.viewport.GotoBottom()
		return p, nil
	}
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

func (p *LogPanel) View() string {
	return p.viewport.View()
}

func (p *LogPanel) SetSize(width, height int) {
	p.viewport.Width = width
	p.viewport.Height = height
}

// Lines returns the kept log lines without styling, oldest first.
func (p *LogPanel) Lines() []string {
	return append([]string(nil), p.lines...)
}

func styleLogLine(line string) string {
	switch {
	case strings.Contains(line, "level=ERROR"):
		return logErrorStyle.Render(line)
	case strings.Contains(line, "level=WARN"):
		return logWarnStyle.Render(line)
	case strings.Contains(line, "level=DEBUG"):
		return logDebugStyle.Render(line)
	default:
		return logInfoStyle.Render(line)
	}
}

// stripLogTime drops the leading time= attribute of a slog text line.
func stripLogTime(line string) string {
	if !strings.HasPrefix(line, "time=") {
		return line
	}
	if i := strings.IndexByte(line, ' '); i >= 0 {
		return line[i+1:]
	}
	return line
}
