// Package tui provides a terminal user interface for the CLI channel.
package tui

import tea "github.com/charmbracelet/bubbletea"

// Panel is a composable TUI region with its own state, update logic, and view.
// The root App model orchestrates panels without knowing their internals.
type Panel interface {
	Update(tea.Msg) (Panel, tea.Cmd)
	View() string
	SetSize(width, height int)
}

// LogLineMsg carries a single log line from the logger writer.
type LogLineMsg struct{ Line string }

// ChatMsg adds a chat message or replaces the text of the message with
// the same ID.
type ChatMsg struct {
	ID     string
	Text   string
	IsUser bool
}

// TypingMsg shows or hides the typing indicator.
type TypingMsg struct{ On bool }

// InputEnabledMsg locks or unlocks the input panel.
type InputEnabledMsg struct{ Enabled bool }

// StatusMsg updates the status line.
type StatusMsg struct{ Endpoint string }

// InputSubmitMsg is emitted when the user presses Enter in the input panel.
type InputSubmitMsg struct{ Text string }
