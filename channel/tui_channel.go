package channel

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/linanwx/chatwidget/channel/tui"
	"github.com/linanwx/chatwidget/client"
	"github.com/linanwx/chatwidget/logger"
	"github.com/linanwx/chatwidget/session"
)

// TUIChannel runs one chat session in a bubbletea TUI.
type TUIChannel struct {
	sessions *Sessions
	app      *tui.App
	program  *tea.Program
	session  *session.Session
	client   *client.Client
	done     chan struct{}
	wg       sync.WaitGroup
	doneOnce sync.Once
	stopOnce sync.Once
}

func newTUIChannel(sessions *Sessions) *TUIChannel {
	return &TUIChannel{
		sessions: sessions,
		done:     make(chan struct{}),
	}
}

func (c *TUIChannel) Name() string { return "cli" }

func (c *TUIChannel) Done() <-chan struct{} { return c.done }

func (c *TUIChannel) Start(ctx context.Context) error {
	c.app = tui.NewApp()
	c.program = tea.NewProgram(c.app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	c.session, c.client = c.sessions.New("localhost", &tuiDisplay{program: c.program})

	// Redirect logger output to the TUI log panel.
	logger.Intercept(&logWriter{program: c.program})

	// Run bubbletea in a goroutine.
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if _, err := c.program.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "tui error: %v\n", err)
		}
		c.doneOnce.Do(func() { close(c.done) })
	}()

	// Feed user input from the App into the session.
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.program.Quit()
				return
			case <-c.done:
				return
			case text, ok := <-c.app.InputCh:
				if !ok {
					return
				}
				if isExit(text) {
					c.program.Quit()
					return
				}
				if handleCommand(c.session, c.client, text) {
					c.program.Send(tui.StatusMsg{Endpoint: c.client.Endpoint()})
					continue
				}
				c.session.Send(text)
			}
		}
	}()

	c.program.Send(tui.StatusMsg{Endpoint: c.client.Endpoint()})
	if greeting := c.sessions.Greeting(); greeting != "" {
		c.session.Greet(greeting)
	}
	logger.Info("cli channel started (TUI mode)", "endpoint", c.client.Endpoint())
	return nil
}

func (c *TUIChannel) Stop() error {
	c.stopOnce.Do(func() {
		if c.session != nil {
			c.session.Close()
		}
		c.doneOnce.Do(func() { close(c.done) })
		if c.program != nil {
			c.program.Quit()
		}
		c.wg.Wait()
		logger.Restore()
		logger.Info("cli channel stopped")
	})
	return nil
}

// tuiDisplay forwards session display calls to the bubbletea program.
type tuiDisplay struct {
	program *tea.Program
}

func (d *tuiDisplay) AppendMessage(msg session.Message, html string) {
	text := PlainText(html)
	if msg.Sender == session.SenderUser {
		text = msg.Text
	}
	d.program.Send(tui.ChatMsg{ID: msg.ID, Text: text, IsUser: msg.Sender == session.SenderUser})
}

func (d *tuiDisplay) UpdateMessage(id, html string) {
	d.program.Send(tui.ChatMsg{ID: id, Text: PlainText(html)})
}

func (d *tuiDisplay) ShowTyping()     { d.program.Send(tui.TypingMsg{On: true}) }
func (d *tuiDisplay) HideTyping()     { d.program.Send(tui.TypingMsg{On: false}) }
func (d *tuiDisplay) ScrollToBottom() {}

func (d *tuiDisplay) SetInputEnabled(enabled bool) {
	d.program.Send(tui.InputEnabledMsg{Enabled: enabled})
}

// logWriter implements io.Writer and sends each write as a LogLineMsg to the TUI.
type logWriter struct {
	program *tea.Program
}

func (w *logWriter) Write(p []byte) (int, error) {
	// Split on newlines in case a single write contains multiple lines.
	lines := bytes.Split(p, []byte("\n"))
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		w.program.Send(tui.LogLineMsg{Line: string(line)})
	}
	return len(p), nil
}
