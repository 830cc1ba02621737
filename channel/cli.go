package channel

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/linanwx/chatwidget/client"
	"github.com/linanwx/chatwidget/logger"
	"github.com/linanwx/chatwidget/session"
)

const cliStopWaitTimeout = 500 * time.Millisecond

// TerminalChannel is a chat channel bound to the terminal. Done is closed
// when the user leaves the chat.
type TerminalChannel interface {
	Channel
	Done() <-chan struct{}
}

// NewCLIChannel creates a CLI channel.
// If stdin is a terminal, it returns a TUI-based channel; otherwise a plain scanner.
func NewCLIChannel(sessions *Sessions) TerminalChannel {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return newTUIChannel(sessions)
	}
	return newPlainCLIChannel(sessions, os.Stdin, os.Stdout)
}

// plainCLIChannel reads lines from in and prints finished replies to out.
// Each line waits for the previous reply to be fully revealed.
type plainCLIChannel struct {
	sessions *Sessions
	prompt   string
	in       io.Reader
	out      io.Writer
	session  *session.Session
	client   *client.Client
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func newPlainCLIChannel(sessions *Sessions, in io.Reader, out io.Writer) *plainCLIChannel {
	return &plainCLIChannel{
		sessions: sessions,
		prompt:   "you> ",
		in:       in,
		out:      out,
		done:     make(chan struct{}),
	}
}

func (c *plainCLIChannel) Name() string {
	return "cli"
}

func (c *plainCLIChannel) Done() <-chan struct{} {
	return c.done
}

func (c *plainCLIChannel) Start(ctx context.Context) error {
	sess, cl := c.sessions.New("localhost", newPlainDisplay(c.out))
	c.session, c.client = sess, cl
	logger.Info("cli channel started (plain mode)", "endpoint", cl.Endpoint())

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.stopOnce.Do(func() { close(c.done) })
		if greeting := c.sessions.Greeting(); greeting != "" && sess.Greet(greeting) {
			sess.Wait()
		}
		c.readInput(ctx)
	}()
	return nil
}

func (c *plainCLIChannel) Stop() error {
	c.stopOnce.Do(func() { close(c.done) })
	if c.session != nil {
		c.session.Close()
	}

	waitDone := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(cliStopWaitTimeout):
		// The input loop may be blocked reading stdin.
		logger.Warn("cli channel stop timed out waiting for input loop")
	}
	logger.Info("cli channel stopped")
	return nil
}

func (c *plainCLIChannel) readInput(ctx context.Context) {
	scanner := bufio.NewScanner(c.in)
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		default:
		}

		fmt.Fprint(c.out, c.prompt)
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if isExit(text) {
			fmt.Fprintln(c.out, "Goodbye!")
			return
		}
		if handleCommand(c.session, c.client, text) {
			continue
		}
		if c.session.Send(text) {
			c.session.Wait()
		}
	}
}

func isExit(text string) bool {
	return text == "exit" || text == "quit" || text == "/exit" || text == "/quit"
}

// plainDisplay prints bot messages once their reveal has finished.
type plainDisplay struct {
	mu      sync.Mutex
	out     io.Writer
	pending string
}

func newPlainDisplay(out io.Writer) *plainDisplay {
	return &plainDisplay{out: out}
}

func (d *plainDisplay) AppendMessage(msg session.Message, html string) {
	if msg.Sender != session.SenderBot || html == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.out, "%s\n\n", PlainText(html))
}

func (d *plainDisplay) UpdateMessage(_ string, html string) {
	d.mu.Lock()
	d.pending = html
	d.mu.Unlock()
}

func (d *plainDisplay) ShowTyping() {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintln(d.out, "...")
}

func (d *plainDisplay) HideTyping()     {}
func (d *plainDisplay) ScrollToBottom() {}

func (d *plainDisplay) SetInputEnabled(enabled bool) {
	if !enabled {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != "" {
		fmt.Fprintf(d.out, "%s\n\n", PlainText(d.pending))
		d.pending = ""
	}
}
