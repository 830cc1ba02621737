// Package reveal animates a message one character at a time.
//
// An Engine owns at most one running reveal. Each tick advances the
// revealed prefix by one rune, renders it and hands the HTML to the caller.
// Starting a new reveal cancels the previous one before its next tick.
package reveal

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/linanwx/chatwidget/markdown"
)

// DefaultInterval is the delay between two revealed characters.
const DefaultInterval = 50 * time.Millisecond

// Mode selects how a revealed prefix becomes HTML.
type Mode int

const (
	// ModeMarkdown renders each prefix with the markdown renderer.
	ModeMarkdown Mode = iota
	// ModePlain appends escaped characters with no markup.
	ModePlain
)

func (m Mode) String() string {
	if m == ModePlain {
		return "plain"
	}
	return "markdown"
}

// State is a snapshot of the latest reveal.
type State struct {
	SourceText    string
	RevealedIndex int
	Active        bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithInterval sets the per-character delay.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// Engine drives reveals on a single ticker.
type Engine struct {
	clock    clockwork.Clock
	interval time.Duration

	mu      sync.Mutex
	current *run
	last    *run
}

type run struct {
	runes  []rune
	index  int
	mode   Mode
	ticker clockwork.Ticker
	stop   chan struct{}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		clock:    clockwork.NewRealClock(),
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reveal starts a markdown reveal of text.
func (e *Engine) Reveal(text string, onTick func(html string), onDone func()) {
	e.Start(text, ModeMarkdown, onTick, onDone)
}

// Start cancels any running reveal and begins revealing text.
//
// onTick is called once per character, in order, with the HTML of the
// revealed prefix. onDone is called exactly once after the last tick, and
// never for a reveal that was cancelled. Empty text completes at once.
// Callbacks run on the engine goroutine and must not call back into e.
func (e *Engine) Start(text string, mode Mode, onTick func(html string), onDone func()) {
	r := &run{
		runes: []rune(text),
		mode:  mode,
		stop:  make(chan struct{}),
	}

	e.mu.Lock()
	e.cancelLocked()
	e.last = r
	if len(r.runes) == 0 {
		e.mu.Unlock()
		if onDone != nil {
			onDone()
		}
		return
	}
	r.ticker = e.clock.NewTicker(e.interval)
	e.current = r
	e.mu.Unlock()

	go e.loop(r, onTick, onDone)
}

// Stop cancels the running reveal, if any. Its onDone is not called.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.cancelLocked()
	e.mu.Unlock()
}

// Active reports whether a reveal is running.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current != nil
}

// State returns a snapshot of the most recent reveal.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.last == nil {
		return State{}
	}
	return State{
		SourceText:    string(e.last.runes),
		RevealedIndex: e.last.index,
		Active:        e.current == e.last,
	}
}

func (e *Engine) cancelLocked() {
	if e.current == nil {
		return
	}
	e.current.ticker.Stop()
	close(e.current.stop)
	e.current = nil
}

func (e *Engine) loop(r *run, onTick func(string), onDone func()) {
	for {
		select {
		case <-r.stop:
			return
		case <-r.ticker.Chan():
		}

		// Ticks are delivered under the lock so a cancelled run can never
		// emit a frame after its successor started.
		e.mu.Lock()
		if e.current != r {
			e.mu.Unlock()
			return
		}
		r.index++
		if onTick != nil {
			onTick(r.render())
		}
		finished := r.index >= len(r.runes)
		if finished {
			r.ticker.Stop()
			e.current = nil
		}
		e.mu.Unlock()

		if finished {
			if onDone != nil {
				onDone()
			}
			return
		}
	}
}

func (r *run) render() string {
	prefix := string(r.runes[:r.index])
	if r.mode == ModePlain {
		return markdown.EscapeHTML(prefix)
	}
	if r.index < len(r.runes) {
		return markdown.RenderPartial(prefix)
	}
	return markdown.Render(prefix)
}
