package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/linanwx/chatwidget/provider"
)

// ErrPromptTooLarge is returned when a user message exceeds the input cap.
var ErrPromptTooLarge = errors.New("message exceeds the input token limit")

// Responder turns one user message into a model reply. Each prompt is the
// system prompt, the seed history and the message; nothing accumulates
// between requests.
type Responder struct {
	provider       provider.Provider
	providerName   string
	modelName      string
	systemPrompt   string
	history        []provider.Message
	maxInputTokens int
	timeout        time.Duration
	tokens         *tokenCounter
}

// ResponderOptions configures a Responder.
type ResponderOptions struct {
	ProviderName   string // reported by /healthz
	ModelName      string
	SystemPrompt   string
	History        []provider.Message
	MaxInputTokens int // zero disables the cap
	Timeout        time.Duration
}

// NewResponder creates a Responder backed by p.
func NewResponder(p provider.Provider, opts ResponderOptions) (*Responder, error) {
	tokens, err := newTokenCounter()
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}
	return &Responder{
		provider:       p,
		providerName:   opts.ProviderName,
		modelName:      opts.ModelName,
		systemPrompt:   strings.TrimSpace(opts.SystemPrompt),
		history:        opts.History,
		maxInputTokens: opts.MaxInputTokens,
		timeout:        opts.Timeout,
		tokens:         tokens,
	}, nil
}

// Reply asks the provider to answer message.
func (r *Responder) Reply(ctx context.Context, message string) (string, error) {
	if r.maxInputTokens > 0 {
		if n := r.tokens.Count(message); n > r.maxInputTokens {
			return "", fmt.Errorf("%w (%d > %d)", ErrPromptTooLarge, n, r.maxInputTokens)
		}
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	resp, err := r.provider.Chat(ctx, &provider.Request{Messages: r.prompt(message)})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (r *Responder) prompt(message string) []provider.Message {
	msgs := make([]provider.Message, 0, len(r.history)+2)
	if r.systemPrompt != "" {
		msgs = append(msgs, provider.SystemMessage(r.systemPrompt))
	}
	msgs = append(msgs, r.history...)
	return append(msgs, provider.UserMessage(message))
}
