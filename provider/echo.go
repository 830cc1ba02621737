package provider

import (
	"context"
	"fmt"
	"strings"
)

func init() {
	RegisterProvider("echo", ProviderRegistration{
		Models: []string{"echo"},
		Constructor: func(Settings) Provider {
			return EchoProvider{}
		},
	})
}

// EchoProvider answers without a model: it quotes the last user message
// back in markdown. It needs no credentials and is meant for development.
type EchoProvider struct{}

// Chat echoes the last user message.
func (EchoProvider) Chat(ctx context.Context, req *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	last := ""
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			last = strings.TrimSpace(req.Messages[i].Content)
			break
		}
	}
	if last == "" {
		return &Response{Content: "Say something and I will **echo** it."}, nil
	}
	content := fmt.Sprintf("You said:\n\n> %s\n\n*(%d characters)*", strings.ReplaceAll(last, "\n", " "), len([]rune(last)))
	return &Response{Content: content}, nil
}
