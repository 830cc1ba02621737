package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"

	"github.com/linanwx/chatwidget/logger"
)

const anthropicAPIBase = "https://api.anthropic.com"

func init() {
	RegisterProvider("anthropic", ProviderRegistration{
		Models:  []string{"claude-3-5-haiku-latest", "claude-sonnet-4-0"},
		EnvKey:  "ANTHROPIC_API_KEY",
		EnvBase: "ANTHROPIC_API_BASE",
		Constructor: func(s Settings) Provider {
			return newAnthropicProvider(s)
		},
	})
}

// AnthropicProvider implements the Provider interface for the Messages API.
type AnthropicProvider struct {
	modelName   string
	maxTokens   int
	temperature float64
	client      anthropic.Client
}

func newAnthropicProvider(s Settings) *AnthropicProvider {
	base := strings.TrimRight(strings.TrimSpace(s.APIBase), "/")
	if base == "" {
		base = anthropicAPIBase
	}
	base = strings.TrimSuffix(base, "/v1")
	maxTokens := s.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &AnthropicProvider{
		modelName:   s.ModelName,
		maxTokens:   maxTokens,
		temperature: s.Temperature,
		client: anthropic.NewClient(
			anthropicoption.WithAPIKey(s.APIKey),
			anthropicoption.WithBaseURL(base+"/"),
			anthropicoption.WithMaxRetries(sdkMaxRetries),
		),
	}
}

// Chat sends a Messages API request. System messages are joined into the
// system prompt.
func (p *AnthropicProvider) Chat(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()
	logger.Info(
		"provider request",
		"provider", "anthropic",
		"modelName", p.modelName,
		"messages", len(req.Messages),
		"inputChars", inputChars(req.Messages),
	)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.modelName),
		MaxTokens: int64(p.maxTokens),
	}
	if p.temperature != 0 {
		params.Temperature = anthropic.Float(p.temperature)
	}
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			params.System = append(params.System, anthropic.TextBlockParam{Text: m.Content})
		case "assistant":
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		logger.Error("provider request error", "provider", "anthropic", "err", err)
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	resp := &Response{
		Content: strings.TrimSpace(text.String()),
		Usage: Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}
	logger.Info(
		"provider response",
		"provider", "anthropic",
		"modelName", p.modelName,
		"promptTokens", resp.Usage.PromptTokens,
		"completionTokens", resp.Usage.CompletionTokens,
		"outputChars", len(resp.Content),
		"latencyMs", time.Since(start).Milliseconds(),
	)
	return resp, nil
}
