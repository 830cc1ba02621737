package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	oaioption "github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/linanwx/chatwidget/logger"
)

const (
	sdkMaxRetries = 2

	openAIAPIBase     = "https://api.openai.com/v1"
	deepSeekAPIBase   = "https://api.deepseek.com/v1"
	geminiAPIBase     = "https://generativelanguage.googleapis.com/v1beta/openai"
	openRouterAPIBase = "https://openrouter.ai/api/v1"
)

func init() {
	compat := []struct {
		name, base, envKey, envBase string
		models                      []string
	}{
		{"gemini", geminiAPIBase, "GEMINI_API_KEY", "GEMINI_API_BASE", []string{"gemini-2.0-flash-lite", "gemini-2.0-flash"}},
		{"openai", openAIAPIBase, "OPENAI_API_KEY", "OPENAI_API_BASE", []string{"gpt-4o-mini", "gpt-4o"}},
		{"deepseek", deepSeekAPIBase, "DEEPSEEK_API_KEY", "DEEPSEEK_API_BASE", []string{"deepseek-chat"}},
		{"openrouter", openRouterAPIBase, "OPENROUTER_API_KEY", "OPENROUTER_API_BASE", []string{"openai/gpt-4o-mini"}},
	}
	for _, c := range compat {
		c := c
		RegisterProvider(c.name, ProviderRegistration{
			Models:  c.models,
			EnvKey:  c.envKey,
			EnvBase: c.envBase,
			Constructor: func(s Settings) Provider {
				return newCompatProvider(c.name, c.base, s)
			},
		})
	}
}

// CompatProvider talks to any OpenAI-compatible chat completions API.
type CompatProvider struct {
	providerName string
	apiBase      string
	modelName    string
	maxTokens    int
	temperature  float64
	client       openai.Client
}

func newCompatProvider(providerName, defaultBase string, s Settings) *CompatProvider {
	baseURL := normalizeSDKBaseURL(s.APIBase, defaultBase, "/chat/completions")
	client := openai.NewClient(
		oaioption.WithAPIKey(s.APIKey),
		oaioption.WithBaseURL(baseURL),
		oaioption.WithMaxRetries(sdkMaxRetries),
	)
	return &CompatProvider{
		providerName: providerName,
		apiBase:      baseURL,
		modelName:    s.ModelName,
		maxTokens:    s.MaxTokens,
		temperature:  s.Temperature,
		client:       client,
	}
}

// Chat sends a chat completion request.
func (p *CompatProvider) Chat(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()
	logger.Info(
		"provider request",
		"provider", p.providerName,
		"modelName", p.modelName,
		"messages", len(req.Messages),
		"inputChars", inputChars(req.Messages),
	)

	chatReq := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.modelName),
		Messages: toOpenAIChatMessages(req.Messages),
	}
	if p.maxTokens > 0 {
		chatReq.MaxTokens = openai.Int(int64(p.maxTokens))
	}
	if p.temperature != 0 {
		chatReq.Temperature = openai.Float(p.temperature)
	}

	chatResp, err := p.client.Chat.Completions.New(ctx, chatReq)
	if err != nil {
		logger.Error("provider request error", "provider", p.providerName, "err", err)
		return nil, fmt.Errorf("%s chat completion: %w", p.providerName, err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, errors.New(p.providerName + ": response has no choices")
	}

	resp := &Response{
		Content: strings.TrimSpace(chatResp.Choices[0].Message.Content),
		Usage: Usage{
			PromptTokens:     int(chatResp.Usage.PromptTokens),
			CompletionTokens: int(chatResp.Usage.CompletionTokens),
			TotalTokens:      int(chatResp.Usage.TotalTokens),
		},
	}
	logger.Info(
		"provider response",
		"provider", p.providerName,
		"modelName", p.modelName,
		"promptTokens", resp.Usage.PromptTokens,
		"completionTokens", resp.Usage.CompletionTokens,
		"outputChars", len(resp.Content),
		"latencyMs", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

func toOpenAIChatMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// normalizeSDKBaseURL strips an endpoint suffix users often paste along
// with the base URL and ensures the trailing slash the SDK joins paths on.
func normalizeSDKBaseURL(apiBase, defaultBase, endpointSuffix string) string {
	base := strings.TrimSpace(apiBase)
	if base == "" {
		base = defaultBase
	}
	base = strings.TrimRight(base, "/")
	base = strings.TrimSuffix(base, endpointSuffix)
	return strings.TrimRight(base, "/") + "/"
}
