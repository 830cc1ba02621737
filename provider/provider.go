// Package provider defines the LLM provider interface used by the chat
// backend and its implementations.
package provider

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Provider is the interface for LLM providers.
type Provider interface {
	// Chat sends a chat completion request and returns the response.
	Chat(ctx context.Context, req *Request) (*Response, error)
}

// Request represents a chat completion request.
type Request struct {
	Messages []Message
}

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// Response represents a chat completion response.
type Response struct {
	Content string
	Usage   Usage
}

// Usage represents token usage information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Settings are the runtime options a provider is built with.
type Settings struct {
	APIKey      string
	APIBase     string
	ModelName   string
	MaxTokens   int
	Temperature float64
}

// ProviderConstructor builds a provider for the requested settings.
type ProviderConstructor func(s Settings) Provider

// ProviderRegistration defines metadata and constructor for a provider.
type ProviderRegistration struct {
	Models      []string // first entry is the default model
	EnvKey      string   // environment variable holding the API key
	EnvBase     string   // environment variable overriding the base URL
	Constructor ProviderConstructor
}

var providerRegistry = map[string]ProviderRegistration{}

// RegisterProvider registers provider metadata and constructor.
func RegisterProvider(name string, reg ProviderRegistration) {
	name = strings.TrimSpace(name)
	if name == "" || reg.Constructor == nil {
		return
	}

	models := make([]string, 0, len(reg.Models))
	for _, model := range reg.Models {
		model = strings.TrimSpace(model)
		if model != "" {
			models = append(models, model)
		}
	}
	reg.Models = models
	reg.EnvKey = strings.TrimSpace(reg.EnvKey)
	reg.EnvBase = strings.TrimSpace(reg.EnvBase)
	providerRegistry[name] = reg
}

// SupportedProviders returns all supported provider names in sorted order.
func SupportedProviders() []string {
	names := make([]string, 0, len(providerRegistry))
	for name := range providerRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SupportedModelsForProvider returns the known models of a provider.
func SupportedModelsForProvider(providerName string) []string {
	reg, ok := providerRegistry[providerName]
	if !ok {
		return nil
	}
	out := make([]string, len(reg.Models))
	copy(out, reg.Models)
	return out
}

// EnvKeyForProvider returns the API key variable of a provider, if any.
func EnvKeyForProvider(providerName string) string {
	return providerRegistry[providerName].EnvKey
}

// New builds the named provider. Missing key, base URL and model fall back
// to the registration's environment variables and default model.
func New(name string, s Settings) (Provider, error) {
	name = strings.TrimSpace(name)
	reg, ok := providerRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (supported: %s)", name, strings.Join(SupportedProviders(), ", "))
	}

	if s.APIKey == "" && reg.EnvKey != "" {
		s.APIKey = strings.TrimSpace(os.Getenv(reg.EnvKey))
	}
	if s.APIBase == "" && reg.EnvBase != "" {
		s.APIBase = strings.TrimSpace(os.Getenv(reg.EnvBase))
	}
	if s.ModelName == "" && len(reg.Models) > 0 {
		s.ModelName = reg.Models[0]
	}
	if reg.EnvKey != "" && s.APIKey == "" {
		return nil, fmt.Errorf("%s API key not configured (set responder.apiKey or %s)", name, reg.EnvKey)
	}
	return reg.Constructor(s), nil
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// SystemMessage creates a system message.
func SystemMessage(content string) Message {
	return Message{Role: "system", Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}

func inputChars(messages []Message) int {
	n := 0
	for _, m := range messages {
		n += len(m.Content)
	}
	return n
}
