package server

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/linanwx/chatwidget/provider"
)

// historyEntry accepts both {role, content} and the Gemini style
// {role, parts: [{text}]}. JSON files parse as YAML.
type historyEntry struct {
	Role    string `yaml:"role"`
	Content string `yaml:"content"`
	Parts   []struct {
		Text string `yaml:"text"`
	} `yaml:"parts"`
}

// LoadHistory reads the seed conversation prepended to every prompt.
// An empty path yields no history.
func LoadHistory(path string) ([]provider.Message, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", path, err)
	}
	return ParseHistory(data)
}

// ParseHistory decodes a seed conversation. Role "model" is read as
// assistant; entries without text are skipped.
func ParseHistory(data []byte) ([]provider.Message, error) {
	var entries []historyEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse history: %w", err)
	}

	out := make([]provider.Message, 0, len(entries))
	for i, e := range entries {
		text := e.Content
		if text == "" {
			parts := make([]string, 0, len(e.Parts))
			for _, p := range e.Parts {
				if p.Text != "" {
					parts = append(parts, p.Text)
				}
			}
			text = strings.Join(parts, "\n")
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(e.Role)) {
		case "user":
			out = append(out, provider.UserMessage(text))
		case "model", "assistant", "bot":
			out = append(out, provider.AssistantMessage(text))
		case "system":
			out = append(out, provider.SystemMessage(text))
		default:
			return nil, fmt.Errorf("parse history: entry %d has unknown role %q", i, e.Role)
		}
	}
	return out, nil
}
