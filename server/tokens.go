package server

import (
	"github.com/tiktoken-go/tokenizer"
)

// tokenCounter measures prompts with the cl100k_base encoding. Counts are
// an estimate for non-OpenAI models, which is all the input cap needs.
type tokenCounter struct {
	codec tokenizer.Codec
}

func newTokenCounter() (*tokenCounter, error) {
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return nil, err
	}
	return &tokenCounter{codec: codec}, nil
}

// Count returns the number of tokens in text.
func (c *tokenCounter) Count(text string) int {
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		// Roughly four bytes per token for English text.
		return len(text)/4 + 1
	}
	return len(ids)
}
