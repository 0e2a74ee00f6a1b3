// Package tokenizer counts and trims text in model tokens.
package tokenizer

import (
	"fmt"

	"github.com/tiktoken-go/tokenizer"
)

// Counter counts tokens with tiktoken's cl100k_base encoding, the one used by
// OpenAI's embedding models. Counts are a close estimate for other providers.
type Counter struct {
	codec tokenizer.Codec
}

// NewCounter creates a Counter.
func NewCounter() (*Counter, error) {
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tokenizer: %w", err)
	}
	return &Counter{codec: codec}, nil
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return 0, fmt.Errorf("tokenization failed: %w", err)
	}
	return len(ids), nil
}

// Encode returns the token ids of text.
func (c *Counter) Encode(text string) ([]uint, error) {
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("tokenization failed: %w", err)
	}
	return ids, nil
}

// Decode turns token ids back into text.
func (c *Counter) Decode(ids []uint) (string, error) {
	text, err := c.codec.Decode(ids)
	if err != nil {
		return "", fmt.Errorf("detokenization failed: %w", err)
	}
	return text, nil
}

// Truncate cuts text down to at most maxTokens tokens.
func (c *Counter) Truncate(text string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		return "", nil
	}
	ids, err := c.Encode(text)
	if err != nil {
		return "", err
	}
	if len(ids) <= maxTokens {
		return text, nil
	}
	return c.Decode(ids[:maxTokens])
}
