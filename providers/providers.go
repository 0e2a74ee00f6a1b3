package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/botirk38/embedcache/providers/gemini"
	"github.com/botirk38/embedcache/providers/openai"
	"github.com/botirk38/embedcache/types"
)

var ErrUnsupportedProvider = errors.New("unsupported provider type")

// Config selects and configures one embedding provider.
type Config struct {
	Type       types.ProviderType
	APIKey     string
	BaseURL    string
	OrgID      string
	Model      string
	Dimensions int
}

// New creates the provider named by config.Type.
func New(ctx context.Context, config Config) (types.EmbeddingProvider, error) {
	switch config.Type {
	case types.ProviderOpenAI, "":
		return NewOpenAIProvider(openai.OpenAIConfig{
			APIKey:     config.APIKey,
			BaseURL:    config.BaseURL,
			OrgID:      config.OrgID,
			Model:      config.Model,
			Dimensions: config.Dimensions,
		})
	case types.ProviderGemini:
		return NewGeminiProvider(ctx, gemini.GeminiConfig{
			APIKey:     config.APIKey,
			BaseURL:    config.BaseURL,
			Model:      config.Model,
			Dimensions: config.Dimensions,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, config.Type)
	}
}

// MaxInputTokens returns the input token limit of the default embedding model
// for the given provider type, or 0 for an unknown type.
func MaxInputTokens(providerType types.ProviderType) int {
	switch providerType {
	case types.ProviderOpenAI, "":
		return openai.DefaultMaxTokens
	case types.ProviderGemini:
		return gemini.DefaultMaxTokens
	default:
		return 0
	}
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config openai.OpenAIConfig) (types.EmbeddingProvider, error) {
	p, err := openai.NewOpenAIProvider(config)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, config gemini.GeminiConfig) (types.EmbeddingProvider, error) {
	p, err := gemini.NewGeminiProvider(ctx, config)
	if err != nil {
		return nil, err
	}
	return p, nil
}
