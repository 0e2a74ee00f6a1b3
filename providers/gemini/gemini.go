package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"

	"google.golang.org/genai"

	"github.com/botirk38/embedcache/types"
)

const (
	DefaultGeminiModel = "text-embedding-004"
	// DefaultMaxTokens is the input limit of text-embedding-004.
	DefaultMaxTokens = 2048

	providerName = "gemini"
)

// GeminiConfig provides configuration options for the Gemini embedding provider.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	// Dimensions asks the model to shorten its vectors. Zero keeps the native size.
	Dimensions int
}

// embedder is the part of genai.Models the provider uses.
type embedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// GeminiProvider embeds text through the Gemini API.
type GeminiProvider struct {
	models     embedder
	model      string
	dimensions int
}

// NewGeminiProvider creates an embedding provider for Gemini.
// If APIKey is empty, it uses os.Getenv("GEMINI_API_KEY").
func NewGeminiProvider(ctx context.Context, config GeminiConfig) (*GeminiProvider, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			return nil, errors.New("Gemini API key is required")
		}
	}
	if config.Dimensions < 0 {
		return nil, fmt.Errorf("dimensions must not be negative, got %d", config.Dimensions)
	}

	model := config.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		models:     client.Models,
		model:      model,
		dimensions: config.Dimensions,
	}, nil
}

// EmbedText sends the embedding request to Gemini.
func (p *GeminiProvider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	var cfg *genai.EmbedContentConfig
	if p.dimensions > 0 {
		dims := int32(p.dimensions)
		cfg = &genai.EmbedContentConfig{OutputDimensionality: &dims}
	}

	resp, err := p.models.EmbedContent(ctx, p.model, genai.Text(text), cfg)
	if err != nil {
		return nil, classifyError(err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, types.Unavailable(providerName, 0, errors.New("no embedding returned by Gemini"))
	}
	return resp.Embeddings[0].Values, nil
}

// Dimensions returns the requested vector length, or 0 for the model default.
func (p *GeminiProvider) Dimensions() int {
	return p.dimensions
}

func (p *GeminiProvider) Close() {}

// GetMaxTokens returns the input token limit of the embedding model.
func (p *GeminiProvider) GetMaxTokens() int {
	return DefaultMaxTokens
}

func classifyError(err error) error {
	status := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.Code
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		status = apiErrPtr.Code
	}
	if status == 0 {
		return types.Unavailable(providerName, 0, err)
	}
	return &types.ProviderError{
		Provider:   providerName,
		StatusCode: status,
		Kind:       types.ClassifyStatus(status),
		Err:        err,
	}
}
