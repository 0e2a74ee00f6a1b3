package openai

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/botirk38/embedcache/tokenizer"
	"github.com/botirk38/embedcache/types"
)

const (
	DefaultOpenAIModel = openai.EmbeddingModelTextEmbedding3Small
	// DefaultMaxTokens is the input limit of the text-embedding-3 models.
	DefaultMaxTokens = 8191

	providerName = "openai"
)

// OpenAIProvider uses OpenAI's API to embed text.
type OpenAIProvider struct {
	client     *openai.Client
	model      string
	dimensions int
	counter    *tokenizer.Counter
}

// OpenAIConfig provides configuration options for OpenAI embedding provider
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	OrgID   string
	Model   string
	// Dimensions asks the model to shorten its vectors. Zero keeps the native size.
	Dimensions int
}

// NewOpenAIProvider creates an embedding provider for OpenAI.
// The client never retries: retry policy belongs to the caller.
func NewOpenAIProvider(config OpenAIConfig) (*OpenAIProvider, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, errors.New("OpenAI API key is required")
		}
	}
	if config.Dimensions < 0 {
		return nil, fmt.Errorf("dimensions must not be negative, got %d", config.Dimensions)
	}

	model := config.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	if config.OrgID != "" {
		opts = append(opts, option.WithOrganization(config.OrgID))
	}

	counter, err := tokenizer.NewCounter()
	if err != nil {
		return nil, err
	}

	client := openai.NewClient(opts...)
	return &OpenAIProvider{
		client:     &client,
		model:      model,
		dimensions: config.Dimensions,
		counter:    counter,
	}, nil
}

// GetMaxTokens returns the input token limit of the configured model.
func (p *OpenAIProvider) GetMaxTokens() int {
	switch p.model {
	case openai.EmbeddingModelTextEmbedding3Small,
		openai.EmbeddingModelTextEmbedding3Large,
		openai.EmbeddingModelTextEmbeddingAda002:
		return 8191
	default:
		return DefaultMaxTokens
	}
}

// EmbedText sends the embedding request to OpenAI.
func (p *OpenAIProvider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if p.counter != nil {
		n, err := p.counter.Count(text)
		if err != nil {
			return nil, types.Rejected(providerName, 0, err)
		}
		if limit := p.GetMaxTokens(); n > limit {
			return nil, types.Rejected(providerName, 0, fmt.Errorf("input has %d tokens, %s accepts %d", n, p.model, limit))
		}
	}

	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(p.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
	}
	if p.dimensions > 0 {
		params.Dimensions = openai.Int(int64(p.dimensions))
	}

	resp, err := p.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, classifyError(err)
	}
	if len(resp.Data) == 0 {
		return nil, types.Unavailable(providerName, 0, errors.New("no embedding returned by OpenAI"))
	}

	// OpenAI returns []float64; convert to []float32
	embeddingF64 := resp.Data[0].Embedding
	embeddingF32 := make([]float32, len(embeddingF64))
	for i, v := range embeddingF64 {
		embeddingF32[i] = float32(v)
	}
	return embeddingF32, nil
}

// Dimensions returns the requested vector length, or 0 for the model default.
func (p *OpenAIProvider) Dimensions() int {
	return p.dimensions
}

func (p *OpenAIProvider) Close() {}

// classifyError maps API status codes to provider failure kinds.
// Anything without a status (network, timeouts, cancellation) is transient.
func classifyError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &types.ProviderError{
			Provider:   providerName,
			StatusCode: apiErr.StatusCode,
			Kind:       types.ClassifyStatus(apiErr.StatusCode),
			Err:        err,
		}
	}
	return types.Unavailable(providerName, 0, err)
}
