package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/botirk38/embedcache/types"
)

type mockModels struct {
	resp      *genai.EmbedContentResponse
	err       error
	gotModel  string
	gotConfig *genai.EmbedContentConfig
	gotText   string
}

func (m *mockModels) EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	m.gotModel = model
	m.gotConfig = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		m.gotText = contents[0].Parts[0].Text
	}
	return m.resp, m.err
}

func TestGeminiProvider_EmbedText(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		models := &mockModels{resp: &genai.EmbedContentResponse{
			Embeddings: []*genai.ContentEmbedding{{Values: []float32{0.1, 0.2}}},
		}}
		p := &GeminiProvider{models: models, model: DefaultGeminiModel, dimensions: 2}

		vec, err := p.EmbedText(ctx, "news item")
		require.NoError(t, err)
		assert.Equal(t, []float32{0.1, 0.2}, vec)
		assert.Equal(t, DefaultGeminiModel, models.gotModel)
		assert.Equal(t, "news item", models.gotText)
		require.NotNil(t, models.gotConfig)
		assert.Equal(t, int32(2), *models.gotConfig.OutputDimensionality)
	})

	t.Run("NativeDimensionsSendNoConfig", func(t *testing.T) {
		models := &mockModels{resp: &genai.EmbedContentResponse{
			Embeddings: []*genai.ContentEmbedding{{Values: []float32{1}}},
		}}
		p := &GeminiProvider{models: models, model: DefaultGeminiModel}

		_, err := p.EmbedText(ctx, "x")
		require.NoError(t, err)
		assert.Nil(t, models.gotConfig)
	})

	t.Run("EmptyResponse", func(t *testing.T) {
		p := &GeminiProvider{models: &mockModels{resp: &genai.EmbedContentResponse{}}, model: DefaultGeminiModel}
		_, err := p.EmbedText(ctx, "x")
		assert.ErrorIs(t, err, types.ErrProviderUnavailable)
	})

	t.Run("ErrorsClassified", func(t *testing.T) {
		tests := []struct {
			name   string
			err    error
			want   error
			status int
		}{
			{"bad request", genai.APIError{Code: 400, Message: "bad"}, types.ErrProviderRejected, 400},
			{"forbidden", genai.APIError{Code: 403, Message: "blocked"}, types.ErrProviderRejected, 403},
			{"rate limited", genai.APIError{Code: 429, Message: "quota"}, types.ErrProviderUnavailable, 429},
			{"server error", genai.APIError{Code: 500, Message: "oops"}, types.ErrProviderUnavailable, 500},
			{"network", errors.New("connection reset"), types.ErrProviderUnavailable, 0},
			{"deadline", context.DeadlineExceeded, types.ErrProviderUnavailable, 0},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				p := &GeminiProvider{models: &mockModels{err: tt.err}, model: DefaultGeminiModel}
				_, err := p.EmbedText(ctx, "x")
				assert.ErrorIs(t, err, tt.want)

				var perr *types.ProviderError
				require.ErrorAs(t, err, &perr)
				assert.Equal(t, tt.status, perr.StatusCode)
				assert.Equal(t, "gemini", perr.Provider)
			})
		}
	})
}

func TestNewGeminiProvider(t *testing.T) {
	t.Run("RequiresAPIKey", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		_, err := NewGeminiProvider(context.Background(), GeminiConfig{})
		assert.Error(t, err)
	})

	t.Run("NegativeDimensions", func(t *testing.T) {
		_, err := NewGeminiProvider(context.Background(), GeminiConfig{APIKey: "k", Dimensions: -3})
		assert.Error(t, err)
	})
}

func TestGeminiProvider_GetMaxTokens(t *testing.T) {
	p := &GeminiProvider{model: DefaultGeminiModel}
	assert.Equal(t, DefaultMaxTokens, p.GetMaxTokens())
	assert.Equal(t, 2048, p.GetMaxTokens())
}
