// Package options provides functional options for configuring Cache instances.
package options

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/botirk38/embedcache/providers"
	"github.com/botirk38/embedcache/providers/gemini"
	"github.com/botirk38/embedcache/providers/openai"
	"github.com/botirk38/embedcache/types"
)

const (
	DefaultMaxEntries   = 1000
	DefaultMaxBytes     = 64 << 20
	DefaultSnippetRunes = 280
)

// Option represents a configuration option for Cache
type Option func(*Config) error

// Config holds the configuration for building a Cache
type Config struct {
	Provider     types.EmbeddingProvider
	MaxEntries   int
	MaxBytes     int64
	Dimensions   int
	SnippetRunes int
	Logger       logrus.FieldLogger
	Clock        types.Clock
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		MaxEntries:   DefaultMaxEntries,
		MaxBytes:     DefaultMaxBytes,
		SnippetRunes: DefaultSnippetRunes,
		Logger:       logrus.StandardLogger(),
	}
}

// Apply applies all the given options to the config
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Provider == nil {
		return errors.New("embedding provider is required - use WithOpenAIProvider, WithCustomProvider, etc.")
	}
	if c.MaxEntries <= 0 {
		return fmt.Errorf("max entries must be positive, got %d", c.MaxEntries)
	}
	if c.MaxBytes <= 0 {
		return fmt.Errorf("max bytes must be positive, got %d", c.MaxBytes)
	}
	if c.SnippetRunes < 0 {
		return fmt.Errorf("snippet runes must not be negative, got %d", c.SnippetRunes)
	}
	if c.Dimensions < 0 {
		return fmt.Errorf("dimensions must not be negative, got %d", c.Dimensions)
	}
	if d := c.Provider.Dimensions(); d > 0 && c.Dimensions > 0 && d != c.Dimensions {
		return fmt.Errorf("cache dimensions %d do not match provider dimensions %d", c.Dimensions, d)
	}
	return nil
}

// ResolvedDimensions returns the vector length the store should pin, or 0 to
// learn it from the first embedding.
func (c *Config) ResolvedDimensions() int {
	if c.Dimensions > 0 {
		return c.Dimensions
	}
	if c.Provider != nil {
		return c.Provider.Dimensions()
	}
	return 0
}

// WithMaxEntries caps the number of cached embeddings.
func WithMaxEntries(n int) Option {
	return func(cfg *Config) error {
		if n <= 0 {
			return fmt.Errorf("max entries must be positive, got %d", n)
		}
		cfg.MaxEntries = n
		return nil
	}
}

// WithMaxBytes caps the aggregate size of cached vectors.
func WithMaxBytes(n int64) Option {
	return func(cfg *Config) error {
		if n <= 0 {
			return fmt.Errorf("max bytes must be positive, got %d", n)
		}
		cfg.MaxBytes = n
		return nil
	}
}

// WithDimensions pins the embedding length.
func WithDimensions(d int) Option {
	return func(cfg *Config) error {
		if d < 0 {
			return fmt.Errorf("dimensions must not be negative, got %d", d)
		}
		cfg.Dimensions = d
		return nil
	}
}

// WithSnippetRunes limits how much source text each entry keeps for retrieval results.
func WithSnippetRunes(n int) Option {
	return func(cfg *Config) error {
		if n < 0 {
			return fmt.Errorf("snippet runes must not be negative, got %d", n)
		}
		cfg.SnippetRunes = n
		return nil
	}
}

// WithLogger sets the logger used for cache events.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(cfg *Config) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.Logger = logger
		return nil
	}
}

// WithClock replaces time.Now for entry bookkeeping.
func WithClock(clock types.Clock) Option {
	return func(cfg *Config) error {
		if clock == nil {
			return errors.New("clock cannot be nil")
		}
		cfg.Clock = clock
		return nil
	}
}

// WithOpenAIProvider sets up OpenAI embedding provider
func WithOpenAIProvider(apiKey string, model ...string) Option {
	return func(cfg *Config) error {
		config := openai.OpenAIConfig{
			APIKey:     apiKey,
			Dimensions: cfg.Dimensions,
		}
		if len(model) > 0 {
			config.Model = model[0]
		}

		provider, err := providers.NewOpenAIProvider(config)
		if err != nil {
			return err
		}
		cfg.Provider = provider
		return nil
	}
}

// WithGeminiProvider sets up Gemini embedding provider
func WithGeminiProvider(ctx context.Context, apiKey string, model ...string) Option {
	return func(cfg *Config) error {
		config := gemini.GeminiConfig{
			APIKey:     apiKey,
			Dimensions: cfg.Dimensions,
		}
		if len(model) > 0 {
			config.Model = model[0]
		}

		provider, err := providers.NewGeminiProvider(ctx, config)
		if err != nil {
			return err
		}
		cfg.Provider = provider
		return nil
	}
}

// WithProviderConfig builds the provider selected by a providers.Config.
func WithProviderConfig(ctx context.Context, config providers.Config) Option {
	return func(cfg *Config) error {
		provider, err := providers.New(ctx, config)
		if err != nil {
			return err
		}
		cfg.Provider = provider
		return nil
	}
}

// WithCustomProvider allows using a pre-configured embedding provider
func WithCustomProvider(provider types.EmbeddingProvider) Option {
	return func(cfg *Config) error {
		if provider == nil {
			return errors.New("provider cannot be nil")
		}
		cfg.Provider = provider
		return nil
	}
}
