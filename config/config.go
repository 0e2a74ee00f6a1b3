// Package config loads process configuration for the embedcache command.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/botirk38/embedcache/polish"
	"github.com/botirk38/embedcache/providers"
	"github.com/botirk38/embedcache/types"
)

// EnvPrefix is prepended to every environment variable, so cache.max_entries
// is read from EMBEDCACHE_CACHE_MAX_ENTRIES.
const EnvPrefix = "EMBEDCACHE"

// Config represents the complete configuration for the embedcache command
type Config struct {
	Cache    CacheConfig    `mapstructure:"cache"`
	Provider ProviderConfig `mapstructure:"provider"`
	Polish   PolishConfig   `mapstructure:"polish"`
	Admin    AdminConfig    `mapstructure:"admin"`
	LogLevel string         `mapstructure:"log_level"`
}

// CacheConfig contains the embedding cache ceilings
type CacheConfig struct {
	MaxEntries   int   `mapstructure:"max_entries"`
	MaxBytes     int64 `mapstructure:"max_bytes"`
	SnippetRunes int   `mapstructure:"snippet_runes"`
}

// ProviderConfig selects the embedding provider
type ProviderConfig struct {
	Type       string `mapstructure:"type"`
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	OrgID      string `mapstructure:"org_id"`
	Model      string `mapstructure:"model"`
	Dimensions int    `mapstructure:"dimensions"`
}

// PolishConfig contains retrieval and completion settings for polishing
type PolishConfig struct {
	TopK           int     `mapstructure:"top_k"`
	MinScore       float64 `mapstructure:"min_score"`
	ContextTokens  int     `mapstructure:"context_tokens"`
	MaxInputTokens int     `mapstructure:"max_input_tokens"`
	Model          string  `mapstructure:"model"`
	MaxTokens      int64   `mapstructure:"max_tokens"`
	APIKey         string  `mapstructure:"api_key"`
}

// AdminConfig contains the admin HTTP listener settings
type AdminConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load reads configuration from defaults, an optional config file and the
// environment, in increasing order of precedence. An empty path searches for
// embedcache.yaml in the working directory and ./configs.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("embedcache")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we'll use defaults and env vars
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if config.Polish.MaxInputTokens == 0 {
		config.Polish.MaxInputTokens = defaultMaxInputTokens(types.ProviderType(config.Provider.Type))
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("cache.max_entries", 1000)
	v.SetDefault("cache.max_bytes", 64<<20)
	v.SetDefault("cache.snippet_runes", 280)

	v.SetDefault("provider.type", string(types.ProviderOpenAI))
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.base_url", "")
	v.SetDefault("provider.org_id", "")
	v.SetDefault("provider.model", "")
	v.SetDefault("provider.dimensions", 0)

	pd := polish.DefaultConfig()
	v.SetDefault("polish.top_k", pd.TopK)
	v.SetDefault("polish.min_score", pd.MinScore)
	v.SetDefault("polish.context_tokens", pd.ContextTokens)
	// zero means derive from the provider's input limit
	v.SetDefault("polish.max_input_tokens", 0)
	v.SetDefault("polish.model", polish.DefaultAnthropicModel)
	v.SetDefault("polish.max_tokens", polish.DefaultAnthropicMaxTokens)
	v.SetDefault("polish.api_key", "")

	v.SetDefault("admin.addr", ":8081")
	v.SetDefault("log_level", "info")
}

// defaultMaxInputTokens leaves a tenth of the provider's limit as headroom,
// since cl100k counts only approximate the provider's own tokenizer.
func defaultMaxInputTokens(providerType types.ProviderType) int {
	limit := providers.MaxInputTokens(providerType)
	return limit - limit/10
}

// Validate checks the values Load cannot default away.
func (c *Config) Validate() error {
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
	}
	if c.Cache.MaxBytes <= 0 {
		return fmt.Errorf("cache.max_bytes must be positive, got %d", c.Cache.MaxBytes)
	}
	switch types.ProviderType(c.Provider.Type) {
	case types.ProviderOpenAI, types.ProviderGemini:
	default:
		return fmt.Errorf("%w: %q", providers.ErrUnsupportedProvider, c.Provider.Type)
	}
	if c.Polish.TopK < 0 {
		return fmt.Errorf("polish.top_k must not be negative, got %d", c.Polish.TopK)
	}
	if c.Polish.MaxInputTokens < 0 {
		return fmt.Errorf("polish.max_input_tokens must not be negative, got %d", c.Polish.MaxInputTokens)
	}
	if c.Polish.MinScore < -1 || c.Polish.MinScore > 1 {
		return fmt.Errorf("polish.min_score must be within [-1, 1], got %v", c.Polish.MinScore)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Providers returns the provider selection in the form providers.New expects.
func (c *Config) Providers() providers.Config {
	return providers.Config{
		Type:       types.ProviderType(c.Provider.Type),
		APIKey:     c.Provider.APIKey,
		BaseURL:    c.Provider.BaseURL,
		OrgID:      c.Provider.OrgID,
		Model:      c.Provider.Model,
		Dimensions: c.Provider.Dimensions,
	}
}

// Level returns the parsed log level. Load has already validated it.
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
