package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botirk38/embedcache/polish"
	"github.com/botirk38/embedcache/providers"
	"github.com/botirk38/embedcache/types"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 1000, cfg.Cache.MaxEntries)
		assert.Equal(t, int64(64<<20), cfg.Cache.MaxBytes)
		assert.Equal(t, 280, cfg.Cache.SnippetRunes)
		assert.Equal(t, "openai", cfg.Provider.Type)
		assert.Equal(t, 3, cfg.Polish.TopK)
		assert.InDelta(t, 0.75, cfg.Polish.MinScore, 1e-9)
		assert.Equal(t, 1024, cfg.Polish.ContextTokens)
		assert.Equal(t, 8191-819, cfg.Polish.MaxInputTokens)
		assert.Equal(t, polish.DefaultAnthropicModel, cfg.Polish.Model)
		assert.Equal(t, ":8081", cfg.Admin.Addr)
		assert.Equal(t, logrus.InfoLevel, cfg.Level())
	})

	t.Run("EnvironmentOverrides", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("EMBEDCACHE_CACHE_MAX_ENTRIES", "42")
		t.Setenv("EMBEDCACHE_PROVIDER_TYPE", "gemini")
		t.Setenv("EMBEDCACHE_PROVIDER_API_KEY", "secret")
		t.Setenv("EMBEDCACHE_LOG_LEVEL", "debug")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 42, cfg.Cache.MaxEntries)
		assert.Equal(t, logrus.DebugLevel, cfg.Level())

		assert.Equal(t, 2048-204, cfg.Polish.MaxInputTokens, "input limit follows the provider")

		pc := cfg.Providers()
		assert.Equal(t, types.ProviderGemini, pc.Type)
		assert.Equal(t, "secret", pc.APIKey)
	})

	t.Run("ConfigFile", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "embedcache.yaml")
		content := []byte(`
cache:
  max_entries: 2
  max_bytes: 4096
polish:
  top_k: 5
  min_score: 0.5
admin:
  addr: "127.0.0.1:9000"
`)
		require.NoError(t, os.WriteFile(path, content, 0o600))
		t.Setenv("EMBEDCACHE_POLISH_TOP_K", "7")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 2, cfg.Cache.MaxEntries)
		assert.Equal(t, int64(4096), cfg.Cache.MaxBytes)
		assert.Equal(t, 7, cfg.Polish.TopK, "environment wins over the file")
		assert.InDelta(t, 0.5, cfg.Polish.MinScore, 1e-9)
		assert.Equal(t, "127.0.0.1:9000", cfg.Admin.Addr)
	})

	t.Run("ExplicitInputLimitWins", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("EMBEDCACHE_PROVIDER_TYPE", "gemini")
		t.Setenv("EMBEDCACHE_POLISH_MAX_INPUT_TOKENS", "500")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 500, cfg.Polish.MaxInputTokens)
	})

	t.Run("MissingExplicitFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Cache:    CacheConfig{MaxEntries: 1, MaxBytes: 1},
			Provider: ProviderConfig{Type: "openai"},
			Polish:   PolishConfig{TopK: 3, MinScore: 0.75},
			LogLevel: "info",
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero entries", func(c *Config) { c.Cache.MaxEntries = 0 }},
		{"zero bytes", func(c *Config) { c.Cache.MaxBytes = 0 }},
		{"negative top k", func(c *Config) { c.Polish.TopK = -1 }},
		{"negative input limit", func(c *Config) { c.Polish.MaxInputTokens = -1 }},
		{"min score above one", func(c *Config) { c.Polish.MinScore = 1.5 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	t.Run("UnknownProvider", func(t *testing.T) {
		cfg := valid()
		cfg.Provider.Type = "cohere"
		assert.ErrorIs(t, cfg.Validate(), providers.ErrUnsupportedProvider)
	})
}
