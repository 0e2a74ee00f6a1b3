package main

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/botirk38/embedcache"
	"github.com/botirk38/embedcache/config"
	"github.com/botirk38/embedcache/options"
	"github.com/botirk38/embedcache/polish"
	"github.com/botirk38/embedcache/tokenizer"
)

var errNoCompletionKey = errors.New("polish.api_key is not set (EMBEDCACHE_POLISH_API_KEY)")

// app holds the components wired from one Config.
type app struct {
	cache    *embedcache.Cache
	polisher *polish.Polisher
	logger   *logrus.Logger
}

// newApp builds the cache and, when a completion key is configured, the polisher.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger := logrus.StandardLogger()

	cache, err := embedcache.New(
		options.WithMaxEntries(cfg.Cache.MaxEntries),
		options.WithMaxBytes(cfg.Cache.MaxBytes),
		options.WithSnippetRunes(cfg.Cache.SnippetRunes),
		options.WithDimensions(cfg.Provider.Dimensions),
		options.WithProviderConfig(ctx, cfg.Providers()),
		options.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	a := &app{cache: cache, logger: logger}

	if cfg.Polish.APIKey == "" {
		logger.Warn("[EMBEDCACHE] no completion API key configured, polishing disabled")
		return a, nil
	}

	completer, err := polish.NewAnthropicCompleter(polish.AnthropicConfig{
		APIKey:    cfg.Polish.APIKey,
		Model:     cfg.Polish.Model,
		MaxTokens: cfg.Polish.MaxTokens,
	})
	if err != nil {
		_ = cache.Close()
		return nil, err
	}
	counter, err := tokenizer.NewCounter()
	if err != nil {
		_ = cache.Close()
		return nil, err
	}
	a.polisher, err = polish.New(cache, completer, counter, polish.Config{
		TopK:           cfg.Polish.TopK,
		MinScore:       float32(cfg.Polish.MinScore),
		ContextTokens:  cfg.Polish.ContextTokens,
		MaxInputTokens: cfg.Polish.MaxInputTokens,
	}, logger)
	if err != nil {
		_ = cache.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) Close() error {
	return a.cache.Close()
}
