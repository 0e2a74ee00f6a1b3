// Package polish rewrites a piece of text with an LLM, grounding the rewrite in
// the most similar texts already held by the embedding cache.
package polish

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/botirk38/embedcache"
	"github.com/botirk38/embedcache/chunker"
	"github.com/botirk38/embedcache/fingerprint"
	"github.com/botirk38/embedcache/similarity"
	"github.com/botirk38/embedcache/tokenizer"
	"github.com/botirk38/embedcache/types"
)

var (
	ErrNoCache     = errors.New("polish: cache is required")
	ErrNoCompleter = errors.New("polish: completer is required")
	ErrNoCounter   = errors.New("polish: token counter is required")
)

// Cache is the part of *embedcache.Cache a Polisher uses.
type Cache interface {
	Compute(ctx context.Context, text string, fieldType types.FieldType) (embedcache.Result, error)
	RetrieveSimilar(query []float32, k int, minScore float32) ([]types.Match, error)
}

// Completer produces the polished text from a system and a user prompt.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Config controls retrieval and prompt size.
type Config struct {
	// TopK is how many similar cached texts are offered as context. Zero disables retrieval.
	TopK int
	// MinScore is the lowest cosine similarity a context text may have.
	MinScore float32
	// ContextTokens caps the reference block sent to the completer.
	ContextTokens int
	// MaxInputTokens is the embedding model's input limit. Longer texts are
	// embedded in windows and mean-pooled. Zero embeds the text whole.
	MaxInputTokens int
}

// DefaultConfig returns the retrieval and prompt defaults. MaxInputTokens is
// left at zero because it depends on the embedding provider.
func DefaultConfig() Config {
	return Config{
		TopK:          3,
		MinScore:      0.75,
		ContextTokens: 1024,
	}
}

// Request is one text to polish.
type Request struct {
	Text      string
	FieldType types.FieldType
}

// Response is the polished text plus what went into it.
type Response struct {
	ID        string          `json:"id"`
	Text      string          `json:"text"`
	FieldType types.FieldType `json:"field_type"`
	// ContextKeys lists the cached entries used as reference, best first.
	ContextKeys []types.Key `json:"context_keys"`
	// CacheHit is true when the request's own embedding came from the cache.
	CacheHit bool `json:"cache_hit"`
}

// Polisher runs the embed, retrieve and complete flow.
type Polisher struct {
	cache     Cache
	completer Completer
	counter   *tokenizer.Counter
	splitter  *chunker.Splitter
	config    Config
	logger    logrus.FieldLogger
}

// New creates a Polisher. A nil logger uses the logrus standard logger.
func New(cache Cache, completer Completer, counter *tokenizer.Counter, config Config, logger logrus.FieldLogger) (*Polisher, error) {
	if cache == nil {
		return nil, ErrNoCache
	}
	if completer == nil {
		return nil, ErrNoCompleter
	}
	if counter == nil {
		return nil, ErrNoCounter
	}
	if config.TopK < 0 || config.ContextTokens < 0 || config.MaxInputTokens < 0 {
		return nil, fmt.Errorf("polish: negative limit in %+v", config)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	p := &Polisher{
		cache:     cache,
		completer: completer,
		counter:   counter,
		config:    config,
		logger:    logger,
	}

	if config.MaxInputTokens > 0 {
		splitter, err := chunker.NewSplitter(chunker.Config{
			ChunkSize: config.MaxInputTokens,
			Overlap:   config.MaxInputTokens / 10,
		}, counter)
		if err != nil {
			return nil, err
		}
		p.splitter = splitter
	}
	return p, nil
}

// Polish rewrites req.Text. Cache and provider errors are returned unchanged so
// callers can test them with errors.Is; completer errors are wrapped.
func (p *Polisher) Polish(ctx context.Context, req Request) (*Response, error) {
	if !req.FieldType.Valid() {
		return nil, fmt.Errorf("unknown field type %q: %w", req.FieldType, types.ErrInvalidInput)
	}
	text := fingerprint.Normalize(req.Text)
	if text == "" {
		return nil, fmt.Errorf("text is empty: %w", types.ErrInvalidInput)
	}

	id := uuid.NewString()
	log := p.logger.WithFields(logrus.Fields{"request_id": id, "field_type": req.FieldType})

	query, ownKeys, hit, err := p.embed(ctx, text, req.FieldType)
	if err != nil {
		return nil, err
	}

	matches, err := p.retrieve(query, ownKeys)
	if err != nil {
		return nil, err
	}
	reference, contextKeys, err := p.referenceBlock(matches)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"cache_hit": hit, "context": len(contextKeys)}).Debug("[POLISH] context assembled")

	polished, err := p.completer.Complete(ctx, systemPrompt(req.FieldType), userPrompt(reference, text))
	if err != nil {
		return nil, fmt.Errorf("polish completion: %w", err)
	}

	log.Info("[POLISH] request completed")
	return &Response{
		ID:          id,
		Text:        strings.TrimSpace(polished),
		FieldType:   req.FieldType,
		ContextKeys: contextKeys,
		CacheHit:    hit,
	}, nil
}

// embed returns the query vector for text and the cache keys it was stored under.
func (p *Polisher) embed(ctx context.Context, text string, fieldType types.FieldType) ([]float32, map[types.Key]bool, bool, error) {
	pieces := []string{text}
	if p.splitter != nil {
		tokens, err := p.counter.Count(text)
		if err != nil {
			return nil, nil, false, err
		}
		if tokens > p.config.MaxInputTokens {
			chunks, err := p.splitter.Split(text)
			if err != nil {
				return nil, nil, false, err
			}
			pieces = pieces[:0]
			for _, c := range chunks {
				if strings.TrimSpace(c.Text) != "" {
					pieces = append(pieces, c.Text)
				}
			}
		}
	}

	keys := make(map[types.Key]bool, len(pieces))
	vectors := make([][]float32, 0, len(pieces))
	hit := true
	for _, piece := range pieces {
		res, err := p.cache.Compute(ctx, piece, fieldType)
		if err != nil {
			return nil, nil, false, err
		}
		keys[res.Key] = true
		vectors = append(vectors, res.Vector)
		hit = hit && res.Hit
	}

	if len(vectors) == 1 {
		return vectors[0], keys, hit, nil
	}
	query := similarity.MeanPool(vectors)
	if query == nil {
		return nil, nil, false, fmt.Errorf("chunk embeddings differ in length: %w", types.ErrInvalidInput)
	}
	return query, keys, hit, nil
}

func (p *Polisher) retrieve(query []float32, own map[types.Key]bool) ([]types.Match, error) {
	if p.config.TopK == 0 {
		return nil, nil
	}
	matches, err := p.cache.RetrieveSimilar(query, p.config.TopK+len(own), p.config.MinScore)
	if err != nil {
		return nil, err
	}

	out := matches[:0]
	for _, m := range matches {
		if own[m.Key] {
			continue
		}
		out = append(out, m)
		if len(out) == p.config.TopK {
			break
		}
	}
	return out, nil
}

// referenceBlock renders matches as a bullet list trimmed to ContextTokens.
// Matches that fall entirely past the budget are left out of the returned keys.
func (p *Polisher) referenceBlock(matches []types.Match) (string, []types.Key, error) {
	var b strings.Builder
	keys := make([]types.Key, 0, len(matches))
	used := 0

	for _, m := range matches {
		if m.Snippet == "" {
			continue
		}
		line := "- " + m.Snippet + "\n"
		n, err := p.counter.Count(line)
		if err != nil {
			return "", nil, err
		}
		if used+n > p.config.ContextTokens {
			rest, err := p.counter.Truncate(line, p.config.ContextTokens-used)
			if err != nil {
				return "", nil, err
			}
			if strings.TrimSpace(strings.TrimPrefix(rest, "-")) != "" {
				b.WriteString(rest)
				keys = append(keys, m.Key)
			}
			break
		}
		b.WriteString(line)
		keys = append(keys, m.Key)
		used += n
	}
	return strings.TrimRight(b.String(), "\n"), keys, nil
}
