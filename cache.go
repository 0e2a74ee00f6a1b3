// Package embedcache caches text embeddings in memory and retrieves the cached
// entries most similar to a query vector.
//
// A Cache is safe for concurrent use. Embedding providers are always called
// without any cache lock held, so a slow provider never blocks hits.
package embedcache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/botirk38/embedcache/backends/inmemory"
	"github.com/botirk38/embedcache/fingerprint"
	"github.com/botirk38/embedcache/options"
	"github.com/botirk38/embedcache/retrieval"
	"github.com/botirk38/embedcache/types"
)

// bytesPerFloat is the width of one stored vector component.
const bytesPerFloat = 4

// Cache maps text to embeddings, computing them on a miss.
type Cache struct {
	store        *inmemory.LRUStore
	engine       *retrieval.Engine
	provider     types.EmbeddingProvider
	logger       logrus.FieldLogger
	now          types.Clock
	snippetRunes int

	mu        sync.Mutex
	hits      uint64
	misses    uint64
	evictions uint64
	createdAt time.Time
}

// Result describes how a Compute call was served.
type Result struct {
	Key    types.Key
	Vector []float32
	// Hit is true when the vector came from the cache.
	Hit bool
	// Stored is true when the vector is in the cache after the call.
	Stored bool
	// Warning is set when the vector was computed but could not be cached.
	Warning error
}

// New creates a Cache with functional options.
func New(opts ...options.Option) (*Cache, error) {
	cfg := options.NewConfig()

	if err := cfg.Apply(opts...); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	store, err := inmemory.NewLRUStore(inmemory.StoreConfig{
		MaxEntries: cfg.MaxEntries,
		MaxBytes:   cfg.MaxBytes,
		Dimensions: cfg.ResolvedDimensions(),
		Clock:      clock,
	})
	if err != nil {
		return nil, err
	}

	return &Cache{
		store:        store,
		engine:       retrieval.New(store),
		provider:     cfg.Provider,
		logger:       cfg.Logger,
		now:          clock,
		snippetRunes: cfg.SnippetRunes,
		createdAt:    clock(),
	}, nil
}

// GetOrCompute returns the embedding of text, calling the provider only on a miss.
func (c *Cache) GetOrCompute(ctx context.Context, text string, fieldType types.FieldType) ([]float32, error) {
	res, err := c.Compute(ctx, text, fieldType)
	if err != nil {
		return nil, err
	}
	return res.Vector, nil
}

// Compute is GetOrCompute with details about how the vector was obtained.
// A vector that was computed but could not be cached is still returned, with
// Warning set to an error wrapping types.ErrCapacityExceeded.
func (c *Cache) Compute(ctx context.Context, text string, fieldType types.FieldType) (Result, error) {
	key, err := fingerprint.Fingerprint(text, fieldType)
	if err != nil {
		return Result{}, err
	}
	log := c.logger.WithFields(logrus.Fields{"key": shortKey(key), "field_type": fieldType})

	if entry, ok := c.store.Get(key); ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		log.Debug("[EMBEDCACHE] hit")
		return Result{Key: key, Vector: entry.Vector, Hit: true, Stored: true}, nil
	}

	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
	log.Debug("[EMBEDCACHE] miss, calling provider")

	normalized := fingerprint.Normalize(text)
	vector, err := c.provider.EmbedText(ctx, normalized)
	if err != nil {
		return Result{Key: key}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{Key: key}, err
	}

	evicted, err := c.store.Put(key, vector, int64(len(vector))*bytesPerFloat, truncateRunes(normalized, c.snippetRunes))
	switch {
	case errors.Is(err, types.ErrCapacityExceeded):
		log.WithError(err).Warn("[EMBEDCACHE] embedding computed but not cached")
		return Result{Key: key, Vector: vector, Warning: err}, nil
	case err != nil:
		return Result{Key: key}, err
	}

	if len(evicted) > 0 {
		c.mu.Lock()
		c.evictions += uint64(len(evicted))
		c.mu.Unlock()
		log.WithField("evicted", len(evicted)).Debug("[EMBEDCACHE] evicted entries to make room")
	}
	return Result{Key: key, Vector: vector, Stored: true}, nil
}

// RetrieveSimilar returns up to k cached entries whose cosine similarity to
// query is at least minScore, best first. Returned entries count as accessed.
func (c *Cache) RetrieveSimilar(query []float32, k int, minScore float32) ([]types.Match, error) {
	matches, err := c.engine.TopK(query, k, minScore)
	if err != nil {
		return nil, err
	}
	if len(matches) > 0 {
		keys := make([]types.Key, len(matches))
		for i, m := range matches {
			keys[i] = m.Key
		}
		c.store.Touch(keys...)
	}
	return matches, nil
}

// Stats returns a snapshot of the cache counters.
// It holds the counter lock across the store read, so a snapshot is either
// entirely before or entirely after a concurrent Clear.
func (c *Cache) Stats() types.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, size := c.store.Size()
	maxEntries, maxBytes := c.store.Limits()

	return types.Stats{
		Hits:       c.hits,
		Misses:     c.misses,
		Evictions:  c.evictions,
		EntryCount: entries,
		SizeBytes:  size,
		CreatedAt:  c.createdAt,
		MaxEntries: maxEntries,
		MaxBytes:   maxBytes,
		Dimensions: c.store.Dimensions(),
	}
}

// Clear drops every cached embedding and resets the counters.
// It returns the number of entries removed.
//
// A miss whose provider call is still running when Clear returns stores its
// vector afterwards, so the cache may then hold an entry with Misses == 0.
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.store.Clear()
	c.hits, c.misses, c.evictions = 0, 0, 0
	c.createdAt = c.now()

	c.logger.WithField("cleared", n).Info("[EMBEDCACHE] cache cleared")
	return n
}

// Close releases the cached entries and the embedding provider.
func (c *Cache) Close() error {
	err := c.store.Close()
	c.provider.Close()
	return err
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func shortKey(key types.Key) string {
	if len(key) > 12 {
		return string(key[:12])
	}
	return string(key)
}
