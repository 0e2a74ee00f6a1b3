// Package retrieval ranks cached embeddings against a query vector.
package retrieval

import (
	"fmt"
	"sort"

	"github.com/botirk38/embedcache/similarity"
	"github.com/botirk38/embedcache/types"
)

// Source is the read side of a vector store.
type Source interface {
	// Range visits every entry until fn returns false.
	Range(fn func(types.Entry) bool)
}

// Engine performs exhaustive top-K similarity scans over a Source.
type Engine struct {
	source     Source
	comparator similarity.SimilarityFunc
}

// New creates an Engine that scores with cosine similarity.
func New(source Source) *Engine {
	return &Engine{source: source, comparator: similarity.CosineSimilarity}
}

// TopK returns up to k entries scoring at least minScore, best first.
// Equal scores put the most recently accessed entry first.
func (e *Engine) TopK(query []float32, k int, minScore float32) ([]types.Match, error) {
	if k <= 0 {
		return []types.Match{}, nil
	}

	var mismatch error
	matches := make([]types.Match, 0, k)
	e.source.Range(func(entry types.Entry) bool {
		if len(entry.Vector) != len(query) {
			mismatch = fmt.Errorf("query has %d dimensions, entry %s has %d: %w",
				len(query), entry.Key, len(entry.Vector), types.ErrInvalidInput)
			return false
		}
		score := e.comparator(query, entry.Vector)
		if score < minScore {
			return true
		}
		matches = append(matches, types.Match{
			Key:            entry.Key,
			Score:          score,
			Snippet:        entry.Snippet,
			LastAccessedAt: entry.LastAccessedAt,
		})
		return true
	})
	if mismatch != nil {
		return nil, mismatch
	}

	sortMatches(matches)
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// sortMatches orders matches by descending score, then most recent access, then key.
func sortMatches(matches []types.Match) {
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.LastAccessedAt.Equal(b.LastAccessedAt) {
			return a.LastAccessedAt.After(b.LastAccessedAt)
		}
		return a.Key < b.Key
	})
}
