package types

import (
	"context"
	"time"
)

// Key is the fingerprint of a (normalized text, field type) pair.
type Key string

// FieldType tells the polishing flow what kind of field a text belongs to.
// The same text under two field types gets two cache entries.
type FieldType string

const (
	FieldBrief    FieldType = "brief"
	FieldAnalysis FieldType = "analysis"
	FieldSuggest  FieldType = "suggest"
	FieldGeneric  FieldType = "generic"
)

// Valid reports whether f is one of the known field types.
func (f FieldType) Valid() bool {
	switch f {
	case FieldBrief, FieldAnalysis, FieldSuggest, FieldGeneric:
		return true
	}
	return false
}

// Entry is a cached embedding together with its bookkeeping.
type Entry struct {
	Key            Key
	Vector         []float32
	Snippet        string
	CreatedAt      time.Time
	LastAccessedAt time.Time
	AccessCount    int64
	SizeBytes      int64
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits       uint64    `json:"hits"`
	Misses     uint64    `json:"misses"`
	Evictions  uint64    `json:"evictions"`
	EntryCount int       `json:"entry_count"`
	SizeBytes  int64     `json:"size_bytes"`
	CreatedAt  time.Time `json:"created_at"`

	MaxEntries int   `json:"max_entries"`
	MaxBytes   int64 `json:"max_bytes"`
	Dimensions int   `json:"dimensions"`
}

// HitRate returns hits / (hits + misses), or 0 before the first lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Match is one retrieval result.
type Match struct {
	Key            Key       `json:"key"`
	Score          float32   `json:"score"`
	Snippet        string    `json:"snippet"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

// EmbeddingProvider defines the interface all embedding providers must satisfy.
type EmbeddingProvider interface {
	// EmbedText turns a piece of text into its embedding vector.
	EmbedText(ctx context.Context, text string) ([]float32, error)
	// Dimensions is the fixed length of every vector the provider returns.
	// Zero means the provider's native length, learned from the first response.
	Dimensions() int
	// Close frees any resources held by the provider.
	Close()
}

// ProviderType represents the type of embedding provider
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderGemini ProviderType = "gemini"
)

// Clock returns the current time. Tests swap it for a controllable one.
type Clock func() time.Time
