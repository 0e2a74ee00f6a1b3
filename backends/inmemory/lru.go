package inmemory

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/botirk38/embedcache/types"
)

// ErrInvalidConfig is returned by NewLRUStore for non-positive limits.
var ErrInvalidConfig = errors.New("invalid store config")

// StoreConfig holds the capacity ceilings and dimensionality of an LRUStore.
type StoreConfig struct {
	MaxEntries int
	MaxBytes   int64
	// Dimensions pins the vector length. Zero adopts the length of the first
	// vector stored and keeps it until Clear.
	Dimensions int
	Clock      types.Clock
}

// LRUStore is a bounded in-memory vector store with least-recently-used eviction.
//
// Eviction picks the entry with the oldest LastAccessedAt, then the lowest
// AccessCount, then the earliest CreatedAt. It only runs inside Put.
// The clock must never go backwards: the recency list relies on timestamps
// growing from the oldest entry to the newest.
type LRUStore struct {
	mu      *sync.RWMutex
	recency *simplelru.LRU[types.Key, *types.Entry]
	// stamps groups keys by LastAccessedAt so eviction only compares entries
	// that tie with the oldest one.
	stamps map[int64]map[types.Key]struct{}

	maxEntries int
	maxBytes   int64
	fixedDims  int
	dims       int
	totalBytes int64
	now        types.Clock
}

// NewLRUStore creates an empty LRUStore.
func NewLRUStore(config StoreConfig) (*LRUStore, error) {
	if config.MaxEntries <= 0 {
		return nil, fmt.Errorf("max entries must be positive, got %d: %w", config.MaxEntries, ErrInvalidConfig)
	}
	if config.MaxBytes <= 0 {
		return nil, fmt.Errorf("max bytes must be positive, got %d: %w", config.MaxBytes, ErrInvalidConfig)
	}
	if config.Dimensions < 0 {
		return nil, fmt.Errorf("dimensions must not be negative, got %d: %w", config.Dimensions, ErrInvalidConfig)
	}

	// The list never evicts on its own: Put always makes room before adding.
	recency, err := simplelru.NewLRU[types.Key, *types.Entry](config.MaxEntries, nil)
	if err != nil {
		return nil, err
	}

	clock := config.Clock
	if clock == nil {
		clock = time.Now
	}

	return &LRUStore{
		mu:         &sync.RWMutex{},
		recency:    recency,
		stamps:     make(map[int64]map[types.Key]struct{}),
		maxEntries: config.MaxEntries,
		maxBytes:   config.MaxBytes,
		fixedDims:  config.Dimensions,
		dims:       config.Dimensions,
		now:        clock,
	}, nil
}

// Get returns a copy of the entry for key and marks it as used.
func (s *LRUStore) Get(key types.Key) (types.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.recency.Get(key)
	if !ok {
		return types.Entry{}, false
	}
	s.markUsed(entry, s.stamp())
	return copyEntry(entry), true
}

// Put stores vector under key, evicting as needed, and returns the evicted keys.
// Storing an existing key refreshes it in place: the entry count does not grow
// and CreatedAt and AccessCount carry over.
func (s *LRUStore) Put(key types.Key, vector []float32, sizeBytes int64, snippet string) ([]types.Key, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("vector is empty: %w", types.ErrInvalidInput)
	}
	if sizeBytes < 0 {
		return nil, fmt.Errorf("negative size %d: %w", sizeBytes, types.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dims != 0 && len(vector) != s.dims {
		return nil, fmt.Errorf("vector has %d dimensions, store holds %d: %w", len(vector), s.dims, types.ErrInvalidInput)
	}
	if sizeBytes > s.maxBytes {
		return nil, fmt.Errorf("entry of %d bytes exceeds the %d byte limit: %w", sizeBytes, s.maxBytes, types.ErrCapacityExceeded)
	}

	now := s.stamp()
	entry := &types.Entry{
		Key:            key,
		Vector:         slices.Clone(vector),
		Snippet:        snippet,
		CreatedAt:      now,
		LastAccessedAt: now,
		SizeBytes:      sizeBytes,
	}
	if old, ok := s.recency.Peek(key); ok {
		entry.CreatedAt = old.CreatedAt
		entry.AccessCount = old.AccessCount
		s.recency.Remove(key)
		s.unindex(old)
		s.totalBytes -= old.SizeBytes
	}

	var evicted []types.Key
	for s.recency.Len() >= s.maxEntries || s.totalBytes+sizeBytes > s.maxBytes {
		victim, ok := s.evictLocked()
		if !ok {
			break
		}
		evicted = append(evicted, victim)
	}

	s.recency.Add(key, entry)
	s.index(entry)
	s.totalBytes += sizeBytes
	s.dims = len(vector)
	return evicted, nil
}

// EvictOne removes the entry the eviction policy ranks first.
func (s *LRUStore) EvictOne() (types.Key, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.evictLocked()
}

// evictLocked removes one entry by policy. Caller must hold the write lock.
// The recency list keeps the oldest LastAccessedAt at its tail, so only the
// entries sharing that timestamp are candidates.
func (s *LRUStore) evictLocked() (types.Key, bool) {
	_, oldest, ok := s.recency.GetOldest()
	if !ok {
		return "", false
	}

	victim := oldest
	if tied := s.stamps[oldest.LastAccessedAt.UnixNano()]; len(tied) > 1 {
		for key := range tied {
			entry, ok := s.recency.Peek(key)
			if ok && evictsBefore(entry, victim) {
				victim = entry
			}
		}
	}

	s.recency.Remove(victim.Key)
	s.unindex(victim)
	s.totalBytes -= victim.SizeBytes
	return victim.Key, true
}

// evictsBefore orders entries for eviction.
func evictsBefore(a, b *types.Entry) bool {
	if !a.LastAccessedAt.Equal(b.LastAccessedAt) {
		return a.LastAccessedAt.Before(b.LastAccessedAt)
	}
	if a.AccessCount != b.AccessCount {
		return a.AccessCount < b.AccessCount
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.Key < b.Key
}

// Touch marks the given keys as used. Missing keys are ignored.
func (s *LRUStore) Touch(keys ...types.Key) {
	if len(keys) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.stamp()
	for _, key := range keys {
		if entry, ok := s.recency.Get(key); ok {
			s.markUsed(entry, now)
		}
	}
}

// markUsed records an access at now and reindexes the entry.
func (s *LRUStore) markUsed(entry *types.Entry, now time.Time) {
	s.unindex(entry)
	entry.LastAccessedAt = now
	entry.AccessCount++
	s.index(entry)
}

func (s *LRUStore) index(entry *types.Entry) {
	ts := entry.LastAccessedAt.UnixNano()
	keys, ok := s.stamps[ts]
	if !ok {
		keys = make(map[types.Key]struct{}, 1)
		s.stamps[ts] = keys
	}
	keys[entry.Key] = struct{}{}
}

func (s *LRUStore) unindex(entry *types.Entry) {
	ts := entry.LastAccessedAt.UnixNano()
	keys := s.stamps[ts]
	delete(keys, entry.Key)
	if len(keys) == 0 {
		delete(s.stamps, ts)
	}
}

// stamp reads the clock without its monotonic reading, so equal timestamps
// compare equal and index under the same bucket.
func (s *LRUStore) stamp() time.Time {
	return s.now().Round(0)
}

// Range calls fn for every entry under the read lock until fn returns false.
// The entry's Vector aliases store memory and must not be modified or retained.
func (s *LRUStore) Range(fn func(types.Entry) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, key := range s.recency.Keys() {
		entry, ok := s.recency.Peek(key)
		if !ok {
			continue
		}
		if !fn(*entry) {
			return
		}
	}
}

// Clear removes every entry and returns how many were removed.
func (s *LRUStore) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.recency.Len()
	s.recency.Purge()
	clear(s.stamps)
	s.totalBytes = 0
	s.dims = s.fixedDims
	return n
}

// Size returns the entry count and aggregate byte size, read together.
func (s *LRUStore) Size() (int, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.recency.Len(), s.totalBytes
}

// Dimensions returns the vector length entries must have, or 0 if not yet fixed.
func (s *LRUStore) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.dims
}

// Limits returns the configured entry and byte ceilings.
func (s *LRUStore) Limits() (int, int64) {
	return s.maxEntries, s.maxBytes
}

// Close releases all entries.
func (s *LRUStore) Close() error {
	s.Clear()
	return nil
}

func copyEntry(e *types.Entry) types.Entry {
	out := *e
	out.Vector = slices.Clone(e.Vector)
	return out
}
