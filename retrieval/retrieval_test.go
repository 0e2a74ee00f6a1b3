package retrieval

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botirk38/embedcache/types"
)

// sliceSource is an in-memory Source for tests.
type sliceSource []types.Entry

func (s sliceSource) Range(fn func(types.Entry) bool) {
	for _, e := range s {
		if !fn(e) {
			return
		}
	}
}

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func entry(key string, v []float32, accessed int) types.Entry {
	return types.Entry{
		Key:            types.Key(key),
		Vector:         v,
		Snippet:        "snippet " + key,
		LastAccessedAt: base.Add(time.Duration(accessed) * time.Second),
	}
}

func TestTopK(t *testing.T) {
	t.Run("EmptySource", func(t *testing.T) {
		matches, err := New(sliceSource{}).TopK([]float32{1, 0}, 3, -1)
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("NonPositiveK", func(t *testing.T) {
		src := sliceSource{entry("a", []float32{1, 0}, 0)}
		for _, k := range []int{0, -2} {
			matches, err := New(src).TopK([]float32{1, 0}, k, -1)
			require.NoError(t, err)
			assert.Empty(t, matches)
		}
	})

	t.Run("ReturnsExactlyKSortedDescending", func(t *testing.T) {
		src := make(sliceSource, 0, 10)
		for i := 0; i < 10; i++ {
			angle := float64(i) * 0.15
			src = append(src, entry(fmt.Sprintf("e%d", i), []float32{float32(math.Cos(angle)), float32(math.Sin(angle))}, i))
		}

		matches, err := New(src).TopK([]float32{1, 0}, 3, -1)
		require.NoError(t, err)
		require.Len(t, matches, 3)
		assert.Equal(t, types.Key("e0"), matches[0].Key)
		assert.Equal(t, types.Key("e1"), matches[1].Key)
		assert.Equal(t, types.Key("e2"), matches[2].Key)
		for i := 1; i < len(matches); i++ {
			assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
		}
		assert.Equal(t, "snippet e0", matches[0].Snippet)
	})

	t.Run("MinScoreFilters", func(t *testing.T) {
		src := sliceSource{
			entry("same", []float32{1, 0}, 0),
			entry("orthogonal", []float32{0, 1}, 0),
			entry("opposite", []float32{-1, 0}, 0),
		}
		matches, err := New(src).TopK([]float32{1, 0}, 10, 0.5)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, types.Key("same"), matches[0].Key)
		assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
	})

	t.Run("TiesPreferRecentAccess", func(t *testing.T) {
		src := sliceSource{
			entry("old", []float32{2, 0}, 1),
			entry("new", []float32{1, 0}, 5),
			entry("mid", []float32{3, 0}, 3),
		}
		matches, err := New(src).TopK([]float32{1, 0}, 3, 0)
		require.NoError(t, err)
		require.Len(t, matches, 3)
		assert.Equal(t, []types.Key{"new", "mid", "old"}, []types.Key{matches[0].Key, matches[1].Key, matches[2].Key})
	})

	t.Run("ZeroVectorScoresZero", func(t *testing.T) {
		src := sliceSource{entry("zero", []float32{0, 0}, 0)}
		matches, err := New(src).TopK([]float32{1, 0}, 1, 0)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, float32(0), matches[0].Score)
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		src := sliceSource{entry("a", []float32{1, 0, 0}, 0)}
		_, err := New(src).TopK([]float32{1, 0}, 1, 0)
		assert.ErrorIs(t, err, types.ErrInvalidInput)
	})
}
